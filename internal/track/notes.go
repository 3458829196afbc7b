package track

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MergeNotes appends a timestamp-prefixed note to any previous notes,
// separated by a newline. An empty or whitespace-only note leaves the
// previous notes unchanged, so repeated interval confirmations don't pile up
// blank lines.
func MergeNotes(previous, note string, at time.Time) string {
	trimmed := strings.TrimSpace(note)
	if trimmed == "" {
		return previous
	}
	stamped := fmt.Sprintf("%s: %s", at.Format("15:04"), trimmed)
	if previous == "" {
		return stamped
	}
	return previous + "\n" + stamped
}

// RoundHours rounds h to the two decimal places the remote store keeps.
func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

package track

import "time"

// IsRunning decides whether an entry last touched at lastUpdated should be
// considered actively running at now, given the configured prompt interval.
//
// This is a heuristic, not ground truth: if nobody has touched the entry
// within one interval, the user is assumed to have stopped working on it,
// regardless of any server-side timer flag (which another client with a
// different interval may have left set). The boundary is strict: an entry
// updated exactly one interval ago is not running.
func IsRunning(lastUpdated time.Time, interval time.Duration, now time.Time) bool {
	if lastUpdated.IsZero() {
		return false
	}
	if interval <= 0 {
		return false
	}
	return now.Before(lastUpdated.Add(interval))
}

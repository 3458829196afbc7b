package track

import (
	"errors"
	"fmt"
)

// ErrMalformedSnapshot reports that the gateway returned an unusable daily
// payload. The caller must keep its previous state; partial application is
// forbidden.
var ErrMalformedSnapshot = errors.New("malformed daily snapshot")

// ErrNoSelection reports a commit attempted without both a project and a task
// selected. Purely local; no network call has been made.
var ErrNoSelection = errors.New("no project and task selected")

// CommitError wraps a gateway failure during a commit. The attempt left no
// local state behind, so retrying is safe.
type CommitError struct {
	Op  string // "fetch", "create", "update", or "toggle"
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit %s: %v", e.Op, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

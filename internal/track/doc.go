// Package track implements the timer/reconciliation core: deciding which
// remote entry is "running", deriving local state from daily snapshots, and
// turning user intent into a single remote create-or-update.
//
// # Running is a heuristic
//
// The remote store exposes a timer flag, but with several clients configured
// with different prompt intervals that flag is not trustworthy: a laptop at
// home may have left it set days ago. The only signal every client agrees on
// is updated_at, so an entry counts as running exactly when it was touched
// within one prompt interval:
//
//	IsRunning(lastUpdated, interval, now) == now < lastUpdated + interval
//
// The boundary is strict, a zero timestamp is never running, and a
// non-positive interval means already expired. The cost of the heuristic is
// sensitivity to clock skew between the local clock and the server's; that
// skew is accepted and documented rather than estimated away.
//
// # Reconciliation
//
// Reconcile consumes a whole daily snapshot and produces a whole
// CurrentState; there are no partial applies. The entry with the latest
// updated_at is the running candidate, with exact ties resolved toward the
// later scan position so a stale response completing out of order cannot win
// against a newer record. When the candidate passes the oracle, selection and
// the live hours accumulator seed from it; when it doesn't, selection stays
// empty and the user must choose.
//
// # Committing
//
// Committer fetches a fresh snapshot before every write, then either updates
// the one entry matching the selected project and task or creates a new one,
// never both. New notes get a local-time prefix and land on their own line
// after any prior notes; hours are the tracked total when the entry was
// running and an additive increment otherwise, rounded to the two decimal
// places the store keeps. If the committed record comes back with the server
// timer flag set, it is toggled off so the flag cannot keep refreshing
// updated_at behind the user's back.
//
// Validation failures (no selection) are purely local and precede any network
// call. Gateway failures come back as *CommitError with the failing operation
// named; the caller's state is untouched and retrying is safe.
package track

package progress

import "fmt"

// PersistenceError reports a failed read or write against the backing Store.
// The tracker's in-memory view is kept when a write fails, so retrying the
// operation later carries the pending change.
type PersistenceError struct {
	Op     string
	UserID string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("progress: %s for user %s: %v", e.Op, e.UserID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

package reconcile

import (
	"errors"
	"fmt"
)

// ErrUserCreationDisabled is returned when a remote customer matches no local
// user and user auto-creation is not configured. Callers decide whether to
// skip the customer or abort.
var ErrUserCreationDisabled = errors.New("no matching user and user auto-creation is disabled")

// ReconciliationError reports a payload that is structurally valid but cannot
// be applied to local state, such as a subscription item referencing a price
// that was never synced.
type ReconciliationError struct {
	Entity   string
	RemoteID string
	Reason   string
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("cannot reconcile %s %q: %s", e.Entity, e.RemoteID, e.Reason)
}

func reconcileErr(entity, remoteID, format string, args ...any) *ReconciliationError {
	return &ReconciliationError{Entity: entity, RemoteID: remoteID, Reason: fmt.Sprintf(format, args...)}
}

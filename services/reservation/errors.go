package reservation

import (
	"fmt"

	"tourspot/models"
)

// InvalidIntervalError reports a malformed or past-dated booking range.
// It is a user error and surfaced verbatim.
type InvalidIntervalError struct {
	Reason string
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("invalid interval: %s", e.Reason)
}

// InsufficientCapacityError reports that the resource cannot hold the
// requested quantity over the interval. Remaining carries the actual
// remaining count for the caller's UX.
type InsufficientCapacityError struct {
	ResourceID string
	Requested  int
	Remaining  int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity on %s: requested %d, %d remaining", e.ResourceID, e.Requested, e.Remaining)
}

// IllegalTransitionError reports an attempted state-graph violation,
// including re-entry into a terminal state.
type IllegalTransitionError struct {
	From models.Status
	To   models.Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: %s -> %s", e.From, e.To)
}

// UnauthorizedError reports that the actor lacks rights for a transition.
// Deliberately generic; no detail leaks to the caller.
type UnauthorizedError struct{}

func (e *UnauthorizedError) Error() string {
	return "not authorized for this transition"
}

// LockTimeoutError reports that the per-resource lock could not be
// acquired within the bounded wait. Transient; callers may retry with
// backoff.
type LockTimeoutError struct {
	ResourceID string
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for reservation lock on %s", e.ResourceID)
}

// InvariantViolationError reports an internal consistency failure such as
// negative remaining capacity. Never expected in correct operation; it is
// logged at error level and never retried or clamped away.
type InvariantViolationError struct {
	ResourceID string
	Detail     string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("capacity invariant violated on %s: %s", e.ResourceID, e.Detail)
}

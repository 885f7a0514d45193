package reservation

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"tourspot/utils"
)

// Retry policy for transient datastore failures: capped attempts with a
// doubling delay. Logic errors (capacity, state graph, authorization) are
// never retried.
const (
	maxAttempts    = 3
	retryBaseDelay = 50 * time.Millisecond
)

// transientError lets fakes mark an error retryable in tests.
type transientError interface {
	Transient() bool
}

// isTransient reports whether the error is a connectivity-level failure
// worth retrying. Every typed engine error is a logic error and returns
// false.
func isTransient(err error) bool {
	var te transientError
	if errors.As(err, &te) {
		return te.Transient()
	}

	var invalidInterval *InvalidIntervalError
	var insufficient *InsufficientCapacityError
	var illegal *IllegalTransitionError
	var unauthorized *UnauthorizedError
	var invariant *InvariantViolationError
	if errors.As(err, &invalidInterval) ||
		errors.As(err, &insufficient) ||
		errors.As(err, &illegal) ||
		errors.As(err, &unauthorized) ||
		errors.As(err, &invariant) {
		return false
	}

	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}

// withRetry runs op up to maxAttempts times, backing off between
// transient failures. The last error is returned once attempts are
// exhausted or the error is not retryable.
func withRetry(ctx context.Context, name string, op func() error) error {
	delay := retryBaseDelay
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}
		utils.GetLogger().Warn("transient datastore error, retrying",
			zap.String("op", name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

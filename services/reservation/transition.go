package reservation

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	reservationRepo "tourspot/database/repository/reservation"
	"tourspot/models"
	"tourspot/services/payment"
	"tourspot/utils"
)

// stateGraph enumerates the legal transitions. Absent states (rejected,
// cancelled, completed, refunded) are terminal.
var stateGraph = map[models.Status][]models.Status{
	models.StatusPending:   {models.StatusConfirmed, models.StatusRejected, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCompleted, models.StatusCancelled, models.StatusRefunded},
}

func reachable(from, to models.Status) bool {
	for _, s := range stateGraph[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StatsRefresher invalidates derived per-resource stats after a
// transition changes what they are computed from.
type StatsRefresher interface {
	Invalidate(resourceID string)
}

// TransitionValidator owns the reservation lifecycle: it enforces the
// state graph and dispatches the side effects that accompany each
// transition.
type TransitionValidator interface {
	Transition(ctx context.Context, reservationID string, newStatus models.Status, actorID string) (*models.Reservation, error)
}

// DefaultTransitionValidator implements TransitionValidator.
type DefaultTransitionValidator struct {
	Reservations reservationRepo.Repository
	Authz        AuthorizationPolicy
	Gateway      payment.Gateway
	Stats        StatsRefresher

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func (v *DefaultTransitionValidator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// Transition moves a reservation to newStatus. Terminal states admit no
// further transitions, re-entry included: cancelling an already-cancelled
// reservation is an IllegalTransitionError, not a silent no-op. Side
// effects (payment capture, refund, stats refresh) run asynchronously and
// never block or fail the state change.
func (v *DefaultTransitionValidator) Transition(ctx context.Context, reservationID string, newStatus models.Status, actorID string) (*models.Reservation, error) {
	var current *models.Reservation
	if err := withRetry(ctx, "load reservation", func() error {
		var err error
		current, err = v.Reservations.GetByID(ctx, reservationID)
		return err
	}); err != nil {
		return nil, err
	}

	if current.Status.Terminal() || !reachable(current.Status, newStatus) {
		return nil, &IllegalTransitionError{From: current.Status, To: newStatus}
	}

	allowed, err := v.Authz.CanTransition(ctx, actorID, current, newStatus)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, &UnauthorizedError{}
	}

	var updated *models.Reservation
	err = withRetry(ctx, "update status", func() error {
		var err error
		updated, err = v.Reservations.UpdateStatus(ctx, reservationID, current.Status, newStatus, v.now())
		return err
	})
	if errors.Is(err, reservationRepo.ErrStatusConflict) {
		// Someone else transitioned first; report against the fresh state.
		fresh, getErr := v.Reservations.GetByID(ctx, reservationID)
		if getErr == nil {
			return nil, &IllegalTransitionError{From: fresh.Status, To: newStatus}
		}
		return nil, &IllegalTransitionError{From: current.Status, To: newStatus}
	}
	if err != nil {
		return nil, err
	}

	utils.GetLogger().Info("reservation transitioned",
		zap.String("reservationID", updated.ID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(newStatus)),
		zap.String("actorID", actorID),
	)

	go v.runSideEffects(updated)

	return updated, nil
}

// runSideEffects performs the per-transition follow-up work. Failures are
// logged, never propagated: the state change has already committed.
func (v *DefaultTransitionValidator) runSideEffects(r *models.Reservation) {
	logger := utils.GetLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch r.Status {
	case models.StatusConfirmed:
		if v.Gateway != nil && r.PaymentIntentID == "" {
			intentID, err := v.Gateway.CreateIntent(ctx, r.QuotedAmount)
			if err != nil {
				logger.Error("payment capture failed",
					zap.String("reservationID", r.ID), zap.Error(err))
			} else if err := v.Reservations.SetPaymentIntent(ctx, r.ID, intentID); err != nil {
				logger.Error("failed to store payment intent",
					zap.String("reservationID", r.ID), zap.Error(err))
			}
		}
	case models.StatusCancelled, models.StatusRefunded:
		// Capacity is already freed: the overlap aggregation only counts
		// pending and confirmed rows. Only the refund remains.
		if v.Gateway != nil && r.PaymentIntentID != "" {
			if _, err := v.Gateway.Refund(ctx, r.PaymentIntentID); err != nil {
				logger.Error("refund failed",
					zap.String("reservationID", r.ID),
					zap.String("intentID", r.PaymentIntentID),
					zap.Error(err))
			}
		}
	case models.StatusCompleted:
		// Completion gates review eligibility; nothing to do here beyond
		// the stats refresh below.
	}

	if v.Stats != nil {
		v.Stats.Invalidate(r.ResourceID)
	}
}

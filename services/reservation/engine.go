package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	reservationRepo "tourspot/database/repository/reservation"
	resourceRepo "tourspot/database/repository/resource"
	"tourspot/models"
	"tourspot/utils"
)

// ExpiryScheduler enqueues the delayed task that cancels a reservation if
// it is still pending once the TTL elapses.
type ExpiryScheduler interface {
	ScheduleExpiry(reservationID string, delay time.Duration) error
}

// CreateReservationInput is the booking request as handed over by the
// HTTP layer. DurationUnits carries caller semantics (hours for guides,
// nights for rooms); zero means derive nights from the interval.
type CreateReservationInput struct {
	ResourceID    string
	ResourceKind  models.ResourceKind
	RequesterID   string
	Interval      models.Interval
	Quantity      int
	PartySize     int
	DurationUnits int
	Notes         string
}

// ReservationEngine is the single entry point for booking creation. All
// booking paths go through CreateReservation; there is no per-route
// reimplementation of the check-then-reserve sequence.
type ReservationEngine interface {
	CreateReservation(ctx context.Context, input CreateReservationInput) (*models.Reservation, error)
	RemainingCapacity(ctx context.Context, resourceID string, iv models.Interval) (int, error)
}

// DefaultReservationEngine implements ReservationEngine.
type DefaultReservationEngine struct {
	Reservations reservationRepo.Repository
	Resources    resourceRepo.Repository
	Availability *AvailabilityChecker
	Locker       ResourceLocker
	Expiry       ExpiryScheduler

	// LockWait bounds how long a request may queue behind concurrent
	// writers on the same resource.
	LockWait time.Duration
	// PendingTTL is the delay before an unresolved pending reservation is
	// swept back to cancelled.
	PendingTTL time.Duration

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func (e *DefaultReservationEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *DefaultReservationEngine) lockWait() time.Duration {
	if e.LockWait > 0 {
		return e.LockWait
	}
	return 3 * time.Second
}

// CreateReservation validates the request, then runs the check-then-reserve
// sequence as one atomic unit: per-resource lock, capacity check and row
// insert inside a single datastore transaction. Among concurrent requests
// for the last unit, exactly one commits; the rest see
// InsufficientCapacityError.
func (e *DefaultReservationEngine) CreateReservation(ctx context.Context, input CreateReservationInput) (*models.Reservation, error) {
	logger := utils.GetLogger()

	if !input.Interval.IsValid() {
		return nil, &InvalidIntervalError{Reason: fmt.Sprintf("start %s is not before end %s",
			input.Interval.Start.Format(models.DateLayout), input.Interval.End.Format(models.DateLayout))}
	}
	now := e.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if input.Interval.Start.Before(today) {
		return nil, &InvalidIntervalError{Reason: "start date is in the past"}
	}
	if input.Quantity < 1 {
		return nil, &InvalidIntervalError{Reason: "quantity must be at least 1"}
	}
	if input.PartySize < 1 {
		input.PartySize = 1
	}

	var resource *models.Resource
	if err := withRetry(ctx, "load resource", func() error {
		var err error
		resource, err = e.Resources.GetByID(ctx, input.ResourceID)
		return err
	}); err != nil {
		return nil, err
	}

	durationUnits := input.DurationUnits
	if durationUnits <= 0 {
		durationUnits = input.Interval.Nights()
	}

	// Serialize against other writers on this resource. Disjoint
	// resources proceed fully in parallel.
	release, err := e.Locker.Acquire(ctx, input.ResourceID, e.lockWait())
	if err != nil {
		return nil, err
	}
	defer release()

	// The reservation id is fixed before the retry loop so a retried
	// transaction after an ambiguous commit cannot double-insert.
	reservation := &models.Reservation{
		ID:            uuid.New().String(),
		ResourceID:    input.ResourceID,
		ResourceKind:  input.ResourceKind,
		RequesterID:   input.RequesterID,
		Interval:      input.Interval,
		Quantity:      input.Quantity,
		PartySize:     input.PartySize,
		DurationUnits: durationUnits,
		Status:        models.StatusPending,
		Notes:         input.Notes,
	}

	err = withRetry(ctx, "create reservation", func() error {
		return e.Reservations.WithResourceTx(ctx, input.ResourceID, func(txCtx context.Context) error {
			remaining, err := e.Availability.remainingFor(txCtx, resource, input.Interval)
			if err != nil {
				return err
			}
			if remaining < input.Quantity {
				return &InsufficientCapacityError{
					ResourceID: input.ResourceID,
					Requested:  input.Quantity,
					Remaining:  remaining,
				}
			}

			// Price is fixed here and never recomputed; later base-rate
			// changes do not touch existing reservations.
			breakdown := Breakdown(resource.BaseRate, input.Interval.Start, input.PartySize, durationUnits, resource.VehicleRate)
			quoted := breakdown.Total * models.Money(input.Quantity)

			createdAt := e.now()
			reservation.QuotedAmount = quoted
			reservation.CreatedAt = createdAt
			reservation.UpdatedAt = createdAt
			return e.Reservations.Insert(txCtx, reservation)
		})
	})
	if err != nil {
		return nil, err
	}

	if e.Expiry != nil && e.PendingTTL > 0 {
		if err := e.Expiry.ScheduleExpiry(reservation.ID, e.PendingTTL); err != nil {
			logger.Warn("failed to schedule pending expiry",
				zap.String("reservationID", reservation.ID), zap.Error(err))
		}
	}

	logger.Info("reservation created",
		zap.String("reservationID", reservation.ID),
		zap.String("resourceID", reservation.ResourceID),
		zap.Int("quantity", reservation.Quantity),
		zap.Int64("quotedAmount", int64(reservation.QuotedAmount)),
	)
	return reservation, nil
}

// RemainingCapacity exposes the availability check outside the booking
// transaction, for listing/search callers.
func (e *DefaultReservationEngine) RemainingCapacity(ctx context.Context, resourceID string, iv models.Interval) (int, error) {
	var remaining int
	err := withRetry(ctx, "remaining capacity", func() error {
		var err error
		remaining, err = e.Availability.RemainingCapacity(ctx, resourceID, iv)
		return err
	})
	return remaining, err
}

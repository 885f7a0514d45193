package reservationRepo

import (
	"context"
	"errors"
	"time"

	"tourspot/models"
)

// ErrNotFound is returned when a reservation id matches no row.
var ErrNotFound = errors.New("reservation not found")

// ErrStatusConflict is returned when a compare-and-set status update finds
// the reservation no longer in the expected state.
var ErrStatusConflict = errors.New("reservation status changed concurrently")

// Repository is the datastore contract the reservation engine runs
// against. WithResourceTx scopes a transaction to a single resource; all
// reads and writes made with the callback's context join that transaction,
// so a capacity check followed by an insert is atomic with respect to
// other callers on the same resource.
type Repository interface {
	WithResourceTx(ctx context.Context, resourceID string, fn func(txCtx context.Context) error) error
	Insert(ctx context.Context, r *models.Reservation) error
	GetByID(ctx context.Context, id string) (*models.Reservation, error)

	// SumOverlapping aggregates the booked quantity of active (pending or
	// confirmed) reservations on the resource whose interval overlaps iv.
	SumOverlapping(ctx context.Context, resourceID string, iv models.Interval) (int, error)

	// UpdateStatus moves a reservation from one status to another. The
	// update only applies while the reservation is still in the expected
	// current status; otherwise ErrStatusConflict is returned.
	UpdateStatus(ctx context.Context, id string, from, to models.Status, at time.Time) (*models.Reservation, error)

	SetPaymentIntent(ctx context.Context, id, intentID string) error

	ListByRequester(ctx context.Context, requesterID string, status models.Status, page, limit int) ([]models.Reservation, error)
	ListByResource(ctx context.Context, resourceID string, status models.Status, page, limit int) ([]models.Reservation, error)

	// ListExpiredPending returns pending reservations created before the
	// cutoff, for the expiry sweep.
	ListExpiredPending(ctx context.Context, cutoff time.Time) ([]models.Reservation, error)

	StatsByResource(ctx context.Context, resourceID string) (*models.ResourceStats, error)
}

package reservation

import (
	"context"
	"sync"
	"time"

	reservationRepo "tourspot/database/repository/reservation"
	resourceRepo "tourspot/database/repository/resource"
	"tourspot/models"
)

// fakeTransientErr marks a scripted failure as retryable.
type fakeTransientErr struct{ msg string }

func (e *fakeTransientErr) Error() string   { return e.msg }
func (e *fakeTransientErr) Transient() bool { return true }

// fakeReservationRepo is an in-memory Repository. WithResourceTx holds a
// single mutex for the duration of the callback, mirroring the
// serialization a datastore transaction provides.
type fakeReservationRepo struct {
	txMu   sync.Mutex
	rowsMu sync.Mutex
	rows   map[string]models.Reservation

	txCalls int
	txErrs  []error // consumed front-to-back before running the callback
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{rows: make(map[string]models.Reservation)}
}

func (f *fakeReservationRepo) WithResourceTx(ctx context.Context, resourceID string, fn func(txCtx context.Context) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()
	f.txCalls++
	if len(f.txErrs) > 0 {
		err := f.txErrs[0]
		f.txErrs = f.txErrs[1:]
		if err != nil {
			return err
		}
	}
	return fn(ctx)
}

func (f *fakeReservationRepo) Insert(ctx context.Context, r *models.Reservation) error {
	f.rowsMu.Lock()
	defer f.rowsMu.Unlock()
	f.rows[r.ID] = *r
	return nil
}

func (f *fakeReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	f.rowsMu.Lock()
	defer f.rowsMu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, reservationRepo.ErrNotFound
	}
	out := r
	return &out, nil
}

func (f *fakeReservationRepo) SumOverlapping(ctx context.Context, resourceID string, iv models.Interval) (int, error) {
	f.rowsMu.Lock()
	defer f.rowsMu.Unlock()
	total := 0
	for _, r := range f.rows {
		if r.ResourceID == resourceID && r.Status.Active() && r.Interval.Overlaps(iv) {
			total += r.Quantity
		}
	}
	return total, nil
}

func (f *fakeReservationRepo) UpdateStatus(ctx context.Context, id string, from, to models.Status, at time.Time) (*models.Reservation, error) {
	f.rowsMu.Lock()
	defer f.rowsMu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, reservationRepo.ErrNotFound
	}
	if r.Status != from {
		return nil, reservationRepo.ErrStatusConflict
	}
	r.Status = to
	r.UpdatedAt = at
	f.rows[id] = r
	out := r
	return &out, nil
}

func (f *fakeReservationRepo) SetPaymentIntent(ctx context.Context, id, intentID string) error {
	f.rowsMu.Lock()
	defer f.rowsMu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return reservationRepo.ErrNotFound
	}
	r.PaymentIntentID = intentID
	f.rows[id] = r
	return nil
}

func (f *fakeReservationRepo) ListByRequester(ctx context.Context, requesterID string, status models.Status, page, limit int) ([]models.Reservation, error) {
	f.rowsMu.Lock()
	defer f.rowsMu.Unlock()
	var out []models.Reservation
	for _, r := range f.rows {
		if r.RequesterID == requesterID && (status == "" || r.Status == status) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) ListByResource(ctx context.Context, resourceID string, status models.Status, page, limit int) ([]models.Reservation, error) {
	f.rowsMu.Lock()
	defer f.rowsMu.Unlock()
	var out []models.Reservation
	for _, r := range f.rows {
		if r.ResourceID == resourceID && (status == "" || r.Status == status) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) ListExpiredPending(ctx context.Context, cutoff time.Time) ([]models.Reservation, error) {
	f.rowsMu.Lock()
	defer f.rowsMu.Unlock()
	var out []models.Reservation
	for _, r := range f.rows {
		if r.Status == models.StatusPending && r.CreatedAt.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) StatsByResource(ctx context.Context, resourceID string) (*models.ResourceStats, error) {
	f.rowsMu.Lock()
	defer f.rowsMu.Unlock()
	s := &models.ResourceStats{ResourceID: resourceID}
	for _, r := range f.rows {
		if r.ResourceID != resourceID {
			continue
		}
		s.TotalReservations++
		switch r.Status {
		case models.StatusPending:
			s.Pending++
		case models.StatusConfirmed:
			s.Confirmed++
		case models.StatusCompleted:
			s.Completed++
			s.CompletedRevenue += r.QuotedAmount
		case models.StatusCancelled:
			s.Cancelled++
		}
	}
	return s, nil
}

// fakeResourceRepo is an in-memory resource store.
type fakeResourceRepo struct {
	mu        sync.Mutex
	resources map[string]models.Resource
}

func newFakeResourceRepo(resources ...models.Resource) *fakeResourceRepo {
	f := &fakeResourceRepo{resources: make(map[string]models.Resource)}
	for _, r := range resources {
		f.resources[r.ID] = r
	}
	return f
}

func (f *fakeResourceRepo) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resources[id]
	if !ok {
		return nil, resourceRepo.ErrNotFound
	}
	out := r
	return &out, nil
}

func (f *fakeResourceRepo) Create(ctx context.Context, r *models.Resource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resources[r.ID] = *r
	return nil
}

func (f *fakeResourceRepo) UpdateBaseRate(ctx context.Context, id string, rate models.Money) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resources[id]
	if !ok {
		return resourceRepo.ErrNotFound
	}
	r.BaseRate = rate
	f.resources[id] = r
	return nil
}

func (f *fakeResourceRepo) UpdateRating(ctx context.Context, id string, agg models.RatingAggregate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resources[id]
	if !ok {
		return resourceRepo.ErrNotFound
	}
	r.Rating = agg.Average
	r.ReviewCount = agg.Count
	f.resources[id] = r
	return nil
}

// fakeGateway records payment calls on channels so tests can wait for the
// asynchronous side effects.
type fakeGateway struct {
	intents chan models.Money
	refunds chan string

	intentErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		intents: make(chan models.Money, 8),
		refunds: make(chan string, 8),
	}
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amount models.Money) (string, error) {
	if g.intentErr != nil {
		return "", g.intentErr
	}
	g.intents <- amount
	return "pi_test", nil
}

func (g *fakeGateway) Refund(ctx context.Context, intentID string) (string, error) {
	g.refunds <- intentID
	return "re_test", nil
}

// allowAllPolicy authorizes every transition.
type allowAllPolicy struct{}

func (allowAllPolicy) CanTransition(ctx context.Context, actorID string, r *models.Reservation, newStatus models.Status) (bool, error) {
	return true, nil
}

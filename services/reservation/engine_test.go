package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	resourceRepo "tourspot/database/repository/resource"
	"tourspot/models"
)

var testNow = time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)

func newTestEngine(resources ...models.Resource) (*DefaultReservationEngine, *fakeReservationRepo, *fakeResourceRepo) {
	reservations := newFakeReservationRepo()
	resourceStore := newFakeResourceRepo(resources...)
	engine := &DefaultReservationEngine{
		Reservations: reservations,
		Resources:    resourceStore,
		Availability: &AvailabilityChecker{Reservations: reservations, Resources: resourceStore},
		Locker:       NewLocalLocker(),
		LockWait:     2 * time.Second,
		Now:          func() time.Time { return testNow },
	}
	return engine, reservations, resourceStore
}

func roomResource(id string, units int, rate models.Money) models.Resource {
	return models.Resource{ID: id, Kind: models.KindRoom, OwnerID: "owner-1", TotalUnits: units, BaseRate: rate}
}

func bookingInput(resourceID string) CreateReservationInput {
	return CreateReservationInput{
		ResourceID:   resourceID,
		ResourceKind: models.KindRoom,
		RequesterID:  "tourist-1",
		Interval:     mustInterval(nil, "2024-07-10", "2024-07-12"),
		Quantity:     1,
		PartySize:    2,
	}
}

func mustInterval(t *testing.T, start, end string) models.Interval {
	if t != nil {
		t.Helper()
	}
	iv, err := models.NewInterval(start, end)
	if err != nil {
		panic(err)
	}
	return iv
}

func TestCreateReservation_Success(t *testing.T) {
	engine, repo, _ := newTestEngine(roomResource("room-1", 3, 1000))

	r, err := engine.CreateReservation(context.Background(), bookingInput("room-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Status != models.StatusPending {
		t.Errorf("expected pending status, got %s", r.Status)
	}
	if r.DurationUnits != 2 {
		t.Errorf("expected 2 duration units derived from interval, got %d", r.DurationUnits)
	}
	// July is low season, July 10 2024 a Wednesday: 1000 * 2 nights + 10% fee.
	if r.QuotedAmount != 2200 {
		t.Errorf("expected quoted amount 2200, got %d", r.QuotedAmount)
	}
	stored, err := repo.GetByID(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("reservation not persisted: %v", err)
	}
	if stored.QuotedAmount != r.QuotedAmount {
		t.Errorf("persisted amount %d differs from returned %d", stored.QuotedAmount, r.QuotedAmount)
	}
}

func TestCreateReservation_RejectsInvalidInput(t *testing.T) {
	engine, _, _ := newTestEngine(roomResource("room-1", 3, 1000))

	cases := []struct {
		name  string
		amend func(*CreateReservationInput)
	}{
		{"reversed interval", func(in *CreateReservationInput) {
			in.Interval = models.Interval{Start: in.Interval.End, End: in.Interval.Start}
		}},
		{"empty interval", func(in *CreateReservationInput) {
			in.Interval.End = in.Interval.Start
		}},
		{"start in the past", func(in *CreateReservationInput) {
			in.Interval = mustInterval(nil, "2024-05-01", "2024-05-03")
		}},
		{"zero quantity", func(in *CreateReservationInput) {
			in.Quantity = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := bookingInput("room-1")
			tc.amend(&in)
			_, err := engine.CreateReservation(context.Background(), in)
			var invalid *InvalidIntervalError
			if !errors.As(err, &invalid) {
				t.Errorf("expected InvalidIntervalError, got %v", err)
			}
		})
	}
}

func TestCreateReservation_UnknownResource(t *testing.T) {
	engine, _, _ := newTestEngine()
	_, err := engine.CreateReservation(context.Background(), bookingInput("missing"))
	if !errors.Is(err, resourceRepo.ErrNotFound) {
		t.Errorf("expected resource not found, got %v", err)
	}
}

func TestCreateReservation_InsufficientCapacity(t *testing.T) {
	engine, _, _ := newTestEngine(roomResource("room-1", 1, 1000))

	if _, err := engine.CreateReservation(context.Background(), bookingInput("room-1")); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	_, err := engine.CreateReservation(context.Background(), bookingInput("room-1"))
	var insufficient *InsufficientCapacityError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientCapacityError, got %v", err)
	}
	if insufficient.Remaining != 0 || insufficient.Requested != 1 {
		t.Errorf("expected requested 1 remaining 0, got %+v", insufficient)
	}
}

func TestCreateReservation_AdjacentIntervalsDoNotCollide(t *testing.T) {
	engine, _, _ := newTestEngine(roomResource("room-1", 1, 1000))

	first := bookingInput("room-1")
	first.Interval = mustInterval(t, "2024-07-10", "2024-07-12")
	if _, err := engine.CreateReservation(context.Background(), first); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	// Checkout day equals the next check-in; the unit is free.
	second := bookingInput("room-1")
	second.Interval = mustInterval(t, "2024-07-12", "2024-07-14")
	if _, err := engine.CreateReservation(context.Background(), second); err != nil {
		t.Fatalf("back-to-back booking failed: %v", err)
	}
}

func TestCreateReservation_ConcurrentLastUnits(t *testing.T) {
	const capacity = 3
	const contenders = 10
	engine, _, _ := newTestEngine(roomResource("room-1", capacity, 1000))

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.CreateReservation(context.Background(), bookingInput("room-1"))
		}(i)
	}
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			var insufficient *InsufficientCapacityError
			if !errors.As(err, &insufficient) {
				t.Fatalf("unexpected error under contention: %v", err)
			}
			rejected++
		}
	}
	if succeeded != capacity {
		t.Errorf("expected exactly %d successful bookings, got %d", capacity, succeeded)
	}
	if rejected != contenders-capacity {
		t.Errorf("expected %d rejections, got %d", contenders-capacity, rejected)
	}

	remaining, err := engine.RemainingCapacity(context.Background(), "room-1", bookingInput("room-1").Interval)
	if err != nil {
		t.Fatalf("remaining capacity: %v", err)
	}
	if remaining != 0 {
		t.Errorf("expected 0 remaining after the race, got %d", remaining)
	}
}

func TestCreateReservation_QuoteFixedAtCreation(t *testing.T) {
	engine, repo, resources := newTestEngine(roomResource("room-1", 3, 1000))

	r, err := engine.CreateReservation(context.Background(), bookingInput("room-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := resources.UpdateBaseRate(context.Background(), "room-1", 5000); err != nil {
		t.Fatalf("rate update: %v", err)
	}

	stored, err := repo.GetByID(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.QuotedAmount != r.QuotedAmount {
		t.Errorf("quoted amount changed after rate update: %d != %d", stored.QuotedAmount, r.QuotedAmount)
	}

	// A fresh booking sees the new rate.
	fresh, err := engine.CreateReservation(context.Background(), bookingInput("room-1"))
	if err != nil {
		t.Fatalf("second booking: %v", err)
	}
	if fresh.QuotedAmount == r.QuotedAmount {
		t.Errorf("new booking should reflect the new base rate, both quoted %d", r.QuotedAmount)
	}
}

func TestCreateReservation_OversoldStateSurfaces(t *testing.T) {
	engine, repo, _ := newTestEngine(roomResource("room-1", 1, 1000))

	// Seed a corrupt store: two active rows against a single unit.
	iv := mustInterval(t, "2024-07-10", "2024-07-12")
	for _, id := range []string{"r1", "r2"} {
		repo.rows[id] = models.Reservation{
			ID: id, ResourceID: "room-1", Status: models.StatusConfirmed,
			Interval: iv, Quantity: 1,
		}
	}

	_, err := engine.CreateReservation(context.Background(), bookingInput("room-1"))
	var invariant *InvariantViolationError
	if !errors.As(err, &invariant) {
		t.Fatalf("expected InvariantViolationError, got %v", err)
	}

	_, err = engine.RemainingCapacity(context.Background(), "room-1", iv)
	if !errors.As(err, &invariant) {
		t.Errorf("remaining capacity should also surface the violation, got %v", err)
	}
}

func TestCreateReservation_LockTimeout(t *testing.T) {
	engine, _, _ := newTestEngine(roomResource("room-1", 3, 1000))
	engine.LockWait = 20 * time.Millisecond

	// Hold the resource lock so the booking cannot acquire it.
	release, err := engine.Locker.Acquire(context.Background(), "room-1", time.Second)
	if err != nil {
		t.Fatalf("pre-acquire: %v", err)
	}
	defer release()

	_, err = engine.CreateReservation(context.Background(), bookingInput("room-1"))
	var timeout *LockTimeoutError
	if !errors.As(err, &timeout) {
		t.Errorf("expected LockTimeoutError, got %v", err)
	}
}

func TestCreateReservation_RetriesTransientFailure(t *testing.T) {
	engine, repo, _ := newTestEngine(roomResource("room-1", 3, 1000))
	repo.txErrs = []error{
		&fakeTransientErr{msg: "connection reset"},
		&fakeTransientErr{msg: "connection reset"},
	}

	r, err := engine.CreateReservation(context.Background(), bookingInput("room-1"))
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if repo.txCalls != 3 {
		t.Errorf("expected 3 transaction attempts, got %d", repo.txCalls)
	}
	if _, err := repo.GetByID(context.Background(), r.ID); err != nil {
		t.Errorf("reservation missing after retried create: %v", err)
	}
}

func TestCreateReservation_DoesNotRetryCapacityFailure(t *testing.T) {
	engine, repo, _ := newTestEngine(roomResource("room-1", 1, 1000))

	if _, err := engine.CreateReservation(context.Background(), bookingInput("room-1")); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	repo.txCalls = 0

	_, err := engine.CreateReservation(context.Background(), bookingInput("room-1"))
	var insufficient *InsufficientCapacityError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientCapacityError, got %v", err)
	}
	if repo.txCalls != 1 {
		t.Errorf("capacity failure should not be retried, got %d attempts", repo.txCalls)
	}
}

func TestCreateReservation_GuideCapacityIsOne(t *testing.T) {
	guide := models.Resource{ID: "guide-1", Kind: models.KindGuide, OwnerID: "owner-2", TotalUnits: 5, BaseRate: 800}
	engine, _, _ := newTestEngine(guide)

	in := bookingInput("guide-1")
	in.ResourceKind = models.KindGuide
	in.DurationUnits = 4

	if _, err := engine.CreateReservation(context.Background(), in); err != nil {
		t.Fatalf("first guide booking: %v", err)
	}
	_, err := engine.CreateReservation(context.Background(), in)
	var insufficient *InsufficientCapacityError
	if !errors.As(err, &insufficient) {
		t.Errorf("guide should hold one booking per interval, got %v", err)
	}
}

package reservation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	reservationRepo "tourspot/database/repository/reservation"
	resourceRepo "tourspot/database/repository/resource"
	"tourspot/models"
	"tourspot/utils"
)

// AvailabilityChecker computes remaining capacity for a resource over a
// requested interval by aggregating active overlapping reservations
// against total capacity.
type AvailabilityChecker struct {
	Reservations reservationRepo.Repository
	Resources    resourceRepo.Repository
}

// RemainingCapacity returns how many units of the resource are still free
// over the interval. A negative aggregate would mean the store already
// holds an oversold state; that is reported as an invariant violation,
// never clamped to zero, so oversells surface instead of hiding.
func (c *AvailabilityChecker) RemainingCapacity(ctx context.Context, resourceID string, iv models.Interval) (int, error) {
	resource, err := c.Resources.GetByID(ctx, resourceID)
	if err != nil {
		return 0, fmt.Errorf("availability check: %w", err)
	}
	return c.remainingFor(ctx, resource, iv)
}

// remainingFor is the capacity computation against an already-loaded
// resource; the engine calls it inside the reservation transaction.
func (c *AvailabilityChecker) remainingFor(ctx context.Context, resource *models.Resource, iv models.Interval) (int, error) {
	used, err := c.Reservations.SumOverlapping(ctx, resource.ID, iv)
	if err != nil {
		return 0, fmt.Errorf("availability check: %w", err)
	}

	remaining := resource.Capacity() - used
	if remaining < 0 {
		utils.GetLogger().Error("negative remaining capacity",
			zap.String("resourceID", resource.ID),
			zap.Int("capacity", resource.Capacity()),
			zap.Int("booked", used),
		)
		return 0, &InvariantViolationError{
			ResourceID: resource.ID,
			Detail:     fmt.Sprintf("capacity %d, booked %d over %s", resource.Capacity(), used, iv),
		}
	}
	return remaining, nil
}

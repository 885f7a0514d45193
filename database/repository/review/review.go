package reviewRepo

import (
	"context"

	"tourspot/models"
)

// Repository stores reviews and computes the derived rating aggregate.
type Repository interface {
	Insert(ctx context.Context, review *models.Review) error
	ListByResource(ctx context.Context, resourceID string) ([]models.Review, error)

	// Aggregate rescans every review for the resource and returns the
	// fresh average and count. The aggregate is always recomputed from
	// scratch, never adjusted incrementally.
	Aggregate(ctx context.Context, resourceID string) (models.RatingAggregate, error)
}

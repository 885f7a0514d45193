package resourceRepo

import (
	"context"
	"errors"

	"tourspot/models"
)

// ErrNotFound is returned when a resource id matches no row.
var ErrNotFound = errors.New("resource not found")

// Repository provides access to bookable resources (room types and guide
// slots). Capacity and base rate live here; the reservation engine reads
// them at booking time.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Resource, error)
	Create(ctx context.Context, r *models.Resource) error
	UpdateBaseRate(ctx context.Context, id string, rate models.Money) error

	// UpdateRating overwrites the derived rating aggregate after a review
	// rescan.
	UpdateRating(ctx context.Context, id string, agg models.RatingAggregate) error
}

package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	reservationRepo "tourspot/database/repository/reservation"
	resourceRepo "tourspot/database/repository/resource"
	reviewRepo "tourspot/database/repository/review"
	"tourspot/models"
	"tourspot/utils"
)

// ErrNotEligible is returned when the reviewer has no completed
// reservation backing the review.
var ErrNotEligible = errors.New("review requires a completed reservation by the reviewer")

// ErrInvalidRating is returned for ratings outside 1..5.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// AddReviewInput is a review submission.
type AddReviewInput struct {
	ReservationID string
	ReviewerID    string
	Rating        int
	Comment       string
}

// Service manages reviews and the derived rating aggregate on resources.
type Service interface {
	AddReview(ctx context.Context, input AddReviewInput) (*models.Review, error)
	ListByResource(ctx context.Context, resourceID string) ([]models.Review, error)
}

// DefaultReviewService implements Service.
type DefaultReviewService struct {
	Reviews      reviewRepo.Repository
	Reservations reservationRepo.Repository
	Resources    resourceRepo.Repository
}

// AddReview stores a review and recomputes the resource's rating
// aggregate from a full rescan of its reviews. Eligibility: the backing
// reservation must be completed and owned by the reviewer.
func (s *DefaultReviewService) AddReview(ctx context.Context, input AddReviewInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	reservation, err := s.Reservations.GetByID(ctx, input.ReservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != models.StatusCompleted || reservation.RequesterID != input.ReviewerID {
		return nil, ErrNotEligible
	}

	review := &models.Review{
		ID:            uuid.New().String(),
		ReservationID: reservation.ID,
		ResourceID:    reservation.ResourceID,
		ReviewerID:    input.ReviewerID,
		Rating:        input.Rating,
		Comment:       input.Comment,
		CreatedAt:     time.Now(),
	}
	if err := s.Reviews.Insert(ctx, review); err != nil {
		return nil, err
	}

	agg, err := s.Reviews.Aggregate(ctx, reservation.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("rating recompute failed: %w", err)
	}
	if err := s.Resources.UpdateRating(ctx, reservation.ResourceID, agg); err != nil {
		return nil, fmt.Errorf("rating update failed: %w", err)
	}

	utils.GetLogger().Info("review added",
		zap.String("resourceID", reservation.ResourceID),
		zap.Float64("average", agg.Average),
		zap.Int("count", agg.Count),
	)
	return review, nil
}

func (s *DefaultReviewService) ListByResource(ctx context.Context, resourceID string) ([]models.Review, error) {
	return s.Reviews.ListByResource(ctx, resourceID)
}

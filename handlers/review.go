package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	reservationRepo "tourspot/database/repository/reservation"
	"tourspot/services/review"
)

// ReviewHandler exposes review submission and listing.
type ReviewHandler struct {
	Service review.Service
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(svc review.Service) *ReviewHandler {
	return &ReviewHandler{Service: svc}
}

// CreateReviewHandler stores a review for a completed reservation and
// refreshes the resource's rating aggregate.
func (h *ReviewHandler) CreateReviewHandler(c *gin.Context) {
	var input struct {
		ReservationID string `json:"reservation_id" binding:"required"`
		Rating        int    `json:"rating" binding:"required"`
		Comment       string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	reviewer := actorID(c)
	if reviewer == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	created, err := h.Service.AddReview(c.Request.Context(), review.AddReviewInput{
		ReservationID: input.ReservationID,
		ReviewerID:    reviewer,
		Rating:        input.Rating,
		Comment:       input.Comment,
	})
	switch {
	case errors.Is(err, review.ErrNotEligible), errors.Is(err, review.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, reservationRepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create review", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"review": created})
}

// ListReviewsHandler returns reviews for a resource, newest first.
func (h *ReviewHandler) ListReviewsHandler(c *gin.Context) {
	reviews, err := h.Service.ListByResource(c.Request.Context(), c.Param("resourceId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch reviews"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

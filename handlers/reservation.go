package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	reservationRepo "tourspot/database/repository/reservation"
	resourceRepo "tourspot/database/repository/resource"
	"tourspot/models"
	"tourspot/services/reservation"
)

// ReservationHandler exposes the reservation engine over HTTP. It only
// translates wire shapes and maps the engine's error taxonomy to status
// codes; all booking logic lives in the engine.
type ReservationHandler struct {
	Engine       reservation.ReservationEngine
	Transitions  reservation.TransitionValidator
	Reservations reservationRepo.Repository
	Resources    resourceRepo.Repository
	Logger       *zap.Logger
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(
	engine reservation.ReservationEngine,
	transitions reservation.TransitionValidator,
	reservations reservationRepo.Repository,
	resources resourceRepo.Repository,
	logger *zap.Logger,
) *ReservationHandler {
	return &ReservationHandler{
		Engine:       engine,
		Transitions:  transitions,
		Reservations: reservations,
		Resources:    resources,
		Logger:       logger,
	}
}

// actorID resolves the authenticated caller. The auth layer upstream of
// this service injects the identity; it is not verified here.
func actorID(c *gin.Context) string {
	if v := c.GetString("userID"); v != "" {
		return v
	}
	return c.GetHeader("X-User-ID")
}

// respondError maps engine errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	var invalidInterval *reservation.InvalidIntervalError
	var insufficient *reservation.InsufficientCapacityError
	var illegal *reservation.IllegalTransitionError
	var unauthorized *reservation.UnauthorizedError
	var lockTimeout *reservation.LockTimeoutError
	var invariant *reservation.InvariantViolationError

	switch {
	case errors.As(err, &invalidInterval):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "remaining": insufficient.Remaining})
	case errors.As(err, &illegal):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "current_status": illegal.From, "attempted_status": illegal.To})
	case errors.As(err, &unauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &lockTimeout):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &invariant):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal consistency failure"})
	case errors.Is(err, reservationRepo.ErrNotFound), errors.Is(err, resourceRepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "details": err.Error()})
	}
}

// CreateReservationHandler creates a pending reservation.
func (h *ReservationHandler) CreateReservationHandler(c *gin.Context) {
	var input struct {
		ResourceID    string `json:"resource_id" binding:"required"`
		ResourceKind  string `json:"resource_kind" binding:"required"`
		StartDate     string `json:"start_date" binding:"required"`
		EndDate       string `json:"end_date" binding:"required"`
		Quantity      int    `json:"quantity"`
		PartySize     int    `json:"party_size"`
		DurationUnits int    `json:"duration_units"`
		Notes         string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	requester := actorID(c)
	if requester == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	iv, err := models.NewInterval(input.StartDate, input.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.Engine.CreateReservation(c.Request.Context(), reservation.CreateReservationInput{
		ResourceID:    input.ResourceID,
		ResourceKind:  models.ResourceKind(input.ResourceKind),
		RequesterID:   requester,
		Interval:      iv,
		Quantity:      input.Quantity,
		PartySize:     input.PartySize,
		DurationUnits: input.DurationUnits,
		Notes:         input.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reservation": created})
}

// TransitionHandler applies a status change to a reservation.
func (h *ReservationHandler) TransitionHandler(c *gin.Context) {
	reservationID := c.Param("id")
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	actor := actorID(c)
	if actor == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	updated, err := h.Transitions.Transition(c.Request.Context(), reservationID, models.Status(input.Status), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": updated})
}

// GetReservationHandler returns a single reservation by id.
func (h *ReservationHandler) GetReservationHandler(c *gin.Context) {
	r, err := h.Reservations.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": r})
}

// ListMyReservationsHandler returns the caller's booking history.
func (h *ReservationHandler) ListMyReservationsHandler(c *gin.Context) {
	requester := actorID(c)
	if requester == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := models.Status(c.Query("status"))

	items, err := h.Reservations.ListByRequester(c.Request.Context(), requester, status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reservations": items,
		"pagination":   gin.H{"page": page, "limit": limit},
	})
}

// ListResourceReservationsHandler is the owner's view of bookings on one
// resource.
func (h *ReservationHandler) ListResourceReservationsHandler(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := models.Status(c.Query("status"))

	items, err := h.Reservations.ListByResource(c.Request.Context(), c.Param("resourceId"), status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reservations": items,
		"pagination":   gin.H{"page": page, "limit": limit},
	})
}

// AvailabilityHandler returns remaining capacity for a resource over a
// date range.
func (h *ReservationHandler) AvailabilityHandler(c *gin.Context) {
	iv, err := models.NewInterval(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	remaining, err := h.Engine.RemainingCapacity(c.Request.Context(), c.Param("resourceId"), iv)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resource_id": c.Param("resourceId"), "remaining": remaining})
}

// QuoteHandler returns the pricing breakdown a booking would be quoted at
// right now, without reserving anything.
func (h *ReservationHandler) QuoteHandler(c *gin.Context) {
	resource, err := h.Resources.GetByID(c.Request.Context(), c.Param("resourceId"))
	if err != nil {
		respondError(c, err)
		return
	}

	date, err := time.Parse(models.DateLayout, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing date"})
		return
	}
	partySize, _ := strconv.Atoi(c.DefaultQuery("party_size", "1"))
	durationUnits, _ := strconv.Atoi(c.DefaultQuery("duration_units", "1"))

	breakdown := reservation.Breakdown(resource.BaseRate, date, partySize, durationUnits, resource.VehicleRate)
	c.JSON(http.StatusOK, gin.H{"breakdown": breakdown})
}

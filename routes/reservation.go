package routes

import (
	"github.com/gin-gonic/gin"

	"tourspot/handlers"
)

// RegisterReservationRoutes registers all endpoints for the reservation engine.
func RegisterReservationRoutes(r *gin.Engine, h *handlers.ReservationHandler, sh *handlers.StatsHandler) {
	reservations := r.Group("/api/reservations")
	{
		reservations.POST("", h.CreateReservationHandler)
		reservations.GET("/mine", h.ListMyReservationsHandler)
		reservations.GET("/:id", h.GetReservationHandler)
		reservations.POST("/:id/transition", h.TransitionHandler)
	}

	resources := r.Group("/api/resources")
	{
		resources.GET("/:resourceId/availability", h.AvailabilityHandler)
		resources.GET("/:resourceId/quote", h.QuoteHandler)
		resources.GET("/:resourceId/reservations", h.ListResourceReservationsHandler)
		resources.GET("/:resourceId/stats", sh.ResourceStatsHandler)
	}
}

package routes

import (
	"github.com/gin-gonic/gin"

	"tourspot/handlers"
)

// RegisterReviewRoutes registers all review endpoints.
func RegisterReviewRoutes(r *gin.Engine, h *handlers.ReviewHandler) {
	reviews := r.Group("/api/reviews")
	{
		reviews.POST("", h.CreateReviewHandler)
		reviews.GET("/resource/:resourceId", h.ListReviewsHandler)
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tourspot/services/stats"
)

// StatsHandler exposes the owner dashboard summary.
type StatsHandler struct {
	Stats *stats.Service
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(svc *stats.Service) *StatsHandler {
	return &StatsHandler{Stats: svc}
}

// ResourceStatsHandler returns reservation counts and completed revenue
// for a resource.
func (h *StatsHandler) ResourceStatsHandler(c *gin.Context) {
	summary, err := h.Stats.ResourceStats(c.Request.Context(), c.Param("resourceId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": summary})
}

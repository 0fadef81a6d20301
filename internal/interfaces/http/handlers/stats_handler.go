package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"astraldraw.backend/internal/interfaces/http/response"
	"astraldraw.backend/internal/usecases"
)

// StatsHandler handles platform statistics endpoints
type StatsHandler struct {
	statsUsecase *usecases.StatsUsecase
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsUsecase *usecases.StatsUsecase) *StatsHandler {
	return &StatsHandler{statsUsecase: statsUsecase}
}

// GetPlatformStats returns aggregate platform numbers
// GET /api/v1/stats
func (h *StatsHandler) GetPlatformStats(c *gin.Context) {
	stats, err := h.statsUsecase.GetPlatformStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "astraldraw.backend/internal/domain/errors"
	"astraldraw.backend/internal/interfaces/http/middleware"
	"astraldraw.backend/internal/interfaces/http/response"
	"astraldraw.backend/internal/usecases"
)

// AlertHandler handles user alert endpoints
type AlertHandler struct {
	alertUsecase *usecases.AlertUsecase
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alertUsecase *usecases.AlertUsecase) *AlertHandler {
	return &AlertHandler{alertUsecase: alertUsecase}
}

// List returns the caller's alerts
// GET /api/v1/alerts
func (h *AlertHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	limit, offset := parsePagination(c)
	unreadOnly := c.Query("unread") == "true"

	alerts, total, err := h.alertUsecase.List(c.Request.Context(), userID, unreadOnly, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"alerts": alerts,
		"total":  total,
	})
}

// MarkRead marks one alert as read
// POST /api/v1/alerts/:id/read
func (h *AlertHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.alertUsecase.MarkRead(c.Request.Context(), id, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"read": true})
}

// MarkAllRead marks every unread alert as read
// POST /api/v1/alerts/read-all
func (h *AlertHandler) MarkAllRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	if err := h.alertUsecase.MarkAllRead(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"read": true})
}

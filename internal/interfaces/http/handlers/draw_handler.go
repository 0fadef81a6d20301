package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"astraldraw.backend/internal/domain/entities"
	domainerrors "astraldraw.backend/internal/domain/errors"
	"astraldraw.backend/internal/interfaces/http/middleware"
	"astraldraw.backend/internal/interfaces/http/response"
	"astraldraw.backend/internal/usecases"
)

// DrawHandler handles lottery draw endpoints
type DrawHandler struct {
	drawUsecase *usecases.DrawUsecase
}

// NewDrawHandler creates a new draw handler
func NewDrawHandler(drawUsecase *usecases.DrawUsecase) *DrawHandler {
	return &DrawHandler{drawUsecase: drawUsecase}
}

// CreateDraw schedules a new draw (admin only)
// POST /api/v1/draws
func (h *DrawHandler) CreateDraw(c *gin.Context) {
	var input entities.CreateDrawInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	draw, err := h.drawUsecase.CreateDraw(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"draw": draw})
}

// ListDraws lists draws, optionally filtered by status
// GET /api/v1/draws
func (h *DrawHandler) ListDraws(c *gin.Context) {
	limit, offset := parsePagination(c)

	var status *entities.DrawStatus
	if s := c.Query("status"); s != "" {
		ds := entities.DrawStatus(s)
		status = &ds
	}

	draws, total, err := h.drawUsecase.ListDraws(c.Request.Context(), status, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"draws": draws,
		"total": total,
	})
}

// GetActiveDraw returns the currently active draw
// GET /api/v1/draws/active
func (h *DrawHandler) GetActiveDraw(c *gin.Context) {
	draw, err := h.drawUsecase.GetActiveDraw(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"draw": draw})
}

// GetDraw returns a single draw
// GET /api/v1/draws/:id
func (h *DrawHandler) GetDraw(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	draw, err := h.drawUsecase.GetDraw(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"draw": draw})
}

// GetRecentWinners lists the latest draws that paid out
// GET /api/v1/draws/winners
func (h *DrawHandler) GetRecentWinners(c *gin.Context) {
	limit, _ := parsePagination(c)

	draws, err := h.drawUsecase.RecentWinners(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"winners": draws})
}

// ForgeKeys buys a star key entry in a draw
// POST /api/v1/draws/:id/keys
func (h *DrawHandler) ForgeKeys(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	drawID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input entities.ForgeKeysInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	key, err := h.drawUsecase.ForgeKeys(c.Request.Context(), userID, drawID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"key": key})
}

// GetMyKeys lists the caller's forged keys
// GET /api/v1/draws/keys/mine
func (h *DrawHandler) GetMyKeys(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	keys, err := h.drawUsecase.GetMyKeys(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"keys": keys})
}

// ProcessDraw settles a draw (admin only)
// POST /api/v1/draws/:id/process
func (h *DrawHandler) ProcessDraw(c *gin.Context) {
	drawID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.drawUsecase.ProcessDraw(c.Request.Context(), drawID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

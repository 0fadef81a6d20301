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

// VentureHandler handles venture crowdfunding endpoints
type VentureHandler struct {
	ventureUsecase *usecases.VentureUsecase
}

// NewVentureHandler creates a new venture handler
func NewVentureHandler(ventureUsecase *usecases.VentureUsecase) *VentureHandler {
	return &VentureHandler{ventureUsecase: ventureUsecase}
}

// CreateVenture opens a new venture raise
// POST /api/v1/ventures
func (h *VentureHandler) CreateVenture(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	var input entities.CreateVentureInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	venture, err := h.ventureUsecase.CreateVenture(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"venture": venture})
}

// ListVentures lists ventures, optionally filtered by status
// GET /api/v1/ventures
func (h *VentureHandler) ListVentures(c *gin.Context) {
	limit, offset := parsePagination(c)

	var status *entities.VentureStatus
	if s := c.Query("status"); s != "" {
		vs := entities.VentureStatus(s)
		status = &vs
	}

	ventures, total, err := h.ventureUsecase.ListVentures(c.Request.Context(), status, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"ventures": ventures,
		"total":    total,
	})
}

// GetVenture returns a single venture
// GET /api/v1/ventures/:id
func (h *VentureHandler) GetVenture(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	venture, err := h.ventureUsecase.GetVenture(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"venture": venture})
}

// CanBuy checks whether the caller may still buy a ticket
// GET /api/v1/ventures/:id/can-buy
func (h *VentureHandler) CanBuy(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	ventureID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.ventureUsecase.CanBuyTicket(c.Request.Context(), ventureID, userID); err != nil {
		response.Success(c, http.StatusOK, gin.H{
			"canBuy": false,
			"reason": err.Error(),
		})
		return
	}

	response.Success(c, http.StatusOK, gin.H{"canBuy": true})
}

// PurchaseTicket buys the caller's equity ticket in a venture
// POST /api/v1/ventures/:id/tickets
func (h *VentureHandler) PurchaseTicket(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	ventureID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	resp, err := h.ventureUsecase.PurchaseTicket(c.Request.Context(), ventureID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// GetCapTable returns the venture's ownership table
// GET /api/v1/ventures/:id/cap-table
func (h *VentureHandler) GetCapTable(c *gin.Context) {
	ventureID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	holdings, err := h.ventureUsecase.GetCapTable(c.Request.Context(), ventureID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"capTable": holdings})
}

// GetMyTickets lists the caller's venture tickets
// GET /api/v1/ventures/tickets/mine
func (h *VentureHandler) GetMyTickets(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	tickets, err := h.ventureUsecase.GetMyTickets(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tickets": tickets})
}

// GetMyHoldings lists the caller's equity across ventures
// GET /api/v1/ventures/holdings/mine
func (h *VentureHandler) GetMyHoldings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	holdings, err := h.ventureUsecase.GetMyHoldings(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"holdings": holdings})
}

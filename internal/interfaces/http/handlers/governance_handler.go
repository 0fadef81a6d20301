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

// GovernanceHandler handles NFT governance endpoints
type GovernanceHandler struct {
	governanceUsecase *usecases.GovernanceUsecase
}

// NewGovernanceHandler creates a new governance handler
func NewGovernanceHandler(governanceUsecase *usecases.GovernanceUsecase) *GovernanceHandler {
	return &GovernanceHandler{governanceUsecase: governanceUsecase}
}

// PurchaseNFT mints a governance NFT for the caller
// POST /api/v1/governance/nfts
func (h *GovernanceHandler) PurchaseNFT(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	var input struct {
		Tier string `json:"tier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	nft, err := h.governanceUsecase.PurchaseNFT(c.Request.Context(), userID, input.Tier)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"nft": nft})
}

// MyNFTs lists the caller's governance NFTs
// GET /api/v1/governance/nfts/mine
func (h *GovernanceHandler) MyNFTs(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	nfts, err := h.governanceUsecase.MyNFTs(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"nfts": nfts})
}

// MyVotingPower returns the caller's aggregate voting power
// GET /api/v1/governance/voting-power
func (h *GovernanceHandler) MyVotingPower(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	power, err := h.governanceUsecase.VotingPower(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"votingPower": power})
}

// TierAvailability returns remaining supply per tier
// GET /api/v1/governance/tiers
func (h *GovernanceHandler) TierAvailability(c *gin.Context) {
	availability, err := h.governanceUsecase.TierAvailability(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tiers": availability})
}

// ListTopics lists the governance topics
// GET /api/v1/governance/topics
func (h *GovernanceHandler) ListTopics(c *gin.Context) {
	topics, err := h.governanceUsecase.ListTopics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"topics": topics})
}

// CreateProposal submits a new proposal
// POST /api/v1/governance/proposals
func (h *GovernanceHandler) CreateProposal(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	var input entities.CreateProposalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	proposal, err := h.governanceUsecase.CreateProposal(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"proposal": proposal})
}

// ListProposals lists proposals, optionally filtered by status
// GET /api/v1/governance/proposals
func (h *GovernanceHandler) ListProposals(c *gin.Context) {
	limit, offset := parsePagination(c)

	var status *entities.ProposalStatus
	if s := c.Query("status"); s != "" {
		ps := entities.ProposalStatus(s)
		status = &ps
	}

	proposals, total, err := h.governanceUsecase.ListProposals(c.Request.Context(), status, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"proposals": proposals,
		"total":     total,
	})
}

// GetProposal returns a single proposal
// GET /api/v1/governance/proposals/:id
func (h *GovernanceHandler) GetProposal(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	proposal, err := h.governanceUsecase.GetProposal(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"proposal": proposal})
}

// CastVote records the caller's vote on a proposal
// POST /api/v1/governance/proposals/:id/votes
func (h *GovernanceHandler) CastVote(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	proposalID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input entities.CastVoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	vote, err := h.governanceUsecase.CastVote(c.Request.Context(), userID, proposalID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"vote": vote})
}

// GetResults returns the weighted tally for a proposal
// GET /api/v1/governance/proposals/:id/results
func (h *GovernanceHandler) GetResults(c *gin.Context) {
	proposalID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	results, err := h.governanceUsecase.GetResults(c.Request.Context(), proposalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, results)
}

// ListNFT puts one of the caller's NFTs up for sale
// POST /api/v1/governance/nfts/:id/list
func (h *GovernanceHandler) ListNFT(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	nftID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input entities.ListNFTInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	listing, err := h.governanceUsecase.ListNFT(c.Request.Context(), userID, nftID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"listing": listing})
}

// ListOpenListings lists NFTs currently for sale
// GET /api/v1/governance/marketplace
func (h *GovernanceHandler) ListOpenListings(c *gin.Context) {
	limit, offset := parsePagination(c)

	listings, total, err := h.governanceUsecase.ListOpenListings(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"listings": listings,
		"total":    total,
	})
}

// BuyListing buys a listed NFT
// POST /api/v1/governance/marketplace/:id/buy
func (h *GovernanceHandler) BuyListing(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	listingID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	listing, err := h.governanceUsecase.BuyListing(c.Request.Context(), userID, listingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"listing": listing})
}

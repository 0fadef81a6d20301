package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"astraldraw.backend/internal/domain/entities"
	domainerrors "astraldraw.backend/internal/domain/errors"
	"astraldraw.backend/internal/infrastructure/models"
)

// GovernanceNFTRepository implements governance NFT data operations
type GovernanceNFTRepository struct {
	db *gorm.DB
}

// NewGovernanceNFTRepository creates a new governance NFT repository
func NewGovernanceNFTRepository(db *gorm.DB) *GovernanceNFTRepository {
	return &GovernanceNFTRepository{db: db}
}

// Create creates a governance NFT record
func (r *GovernanceNFTRepository) Create(ctx context.Context, nft *entities.GovernanceNFT) error {
	m := &models.GovernanceNFT{
		ID:           nft.ID,
		UserID:       nft.UserID,
		Tier:         nft.Tier,
		NFTID:        nft.NFTID,
		SerialNumber: nft.SerialNumber,
		TokenID:      nft.TokenID,
		VotingPower:  nft.VotingPower,
		IsActive:     nft.IsActive,
		AcquiredAt:   nft.AcquiredAt,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a governance NFT by ID
func (r *GovernanceNFTRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.GovernanceNFT, error) {
	var m models.GovernanceNFT
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return nftToEntity(&m), nil
}

// GetActiveByUserID lists a user's active governance NFTs
func (r *GovernanceNFTRepository) GetActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.GovernanceNFT, error) {
	var nftModels []models.GovernanceNFT
	err := GetDB(ctx, r.db).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("acquired_at ASC").
		Find(&nftModels).Error
	if err != nil {
		return nil, err
	}

	nfts := make([]*entities.GovernanceNFT, 0, len(nftModels))
	for i := range nftModels {
		nfts = append(nfts, nftToEntity(&nftModels[i]))
	}
	return nfts, nil
}

// CountByTier counts minted NFTs in a tier, sold or held
func (r *GovernanceNFTRepository) CountByTier(ctx context.Context, tier string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.GovernanceNFT{}).
		Where("tier = ?", tier).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Update updates holder and active flag, used on marketplace transfers
func (r *GovernanceNFTRepository) Update(ctx context.Context, nft *entities.GovernanceNFT) error {
	updates := map[string]interface{}{
		"user_id":    nft.UserID,
		"is_active":  nft.IsActive,
		"updated_at": time.Now(),
	}

	result := GetDB(ctx, r.db).Model(&models.GovernanceNFT{}).Where("id = ?", nft.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func nftToEntity(m *models.GovernanceNFT) *entities.GovernanceNFT {
	return &entities.GovernanceNFT{
		ID:           m.ID,
		UserID:       m.UserID,
		Tier:         m.Tier,
		NFTID:        m.NFTID,
		SerialNumber: m.SerialNumber,
		TokenID:      m.TokenID,
		VotingPower:  m.VotingPower,
		IsActive:     m.IsActive,
		AcquiredAt:   m.AcquiredAt,
	}
}

// GovernanceTopicRepository implements topic data operations
type GovernanceTopicRepository struct {
	db *gorm.DB
}

// NewGovernanceTopicRepository creates a new topic repository
func NewGovernanceTopicRepository(db *gorm.DB) *GovernanceTopicRepository {
	return &GovernanceTopicRepository{db: db}
}

// Create creates a topic
func (r *GovernanceTopicRepository) Create(ctx context.Context, topic *entities.GovernanceTopic) error {
	m := &models.GovernanceTopic{
		ID:          topic.ID,
		TopicID:     topic.TopicID,
		Name:        topic.Name,
		Description: topic.Description,
		IsActive:    topic.IsActive,
		CreatedAt:   topic.CreatedAt,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a topic by ID
func (r *GovernanceTopicRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.GovernanceTopic, error) {
	var m models.GovernanceTopic
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return topicToEntity(&m), nil
}

// ListActive lists active topics
func (r *GovernanceTopicRepository) ListActive(ctx context.Context) ([]*entities.GovernanceTopic, error) {
	var topicModels []models.GovernanceTopic
	err := GetDB(ctx, r.db).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&topicModels).Error
	if err != nil {
		return nil, err
	}

	topics := make([]*entities.GovernanceTopic, 0, len(topicModels))
	for i := range topicModels {
		topics = append(topics, topicToEntity(&topicModels[i]))
	}
	return topics, nil
}

func topicToEntity(m *models.GovernanceTopic) *entities.GovernanceTopic {
	return &entities.GovernanceTopic{
		ID:          m.ID,
		TopicID:     m.TopicID,
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
	}
}

// ProposalRepository implements proposal data operations
type ProposalRepository struct {
	db *gorm.DB
}

// NewProposalRepository creates a new proposal repository
func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create creates a proposal
func (r *ProposalRepository) Create(ctx context.Context, proposal *entities.GovernanceProposal) error {
	m := &models.GovernanceProposal{
		ID:                    proposal.ID,
		TopicID:               proposal.TopicID,
		CreatorID:             proposal.CreatorID,
		Title:                 proposal.Title,
		Description:           proposal.Description,
		VotingStart:           proposal.VotingStart,
		VotingEnd:             proposal.VotingEnd,
		Status:                string(proposal.Status),
		MinApprovalPercentage: proposal.MinApprovalPercentage,
		LedgerMessageID:       proposal.LedgerMessageID,
		CreatedAt:             proposal.CreatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// GetByID gets a proposal by ID
func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.GovernanceProposal, error) {
	var m models.GovernanceProposal
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return proposalToEntity(&m), nil
}

// List lists proposals, newest first, optionally filtered by status
func (r *ProposalRepository) List(ctx context.Context, status *entities.ProposalStatus, limit, offset int) ([]*entities.GovernanceProposal, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.GovernanceProposal{})
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var proposalModels []models.GovernanceProposal
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&proposalModels).Error; err != nil {
		return nil, 0, err
	}

	proposals := make([]*entities.GovernanceProposal, 0, len(proposalModels))
	for i := range proposalModels {
		proposals = append(proposals, proposalToEntity(&proposalModels[i]))
	}
	return proposals, total, nil
}

// Update updates proposal status and ledger reference
func (r *ProposalRepository) Update(ctx context.Context, proposal *entities.GovernanceProposal) error {
	updates := map[string]interface{}{
		"status":            string(proposal.Status),
		"voting_end":        proposal.VotingEnd,
		"ledger_message_id": proposal.LedgerMessageID,
		"updated_at":        time.Now(),
	}

	result := GetDB(ctx, r.db).Model(&models.GovernanceProposal{}).Where("id = ?", proposal.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Delete removes a proposal; compensating action when the ledger
// submission behind it failed.
func (r *ProposalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Unscoped().Delete(&models.GovernanceProposal{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func proposalToEntity(m *models.GovernanceProposal) *entities.GovernanceProposal {
	return &entities.GovernanceProposal{
		ID:                    m.ID,
		TopicID:               m.TopicID,
		CreatorID:             m.CreatorID,
		Title:                 m.Title,
		Description:           m.Description,
		VotingStart:           m.VotingStart,
		VotingEnd:             m.VotingEnd,
		Status:                entities.ProposalStatus(m.Status),
		MinApprovalPercentage: m.MinApprovalPercentage,
		LedgerMessageID:       m.LedgerMessageID,
		CreatedAt:             m.CreatedAt,
	}
}

// VoteRepository implements vote data operations
type VoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Create creates a vote; the (proposal, voter) unique index enforces
// at most one vote per voter per proposal.
func (r *VoteRepository) Create(ctx context.Context, vote *entities.Vote) error {
	m := &models.Vote{
		ID:          vote.ID,
		ProposalID:  vote.ProposalID,
		VoterID:     vote.VoterID,
		Choice:      vote.Choice,
		VotingPower: vote.VotingPower,
		LedgerTxID:  vote.LedgerTxID,
		VotedAt:     vote.VotedAt,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyVoted
		}
		return err
	}
	return nil
}

// GetByProposalAndVoter gets a voter's vote on a proposal
func (r *VoteRepository) GetByProposalAndVoter(ctx context.Context, proposalID, voterID uuid.UUID) (*entities.Vote, error) {
	var m models.Vote
	err := GetDB(ctx, r.db).
		Where("proposal_id = ? AND voter_id = ?", proposalID, voterID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return voteToEntity(&m), nil
}

// GetByProposalID lists all votes on a proposal
func (r *VoteRepository) GetByProposalID(ctx context.Context, proposalID uuid.UUID) ([]*entities.Vote, error) {
	var voteModels []models.Vote
	err := GetDB(ctx, r.db).
		Where("proposal_id = ?", proposalID).
		Order("voted_at ASC").
		Find(&voteModels).Error
	if err != nil {
		return nil, err
	}

	votes := make([]*entities.Vote, 0, len(voteModels))
	for i := range voteModels {
		votes = append(votes, voteToEntity(&voteModels[i]))
	}
	return votes, nil
}

// Delete removes a vote; compensating action when the ledger submission
// behind it failed.
func (r *VoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Delete(&models.Vote{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func voteToEntity(m *models.Vote) *entities.Vote {
	return &entities.Vote{
		ID:          m.ID,
		ProposalID:  m.ProposalID,
		VoterID:     m.VoterID,
		Choice:      m.Choice,
		VotingPower: m.VotingPower,
		LedgerTxID:  m.LedgerTxID,
		VotedAt:     m.VotedAt,
	}
}

// NFTListingRepository implements marketplace listing data operations
type NFTListingRepository struct {
	db *gorm.DB
}

// NewNFTListingRepository creates a new listing repository
func NewNFTListingRepository(db *gorm.DB) *NFTListingRepository {
	return &NFTListingRepository{db: db}
}

// Create creates a listing
func (r *NFTListingRepository) Create(ctx context.Context, listing *entities.NFTListing) error {
	m := &models.NFTListing{
		ID:       listing.ID,
		NFTID:    listing.NFTID,
		SellerID: listing.SellerID,
		Price:    listing.Price,
		IsSold:   listing.IsSold,
		BuyerID:  listing.BuyerID,
		ListedAt: listing.ListedAt,
		SoldAt:   listing.SoldAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// GetByID gets a listing by ID
func (r *NFTListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.NFTListing, error) {
	var m models.NFTListing
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return listingToEntity(&m), nil
}

// GetOpenByNFTID gets the unsold listing for an NFT, if any
func (r *NFTListingRepository) GetOpenByNFTID(ctx context.Context, nftID uuid.UUID) (*entities.NFTListing, error) {
	var m models.NFTListing
	err := GetDB(ctx, r.db).
		Where("nft_id = ? AND is_sold = ?", nftID, false).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return listingToEntity(&m), nil
}

// ListOpen lists unsold listings, newest first
func (r *NFTListingRepository) ListOpen(ctx context.Context, limit, offset int) ([]*entities.NFTListing, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.NFTListing{}).Where("is_sold = ?", false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listingModels []models.NFTListing
	if err := query.Order("listed_at DESC").Limit(limit).Offset(offset).Find(&listingModels).Error; err != nil {
		return nil, 0, err
	}

	listings := make([]*entities.NFTListing, 0, len(listingModels))
	for i := range listingModels {
		listings = append(listings, listingToEntity(&listingModels[i]))
	}
	return listings, total, nil
}

// Update marks a listing sold
func (r *NFTListingRepository) Update(ctx context.Context, listing *entities.NFTListing) error {
	updates := map[string]interface{}{
		"is_sold":    listing.IsSold,
		"buyer_id":   listing.BuyerID,
		"sold_at":    listing.SoldAt,
		"updated_at": time.Now(),
	}

	result := GetDB(ctx, r.db).Model(&models.NFTListing{}).Where("id = ?", listing.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func listingToEntity(m *models.NFTListing) *entities.NFTListing {
	return &entities.NFTListing{
		ID:       m.ID,
		NFTID:    m.NFTID,
		SellerID: m.SellerID,
		Price:    m.Price,
		IsSold:   m.IsSold,
		BuyerID:  m.BuyerID,
		ListedAt: m.ListedAt,
		SoldAt:   m.SoldAt,
	}
}

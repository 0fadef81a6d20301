package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"astraldraw.backend/internal/domain/entities"
	domainerrors "astraldraw.backend/internal/domain/errors"
	"astraldraw.backend/internal/domain/repositories"
	"astraldraw.backend/internal/infrastructure/ledger"
	"astraldraw.backend/pkg/logger"
	"astraldraw.backend/pkg/redis"
	"astraldraw.backend/pkg/utils"
)

// GovernanceUsecase handles NFT-weighted proposals, voting and the
// membership marketplace.
type GovernanceUsecase struct {
	nftRepo      repositories.GovernanceNFTRepository
	topicRepo    repositories.GovernanceTopicRepository
	proposalRepo repositories.ProposalRepository
	voteRepo     repositories.VoteRepository
	listingRepo  repositories.NFTListingRepository
	walletRepo   repositories.WalletRepository
	intentRepo   repositories.LedgerIntentRepository
	uow          repositories.UnitOfWork
	gateway      ledger.Gateway
	limiter      *redis.RateLimiter
	tokenID      string
	poolID       string
	tiers        map[string]entities.TierConfig
	votingDur    time.Duration
	minApproval  int
}

// NewGovernanceUsecase creates a new governance usecase
func NewGovernanceUsecase(
	nftRepo repositories.GovernanceNFTRepository,
	topicRepo repositories.GovernanceTopicRepository,
	proposalRepo repositories.ProposalRepository,
	voteRepo repositories.VoteRepository,
	listingRepo repositories.NFTListingRepository,
	walletRepo repositories.WalletRepository,
	intentRepo repositories.LedgerIntentRepository,
	uow repositories.UnitOfWork,
	gateway ledger.Gateway,
	limiter *redis.RateLimiter,
	tokenID, poolID string,
	tiers map[string]entities.TierConfig,
	votingDur time.Duration,
	minApproval int,
) *GovernanceUsecase {
	return &GovernanceUsecase{
		nftRepo:      nftRepo,
		topicRepo:    topicRepo,
		proposalRepo: proposalRepo,
		voteRepo:     voteRepo,
		listingRepo:  listingRepo,
		walletRepo:   walletRepo,
		intentRepo:   intentRepo,
		uow:          uow,
		gateway:      gateway,
		limiter:      limiter,
		tokenID:      tokenID,
		poolID:       poolID,
		tiers:        tiers,
		votingDur:    votingDur,
		minApproval:  minApproval,
	}
}

// VotingPower sums the power of a user's active NFTs
func (u *GovernanceUsecase) VotingPower(ctx context.Context, userID uuid.UUID) (int, error) {
	nfts, err := u.nftRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	power := 0
	for _, nft := range nfts {
		power += nft.VotingPower
	}
	return power, nil
}

// PurchaseNFT mints a tier membership NFT for the buyer
func (u *GovernanceUsecase) PurchaseNFT(ctx context.Context, userID uuid.UUID, tierName string) (*entities.GovernanceNFT, error) {
	if ok, err := u.limiter.Allow(ctx, userID.String(), ActionPurchaseNFT); err != nil {
		return nil, err
	} else if !ok {
		return nil, domainerrors.RateLimited("too many NFT purchases, slow down")
	}

	tier, ok := u.tiers[tierName]
	if !ok {
		return nil, domainerrors.BadRequest("unknown tier")
	}

	// one NFT per user per tier
	owned, err := u.nftRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, nft := range owned {
		if nft.Tier == tierName {
			return nil, domainerrors.NewAppError(409, "you already hold this tier", domainerrors.ErrAlreadyExists)
		}
	}

	minted, err := u.nftRepo.CountByTier(ctx, tierName)
	if err != nil {
		return nil, err
	}
	if minted >= int64(tier.MaxSupply) {
		return nil, domainerrors.NewAppError(409, "tier is sold out", domainerrors.ErrTierSoldOut)
	}

	wallet, err := u.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	nftID := utils.GenerateUUIDv7()
	intent := &entities.LedgerIntent{
		ID:        utils.GenerateUUIDv7(),
		Kind:      entities.IntentNFTPurchase,
		SubjectID: nftID,
		Step:      "created",
		Status:    entities.IntentStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := u.intentRepo.Create(ctx, intent); err != nil {
		return nil, err
	}

	fail := func(step string, cause error) (*entities.GovernanceNFT, error) {
		logger.Error(ctx, "governance NFT purchase failed",
			zap.String("tier", tierName),
			zap.String("step", step),
			zap.Error(cause))
		if markErr := u.intentRepo.MarkFailed(ctx, intent.ID, cause.Error()); markErr != nil {
			logger.Error(ctx, "intent update failed", zap.Error(markErr))
		}
		return nil, domainerrors.NewAppError(502, "purchase could not be completed", domainerrors.ErrLedgerFailure)
	}

	// mint first so a payment is only taken for an NFT that exists
	mint, err := u.gateway.MintNFT(ctx, tier.TokenID, []byte(fmt.Sprintf(`{"tier":"%s"}`, tierName)))
	if err != nil {
		return fail("mint_nft", err)
	}
	if err := u.intentRepo.UpdateStep(ctx, intent.ID, "mint_nft"); err != nil {
		logger.Warn(ctx, "intent step update failed", zap.Error(err))
	}

	if _, err := u.gateway.AssociateToken(ctx, wallet.AccountID, wallet.PrivateKeyEnc, tier.TokenID); err != nil {
		return fail("associate_nft", err)
	}

	if _, err := u.gateway.TransferTokens(ctx, ledger.TransferInput{
		TokenID:       u.tokenID,
		FromAccountID: wallet.AccountID,
		FromKeyEnc:    wallet.PrivateKeyEnc,
		ToAccountID:   u.poolID,
		Amount:        tier.Price,
		Memo:          "governance:" + tierName,
	}); err != nil {
		return fail("payment", err)
	}

	nft := &entities.GovernanceNFT{
		ID:           nftID,
		UserID:       userID,
		Tier:         tierName,
		NFTID:        fmt.Sprintf("%s:%d", tier.TokenID, mint.Serial),
		SerialNumber: mint.Serial,
		TokenID:      tier.TokenID,
		VotingPower:  tier.VotingPower,
		IsActive:     true,
		AcquiredAt:   time.Now(),
	}
	if err := u.nftRepo.Create(ctx, nft); err != nil {
		return nil, err
	}
	if err := u.intentRepo.MarkCompleted(ctx, intent.ID); err != nil {
		logger.Warn(ctx, "intent completion update failed", zap.Error(err))
	}

	logger.Info(ctx, "governance NFT purchased",
		zap.String("user_id", userID.String()),
		zap.String("tier", tierName),
		zap.Int64("serial", mint.Serial))
	return nft, nil
}

// ListTopics lists active governance topics
func (u *GovernanceUsecase) ListTopics(ctx context.Context) ([]*entities.GovernanceTopic, error) {
	return u.topicRepo.ListActive(ctx)
}

// CreateProposal creates a proposal and anchors it on the consensus
// topic. The DB record is deleted if the ledger submission fails.
func (u *GovernanceUsecase) CreateProposal(ctx context.Context, userID uuid.UUID, input *entities.CreateProposalInput) (*entities.GovernanceProposal, error) {
	if ok, err := u.limiter.Allow(ctx, userID.String(), ActionCreateProposal); err != nil {
		return nil, err
	} else if !ok {
		return nil, domainerrors.RateLimited("too many proposals, slow down")
	}

	if l := len(input.Title); l < ProposalTitleMin || l > ProposalTitleMax {
		return nil, domainerrors.BadRequest(fmt.Sprintf("title must be %d-%d characters", ProposalTitleMin, ProposalTitleMax))
	}
	if l := len(input.Description); l < ProposalDescriptionMin || l > ProposalDescriptionMax {
		return nil, domainerrors.BadRequest(fmt.Sprintf("description must be %d-%d characters", ProposalDescriptionMin, ProposalDescriptionMax))
	}

	power, err := u.VotingPower(ctx, userID)
	if err != nil {
		return nil, err
	}
	if power == 0 {
		return nil, domainerrors.NewAppError(403, "a governance NFT is required to propose", domainerrors.ErrNFTRequired)
	}

	topicUUID, err := uuid.Parse(input.TopicID)
	if err != nil {
		return nil, domainerrors.BadRequest("invalid topic id")
	}
	topic, err := u.topicRepo.GetByID(ctx, topicUUID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	proposal := &entities.GovernanceProposal{
		ID:                    utils.GenerateUUIDv7(),
		TopicID:               topic.ID,
		CreatorID:             userID,
		Title:                 input.Title,
		Description:           input.Description,
		VotingStart:           now,
		VotingEnd:             now.Add(u.votingDur),
		Status:                entities.ProposalStatusActive,
		MinApprovalPercentage: u.minApproval,
		CreatedAt:             now,
	}
	if err := u.proposalRepo.Create(ctx, proposal); err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"type":     "proposal_created",
		"proposal": proposal.ID,
		"title":    proposal.Title,
	})
	msg, err := u.gateway.SubmitMessage(ctx, topic.TopicID, payload)
	if err != nil {
		logger.Error(ctx, "proposal anchoring failed", zap.String("proposal_id", proposal.ID.String()), zap.Error(err))
		if delErr := u.proposalRepo.Delete(ctx, proposal.ID); delErr != nil {
			logger.Error(ctx, "proposal compensation failed", zap.Error(delErr))
		}
		return nil, domainerrors.NewAppError(502, "proposal could not be anchored", domainerrors.ErrLedgerFailure)
	}

	proposal.LedgerMessageID = null.StringFrom(fmt.Sprintf("%d", msg.SequenceNumber))
	if err := u.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, err
	}

	logger.Info(ctx, "proposal created",
		zap.String("proposal_id", proposal.ID.String()),
		zap.Int64("sequence", msg.SequenceNumber))
	return proposal, nil
}

// GetProposal returns one proposal with lazily refreshed status
func (u *GovernanceUsecase) GetProposal(ctx context.Context, id uuid.UUID) (*entities.GovernanceProposal, error) {
	proposal, err := u.proposalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.refreshStatus(ctx, proposal)
}

// ListProposals lists proposals
func (u *GovernanceUsecase) ListProposals(ctx context.Context, status *entities.ProposalStatus, limit, offset int) ([]*entities.GovernanceProposal, int64, error) {
	return u.proposalRepo.List(ctx, status, ClampPageSize(limit), offset)
}

// refreshStatus finalizes an active proposal whose window has closed
func (u *GovernanceUsecase) refreshStatus(ctx context.Context, p *entities.GovernanceProposal) (*entities.GovernanceProposal, error) {
	if p.Status != entities.ProposalStatusActive || time.Now().Before(p.VotingEnd) {
		return p, nil
	}

	results, err := u.tally(ctx, p)
	if err != nil {
		return nil, err
	}

	if results.YesPercentage >= float64(p.MinApprovalPercentage) && results.TotalWeight > 0 {
		p.Status = entities.ProposalStatusPassed
	} else {
		p.Status = entities.ProposalStatusRejected
	}
	if err := u.proposalRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CastVote records an NFT-weighted vote and anchors it on the topic.
// The vote row is deleted if the ledger submission fails.
func (u *GovernanceUsecase) CastVote(ctx context.Context, userID, proposalID uuid.UUID, input *entities.CastVoteInput) (*entities.Vote, error) {
	if ok, err := u.limiter.Allow(ctx, userID.String(), ActionCastVote); err != nil {
		return nil, err
	} else if !ok {
		return nil, domainerrors.RateLimited("too many votes, slow down")
	}

	if input.Choice != entities.VoteYes && input.Choice != entities.VoteNo && input.Choice != entities.VoteAbstain {
		return nil, domainerrors.BadRequest("vote must be yes, no or abstain")
	}

	proposal, err := u.proposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !proposal.VotingOpen(time.Now()) {
		return nil, domainerrors.NewAppError(409, "voting is closed", domainerrors.ErrVotingClosed)
	}

	power, err := u.VotingPower(ctx, userID)
	if err != nil {
		return nil, err
	}
	if power == 0 {
		return nil, domainerrors.NewAppError(403, "a governance NFT is required to vote", domainerrors.ErrNFTRequired)
	}

	vote := &entities.Vote{
		ID:          utils.GenerateUUIDv7(),
		ProposalID:  proposalID,
		VoterID:     userID,
		Choice:      input.Choice,
		VotingPower: power,
		VotedAt:     time.Now(),
	}
	if err := u.voteRepo.Create(ctx, vote); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyVoted) {
			return nil, domainerrors.NewAppError(409, "you already voted on this proposal", domainerrors.ErrAlreadyVoted)
		}
		return nil, err
	}

	topic, err := u.topicRepo.GetByID(ctx, proposal.TopicID)
	if err != nil {
		return nil, err
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"type":     "vote_cast",
		"proposal": proposalID,
		"choice":   input.Choice,
		"power":    power,
	})
	msg, err := u.gateway.SubmitMessage(ctx, topic.TopicID, payload)
	if err != nil {
		logger.Error(ctx, "vote anchoring failed", zap.String("vote_id", vote.ID.String()), zap.Error(err))
		if delErr := u.voteRepo.Delete(ctx, vote.ID); delErr != nil {
			logger.Error(ctx, "vote compensation failed", zap.Error(delErr))
		}
		return nil, domainerrors.NewAppError(502, "vote could not be anchored", domainerrors.ErrLedgerFailure)
	}

	vote.LedgerTxID = null.StringFrom(msg.TxID)
	return vote, nil
}

// GetResults tallies a proposal; provisional while voting is open
func (u *GovernanceUsecase) GetResults(ctx context.Context, proposalID uuid.UUID) (*entities.ProposalResults, error) {
	proposal, err := u.proposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	proposal, err = u.refreshStatus(ctx, proposal)
	if err != nil {
		return nil, err
	}
	return u.tally(ctx, proposal)
}

func (u *GovernanceUsecase) tally(ctx context.Context, p *entities.GovernanceProposal) (*entities.ProposalResults, error) {
	votes, err := u.voteRepo.GetByProposalID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	results := &entities.ProposalResults{
		ProposalID:        p.ID,
		Title:             p.Title,
		Status:            p.Status,
		Final:             p.Status != entities.ProposalStatusActive,
		ApprovalThreshold: p.MinApprovalPercentage,
		UniqueVoters:      len(votes),
		VotingEnd:         p.VotingEnd,
	}
	for _, v := range votes {
		results.TotalWeight += v.VotingPower
		switch v.Choice {
		case entities.VoteYes:
			results.YesWeight += v.VotingPower
		case entities.VoteNo:
			results.NoWeight += v.VotingPower
		case entities.VoteAbstain:
			results.AbstainWeight += v.VotingPower
		}
	}
	// abstentions count toward turnout, not toward the threshold
	decisive := results.YesWeight + results.NoWeight
	if decisive > 0 {
		results.YesPercentage = float64(results.YesWeight) / float64(decisive) * 100
	}
	return results, nil
}

// ListNFT puts a membership NFT up for sale
func (u *GovernanceUsecase) ListNFT(ctx context.Context, userID, nftID uuid.UUID, input *entities.ListNFTInput) (*entities.NFTListing, error) {
	price, err := decimal.NewFromString(input.Price)
	if err != nil || !price.IsPositive() {
		return nil, domainerrors.BadRequest("invalid price")
	}

	nft, err := u.nftRepo.GetByID(ctx, nftID)
	if err != nil {
		return nil, err
	}
	if nft.UserID != userID {
		return nil, domainerrors.Forbidden("you do not own this NFT")
	}
	if !nft.IsActive {
		return nil, domainerrors.BadRequest("NFT is not active")
	}

	if _, err := u.listingRepo.GetOpenByNFTID(ctx, nftID); err == nil {
		return nil, domainerrors.NewAppError(409, "NFT is already listed", domainerrors.ErrAlreadyExists)
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	listing := &entities.NFTListing{
		ID:       utils.GenerateUUIDv7(),
		NFTID:    nftID,
		SellerID: userID,
		Price:    price,
		ListedAt: time.Now(),
	}
	if err := u.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// ListOpenListings lists NFTs currently for sale
func (u *GovernanceUsecase) ListOpenListings(ctx context.Context, limit, offset int) ([]*entities.NFTListing, int64, error) {
	return u.listingRepo.ListOpen(ctx, ClampPageSize(limit), offset)
}

// BuyListing transfers a listed NFT to the buyer: pay the seller, move
// the NFT, flip the holder record, close the listing.
func (u *GovernanceUsecase) BuyListing(ctx context.Context, buyerID, listingID uuid.UUID) (*entities.NFTListing, error) {
	listing, err := u.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.IsSold {
		return nil, domainerrors.NewAppError(409, "listing already sold", domainerrors.ErrAlreadyExists)
	}
	if listing.SellerID == buyerID {
		return nil, domainerrors.BadRequest("cannot buy your own listing")
	}

	nft, err := u.nftRepo.GetByID(ctx, listing.NFTID)
	if err != nil {
		return nil, err
	}

	buyerWallet, err := u.walletRepo.GetByUserID(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	sellerWallet, err := u.walletRepo.GetByUserID(ctx, listing.SellerID)
	if err != nil {
		return nil, err
	}

	if _, err := u.gateway.TransferTokens(ctx, ledger.TransferInput{
		TokenID:       u.tokenID,
		FromAccountID: buyerWallet.AccountID,
		FromKeyEnc:    buyerWallet.PrivateKeyEnc,
		ToAccountID:   sellerWallet.AccountID,
		Amount:        listing.Price.IntPart(),
		Memo:          "nft_sale:" + listing.ID.String(),
	}); err != nil {
		logger.Error(ctx, "listing payment failed", zap.Error(err))
		return nil, domainerrors.NewAppError(502, "payment failed", domainerrors.ErrLedgerFailure)
	}

	if _, err := u.gateway.TransferNFT(ctx, ledger.NFTTransferInput{
		TokenID:       nft.TokenID,
		Serial:        nft.SerialNumber,
		FromAccountID: sellerWallet.AccountID,
		ToAccountID:   buyerWallet.AccountID,
	}); err != nil {
		logger.Error(ctx, "listing NFT transfer failed", zap.Error(err))
		return nil, domainerrors.NewAppError(502, "NFT transfer failed", domainerrors.ErrLedgerFailure)
	}

	now := time.Now()
	err = u.uow.Do(ctx, func(ctx context.Context) error {
		nft.UserID = buyerID
		if err := u.nftRepo.Update(ctx, nft); err != nil {
			return err
		}

		listing.IsSold = true
		listing.BuyerID = &buyerID
		listing.SoldAt = null.TimeFrom(now)
		return u.listingRepo.Update(ctx, listing)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "listing sold",
		zap.String("listing_id", listing.ID.String()),
		zap.String("buyer_id", buyerID.String()))
	return listing, nil
}

// MyNFTs lists the caller's active governance NFTs
func (u *GovernanceUsecase) MyNFTs(ctx context.Context, userID uuid.UUID) ([]*entities.GovernanceNFT, error) {
	return u.nftRepo.GetActiveByUserID(ctx, userID)
}

// TierAvailability reports remaining supply per tier
func (u *GovernanceUsecase) TierAvailability(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(u.tiers))
	for name, tier := range u.tiers {
		minted, err := u.nftRepo.CountByTier(ctx, name)
		if err != nil {
			return nil, err
		}
		remaining := int64(tier.MaxSupply) - minted
		if remaining < 0 {
			remaining = 0
		}
		out[name] = remaining
	}
	return out, nil
}

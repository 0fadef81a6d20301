package repositories

import (
	"context"

	"github.com/google/uuid"
	"astraldraw.backend/internal/domain/entities"
)

// GovernanceNFTRepository defines governance NFT data operations
type GovernanceNFTRepository interface {
	Create(ctx context.Context, nft *entities.GovernanceNFT) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.GovernanceNFT, error)
	GetActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.GovernanceNFT, error)
	CountByTier(ctx context.Context, tier string) (int64, error)
	Update(ctx context.Context, nft *entities.GovernanceNFT) error
}

// GovernanceTopicRepository defines topic data operations
type GovernanceTopicRepository interface {
	Create(ctx context.Context, topic *entities.GovernanceTopic) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.GovernanceTopic, error)
	ListActive(ctx context.Context) ([]*entities.GovernanceTopic, error)
}

// ProposalRepository defines proposal data operations
type ProposalRepository interface {
	Create(ctx context.Context, proposal *entities.GovernanceProposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.GovernanceProposal, error)
	List(ctx context.Context, status *entities.ProposalStatus, limit, offset int) ([]*entities.GovernanceProposal, int64, error)
	Update(ctx context.Context, proposal *entities.GovernanceProposal) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// VoteRepository defines vote data operations
type VoteRepository interface {
	Create(ctx context.Context, vote *entities.Vote) error
	GetByProposalAndVoter(ctx context.Context, proposalID, voterID uuid.UUID) (*entities.Vote, error)
	GetByProposalID(ctx context.Context, proposalID uuid.UUID) ([]*entities.Vote, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NFTListingRepository defines marketplace listing data operations
type NFTListingRepository interface {
	Create(ctx context.Context, listing *entities.NFTListing) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.NFTListing, error)
	GetOpenByNFTID(ctx context.Context, nftID uuid.UUID) (*entities.NFTListing, error)
	ListOpen(ctx context.Context, limit, offset int) ([]*entities.NFTListing, int64, error)
	Update(ctx context.Context, listing *entities.NFTListing) error
}

package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// Governance NFT tiers
const (
	TierCelestial = "celestial"
	TierStellar   = "stellar"
	TierCosmic    = "cosmic"
)

// TierConfig fixes price, supply and voting power for one tier.
// These are configuration constants, not editable data.
type TierConfig struct {
	Name        string
	Price       int64
	VotingPower int
	MaxSupply   int
	TokenID     string
}

// ProposalStatus is the lifecycle state of a governance proposal
type ProposalStatus string

const (
	ProposalStatusDraft       ProposalStatus = "draft"
	ProposalStatusActive      ProposalStatus = "active"
	ProposalStatusPassed      ProposalStatus = "passed"
	ProposalStatusRejected    ProposalStatus = "rejected"
	ProposalStatusImplemented ProposalStatus = "implemented"
)

// Vote choices
const (
	VoteYes     = "yes"
	VoteNo      = "no"
	VoteAbstain = "abstain"
)

// GovernanceNFT is a tiered membership token granting voting power
type GovernanceNFT struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	Tier         string    `json:"tier"`
	NFTID        string    `json:"nftId"`
	SerialNumber int64     `json:"serialNumber"`
	TokenID      string    `json:"tokenId"`
	VotingPower  int       `json:"votingPower"`
	IsActive     bool      `json:"isActive"`
	AcquiredAt   time.Time `json:"acquiredAt"`
}

// GovernanceTopic is a consensus-service topic proposals are keyed by
type GovernanceTopic struct {
	ID          uuid.UUID `json:"id"`
	TopicID     string    `json:"topicId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GovernanceProposal is a proposal with a voting window and threshold
type GovernanceProposal struct {
	ID                    uuid.UUID      `json:"id"`
	TopicID               uuid.UUID      `json:"topicId"`
	CreatorID             uuid.UUID      `json:"creatorId"`
	Title                 string         `json:"title"`
	Description           string         `json:"description"`
	VotingStart           time.Time      `json:"votingStart"`
	VotingEnd             time.Time      `json:"votingEnd"`
	Status                ProposalStatus `json:"status"`
	MinApprovalPercentage int            `json:"minApprovalPercentage"`
	LedgerMessageID       null.String    `json:"ledgerMessageId,omitempty"`
	CreatedAt             time.Time      `json:"createdAt"`

	Topic   *GovernanceTopic `json:"topic,omitempty"`
	Creator *User            `json:"creator,omitempty"`
}

// VotingOpen reports whether the proposal accepts votes at now
func (p *GovernanceProposal) VotingOpen(now time.Time) bool {
	return p.Status == ProposalStatusActive && now.Before(p.VotingEnd)
}

// Vote binds one voter to one proposal with power snapshotted at cast time
type Vote struct {
	ID          uuid.UUID   `json:"id"`
	ProposalID  uuid.UUID   `json:"proposalId"`
	VoterID     uuid.UUID   `json:"voterId"`
	Choice      string      `json:"choice"`
	VotingPower int         `json:"votingPower"`
	LedgerTxID  null.String `json:"ledgerTxId,omitempty"`
	VotedAt     time.Time   `json:"votedAt"`
}

// NFTListing is a marketplace resale listing for a governance NFT
type NFTListing struct {
	ID       uuid.UUID       `json:"id"`
	NFTID    uuid.UUID       `json:"nftId"`
	SellerID uuid.UUID       `json:"sellerId"`
	Price    decimal.Decimal `json:"price"`
	IsSold   bool            `json:"isSold"`
	BuyerID  *uuid.UUID      `json:"buyerId,omitempty"`
	ListedAt time.Time       `json:"listedAt"`
	SoldAt   null.Time       `json:"soldAt,omitempty"`

	NFT *GovernanceNFT `json:"nft,omitempty"`
}

// CreateProposalInput represents input for creating a proposal
type CreateProposalInput struct {
	TopicID     string `json:"topicId" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// CastVoteInput represents input for voting
type CastVoteInput struct {
	Choice string `json:"vote" binding:"required"`
}

// ListNFTInput represents input for a marketplace listing
type ListNFTInput struct {
	Price string `json:"price" binding:"required"`
}

// ProposalResults summarizes weighted voting on a proposal.
// Final is false while the voting window is still open; status is
// provisional until then.
type ProposalResults struct {
	ProposalID        uuid.UUID      `json:"proposalId"`
	Title             string         `json:"title"`
	Status            ProposalStatus `json:"status"`
	Final             bool           `json:"final"`
	TotalWeight       int            `json:"totalWeight"`
	YesWeight         int            `json:"yesWeight"`
	NoWeight          int            `json:"noWeight"`
	AbstainWeight     int            `json:"abstainWeight"`
	YesPercentage     float64        `json:"yesPercentage"`
	ApprovalThreshold int            `json:"approvalThreshold"`
	UniqueVoters      int            `json:"uniqueVoters"`
	VotingEnd         time.Time      `json:"votingEnd"`
}

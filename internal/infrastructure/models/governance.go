package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

type GovernanceNFT struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Tier         string    `gorm:"type:varchar(20);not null;index"`
	NFTID        string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	SerialNumber int64     `gorm:"not null"`
	TokenID      string    `gorm:"type:varchar(100);not null"`
	VotingPower  int       `gorm:"not null"`
	IsActive     bool      `gorm:"not null;default:true"`
	AcquiredAt   time.Time `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type GovernanceTopic struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TopicID     string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type GovernanceProposal struct {
	ID                    uuid.UUID   `gorm:"type:uuid;primaryKey"`
	TopicID               uuid.UUID   `gorm:"type:uuid;not null;index"`
	CreatorID             uuid.UUID   `gorm:"type:uuid;not null;index"`
	Title                 string      `gorm:"type:varchar(200);not null"`
	Description           string      `gorm:"type:text;not null"`
	VotingStart           time.Time   `gorm:"not null"`
	VotingEnd             time.Time   `gorm:"not null;index"`
	Status                string      `gorm:"type:varchar(20);not null;index"`
	MinApprovalPercentage int         `gorm:"not null;default:60"`
	LedgerMessageID       null.String `gorm:"type:varchar(100)"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeletedAt             gorm.DeletedAt `gorm:"index"`

	Topic GovernanceTopic `gorm:"foreignKey:TopicID"`
}

type Vote struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey"`
	ProposalID  uuid.UUID   `gorm:"type:uuid;not null;index;uniqueIndex:idx_proposal_voter"`
	VoterID     uuid.UUID   `gorm:"type:uuid;not null;index;uniqueIndex:idx_proposal_voter"`
	Choice      string      `gorm:"type:varchar(10);not null"`
	VotingPower int         `gorm:"not null"`
	LedgerTxID  null.String `gorm:"type:varchar(100)"`
	VotedAt     time.Time   `gorm:"not null"`
	CreatedAt   time.Time
}

type NFTListing struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	NFTID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Price    decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	IsSold   bool            `gorm:"not null;default:false;index"`
	BuyerID  *uuid.UUID      `gorm:"type:uuid"`
	ListedAt time.Time       `gorm:"not null"`
	SoldAt   null.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	NFT GovernanceNFT `gorm:"foreignKey:NFTID"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

type Venture struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Slug          string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	Description   string          `gorm:"type:text;not null"`
	FounderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	FundingGoal   decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	FundingRaised decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	TicketPrice   decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	MaxTickets    int             `gorm:"not null"`
	TicketsSold   int             `gorm:"not null;default:0"`
	TicketSeq     int             `gorm:"not null;default:0"`
	NFTTokenID    string          `gorm:"type:varchar(100)"`
	FundingStart  time.Time       `gorm:"not null"`
	FundingEnd    time.Time       `gorm:"not null"`
	Status        string          `gorm:"type:varchar(50);not null;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

type VentureTicket struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	VentureID     uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_venture_buyer_live,where:status NOT IN ('failed','cancelled')"`
	BuyerID       uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_venture_buyer_live,where:status NOT IN ('failed','cancelled')"`
	TicketNumber  int             `gorm:"not null"`
	PurchasePrice decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Status        string          `gorm:"type:varchar(50);not null;index"`
	FailedStep    null.String     `gorm:"type:varchar(50)"`
	NFTSerial     null.Int64
	Metadata      string      `gorm:"type:jsonb;default:'{}'"`
	PurchaseHash  null.String `gorm:"type:varchar(255)"`
	PurchasedAt   null.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Venture Venture `gorm:"foreignKey:VentureID"`
}

type VentureOwnership struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	VentureID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	OwnerID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	TicketID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	EquityPercentage decimal.Decimal `gorm:"type:numeric(10,4);not null"`
	InvestmentAmount decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	AcquiredAt       time.Time       `gorm:"not null"`
	CreatedAt        time.Time
}

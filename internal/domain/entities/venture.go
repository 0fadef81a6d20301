package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// VentureStatus is the lifecycle state of a funding campaign
type VentureStatus string

const (
	VentureStatusDraft   VentureStatus = "draft"
	VentureStatusFunding VentureStatus = "funding"
	VentureStatusFunded  VentureStatus = "funded"
	VentureStatusActive  VentureStatus = "active"
	VentureStatusClosed  VentureStatus = "closed"
)

// TicketStatus is the saga state of a venture ticket purchase.
// A ticket moves pending -> minting -> associating -> paying -> purchased,
// or lands in failed/cancelled; terminal states are never revisited.
type TicketStatus string

const (
	TicketStatusPending     TicketStatus = "pending"
	TicketStatusMinting     TicketStatus = "minting"
	TicketStatusAssociating TicketStatus = "associating"
	TicketStatusPaying      TicketStatus = "paying"
	TicketStatusPurchased   TicketStatus = "purchased"
	TicketStatusFailed      TicketStatus = "failed"
	TicketStatusCancelled   TicketStatus = "cancelled"
)

// Venture is a crowd-investment campaign selling NFT-backed equity tickets
type Venture struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	Description   string          `json:"description"`
	FounderID     uuid.UUID       `json:"founderId"`
	FundingGoal   decimal.Decimal `json:"fundingGoal"`
	FundingRaised decimal.Decimal `json:"fundingRaised"`
	TicketPrice   decimal.Decimal `json:"ticketPrice"`
	MaxTickets    int             `json:"maxTickets"`
	TicketsSold   int             `json:"ticketsSold"`
	TicketSeq     int             `json:"-"`
	NFTTokenID    string          `json:"nftTokenId"`
	FundingStart  time.Time       `json:"fundingStart"`
	FundingEnd    time.Time       `json:"fundingEnd"`
	Status        VentureStatus   `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`

	Founder *User `json:"founder,omitempty"`
}

// IsFundingActive reports whether the funding window is open at now
func (v *Venture) IsFundingActive(now time.Time) bool {
	return v.Status == VentureStatusFunding &&
		!now.Before(v.FundingStart) && now.Before(v.FundingEnd)
}

// TicketsAvailable reports whether tickets remain
func (v *Venture) TicketsAvailable() bool {
	return v.TicketsSold < v.MaxTickets
}

// EquityPerTicket returns the equity percentage granted per ticket
func (v *Venture) EquityPerTicket() decimal.Decimal {
	if v.MaxTickets <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(100).Div(decimal.NewFromInt(int64(v.MaxTickets)))
}

// FundingPercentage returns funding progress as a percentage
func (v *Venture) FundingPercentage() decimal.Decimal {
	if v.FundingGoal.IsZero() {
		return decimal.Zero
	}
	return v.FundingRaised.Div(v.FundingGoal).Mul(decimal.NewFromInt(100))
}

// VentureTicket is one purchased equity slot; one per (venture, buyer)
type VentureTicket struct {
	ID            uuid.UUID       `json:"id"`
	VentureID     uuid.UUID       `json:"ventureId"`
	BuyerID       uuid.UUID       `json:"buyerId"`
	TicketNumber  int             `json:"ticketNumber"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	Status        TicketStatus    `json:"status"`
	FailedStep    null.String     `json:"failedStep,omitempty"`
	NFTSerial     null.Int64      `json:"nftSerial,omitempty"`
	Metadata      string          `json:"metadata,omitempty"`
	PurchaseHash  null.String     `json:"purchaseHash,omitempty"`
	PurchasedAt   null.Time       `json:"purchasedAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	Venture *Venture `json:"venture,omitempty"`
	Buyer   *User    `json:"buyer,omitempty"`
}

// VentureOwnership is the derived equity record behind a purchased ticket
type VentureOwnership struct {
	ID               uuid.UUID       `json:"id"`
	VentureID        uuid.UUID       `json:"ventureId"`
	OwnerID          uuid.UUID       `json:"ownerId"`
	TicketID         uuid.UUID       `json:"ticketId"`
	EquityPercentage decimal.Decimal `json:"equityPercentage"`
	InvestmentAmount decimal.Decimal `json:"investmentAmount"`
	AcquiredAt       time.Time       `json:"acquiredAt"`

	Venture *Venture `json:"venture,omitempty"`
}

// CreateVentureInput represents input for launching a venture
type CreateVentureInput struct {
	Name         string    `json:"name" binding:"required"`
	Slug         string    `json:"slug" binding:"required"`
	Description  string    `json:"description" binding:"required"`
	FundingGoal  string    `json:"fundingGoal" binding:"required"`
	TicketPrice  string    `json:"ticketPrice" binding:"required"`
	MaxTickets   int       `json:"maxTickets" binding:"required,gt=0"`
	FundingStart time.Time `json:"fundingStart" binding:"required"`
	FundingEnd   time.Time `json:"fundingEnd" binding:"required"`
}

// PurchaseTicketResponse is returned after a successful ticket purchase
type PurchaseTicketResponse struct {
	TicketID         uuid.UUID       `json:"ticketId"`
	TicketNumber     int             `json:"ticketNumber"`
	EquityPercentage decimal.Decimal `json:"equityPercentage"`
	NFTSerial        int64           `json:"nftSerial"`
	RemainingTickets int             `json:"remainingTickets"`
}

package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet is the custodial wallet bound one-to-one to a user.
// PrivateKeyEnc is always ciphertext; plaintext keys never reach storage.
type Wallet struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	FiatBalance   decimal.Decimal `json:"fiatBalance"`
	PublicKey     string          `json:"publicKey"`
	PrivateKeyEnc string          `json:"-"`
	AccountID     string          `json:"accountId"`
	CreatedAt     time.Time       `json:"createdAt"`

	User *User `json:"user,omitempty"`
}

// BuyAstraInput represents input for a token top-up
type BuyAstraInput struct {
	Phone  string `json:"phone" binding:"required"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

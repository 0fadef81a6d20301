package entities

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// DrawStatus is the lifecycle state of a lottery round.
// Status only advances: UPCOMING -> ACTIVE -> ENDED.
type DrawStatus string

const (
	DrawStatusUpcoming DrawStatus = "UPCOMING"
	DrawStatusActive   DrawStatus = "ACTIVE"
	DrawStatusEnded    DrawStatus = "ENDED"
)

// StarKeyCount is the number of star keys per draw entry
const StarKeyCount = 6

// Draw is one lottery round
type Draw struct {
	ID                    uuid.UUID       `json:"id"`
	Title                 string          `json:"title"`
	Symbol                string          `json:"symbol"`
	PrizePool             decimal.Decimal `json:"prizePool"`
	DrawAt                time.Time       `json:"drawAt"`
	Status                DrawStatus      `json:"status"`
	TotalTicketsSold      int             `json:"totalTicketsSold"`
	StarKeys              []int           `json:"starKeys,omitempty"`
	CommitHash            null.String     `json:"commitHash,omitempty"`
	RevealSeed            null.String     `json:"-"`
	WinnerWalletID        *uuid.UUID      `json:"winnerWalletId,omitempty"`
	WinningTicketSerial   null.String     `json:"winningTicketSerial,omitempty"`
	TotalPrizeDistributed decimal.Decimal `json:"totalPrizeDistributed"`
	NFTTokenID            string          `json:"nftTokenId"`
	CreatedAt             time.Time       `json:"createdAt"`

	WinnerWallet *Wallet `json:"winnerWallet,omitempty"`
}

// IsActive reports whether the draw accepts new key forgings
func (d *Draw) IsActive() bool {
	return d.Status == DrawStatusActive
}

// ForgedKey is a purchased lottery entry; one per (wallet, draw), immutable
type ForgedKey struct {
	ID           uuid.UUID `json:"id"`
	WalletID     uuid.UUID `json:"walletId"`
	DrawID       uuid.UUID `json:"drawId"`
	SerialNumber string    `json:"serialNumber"`
	StarKeys     []int     `json:"starKeys"`
	NFTSerial    int64     `json:"nftSerial"`
	CreatedAt    time.Time `json:"createdAt"`

	Wallet *Wallet `json:"wallet,omitempty"`
	Draw   *Draw   `json:"draw,omitempty"`
}

// MatchCount returns how many positions match the winning keys
func (k *ForgedKey) MatchCount(winning []int) int {
	n := 0
	for i, v := range k.StarKeys {
		if i < len(winning) && v == winning[i] {
			n++
		}
	}
	return n
}

// ForgedKeySerial builds the deterministic serial for a forged key
func ForgedKeySerial(drawID, walletID uuid.UUID, nftSerial int64) string {
	d := strings.ReplaceAll(drawID.String(), "-", "")[:8]
	w := strings.ReplaceAll(walletID.String(), "-", "")[:8]
	return fmt.Sprintf("AK%s%s%d", strings.ToUpper(d), strings.ToUpper(w), nftSerial)
}

// EncodeStarKeys serializes star keys for storage
func EncodeStarKeys(keys []int) string {
	b, _ := json.Marshal(keys)
	return string(b)
}

// DecodeStarKeys parses star keys from storage; bad data yields nil
func DecodeStarKeys(raw string) []int {
	if raw == "" {
		return nil
	}
	var keys []int
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil
	}
	return keys
}

// CreateDrawInput represents input for launching a draw
type CreateDrawInput struct {
	Title     string    `json:"title" binding:"required"`
	Symbol    string    `json:"symbol" binding:"required"`
	PrizePool string    `json:"prizePool" binding:"required"`
	DrawAt    time.Time `json:"drawAt" binding:"required"`
	Status    string    `json:"status" binding:"required"`
}

// ForgeKeysInput represents input for submitting a draw entry
type ForgeKeysInput struct {
	StarKeys []int `json:"starKeys" binding:"required"`
}

// ProcessDrawResponse is returned after winner resolution
type ProcessDrawResponse struct {
	DrawID      uuid.UUID       `json:"drawId"`
	WinningKeys []int           `json:"winningKeys"`
	Winner      *DrawWinner     `json:"winner,omitempty"`
	PrizeAmount decimal.Decimal `json:"prizeAmount"`
}

// DrawWinner identifies the winning entry
type DrawWinner struct {
	WalletID     uuid.UUID `json:"walletId"`
	SerialNumber string    `json:"serialNumber"`
	MatchCount   int       `json:"matchCount"`
}

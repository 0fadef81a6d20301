package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// IntentStatus is the lifecycle state of a ledger intent
type IntentStatus string

const (
	IntentStatusPending   IntentStatus = "pending"
	IntentStatusCompleted IntentStatus = "completed"
	IntentStatusFailed    IntentStatus = "failed"
)

// Intent kinds
const (
	IntentTicketPurchase = "ticket_purchase"
	IntentKeyForge       = "key_forge"
	IntentNFTPurchase    = "nft_purchase"
	IntentPrizePayout    = "prize_payout"
)

// LedgerIntent records an in-flight multi-step ledger operation so a
// reconciler can resolve records left behind by a crash mid-sequence.
type LedgerIntent struct {
	ID          uuid.UUID    `json:"id"`
	Kind        string       `json:"kind"`
	SubjectID   uuid.UUID    `json:"subjectId"`
	Step        string       `json:"step"`
	Status      IntentStatus `json:"status"`
	LastError   null.String  `json:"lastError,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	CompletedAt null.Time    `json:"completedAt,omitempty"`
}

// Stale reports whether a pending intent is older than the given age
func (i *LedgerIntent) Stale(now time.Time, age time.Duration) bool {
	return i.Status == IntentStatusPending && now.Sub(i.UpdatedAt) > age
}

package entities

import (
	"time"

	"github.com/google/uuid"
)

// Alert categories
const (
	AlertDraw       = "draw"
	AlertWin        = "win"
	AlertVenture    = "venture"
	AlertGovernance = "governance"
	AlertSystem     = "system"
)

// Alert is an in-app notification for a user
type Alert struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"astraldraw.backend/internal/domain/entities"
)

// LedgerIntentRepository defines outbox record operations
type LedgerIntentRepository interface {
	Create(ctx context.Context, intent *entities.LedgerIntent) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.LedgerIntent, error)
	UpdateStep(ctx context.Context, id uuid.UUID, step string) error
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entities.LedgerIntent, error)
}

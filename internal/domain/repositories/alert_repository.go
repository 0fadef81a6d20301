package repositories

import (
	"context"

	"github.com/google/uuid"
	"astraldraw.backend/internal/domain/entities"
)

// AlertRepository defines notification data operations
type AlertRepository interface {
	Create(ctx context.Context, alert *entities.Alert) error
	GetByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entities.Alert, int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

package usecases

import (
	"context"

	"github.com/google/uuid"
	"astraldraw.backend/internal/domain/entities"
	"astraldraw.backend/internal/domain/repositories"
)

// AlertUsecase handles in-app notifications
type AlertUsecase struct {
	alertRepo repositories.AlertRepository
}

// NewAlertUsecase creates a new alert usecase
func NewAlertUsecase(alertRepo repositories.AlertRepository) *AlertUsecase {
	return &AlertUsecase{alertRepo: alertRepo}
}

// List returns the caller's alerts, newest first
func (u *AlertUsecase) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entities.Alert, int64, error) {
	return u.alertRepo.GetByUserID(ctx, userID, unreadOnly, ClampPageSize(limit), offset)
}

// MarkRead marks one alert as read. Scoped to the owner so a user
// cannot touch someone else's alerts.
func (u *AlertUsecase) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return u.alertRepo.MarkRead(ctx, id, userID)
}

// MarkAllRead marks every unread alert of the caller as read
func (u *AlertUsecase) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return u.alertRepo.MarkAllRead(ctx, userID)
}

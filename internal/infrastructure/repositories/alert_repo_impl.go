package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"astraldraw.backend/internal/domain/entities"
	domainerrors "astraldraw.backend/internal/domain/errors"
	"astraldraw.backend/internal/infrastructure/models"
)

// AlertRepository implements notification data operations
type AlertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create creates an alert
func (r *AlertRepository) Create(ctx context.Context, alert *entities.Alert) error {
	m := &models.Alert{
		ID:        alert.ID,
		UserID:    alert.UserID,
		Category:  alert.Category,
		Title:     alert.Title,
		Message:   alert.Message,
		IsRead:    alert.IsRead,
		CreatedAt: alert.CreatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// GetByUserID lists a user's alerts, newest first
func (r *AlertRepository) GetByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entities.Alert, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Alert{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alertModels []models.Alert
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&alertModels).Error; err != nil {
		return nil, 0, err
	}

	alerts := make([]*entities.Alert, 0, len(alertModels))
	for i := range alertModels {
		m := &alertModels[i]
		alerts = append(alerts, &entities.Alert{
			ID:        m.ID,
			UserID:    m.UserID,
			Category:  m.Category,
			Title:     m.Title,
			Message:   m.Message,
			IsRead:    m.IsRead,
			CreatedAt: m.CreatedAt,
		})
	}
	return alerts, total, nil
}

// MarkRead marks one alert read; scoped to the owner
func (r *AlertRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	result := GetDB(ctx, r.db).Model(&models.Alert{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"is_read":    true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread alert of a user read
func (r *AlertRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&models.Alert{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read":    true,
			"updated_at": time.Now(),
		}).Error
}

package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"astraldraw.backend/internal/domain/entities"
	domainerrors "astraldraw.backend/internal/domain/errors"
	"astraldraw.backend/internal/infrastructure/models"
)

// LedgerIntentRepository implements outbox record operations
type LedgerIntentRepository struct {
	db *gorm.DB
}

// NewLedgerIntentRepository creates a new ledger intent repository
func NewLedgerIntentRepository(db *gorm.DB) *LedgerIntentRepository {
	return &LedgerIntentRepository{db: db}
}

// Create creates an intent record
func (r *LedgerIntentRepository) Create(ctx context.Context, intent *entities.LedgerIntent) error {
	m := &models.LedgerIntent{
		ID:        intent.ID,
		Kind:      intent.Kind,
		SubjectID: intent.SubjectID,
		Step:      intent.Step,
		Status:    string(intent.Status),
		CreatedAt: intent.CreatedAt,
		UpdatedAt: intent.UpdatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// GetByID gets an intent by ID
func (r *LedgerIntentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.LedgerIntent, error) {
	var m models.LedgerIntent
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// UpdateStep records the latest completed ledger step
func (r *LedgerIntentRepository) UpdateStep(ctx context.Context, id uuid.UUID, step string) error {
	result := GetDB(ctx, r.db).Model(&models.LedgerIntent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"step":       step,
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

// MarkCompleted finalizes a successful intent
func (r *LedgerIntentRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	result := GetDB(ctx, r.db).Model(&models.LedgerIntent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       string(entities.IntentStatusCompleted),
			"completed_at": null.TimeFrom(now),
			"updated_at":   now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// MarkFailed finalizes a failed intent with the error that stopped it
func (r *LedgerIntentRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	result := GetDB(ctx, r.db).Model(&models.LedgerIntent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(entities.IntentStatusFailed),
			"last_error": null.StringFrom(lastError),
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

// ListStalePending lists pending intents not touched since olderThan
func (r *LedgerIntentRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entities.LedgerIntent, error) {
	var intentModels []models.LedgerIntent
	err := GetDB(ctx, r.db).
		Where("status = ? AND updated_at < ?", string(entities.IntentStatusPending), olderThan).
		Order("updated_at ASC").
		Limit(limit).
		Find(&intentModels).Error
	if err != nil {
		return nil, err
	}

	intents := make([]*entities.LedgerIntent, 0, len(intentModels))
	for i := range intentModels {
		intents = append(intents, r.toEntity(&intentModels[i]))
	}
	return intents, nil
}

func (r *LedgerIntentRepository) toEntity(m *models.LedgerIntent) *entities.LedgerIntent {
	return &entities.LedgerIntent{
		ID:          m.ID,
		Kind:        m.Kind,
		SubjectID:   m.SubjectID,
		Step:        m.Step,
		Status:      entities.IntentStatus(m.Status),
		LastError:   m.LastError,
		CompletedAt: m.CompletedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

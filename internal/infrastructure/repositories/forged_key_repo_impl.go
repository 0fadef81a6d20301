package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"astraldraw.backend/internal/domain/entities"
	domainerrors "astraldraw.backend/internal/domain/errors"
	"astraldraw.backend/internal/infrastructure/models"
)

// ForgedKeyRepository implements forged star key data operations
type ForgedKeyRepository struct {
	db *gorm.DB
}

// NewForgedKeyRepository creates a new forged key repository
func NewForgedKeyRepository(db *gorm.DB) *ForgedKeyRepository {
	return &ForgedKeyRepository{db: db}
}

// Create creates a forged key. The (wallet, draw) unique index makes a
// second entry for the same pair fail with ErrKeysAlreadyForged.
func (r *ForgedKeyRepository) Create(ctx context.Context, key *entities.ForgedKey) error {
	m := r.toModel(key)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrKeysAlreadyForged
		}
		return err
	}
	return nil
}

// GetByID gets a forged key by ID
func (r *ForgedKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.ForgedKey, error) {
	var m models.ForgedKey
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByWalletAndDraw gets the wallet's entry in a draw
func (r *ForgedKeyRepository) GetByWalletAndDraw(ctx context.Context, walletID, drawID uuid.UUID) (*entities.ForgedKey, error) {
	var m models.ForgedKey
	err := GetDB(ctx, r.db).
		Where("wallet_id = ? AND draw_id = ?", walletID, drawID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByDrawID lists all entries in a draw, oldest first.
// Ordering matters for deterministic winner resolution.
func (r *ForgedKeyRepository) GetByDrawID(ctx context.Context, drawID uuid.UUID) ([]*entities.ForgedKey, error) {
	var keyModels []models.ForgedKey
	err := GetDB(ctx, r.db).
		Where("draw_id = ?", drawID).
		Order("created_at ASC, serial_number ASC").
		Find(&keyModels).Error
	if err != nil {
		return nil, err
	}
	return r.toEntities(keyModels), nil
}

// GetByWalletID lists a wallet's entries across draws, newest first
func (r *ForgedKeyRepository) GetByWalletID(ctx context.Context, walletID uuid.UUID) ([]*entities.ForgedKey, error) {
	var keyModels []models.ForgedKey
	err := GetDB(ctx, r.db).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC").
		Find(&keyModels).Error
	if err != nil {
		return nil, err
	}
	return r.toEntities(keyModels), nil
}

// CountByDrawID counts entries in a draw
func (r *ForgedKeyRepository) CountByDrawID(ctx context.Context, drawID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.ForgedKey{}).
		Where("draw_id = ?", drawID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Update updates the ledger serial assigned during forging
func (r *ForgedKeyRepository) Update(ctx context.Context, key *entities.ForgedKey) error {
	updates := map[string]interface{}{
		"nft_serial": key.NFTSerial,
		"updated_at": time.Now(),
	}

	result := GetDB(ctx, r.db).Model(&models.ForgedKey{}).Where("id = ?", key.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Delete removes a forged key; compensating action for a failed forge
func (r *ForgedKeyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Delete(&models.ForgedKey{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *ForgedKeyRepository) toModel(k *entities.ForgedKey) *models.ForgedKey {
	return &models.ForgedKey{
		ID:           k.ID,
		WalletID:     k.WalletID,
		DrawID:       k.DrawID,
		SerialNumber: k.SerialNumber,
		StarKeys:     entities.EncodeStarKeys(k.StarKeys),
		NFTSerial:    k.NFTSerial,
		CreatedAt:    k.CreatedAt,
	}
}

func (r *ForgedKeyRepository) toEntity(m *models.ForgedKey) *entities.ForgedKey {
	return &entities.ForgedKey{
		ID:           m.ID,
		WalletID:     m.WalletID,
		DrawID:       m.DrawID,
		SerialNumber: m.SerialNumber,
		StarKeys:     entities.DecodeStarKeys(m.StarKeys),
		NFTSerial:    m.NFTSerial,
		CreatedAt:    m.CreatedAt,
	}
}

func (r *ForgedKeyRepository) toEntities(ms []models.ForgedKey) []*entities.ForgedKey {
	keys := make([]*entities.ForgedKey, 0, len(ms))
	for i := range ms {
		keys = append(keys, r.toEntity(&ms[i]))
	}
	return keys
}

package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"astraldraw.backend/internal/domain/entities"
	domainerrors "astraldraw.backend/internal/domain/errors"
	"astraldraw.backend/internal/infrastructure/models"
)

// WalletRepository implements custodial wallet data operations
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Create creates a new wallet
func (r *WalletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	m := &models.Wallet{
		ID:            wallet.ID,
		UserID:        wallet.UserID,
		FiatBalance:   wallet.FiatBalance,
		PublicKey:     wallet.PublicKey,
		PrivateKeyEnc: wallet.PrivateKeyEnc,
		AccountID:     wallet.AccountID,
		CreatedAt:     wallet.CreatedAt,
	}

	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a wallet by ID
func (r *WalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	var m models.Wallet
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByUserID gets the wallet belonging to a user
func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	var m models.Wallet
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByAccountID gets a wallet by its ledger account ID
func (r *WalletRepository) GetByAccountID(ctx context.Context, accountID string) (*entities.Wallet, error) {
	var m models.Wallet
	if err := GetDB(ctx, r.db).Where("account_id = ?", accountID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// AdjustFiatBalance applies a signed delta to the fiat balance.
// A negative delta that would take the balance below zero is rejected.
func (r *WalletRepository) AdjustFiatBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	query := GetDB(ctx, r.db).Model(&models.Wallet{}).Where("id = ?", id)
	if delta.IsNegative() {
		query = query.Where("fiat_balance >= ?", delta.Neg())
	}

	result := query.Updates(map[string]interface{}{
		"fiat_balance": gorm.Expr("fiat_balance + ?", delta),
		"updated_at":   time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if delta.IsNegative() {
			return domainerrors.ErrInsufficientBalance
		}
		return domainerrors.ErrNotFound
	}
	return nil
}

// Update updates wallet credentials
func (r *WalletRepository) Update(ctx context.Context, wallet *entities.Wallet) error {
	updates := map[string]interface{}{
		"public_key":      wallet.PublicKey,
		"private_key_enc": wallet.PrivateKeyEnc,
		"account_id":      wallet.AccountID,
		"updated_at":      time.Now(),
	}

	result := GetDB(ctx, r.db).Model(&models.Wallet{}).Where("id = ?", wallet.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *WalletRepository) toEntity(m *models.Wallet) *entities.Wallet {
	return &entities.Wallet{
		ID:            m.ID,
		UserID:        m.UserID,
		FiatBalance:   m.FiatBalance,
		PublicKey:     m.PublicKey,
		PrivateKeyEnc: m.PrivateKeyEnc,
		AccountID:     m.AccountID,
		CreatedAt:     m.CreatedAt,
	}
}

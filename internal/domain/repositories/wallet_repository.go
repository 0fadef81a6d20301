package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"astraldraw.backend/internal/domain/entities"
)

// WalletRepository defines custodial wallet data operations
type WalletRepository interface {
	Create(ctx context.Context, wallet *entities.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)
	GetByAccountID(ctx context.Context, accountID string) (*entities.Wallet, error)
	AdjustFiatBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
	Update(ctx context.Context, wallet *entities.Wallet) error
}

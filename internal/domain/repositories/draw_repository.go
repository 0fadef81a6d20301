package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"astraldraw.backend/internal/domain/entities"
)

// DrawRepository defines draw data operations
type DrawRepository interface {
	Create(ctx context.Context, draw *entities.Draw) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Draw, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Draw, error)
	GetActive(ctx context.Context) (*entities.Draw, error)
	List(ctx context.Context, status *entities.DrawStatus, limit, offset int) ([]*entities.Draw, int64, error)
	ListDue(ctx context.Context, now time.Time) ([]*entities.Draw, error)
	ListRecentWinners(ctx context.Context, limit int) ([]*entities.Draw, error)
	NextUpcoming(ctx context.Context) (*entities.Draw, error)
	Update(ctx context.Context, draw *entities.Draw) error
}

// ForgedKeyRepository defines forged star key data operations
type ForgedKeyRepository interface {
	Create(ctx context.Context, key *entities.ForgedKey) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.ForgedKey, error)
	GetByWalletAndDraw(ctx context.Context, walletID, drawID uuid.UUID) (*entities.ForgedKey, error)
	GetByDrawID(ctx context.Context, drawID uuid.UUID) ([]*entities.ForgedKey, error)
	GetByWalletID(ctx context.Context, walletID uuid.UUID) ([]*entities.ForgedKey, error)
	CountByDrawID(ctx context.Context, drawID uuid.UUID) (int64, error)
	Update(ctx context.Context, key *entities.ForgedKey) error
	Delete(ctx context.Context, id uuid.UUID) error
}

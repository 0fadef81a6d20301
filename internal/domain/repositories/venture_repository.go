package repositories

import (
	"context"

	"github.com/google/uuid"
	"astraldraw.backend/internal/domain/entities"
)

// VentureRepository defines venture data operations
type VentureRepository interface {
	Create(ctx context.Context, venture *entities.Venture) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Venture, error)
	// GetByIDForUpdate locks the venture row for the duration of the
	// surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Venture, error)
	List(ctx context.Context, status *entities.VentureStatus, limit, offset int) ([]*entities.Venture, int64, error)
	Update(ctx context.Context, venture *entities.Venture) error
	// NextTicketNumber increments and returns the venture's ticket
	// sequence. Must run inside a transaction holding the row lock.
	NextTicketNumber(ctx context.Context, ventureID uuid.UUID) (int, error)
}

// VentureTicketRepository defines venture ticket data operations
type VentureTicketRepository interface {
	Create(ctx context.Context, ticket *entities.VentureTicket) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.VentureTicket, error)
	GetByVentureAndBuyer(ctx context.Context, ventureID, buyerID uuid.UUID) (*entities.VentureTicket, error)
	GetByBuyerID(ctx context.Context, buyerID uuid.UUID) ([]*entities.VentureTicket, error)
	GetByVentureID(ctx context.Context, ventureID uuid.UUID) ([]*entities.VentureTicket, error)
	Update(ctx context.Context, ticket *entities.VentureTicket) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TicketStatus) error
	MarkFailed(ctx context.Context, id uuid.UUID, step string) error
}

// VentureOwnershipRepository defines equity record operations
type VentureOwnershipRepository interface {
	Create(ctx context.Context, ownership *entities.VentureOwnership) error
	GetByVentureID(ctx context.Context, ventureID uuid.UUID) ([]*entities.VentureOwnership, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entities.VentureOwnership, error)
}

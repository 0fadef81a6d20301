package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"astraldraw.backend/internal/domain/entities"
	domainerrors "astraldraw.backend/internal/domain/errors"
	"astraldraw.backend/internal/infrastructure/models"
)

// VentureOwnershipRepository implements equity record operations
type VentureOwnershipRepository struct {
	db *gorm.DB
}

// NewVentureOwnershipRepository creates a new ownership repository
func NewVentureOwnershipRepository(db *gorm.DB) *VentureOwnershipRepository {
	return &VentureOwnershipRepository{db: db}
}

// Create creates an ownership record; one per ticket
func (r *VentureOwnershipRepository) Create(ctx context.Context, ownership *entities.VentureOwnership) error {
	m := &models.VentureOwnership{
		ID:               ownership.ID,
		VentureID:        ownership.VentureID,
		OwnerID:          ownership.OwnerID,
		TicketID:         ownership.TicketID,
		EquityPercentage: ownership.EquityPercentage,
		InvestmentAmount: ownership.InvestmentAmount,
		AcquiredAt:       ownership.AcquiredAt,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByVentureID lists the cap table of a venture
func (r *VentureOwnershipRepository) GetByVentureID(ctx context.Context, ventureID uuid.UUID) ([]*entities.VentureOwnership, error) {
	var ownershipModels []models.VentureOwnership
	err := GetDB(ctx, r.db).
		Where("venture_id = ?", ventureID).
		Order("acquired_at ASC").
		Find(&ownershipModels).Error
	if err != nil {
		return nil, err
	}
	return r.toEntities(ownershipModels), nil
}

// GetByOwnerID lists an investor's holdings across ventures
func (r *VentureOwnershipRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entities.VentureOwnership, error) {
	var ownershipModels []models.VentureOwnership
	err := GetDB(ctx, r.db).
		Where("owner_id = ?", ownerID).
		Order("acquired_at DESC").
		Find(&ownershipModels).Error
	if err != nil {
		return nil, err
	}
	return r.toEntities(ownershipModels), nil
}

func (r *VentureOwnershipRepository) toEntities(ms []models.VentureOwnership) []*entities.VentureOwnership {
	records := make([]*entities.VentureOwnership, 0, len(ms))
	for i := range ms {
		m := &ms[i]
		records = append(records, &entities.VentureOwnership{
			ID:               m.ID,
			VentureID:        m.VentureID,
			OwnerID:          m.OwnerID,
			TicketID:         m.TicketID,
			EquityPercentage: m.EquityPercentage,
			InvestmentAmount: m.InvestmentAmount,
			AcquiredAt:       m.AcquiredAt,
		})
	}
	return records
}

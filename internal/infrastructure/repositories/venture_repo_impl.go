package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"astraldraw.backend/internal/domain/entities"
	domainerrors "astraldraw.backend/internal/domain/errors"
	"astraldraw.backend/internal/infrastructure/models"
)

// VentureRepository implements venture data operations
type VentureRepository struct {
	db *gorm.DB
}

// NewVentureRepository creates a new venture repository
func NewVentureRepository(db *gorm.DB) *VentureRepository {
	return &VentureRepository{db: db}
}

// Create creates a new venture
func (r *VentureRepository) Create(ctx context.Context, venture *entities.Venture) error {
	m := r.toModel(venture)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a venture by ID
func (r *VentureRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Venture, error) {
	var m models.Venture
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByIDForUpdate locks the venture row for the surrounding transaction
func (r *VentureRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Venture, error) {
	var m models.Venture
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// List lists ventures, newest first, optionally filtered by status
func (r *VentureRepository) List(ctx context.Context, status *entities.VentureStatus, limit, offset int) ([]*entities.Venture, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Venture{})
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ventureModels []models.Venture
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&ventureModels).Error; err != nil {
		return nil, 0, err
	}

	ventures := make([]*entities.Venture, 0, len(ventureModels))
	for i := range ventureModels {
		ventures = append(ventures, r.toEntity(&ventureModels[i]))
	}
	return ventures, total, nil
}

// Update updates venture progress fields
func (r *VentureRepository) Update(ctx context.Context, venture *entities.Venture) error {
	updates := map[string]interface{}{
		"funding_raised": venture.FundingRaised,
		"tickets_sold":   venture.TicketsSold,
		"nft_token_id":   venture.NFTTokenID,
		"status":         string(venture.Status),
		"updated_at":     time.Now(),
	}

	result := GetDB(ctx, r.db).Model(&models.Venture{}).Where("id = ?", venture.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// NextTicketNumber increments the venture ticket sequence and returns the
// new value. Callers must hold the venture row lock.
func (r *VentureRepository) NextTicketNumber(ctx context.Context, ventureID uuid.UUID) (int, error) {
	db := GetDB(ctx, r.db)

	result := db.Model(&models.Venture{}).
		Where("id = ?", ventureID).
		Update("ticket_seq", gorm.Expr("ticket_seq + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, domainerrors.ErrNotFound
	}

	var m models.Venture
	if err := db.Select("ticket_seq").Where("id = ?", ventureID).First(&m).Error; err != nil {
		return 0, err
	}
	return m.TicketSeq, nil
}

func (r *VentureRepository) toModel(v *entities.Venture) *models.Venture {
	return &models.Venture{
		ID:            v.ID,
		Name:          v.Name,
		Slug:          v.Slug,
		Description:   v.Description,
		FounderID:     v.FounderID,
		FundingGoal:   v.FundingGoal,
		FundingRaised: v.FundingRaised,
		TicketPrice:   v.TicketPrice,
		MaxTickets:    v.MaxTickets,
		TicketsSold:   v.TicketsSold,
		TicketSeq:     v.TicketSeq,
		NFTTokenID:    v.NFTTokenID,
		FundingStart:  v.FundingStart,
		FundingEnd:    v.FundingEnd,
		Status:        string(v.Status),
		CreatedAt:     v.CreatedAt,
	}
}

func (r *VentureRepository) toEntity(m *models.Venture) *entities.Venture {
	return &entities.Venture{
		ID:            m.ID,
		Name:          m.Name,
		Slug:          m.Slug,
		Description:   m.Description,
		FounderID:     m.FounderID,
		FundingGoal:   m.FundingGoal,
		FundingRaised: m.FundingRaised,
		TicketPrice:   m.TicketPrice,
		MaxTickets:    m.MaxTickets,
		TicketsSold:   m.TicketsSold,
		TicketSeq:     m.TicketSeq,
		NFTTokenID:    m.NFTTokenID,
		FundingStart:  m.FundingStart,
		FundingEnd:    m.FundingEnd,
		Status:        entities.VentureStatus(m.Status),
		CreatedAt:     m.CreatedAt,
	}
}

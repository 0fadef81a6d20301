package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"astraldraw.backend/internal/domain/entities"
	domainerrors "astraldraw.backend/internal/domain/errors"
	"astraldraw.backend/internal/infrastructure/models"
)

// DrawRepository implements draw data operations
type DrawRepository struct {
	db *gorm.DB
}

// NewDrawRepository creates a new draw repository
func NewDrawRepository(db *gorm.DB) *DrawRepository {
	return &DrawRepository{db: db}
}

// Create creates a new draw
func (r *DrawRepository) Create(ctx context.Context, draw *entities.Draw) error {
	m := r.toModel(draw)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a draw by ID
func (r *DrawRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Draw, error) {
	var m models.Draw
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByIDForUpdate locks the draw row for the surrounding transaction
func (r *DrawRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Draw, error) {
	var m models.Draw
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

// GetActive gets the currently active draw; at most one exists
func (r *DrawRepository) GetActive(ctx context.Context) (*entities.Draw, error) {
	var m models.Draw
	err := GetDB(ctx, r.db).
		Where("status = ?", string(entities.DrawStatusActive)).
		Order("draw_at ASC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// List lists draws, soonest first, optionally filtered by status
func (r *DrawRepository) List(ctx context.Context, status *entities.DrawStatus, limit, offset int) ([]*entities.Draw, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Draw{})
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var drawModels []models.Draw
	if err := query.Order("draw_at DESC").Limit(limit).Offset(offset).Find(&drawModels).Error; err != nil {
		return nil, 0, err
	}

	draws := make([]*entities.Draw, 0, len(drawModels))
	for i := range drawModels {
		draws = append(draws, r.toEntity(&drawModels[i]))
	}
	return draws, total, nil
}

// ListDue lists active draws whose draw time has passed
func (r *DrawRepository) ListDue(ctx context.Context, now time.Time) ([]*entities.Draw, error) {
	var drawModels []models.Draw
	err := GetDB(ctx, r.db).
		Where("status = ? AND draw_at <= ?", string(entities.DrawStatusActive), now).
		Order("draw_at ASC").
		Find(&drawModels).Error
	if err != nil {
		return nil, err
	}

	draws := make([]*entities.Draw, 0, len(drawModels))
	for i := range drawModels {
		draws = append(draws, r.toEntity(&drawModels[i]))
	}
	return draws, nil
}

// ListRecentWinners lists ended draws that paid out, newest first
func (r *DrawRepository) ListRecentWinners(ctx context.Context, limit int) ([]*entities.Draw, error) {
	var drawModels []models.Draw
	err := GetDB(ctx, r.db).
		Where("status = ? AND winner_wallet_id IS NOT NULL", string(entities.DrawStatusEnded)).
		Order("draw_at DESC").
		Limit(limit).
		Find(&drawModels).Error
	if err != nil {
		return nil, err
	}

	draws := make([]*entities.Draw, 0, len(drawModels))
	for i := range drawModels {
		draws = append(draws, r.toEntity(&drawModels[i]))
	}
	return draws, nil
}

// NextUpcoming gets the earliest upcoming draw
func (r *DrawRepository) NextUpcoming(ctx context.Context) (*entities.Draw, error) {
	var m models.Draw
	err := GetDB(ctx, r.db).
		Where("status = ?", string(entities.DrawStatusUpcoming)).
		Order("draw_at ASC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// Update updates draw lifecycle and result fields
func (r *DrawRepository) Update(ctx context.Context, draw *entities.Draw) error {
	updates := map[string]interface{}{
		"prize_pool":              draw.PrizePool,
		"status":                  string(draw.Status),
		"total_tickets_sold":      draw.TotalTicketsSold,
		"star_keys":               entities.EncodeStarKeys(draw.StarKeys),
		"commit_hash":             draw.CommitHash.String,
		"reveal_seed":             draw.RevealSeed,
		"winner_wallet_id":        draw.WinnerWalletID,
		"winning_ticket_serial":   draw.WinningTicketSerial.String,
		"total_prize_distributed": draw.TotalPrizeDistributed,
		"nft_token_id":            draw.NFTTokenID,
		"updated_at":              time.Now(),
	}

	result := GetDB(ctx, r.db).Model(&models.Draw{}).Where("id = ?", draw.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *DrawRepository) toModel(d *entities.Draw) *models.Draw {
	return &models.Draw{
		ID:                    d.ID,
		Title:                 d.Title,
		Symbol:                d.Symbol,
		PrizePool:             d.PrizePool,
		DrawAt:                d.DrawAt,
		Status:                string(d.Status),
		TotalTicketsSold:      d.TotalTicketsSold,
		StarKeys:              entities.EncodeStarKeys(d.StarKeys),
		CommitHash:            d.CommitHash.String,
		RevealSeed:            d.RevealSeed,
		WinnerWalletID:        d.WinnerWalletID,
		WinningTicketSerial:   d.WinningTicketSerial.String,
		TotalPrizeDistributed: d.TotalPrizeDistributed,
		NFTTokenID:            d.NFTTokenID,
		CreatedAt:             d.CreatedAt,
	}
}

func (r *DrawRepository) toEntity(m *models.Draw) *entities.Draw {
	return &entities.Draw{
		ID:                    m.ID,
		Title:                 m.Title,
		Symbol:                m.Symbol,
		PrizePool:             m.PrizePool,
		DrawAt:                m.DrawAt,
		Status:                entities.DrawStatus(m.Status),
		TotalTicketsSold:      m.TotalTicketsSold,
		StarKeys:              entities.DecodeStarKeys(m.StarKeys),
		CommitHash:            null.NewString(m.CommitHash, m.CommitHash != ""),
		RevealSeed:            m.RevealSeed,
		WinnerWalletID:        m.WinnerWalletID,
		WinningTicketSerial:   null.NewString(m.WinningTicketSerial, m.WinningTicketSerial != ""),
		TotalPrizeDistributed: m.TotalPrizeDistributed,
		NFTTokenID:            m.NFTTokenID,
		CreatedAt:             m.CreatedAt,
	}
}

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

// VentureTicketRepository implements venture ticket data operations
type VentureTicketRepository struct {
	db *gorm.DB
}

// NewVentureTicketRepository creates a new venture ticket repository
func NewVentureTicketRepository(db *gorm.DB) *VentureTicketRepository {
	return &VentureTicketRepository{db: db}
}

// Create creates a new ticket. The partial (venture, buyer) unique
// index makes a second live ticket for the same pair fail with
// ErrAlreadyOwnsTicket; failed and cancelled rows do not count, so a
// buyer can retry after a broken saga.
func (r *VentureTicketRepository) Create(ctx context.Context, ticket *entities.VentureTicket) error {
	m := r.toModel(ticket)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyOwnsTicket
		}
		return err
	}
	return nil
}

// GetByID gets a ticket by ID
func (r *VentureTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.VentureTicket, error) {
	var m models.VentureTicket
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByVentureAndBuyer gets the buyer's live ticket in a venture.
// Failed and cancelled tickets are ignored.
func (r *VentureTicketRepository) GetByVentureAndBuyer(ctx context.Context, ventureID, buyerID uuid.UUID) (*entities.VentureTicket, error) {
	var m models.VentureTicket
	err := GetDB(ctx, r.db).
		Where("venture_id = ? AND buyer_id = ? AND status NOT IN ?", ventureID, buyerID,
			[]string{string(entities.TicketStatusFailed), string(entities.TicketStatusCancelled)}).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByBuyerID lists a buyer's tickets, newest first
func (r *VentureTicketRepository) GetByBuyerID(ctx context.Context, buyerID uuid.UUID) ([]*entities.VentureTicket, error) {
	var ticketModels []models.VentureTicket
	err := GetDB(ctx, r.db).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&ticketModels).Error
	if err != nil {
		return nil, err
	}
	return r.toEntities(ticketModels), nil
}

// GetByVentureID lists all tickets in a venture
func (r *VentureTicketRepository) GetByVentureID(ctx context.Context, ventureID uuid.UUID) ([]*entities.VentureTicket, error) {
	var ticketModels []models.VentureTicket
	err := GetDB(ctx, r.db).
		Where("venture_id = ?", ventureID).
		Order("ticket_number ASC").
		Find(&ticketModels).Error
	if err != nil {
		return nil, err
	}
	return r.toEntities(ticketModels), nil
}

// Update updates saga progress fields on a ticket
func (r *VentureTicketRepository) Update(ctx context.Context, ticket *entities.VentureTicket) error {
	updates := map[string]interface{}{
		"status":        string(ticket.Status),
		"failed_step":   ticket.FailedStep,
		"nft_serial":    ticket.NFTSerial,
		"metadata":      ticket.Metadata,
		"purchase_hash": ticket.PurchaseHash,
		"purchased_at":  ticket.PurchasedAt,
		"updated_at":    time.Now(),
	}

	result := GetDB(ctx, r.db).Model(&models.VentureTicket{}).Where("id = ?", ticket.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateStatus advances the ticket saga state
func (r *VentureTicketRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TicketStatus) error {
	result := GetDB(ctx, r.db).Model(&models.VentureTicket{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
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

// MarkFailed records the step a ticket purchase failed at
func (r *VentureTicketRepository) MarkFailed(ctx context.Context, id uuid.UUID, step string) error {
	result := GetDB(ctx, r.db).Model(&models.VentureTicket{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      string(entities.TicketStatusFailed),
			"failed_step": null.StringFrom(step),
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *VentureTicketRepository) toModel(t *entities.VentureTicket) *models.VentureTicket {
	return &models.VentureTicket{
		ID:            t.ID,
		VentureID:     t.VentureID,
		BuyerID:       t.BuyerID,
		TicketNumber:  t.TicketNumber,
		PurchasePrice: t.PurchasePrice,
		Status:        string(t.Status),
		FailedStep:    t.FailedStep,
		NFTSerial:     t.NFTSerial,
		Metadata:      t.Metadata,
		PurchaseHash:  t.PurchaseHash,
		PurchasedAt:   t.PurchasedAt,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (r *VentureTicketRepository) toEntity(m *models.VentureTicket) *entities.VentureTicket {
	return &entities.VentureTicket{
		ID:            m.ID,
		VentureID:     m.VentureID,
		BuyerID:       m.BuyerID,
		TicketNumber:  m.TicketNumber,
		PurchasePrice: m.PurchasePrice,
		Status:        entities.TicketStatus(m.Status),
		FailedStep:    m.FailedStep,
		NFTSerial:     m.NFTSerial,
		Metadata:      m.Metadata,
		PurchaseHash:  m.PurchaseHash,
		PurchasedAt:   m.PurchasedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (r *VentureTicketRepository) toEntities(ms []models.VentureTicket) []*entities.VentureTicket {
	tickets := make([]*entities.VentureTicket, 0, len(ms))
	for i := range ms {
		tickets = append(tickets, r.toEntity(&ms[i]))
	}
	return tickets
}

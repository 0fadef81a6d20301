package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"astraldraw.backend/internal/domain/entities"
	domainerrors "astraldraw.backend/internal/domain/errors"
	"astraldraw.backend/internal/domain/repositories"
	"astraldraw.backend/internal/infrastructure/ledger"
	"astraldraw.backend/pkg/logger"
	"astraldraw.backend/pkg/utils"
)

// VentureUsecase handles crowd-investment campaigns and ticket purchases
type VentureUsecase struct {
	ventureRepo   repositories.VentureRepository
	ticketRepo    repositories.VentureTicketRepository
	ownershipRepo repositories.VentureOwnershipRepository
	walletRepo    repositories.WalletRepository
	alertRepo     repositories.AlertRepository
	intentRepo    repositories.LedgerIntentRepository
	uow           repositories.UnitOfWork
	gateway       ledger.Gateway
	tokenID       string
	poolID        string
	auditTopic    string
}

// NewVentureUsecase creates a new venture usecase
func NewVentureUsecase(
	ventureRepo repositories.VentureRepository,
	ticketRepo repositories.VentureTicketRepository,
	ownershipRepo repositories.VentureOwnershipRepository,
	walletRepo repositories.WalletRepository,
	alertRepo repositories.AlertRepository,
	intentRepo repositories.LedgerIntentRepository,
	uow repositories.UnitOfWork,
	gateway ledger.Gateway,
	tokenID, poolID, auditTopic string,
) *VentureUsecase {
	return &VentureUsecase{
		ventureRepo:   ventureRepo,
		ticketRepo:    ticketRepo,
		ownershipRepo: ownershipRepo,
		walletRepo:    walletRepo,
		alertRepo:     alertRepo,
		intentRepo:    intentRepo,
		uow:           uow,
		gateway:       gateway,
		tokenID:       tokenID,
		poolID:        poolID,
		auditTopic:    auditTopic,
	}
}

// CreateVenture launches a funding campaign with its equity NFT collection
func (u *VentureUsecase) CreateVenture(ctx context.Context, founderID uuid.UUID, input *entities.CreateVentureInput) (*entities.Venture, error) {
	goal, err := decimal.NewFromString(input.FundingGoal)
	if err != nil || !goal.IsPositive() {
		return nil, domainerrors.BadRequest("invalid funding goal")
	}
	price, err := decimal.NewFromString(input.TicketPrice)
	if err != nil || !price.IsPositive() {
		return nil, domainerrors.BadRequest("invalid ticket price")
	}
	if !input.FundingEnd.After(input.FundingStart) {
		return nil, domainerrors.BadRequest("funding window must end after it starts")
	}

	collection, err := u.gateway.CreateNFTCollection(ctx, input.Name, "VENT")
	if err != nil {
		logger.Error(ctx, "venture collection creation failed", zap.Error(err))
		return nil, domainerrors.NewAppError(502, "could not create venture collection", domainerrors.ErrLedgerFailure)
	}

	venture := &entities.Venture{
		ID:            utils.GenerateUUIDv7(),
		Name:          input.Name,
		Slug:          input.Slug,
		Description:   input.Description,
		FounderID:     founderID,
		FundingGoal:   goal,
		FundingRaised: decimal.Zero,
		TicketPrice:   price,
		MaxTickets:    input.MaxTickets,
		NFTTokenID:    collection.TokenID,
		FundingStart:  input.FundingStart,
		FundingEnd:    input.FundingEnd,
		Status:        entities.VentureStatusFunding,
		CreatedAt:     time.Now(),
	}

	if err := u.ventureRepo.Create(ctx, venture); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.NewAppError(409, "slug already taken", domainerrors.ErrAlreadyExists)
		}
		return nil, err
	}

	alert := &entities.Alert{
		ID:        utils.GenerateUUIDv7(),
		UserID:    founderID,
		Category:  entities.AlertVenture,
		Title:     "Your venture is live",
		Message:   fmt.Sprintf("%s is open for funding until %s", venture.Name, venture.FundingEnd.Format(time.RFC3339)),
		CreatedAt: time.Now(),
	}
	if err := u.alertRepo.Create(ctx, alert); err != nil {
		logger.Warn(ctx, "venture launch alert creation failed", zap.Error(err))
	}

	logger.Info(ctx, "venture created",
		zap.String("venture_id", venture.ID.String()),
		zap.String("collection", collection.TokenID))
	return venture, nil
}

// GetVenture returns one venture
func (u *VentureUsecase) GetVenture(ctx context.Context, id uuid.UUID) (*entities.Venture, error) {
	return u.ventureRepo.GetByID(ctx, id)
}

// ListVentures lists ventures
func (u *VentureUsecase) ListVentures(ctx context.Context, status *entities.VentureStatus, limit, offset int) ([]*entities.Venture, int64, error) {
	return u.ventureRepo.List(ctx, status, ClampPageSize(limit), offset)
}

// CanBuyTicket reports whether the buyer may purchase in this venture
func (u *VentureUsecase) CanBuyTicket(ctx context.Context, ventureID, buyerID uuid.UUID) error {
	venture, err := u.ventureRepo.GetByID(ctx, ventureID)
	if err != nil {
		return err
	}
	if !venture.IsFundingActive(time.Now()) {
		return domainerrors.NewAppError(409, "funding window is closed", domainerrors.ErrBadRequest)
	}
	if !venture.TicketsAvailable() {
		return domainerrors.NewAppError(409, "venture is sold out", domainerrors.ErrTicketsSoldOut)
	}

	if _, err := u.ticketRepo.GetByVentureAndBuyer(ctx, ventureID, buyerID); err == nil {
		return domainerrors.NewAppError(409, "you already hold a ticket in this venture", domainerrors.ErrAlreadyOwnsTicket)
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return err
	}
	return nil
}

// PurchaseTicket runs the purchase saga. The pending ticket and its
// number are reserved under the venture row lock, then the ledger steps
// run outside the transaction with the ticket status tracking progress:
// minting -> associating -> paying -> purchased. A ledger failure marks
// the ticket failed with the step that broke and leaves an intent for
// the reconciler.
func (u *VentureUsecase) PurchaseTicket(ctx context.Context, ventureID, buyerID uuid.UUID) (*entities.PurchaseTicketResponse, error) {
	wallet, err := u.walletRepo.GetByUserID(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	var (
		venture *entities.Venture
		ticket  *entities.VentureTicket
	)

	err = u.uow.Do(ctx, func(ctx context.Context) error {
		venture, err = u.ventureRepo.GetByIDForUpdate(ctx, ventureID)
		if err != nil {
			return err
		}
		if !venture.IsFundingActive(time.Now()) {
			return domainerrors.NewAppError(409, "funding window is closed", domainerrors.ErrBadRequest)
		}
		if !venture.TicketsAvailable() {
			return domainerrors.NewAppError(409, "venture is sold out", domainerrors.ErrTicketsSoldOut)
		}

		number, err := u.ventureRepo.NextTicketNumber(ctx, ventureID)
		if err != nil {
			return err
		}

		ticket = &entities.VentureTicket{
			ID:            utils.GenerateUUIDv7(),
			VentureID:     ventureID,
			BuyerID:       buyerID,
			TicketNumber:  number,
			PurchasePrice: venture.TicketPrice,
			Status:        entities.TicketStatusPending,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		if err := u.ticketRepo.Create(ctx, ticket); err != nil {
			if errors.Is(err, domainerrors.ErrAlreadyOwnsTicket) {
				return domainerrors.NewAppError(409, "you already hold a ticket in this venture", domainerrors.ErrAlreadyOwnsTicket)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	intent := &entities.LedgerIntent{
		ID:        utils.GenerateUUIDv7(),
		Kind:      entities.IntentTicketPurchase,
		SubjectID: ticket.ID,
		Step:      "created",
		Status:    entities.IntentStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := u.intentRepo.Create(ctx, intent); err != nil {
		return nil, err
	}

	fail := func(step string, cause error) (*entities.PurchaseTicketResponse, error) {
		logger.Error(ctx, "ticket purchase failed",
			zap.String("ticket_id", ticket.ID.String()),
			zap.String("step", step),
			zap.Error(cause))
		if markErr := u.ticketRepo.MarkFailed(ctx, ticket.ID, step); markErr != nil {
			logger.Error(ctx, "ticket failure mark failed", zap.Error(markErr))
		}
		if markErr := u.intentRepo.MarkFailed(ctx, intent.ID, cause.Error()); markErr != nil {
			logger.Error(ctx, "intent update failed", zap.Error(markErr))
		}
		return nil, domainerrors.NewAppError(502, "purchase could not be completed", domainerrors.ErrLedgerFailure)
	}

	advance := func(status entities.TicketStatus, step string) error {
		if err := u.ticketRepo.UpdateStatus(ctx, ticket.ID, status); err != nil {
			return err
		}
		return u.intentRepo.UpdateStep(ctx, intent.ID, step)
	}

	if err := advance(entities.TicketStatusMinting, "mint_nft"); err != nil {
		return nil, err
	}
	metadata := []byte(fmt.Sprintf(`{"venture":"%s","ticket":%d}`, ventureID, ticket.TicketNumber))
	mint, err := u.gateway.MintNFT(ctx, venture.NFTTokenID, metadata)
	if err != nil {
		return fail("mint_nft", err)
	}

	if err := advance(entities.TicketStatusAssociating, "associate_nft"); err != nil {
		return nil, err
	}
	if _, err := u.gateway.AssociateToken(ctx, wallet.AccountID, wallet.PrivateKeyEnc, venture.NFTTokenID); err != nil {
		return fail("associate_nft", err)
	}

	if err := advance(entities.TicketStatusPaying, "pay_and_transfer"); err != nil {
		return nil, err
	}
	pay, err := u.gateway.TransferTokens(ctx, ledger.TransferInput{
		TokenID:       u.tokenID,
		FromAccountID: wallet.AccountID,
		FromKeyEnc:    wallet.PrivateKeyEnc,
		ToAccountID:   u.poolID,
		Amount:        venture.TicketPrice.IntPart(),
		Memo:          fmt.Sprintf("ticket:%s:%d", ventureID, ticket.TicketNumber),
	})
	if err != nil {
		return fail("pay_and_transfer", err)
	}
	if _, err := u.gateway.TransferNFT(ctx, ledger.NFTTransferInput{
		TokenID:       venture.NFTTokenID,
		Serial:        mint.Serial,
		FromAccountID: u.poolID,
		ToAccountID:   wallet.AccountID,
	}); err != nil {
		return fail("pay_and_transfer", err)
	}

	now := time.Now()
	ticket.Status = entities.TicketStatusPurchased
	ticket.NFTSerial = null.Int64From(mint.Serial)
	ticket.PurchaseHash = null.StringFrom(pay.TxID)
	ticket.PurchasedAt = null.TimeFrom(now)
	ticket.Metadata = string(metadata)

	err = u.uow.Do(ctx, func(ctx context.Context) error {
		if err := u.ticketRepo.Update(ctx, ticket); err != nil {
			return err
		}

		ownership := &entities.VentureOwnership{
			ID:               utils.GenerateUUIDv7(),
			VentureID:        ventureID,
			OwnerID:          buyerID,
			TicketID:         ticket.ID,
			EquityPercentage: venture.EquityPerTicket(),
			InvestmentAmount: venture.TicketPrice,
			AcquiredAt:       now,
		}
		if err := u.ownershipRepo.Create(ctx, ownership); err != nil {
			return err
		}

		fresh, err := u.ventureRepo.GetByIDForUpdate(ctx, ventureID)
		if err != nil {
			return err
		}
		fresh.TicketsSold++
		fresh.FundingRaised = fresh.FundingRaised.Add(venture.TicketPrice)
		// the round closes when the ticket supply is exhausted, whatever
		// the raise amounts to
		if fresh.TicketsSold >= fresh.MaxTickets {
			fresh.Status = entities.VentureStatusFunded
		}
		venture = fresh
		return u.ventureRepo.Update(ctx, fresh)
	})
	if err != nil {
		return nil, err
	}

	if err := u.intentRepo.MarkCompleted(ctx, intent.ID); err != nil {
		logger.Warn(ctx, "intent completion update failed", zap.Error(err))
	}

	submitAudit(ctx, u.gateway, u.auditTopic, map[string]interface{}{
		"type":    "ticket_purchased",
		"venture": ventureID,
		"ticket":  ticket.TicketNumber,
	})

	logger.Info(ctx, "ticket purchased",
		zap.String("venture_id", ventureID.String()),
		zap.Int("ticket_number", ticket.TicketNumber),
		zap.Int64("nft_serial", mint.Serial))

	return &entities.PurchaseTicketResponse{
		TicketID:         ticket.ID,
		TicketNumber:     ticket.TicketNumber,
		EquityPercentage: venture.EquityPerTicket(),
		NFTSerial:        mint.Serial,
		RemainingTickets: venture.MaxTickets - venture.TicketsSold,
	}, nil
}

// GetMyTickets lists the caller's tickets
func (u *VentureUsecase) GetMyTickets(ctx context.Context, buyerID uuid.UUID) ([]*entities.VentureTicket, error) {
	return u.ticketRepo.GetByBuyerID(ctx, buyerID)
}

// GetCapTable lists equity holders of a venture
func (u *VentureUsecase) GetCapTable(ctx context.Context, ventureID uuid.UUID) ([]*entities.VentureOwnership, error) {
	if _, err := u.ventureRepo.GetByID(ctx, ventureID); err != nil {
		return nil, err
	}
	return u.ownershipRepo.GetByVentureID(ctx, ventureID)
}

// GetMyHoldings lists the caller's equity across ventures
func (u *VentureUsecase) GetMyHoldings(ctx context.Context, ownerID uuid.UUID) ([]*entities.VentureOwnership, error) {
	return u.ownershipRepo.GetByOwnerID(ctx, ownerID)
}

package usecases

import (
	"context"
	"encoding/json"
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
	"astraldraw.backend/pkg/metrics"
	"astraldraw.backend/pkg/utils"
)

// DrawUsecase handles lottery rounds: creation, key forging and winner
// resolution.
type DrawUsecase struct {
	drawRepo   repositories.DrawRepository
	keyRepo    repositories.ForgedKeyRepository
	walletRepo repositories.WalletRepository
	alertRepo  repositories.AlertRepository
	intentRepo repositories.LedgerIntentRepository
	uow        repositories.UnitOfWork
	gateway    ledger.Gateway
	mirror     BalanceReader
	tokenID    string
	poolID     string
	auditTopic string
	entryFee   int64
	prizeFrac  float64
}

// NewDrawUsecase creates a new draw usecase
func NewDrawUsecase(
	drawRepo repositories.DrawRepository,
	keyRepo repositories.ForgedKeyRepository,
	walletRepo repositories.WalletRepository,
	alertRepo repositories.AlertRepository,
	intentRepo repositories.LedgerIntentRepository,
	uow repositories.UnitOfWork,
	gateway ledger.Gateway,
	mirror BalanceReader,
	tokenID, poolID, auditTopic string,
	entryFee int64,
	prizeFrac float64,
) *DrawUsecase {
	return &DrawUsecase{
		drawRepo:   drawRepo,
		keyRepo:    keyRepo,
		walletRepo: walletRepo,
		alertRepo:  alertRepo,
		intentRepo: intentRepo,
		uow:        uow,
		gateway:    gateway,
		mirror:     mirror,
		tokenID:    tokenID,
		poolID:     poolID,
		auditTopic: auditTopic,
		entryFee:   entryFee,
		prizeFrac:  prizeFrac,
	}
}

// CreateDraw launches a draw with its NFT collection and the published
// key commitment. Admin only; enforced at the route layer.
func (u *DrawUsecase) CreateDraw(ctx context.Context, input *entities.CreateDrawInput) (*entities.Draw, error) {
	status := entities.DrawStatus(input.Status)
	if status != entities.DrawStatusUpcoming && status != entities.DrawStatusActive {
		return nil, domainerrors.BadRequest("status must be UPCOMING or ACTIVE")
	}
	if input.DrawAt.Before(time.Now()) {
		return nil, domainerrors.BadRequest("draw time must be in the future")
	}
	prizePool, err := decimal.NewFromString(input.PrizePool)
	if err != nil || prizePool.IsNegative() {
		return nil, domainerrors.BadRequest("invalid prize pool")
	}

	if status == entities.DrawStatusActive {
		if _, err := u.drawRepo.GetActive(ctx); err == nil {
			return nil, domainerrors.NewAppError(409, "another draw is already active", domainerrors.ErrAlreadyExists)
		} else if !errors.Is(err, domainerrors.ErrNotFound) {
			return nil, err
		}
	}

	winning, err := GenerateStarKeys(entities.StarKeyCount)
	if err != nil {
		return nil, err
	}
	seed, err := GenerateRevealSeed()
	if err != nil {
		return nil, err
	}

	collection, err := u.gateway.CreateNFTCollection(ctx, input.Title, input.Symbol)
	if err != nil {
		logger.Error(ctx, "draw collection creation failed", zap.Error(err))
		return nil, domainerrors.NewAppError(502, "could not create draw collection", domainerrors.ErrLedgerFailure)
	}

	draw := &entities.Draw{
		ID:                    utils.GenerateUUIDv7(),
		Title:                 input.Title,
		Symbol:                input.Symbol,
		PrizePool:             prizePool,
		DrawAt:                input.DrawAt,
		Status:                status,
		StarKeys:              winning,
		CommitHash:            null.StringFrom(CommitStarKeys(winning, seed)),
		RevealSeed:            null.StringFrom(seed),
		TotalPrizeDistributed: decimal.Zero,
		NFTTokenID:            collection.TokenID,
		CreatedAt:             time.Now(),
	}

	if err := u.drawRepo.Create(ctx, draw); err != nil {
		return nil, err
	}

	logger.Info(ctx, "draw created",
		zap.String("draw_id", draw.ID.String()),
		zap.String("collection", collection.TokenID),
		zap.String("commit", draw.CommitHash.String))

	// winning keys stay server-side until the draw is processed
	public := *draw
	public.StarKeys = nil
	public.RevealSeed = null.String{}
	return &public, nil
}

// GetDraw returns one draw, hiding unrevealed keys
func (u *DrawUsecase) GetDraw(ctx context.Context, id uuid.UUID) (*entities.Draw, error) {
	draw, err := u.drawRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	hideUnrevealed(draw)
	return draw, nil
}

// GetActiveDraw returns the active draw, hiding unrevealed keys
func (u *DrawUsecase) GetActiveDraw(ctx context.Context) (*entities.Draw, error) {
	draw, err := u.drawRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	hideUnrevealed(draw)
	return draw, nil
}

// ListDraws lists draws, hiding unrevealed keys
func (u *DrawUsecase) ListDraws(ctx context.Context, status *entities.DrawStatus, limit, offset int) ([]*entities.Draw, int64, error) {
	draws, total, err := u.drawRepo.List(ctx, status, ClampPageSize(limit), offset)
	if err != nil {
		return nil, 0, err
	}
	for _, d := range draws {
		hideUnrevealed(d)
	}
	return draws, total, nil
}

// RecentWinners lists the latest ended draws that paid a prize
func (u *DrawUsecase) RecentWinners(ctx context.Context, limit int) ([]*entities.Draw, error) {
	return u.drawRepo.ListRecentWinners(ctx, ClampPageSize(limit))
}

func hideUnrevealed(d *entities.Draw) {
	if d.Status != entities.DrawStatusEnded {
		d.StarKeys = nil
	}
}

// submitAudit appends a best-effort record to the audit consensus
// topic. Failures are logged and never block the caller.
func submitAudit(ctx context.Context, gateway ledger.Gateway, topicID string, payload map[string]interface{}) {
	if topicID == "" {
		return
	}
	body, _ := json.Marshal(payload)
	if _, err := gateway.SubmitMessage(ctx, topicID, body); err != nil {
		logger.Warn(ctx, "audit message submission failed", zap.Error(err))
	}
}

// ForgeKeys buys one lottery entry: charge the entry fee, mint the entry
// NFT, record the key. The DB row is written first so the unique index
// rejects double entries before any tokens move; ledger failure then
// rolls the row back via the compensating delete.
func (u *DrawUsecase) ForgeKeys(ctx context.Context, userID uuid.UUID, drawID uuid.UUID, input *entities.ForgeKeysInput) (*entities.ForgedKey, error) {
	if len(input.StarKeys) != entities.StarKeyCount {
		return nil, domainerrors.BadRequest(fmt.Sprintf("exactly %d star keys required", entities.StarKeyCount))
	}
	for _, k := range input.StarKeys {
		if k < 0 || k > 9 {
			return nil, domainerrors.BadRequest("star keys must be digits 0-9")
		}
	}

	draw, err := u.drawRepo.GetByID(ctx, drawID)
	if err != nil {
		return nil, err
	}
	if !draw.IsActive() || time.Now().After(draw.DrawAt) {
		return nil, domainerrors.NewAppError(409, "draw is not accepting entries", domainerrors.ErrDrawNotActive)
	}

	wallet, err := u.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	balance, err := u.mirror.GetTokenBalance(ctx, wallet.AccountID, u.tokenID)
	if err != nil {
		logger.Error(ctx, "mirror balance lookup failed", zap.String("account", wallet.AccountID), zap.Error(err))
		return nil, domainerrors.NewAppError(502, "could not verify balance", domainerrors.ErrLedgerFailure)
	}
	if balance < u.entryFee {
		return nil, domainerrors.NewAppError(402, "insufficient balance for the entry fee", domainerrors.ErrInsufficientBalance)
	}

	serialSeq, err := u.keyRepo.CountByDrawID(ctx, drawID)
	if err != nil {
		return nil, err
	}

	key := &entities.ForgedKey{
		ID:           utils.GenerateUUIDv7(),
		WalletID:     wallet.ID,
		DrawID:       drawID,
		SerialNumber: entities.ForgedKeySerial(drawID, wallet.ID, serialSeq+1),
		StarKeys:     input.StarKeys,
		CreatedAt:    time.Now(),
	}
	if err := u.keyRepo.Create(ctx, key); err != nil {
		return nil, err
	}

	intent := &entities.LedgerIntent{
		ID:        utils.GenerateUUIDv7(),
		Kind:      entities.IntentKeyForge,
		SubjectID: key.ID,
		Step:      "created",
		Status:    entities.IntentStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := u.intentRepo.Create(ctx, intent); err != nil {
		return nil, err
	}

	fail := func(step string, cause error) (*entities.ForgedKey, error) {
		logger.Error(ctx, "key forge failed",
			zap.String("key_id", key.ID.String()),
			zap.String("step", step),
			zap.Error(cause))
		if delErr := u.keyRepo.Delete(ctx, key.ID); delErr != nil {
			logger.Error(ctx, "key forge compensation failed", zap.String("key_id", key.ID.String()), zap.Error(delErr))
		}
		if markErr := u.intentRepo.MarkFailed(ctx, intent.ID, cause.Error()); markErr != nil {
			logger.Error(ctx, "intent update failed", zap.String("intent_id", intent.ID.String()), zap.Error(markErr))
		}
		return nil, domainerrors.NewAppError(502, "entry could not be completed", domainerrors.ErrLedgerFailure)
	}

	if _, err := u.gateway.TransferTokens(ctx, ledger.TransferInput{
		TokenID:       u.tokenID,
		FromAccountID: wallet.AccountID,
		FromKeyEnc:    wallet.PrivateKeyEnc,
		ToAccountID:   u.poolID,
		Amount:        u.entryFee,
		Memo:          "forge:" + key.SerialNumber,
	}); err != nil {
		return fail("entry_fee", err)
	}
	if err := u.intentRepo.UpdateStep(ctx, intent.ID, "entry_fee"); err != nil {
		logger.Warn(ctx, "intent step update failed", zap.Error(err))
	}

	metadata := []byte(fmt.Sprintf(`{"serial":"%s","draw":"%s"}`, key.SerialNumber, drawID))
	mint, err := u.gateway.MintNFT(ctx, draw.NFTTokenID, metadata)
	if err != nil {
		return fail("mint_nft", err)
	}
	if err := u.intentRepo.UpdateStep(ctx, intent.ID, "mint_nft"); err != nil {
		logger.Warn(ctx, "intent step update failed", zap.Error(err))
	}

	// the entry NFT belongs to the player, not the pool
	if _, err := u.gateway.AssociateToken(ctx, wallet.AccountID, wallet.PrivateKeyEnc, draw.NFTTokenID); err != nil {
		return fail("associate_nft", err)
	}
	if _, err := u.gateway.TransferNFT(ctx, ledger.NFTTransferInput{
		TokenID:       draw.NFTTokenID,
		Serial:        mint.Serial,
		FromAccountID: u.poolID,
		ToAccountID:   wallet.AccountID,
	}); err != nil {
		return fail("transfer_nft", err)
	}

	key.NFTSerial = mint.Serial
	if err := u.keyRepo.Update(ctx, key); err != nil {
		return nil, err
	}
	if err := u.intentRepo.MarkCompleted(ctx, intent.ID); err != nil {
		logger.Warn(ctx, "intent completion update failed", zap.Error(err))
	}

	draw.TotalTicketsSold++
	if err := u.drawRepo.Update(ctx, draw); err != nil {
		logger.Warn(ctx, "draw entry counter update failed", zap.Error(err))
	}

	submitAudit(ctx, u.gateway, u.auditTopic, map[string]interface{}{
		"type":   "keys_forged",
		"draw":   drawID,
		"serial": key.SerialNumber,
	})

	logger.Info(ctx, "keys forged",
		zap.String("draw_id", drawID.String()),
		zap.String("serial", key.SerialNumber))
	return key, nil
}

// GetMyKeys lists the caller's entries across draws
func (u *DrawUsecase) GetMyKeys(ctx context.Context, userID uuid.UUID) ([]*entities.ForgedKey, error) {
	wallet, err := u.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.keyRepo.GetByWalletID(ctx, wallet.ID)
}

// ProcessDraw resolves a due draw: reveal the winning keys, pick the
// winner, pay the prize, end the draw, promote the next one. Idempotent
// for ended draws.
func (u *DrawUsecase) ProcessDraw(ctx context.Context, drawID uuid.UUID) (*entities.ProcessDrawResponse, error) {
	var resp *entities.ProcessDrawResponse

	err := u.uow.Do(ctx, func(ctx context.Context) error {
		draw, err := u.drawRepo.GetByIDForUpdate(ctx, drawID)
		if err != nil {
			return err
		}
		if draw.Status == entities.DrawStatusEnded {
			return domainerrors.NewAppError(409, "draw already processed", domainerrors.ErrDrawNotActive)
		}
		if draw.Status != entities.DrawStatusActive {
			return domainerrors.NewAppError(409, "draw is not active", domainerrors.ErrDrawNotActive)
		}

		keys, err := u.keyRepo.GetByDrawID(ctx, drawID)
		if err != nil {
			return err
		}

		winner := pickWinner(keys, draw.StarKeys)

		prize := decimal.Zero
		resp = &entities.ProcessDrawResponse{
			DrawID:      draw.ID,
			WinningKeys: draw.StarKeys,
			PrizeAmount: prize,
		}

		if winner != nil {
			prize = draw.PrizePool.Mul(decimal.NewFromFloat(u.prizeFrac)).Round(2)
			draw.WinnerWalletID = &winner.WalletID
			draw.WinningTicketSerial = null.StringFrom(winner.SerialNumber)
			draw.TotalPrizeDistributed = prize
			resp.PrizeAmount = prize
			resp.Winner = &entities.DrawWinner{
				WalletID:     winner.WalletID,
				SerialNumber: winner.SerialNumber,
				MatchCount:   winner.MatchCount(draw.StarKeys),
			}
		}

		draw.Status = entities.DrawStatusEnded
		if err := u.drawRepo.Update(ctx, draw); err != nil {
			return err
		}

		if next, err := u.drawRepo.NextUpcoming(ctx); err == nil {
			next.Status = entities.DrawStatusActive
			if err := u.drawRepo.Update(ctx, next); err != nil {
				return err
			}
		} else if !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.DrawProcessed()

	// payout happens outside the transaction; a failure is recorded as
	// an intent for the reconciler instead of un-ending the draw
	if resp.Winner != nil {
		u.payPrize(ctx, drawID, resp)
	}

	return resp, nil
}

func (u *DrawUsecase) payPrize(ctx context.Context, drawID uuid.UUID, resp *entities.ProcessDrawResponse) {
	winnerWallet, err := u.walletRepo.GetByID(ctx, resp.Winner.WalletID)
	if err != nil {
		logger.Error(ctx, "winner wallet lookup failed", zap.Error(err))
		return
	}

	intent := &entities.LedgerIntent{
		ID:        utils.GenerateUUIDv7(),
		Kind:      entities.IntentPrizePayout,
		SubjectID: drawID,
		Step:      "created",
		Status:    entities.IntentStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := u.intentRepo.Create(ctx, intent); err != nil {
		logger.Error(ctx, "payout intent creation failed", zap.Error(err))
		return
	}

	if _, err := u.gateway.TransferTokens(ctx, ledger.TransferInput{
		TokenID:       u.tokenID,
		FromAccountID: u.poolID,
		ToAccountID:   winnerWallet.AccountID,
		Amount:        resp.PrizeAmount.IntPart(),
		Memo:          "prize:" + resp.Winner.SerialNumber,
	}); err != nil {
		// the intent stays pending so the reconciler retries the transfer
		logger.Error(ctx, "prize payout failed, leaving intent for the reconciler",
			zap.String("draw_id", drawID.String()), zap.Error(err))
		return
	}
	if err := u.intentRepo.MarkCompleted(ctx, intent.ID); err != nil {
		logger.Warn(ctx, "payout intent completion failed", zap.Error(err))
	}

	alert := &entities.Alert{
		ID:        utils.GenerateUUIDv7(),
		UserID:    winnerWallet.UserID,
		Category:  entities.AlertWin,
		Title:     "You won the draw",
		Message:   fmt.Sprintf("Your entry %s won %s ASTRA", resp.Winner.SerialNumber, resp.PrizeAmount),
		CreatedAt: time.Now(),
	}
	if err := u.alertRepo.Create(ctx, alert); err != nil {
		logger.Warn(ctx, "winner alert creation failed", zap.Error(err))
	}
}

// pickWinner selects the entry with the most position matches, breaking
// ties by earliest creation then serial. GetByDrawID already returns
// entries in that order, so the first best match wins.
func pickWinner(keys []*entities.ForgedKey, winning []int) *entities.ForgedKey {
	var best *entities.ForgedKey
	bestMatches := 0
	for _, k := range keys {
		if n := k.MatchCount(winning); n > bestMatches {
			best = k
			bestMatches = n
		}
	}
	return best
}

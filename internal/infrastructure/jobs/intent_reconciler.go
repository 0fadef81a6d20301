package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"astraldraw.backend/internal/domain/entities"
	"astraldraw.backend/internal/domain/repositories"
	"astraldraw.backend/internal/infrastructure/ledger"
	"astraldraw.backend/pkg/logger"
	"astraldraw.backend/pkg/metrics"
)

const (
	reconcileInterval = 30 * time.Second
	reconcileStaleAge = 5 * time.Minute
	reconcileBatch    = 100
)

// IntentReconciler resolves ledger intents left pending by a crash
// mid-sequence. Forged keys and tickets whose saga never finished are
// rolled back; a pending prize payout is retried against the ledger.
type IntentReconciler struct {
	intentRepo repositories.LedgerIntentRepository
	keyRepo    repositories.ForgedKeyRepository
	ticketRepo repositories.VentureTicketRepository
	drawRepo   repositories.DrawRepository
	walletRepo repositories.WalletRepository
	gateway    ledger.Gateway

	tokenID string
	poolID  string

	interval time.Duration
	staleAge time.Duration
	stop     chan struct{}
}

func NewIntentReconciler(
	intentRepo repositories.LedgerIntentRepository,
	keyRepo repositories.ForgedKeyRepository,
	ticketRepo repositories.VentureTicketRepository,
	drawRepo repositories.DrawRepository,
	walletRepo repositories.WalletRepository,
	gateway ledger.Gateway,
	tokenID, poolID string,
) *IntentReconciler {
	return &IntentReconciler{
		intentRepo: intentRepo,
		keyRepo:    keyRepo,
		ticketRepo: ticketRepo,
		drawRepo:   drawRepo,
		walletRepo: walletRepo,
		gateway:    gateway,
		tokenID:    tokenID,
		poolID:     poolID,
		interval:   reconcileInterval,
		staleAge:   reconcileStaleAge,
		stop:       make(chan struct{}),
	}
}

func (j *IntentReconciler) Start(ctx context.Context) {
	logger.Info(ctx, "intent reconciler started",
		zap.Duration("interval", j.interval),
		zap.Duration("stale_age", j.staleAge))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "intent reconciler stopped")
			return
		case <-j.stop:
			logger.Info(ctx, "intent reconciler stopped")
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

func (j *IntentReconciler) Stop() {
	close(j.stop)
}

// RunOnce processes one batch of stale pending intents
func (j *IntentReconciler) RunOnce(ctx context.Context) {
	cutoff := time.Now().Add(-j.staleAge)
	stale, err := j.intentRepo.ListStalePending(ctx, cutoff, reconcileBatch)
	if err != nil {
		logger.Error(ctx, "stale intent listing failed", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	logger.Info(ctx, "reconciling stale intents", zap.Int("count", len(stale)))
	for _, intent := range stale {
		j.reconcile(ctx, intent)
	}
}

func (j *IntentReconciler) reconcile(ctx context.Context, intent *entities.LedgerIntent) {
	var err error
	switch intent.Kind {
	case entities.IntentKeyForge:
		err = j.abandonKeyForge(ctx, intent)
	case entities.IntentTicketPurchase:
		err = j.abandonTicket(ctx, intent)
	case entities.IntentPrizePayout:
		err = j.retryPayout(ctx, intent)
	case entities.IntentNFTPurchase:
		// no local record exists before the mint completes, so there
		// is nothing to roll back
		err = j.intentRepo.MarkFailed(ctx, intent.ID, "reconciled: purchase abandoned")
	default:
		err = j.intentRepo.MarkFailed(ctx, intent.ID, "reconciled: unknown kind")
	}

	if err != nil {
		logger.Error(ctx, "intent reconciliation failed",
			zap.String("intent_id", intent.ID.String()),
			zap.String("kind", intent.Kind),
			zap.Error(err))
		return
	}
	metrics.IntentReconciled(intent.Kind)
	logger.Info(ctx, "intent reconciled",
		zap.String("intent_id", intent.ID.String()),
		zap.String("kind", intent.Kind),
		zap.String("step", intent.Step))
}

// abandonKeyForge removes the entry whose forge saga never finished.
// The entry fee transfer, if it happened, stays with the pool; the
// serial is freed for a clean retry.
func (j *IntentReconciler) abandonKeyForge(ctx context.Context, intent *entities.LedgerIntent) error {
	if err := j.keyRepo.Delete(ctx, intent.SubjectID); err != nil {
		return err
	}
	return j.intentRepo.MarkFailed(ctx, intent.ID, "reconciled: forge abandoned")
}

func (j *IntentReconciler) abandonTicket(ctx context.Context, intent *entities.LedgerIntent) error {
	if err := j.ticketRepo.MarkFailed(ctx, intent.SubjectID, "reconciled"); err != nil {
		return err
	}
	return j.intentRepo.MarkFailed(ctx, intent.ID, "reconciled: purchase abandoned")
}

// retryPayout re-sends a prize transfer that never got a result. The
// draw record already carries the winner and amount, so the retry is
// idempotent from the platform's point of view.
func (j *IntentReconciler) retryPayout(ctx context.Context, intent *entities.LedgerIntent) error {
	draw, err := j.drawRepo.GetByID(ctx, intent.SubjectID)
	if err != nil {
		return err
	}
	if draw.WinnerWalletID == nil || draw.TotalPrizeDistributed.IsZero() {
		return j.intentRepo.MarkFailed(ctx, intent.ID, "reconciled: no winner recorded")
	}

	winnerWallet, err := j.walletRepo.GetByID(ctx, *draw.WinnerWalletID)
	if err != nil {
		return err
	}

	if _, err := j.gateway.TransferTokens(ctx, ledger.TransferInput{
		TokenID:       j.tokenID,
		FromAccountID: j.poolID,
		ToAccountID:   winnerWallet.AccountID,
		Amount:        draw.TotalPrizeDistributed.IntPart(),
		Memo:          "prize:" + draw.WinningTicketSerial.String,
	}); err != nil {
		// transient transfer errors leave the intent pending so the
		// next pass retries it
		return err
	}
	return j.intentRepo.MarkCompleted(ctx, intent.ID)
}

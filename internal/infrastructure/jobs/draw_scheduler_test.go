package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"astraldraw.backend/internal/domain/entities"
	infraRepos "astraldraw.backend/internal/infrastructure/repositories"
	"astraldraw.backend/internal/usecases"
	"astraldraw.backend/pkg/utils"
)

func TestDrawScheduler_SettlesDueDraws(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	gw := &recordingGateway{}

	drawRepo := infraRepos.NewDrawRepository(db)
	keyRepo := infraRepos.NewForgedKeyRepository(db)
	walletRepo := infraRepos.NewWalletRepository(db)
	alertRepo := infraRepos.NewAlertRepository(db)
	intentRepo := infraRepos.NewLedgerIntentRepository(db)
	uow := infraRepos.NewUnitOfWork(db)

	drawUsecase := usecases.NewDrawUsecase(drawRepo, keyRepo, walletRepo, alertRepo, intentRepo, uow, gw, &fixedMirror{balance: 4200},
		"0.0.1111", "0.0.2222", "0.0.3333", usecases.DrawEntryFee, usecases.PrizeFraction)

	wallet := &entities.Wallet{
		ID:            utils.GenerateUUIDv7(),
		UserID:        uuid.New(),
		FiatBalance:   decimal.Zero,
		PublicKey:     "pub1",
		PrivateKeyEnc: "enc1:key",
		AccountID:     "0.0.5001",
		CreatedAt:     time.Now(),
	}
	require.NoError(t, walletRepo.Create(ctx, wallet))

	due := &entities.Draw{
		ID:                    utils.GenerateUUIDv7(),
		Title:                 "Past Due",
		Symbol:                "PAST",
		PrizePool:             decimal.NewFromInt(1000),
		DrawAt:                time.Now().Add(-time.Minute),
		Status:                entities.DrawStatusActive,
		StarKeys:              []int{1, 2, 3, 4, 5, 6},
		CommitHash:            null.StringFrom("commit"),
		RevealSeed:            null.StringFrom("seed"),
		TotalPrizeDistributed: decimal.Zero,
		NFTTokenID:            "0.0.7777",
		CreatedAt:             time.Now().Add(-time.Hour),
	}
	require.NoError(t, drawRepo.Create(ctx, due))

	notDue := &entities.Draw{
		ID:                    utils.GenerateUUIDv7(),
		Title:                 "Still Open",
		Symbol:                "OPEN",
		PrizePool:             decimal.NewFromInt(500),
		DrawAt:                time.Now().Add(time.Hour),
		Status:                entities.DrawStatusUpcoming,
		StarKeys:              []int{6, 5, 4, 3, 2, 1},
		TotalPrizeDistributed: decimal.Zero,
		NFTTokenID:            "0.0.7778",
		CreatedAt:             time.Now(),
	}
	require.NoError(t, drawRepo.Create(ctx, notDue))

	// a perfect match so the payout path runs too
	require.NoError(t, keyRepo.Create(ctx, &entities.ForgedKey{
		ID:           utils.GenerateUUIDv7(),
		WalletID:     wallet.ID,
		DrawID:       due.ID,
		SerialNumber: "AKSCHED001",
		StarKeys:     []int{1, 2, 3, 4, 5, 6},
		NFTSerial:    1,
		CreatedAt:    time.Now().Add(-30 * time.Minute),
	}))

	sched := NewDrawScheduler(drawRepo, drawUsecase, "")
	sched.RunOnce(ctx)

	settled, err := drawRepo.GetByID(ctx, due.ID)
	require.NoError(t, err)
	require.Equal(t, entities.DrawStatusEnded, settled.Status)
	require.NotNil(t, settled.WinnerWalletID)
	require.Equal(t, wallet.ID, *settled.WinnerWalletID)

	// prize went out to the winner
	require.NotEmpty(t, gw.transfers)
	last := gw.transfers[len(gw.transfers)-1]
	require.Equal(t, "0.0.5001", last.ToAccountID)
	require.Equal(t, int64(700), last.Amount)

	// the upcoming draw is untouched and promoted to active
	promoted, err := drawRepo.GetByID(ctx, notDue.ID)
	require.NoError(t, err)
	require.Equal(t, entities.DrawStatusActive, promoted.Status)

	// a second pass finds nothing due
	before := len(gw.transfers)
	sched.RunOnce(ctx)
	require.Len(t, gw.transfers, before)
}

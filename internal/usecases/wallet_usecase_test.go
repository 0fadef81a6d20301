package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"astraldraw.backend/internal/domain/entities"
	domainerrors "astraldraw.backend/internal/domain/errors"
	"astraldraw.backend/internal/infrastructure/repositories"
	"astraldraw.backend/pkg/utils"
)

func newWalletEnv(t *testing.T, gw *fakeGateway, mirror *fakeMirror) (*WalletUsecase, *entities.Wallet) {
	t.Helper()
	db := newTestDB(t)
	createWalletTable(t, db)

	walletRepo := repositories.NewWalletRepository(db)
	wallet := &entities.Wallet{
		ID:            utils.GenerateUUIDv7(),
		UserID:        utils.GenerateUUIDv7(),
		FiatBalance:   decimal.NewFromInt(250),
		PublicKey:     "pub",
		PrivateKeyEnc: "enc1:key",
		AccountID:     "0.0.5001",
		CreatedAt:     time.Now(),
	}
	require.NoError(t, walletRepo.Create(context.Background(), wallet))

	return NewWalletUsecase(walletRepo, gw, mirror, "0.0.1111", "0.0.2222"), wallet
}

func TestWalletUsecase_GetBalance(t *testing.T) {
	mirror := &fakeMirror{balances: map[string]int64{"0.0.5001": 4200}}
	uc, wallet := newWalletEnv(t, &fakeGateway{}, mirror)

	resp, err := uc.GetBalance(context.Background(), wallet.UserID)
	require.NoError(t, err)
	require.Equal(t, int64(4200), resp.AstraBalance)
	require.True(t, resp.FiatBalance.Equal(decimal.NewFromInt(250)))
	require.Equal(t, "0.0.5001", resp.AccountID)
}

func TestWalletUsecase_GetBalance_MirrorDown(t *testing.T) {
	mirror := &fakeMirror{err: errors.New("mirror timeout")}
	uc, wallet := newWalletEnv(t, &fakeGateway{}, mirror)

	_, err := uc.GetBalance(context.Background(), wallet.UserID)
	require.ErrorIs(t, err, domainerrors.ErrLedgerFailure)
}

func TestWalletUsecase_BuyAstra(t *testing.T) {
	gw := &fakeGateway{}
	uc, wallet := newWalletEnv(t, gw, &fakeMirror{})

	resp, err := uc.BuyAstra(context.Background(), wallet.UserID, &entities.BuyAstraInput{Phone: "254700000001", Amount: 10})
	require.NoError(t, err)
	require.Equal(t, 10*AstraPerFiatUnit, resp.AstraCredited)

	require.Len(t, gw.transfers, 1)
	require.Equal(t, "0.0.2222", gw.transfers[0].FromAccountID)
	require.Equal(t, "0.0.5001", gw.transfers[0].ToAccountID)
	require.Contains(t, gw.transfers[0].Memo, "254700000001")
}

package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"astraldraw.backend/internal/domain/entities"
	domainerrors "astraldraw.backend/internal/domain/errors"
	"astraldraw.backend/internal/domain/repositories"
	"astraldraw.backend/internal/infrastructure/ledger"
	"astraldraw.backend/pkg/logger"
)

// BalanceResponse reports both sides of a wallet
type BalanceResponse struct {
	WalletID     uuid.UUID       `json:"walletId"`
	AccountID    string          `json:"accountId"`
	FiatBalance  decimal.Decimal `json:"fiatBalance"`
	AstraBalance int64           `json:"astraBalance"`
}

// BuyAstraResponse is returned after a top-up
type BuyAstraResponse struct {
	AstraCredited int64  `json:"astraCredited"`
	TxID          string `json:"txId"`
}

// BalanceReader reads on-ledger token balances
type BalanceReader interface {
	GetTokenBalance(ctx context.Context, accountID, tokenID string) (int64, error)
}

// WalletUsecase handles wallet reads and ASTRA top-ups
type WalletUsecase struct {
	walletRepo repositories.WalletRepository
	gateway    ledger.Gateway
	mirror     BalanceReader
	tokenID    string
	poolID     string
}

// NewWalletUsecase creates a new wallet usecase
func NewWalletUsecase(
	walletRepo repositories.WalletRepository,
	gateway ledger.Gateway,
	mirror BalanceReader,
	tokenID, poolID string,
) *WalletUsecase {
	return &WalletUsecase{
		walletRepo: walletRepo,
		gateway:    gateway,
		mirror:     mirror,
		tokenID:    tokenID,
		poolID:     poolID,
	}
}

// GetBalance reads the fiat balance from the DB and the ASTRA balance
// from the mirror node.
func (u *WalletUsecase) GetBalance(ctx context.Context, userID uuid.UUID) (*BalanceResponse, error) {
	wallet, err := u.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	astra, err := u.mirror.GetTokenBalance(ctx, wallet.AccountID, u.tokenID)
	if err != nil {
		logger.Warn(ctx, "mirror balance read failed", zap.String("account", wallet.AccountID), zap.Error(err))
		return nil, domainerrors.NewAppError(502, "ledger balance unavailable", domainerrors.ErrLedgerFailure)
	}

	return &BalanceResponse{
		WalletID:     wallet.ID,
		AccountID:    wallet.AccountID,
		FiatBalance:  wallet.FiatBalance,
		AstraBalance: astra,
	}, nil
}

// GetWallet returns the user's wallet record
func (u *WalletUsecase) GetWallet(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	return u.walletRepo.GetByUserID(ctx, userID)
}

// BuyAstra converts a mobile-money payment into ASTRA at the fixed rate
// and transfers the tokens from the pool account to the user.
func (u *WalletUsecase) BuyAstra(ctx context.Context, userID uuid.UUID, input *entities.BuyAstraInput) (*BuyAstraResponse, error) {
	if input.Amount <= 0 {
		return nil, domainerrors.BadRequest("amount must be positive")
	}

	wallet, err := u.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	astra := input.Amount * AstraPerFiatUnit

	tx, err := u.gateway.TransferTokens(ctx, ledger.TransferInput{
		TokenID:       u.tokenID,
		FromAccountID: u.poolID,
		ToAccountID:   wallet.AccountID,
		Amount:        astra,
		Memo:          fmt.Sprintf("topup:%s", input.Phone),
	})
	if err != nil {
		logger.Error(ctx, "astra top-up transfer failed", zap.String("wallet", wallet.ID.String()), zap.Error(err))
		return nil, domainerrors.NewAppError(502, "token transfer failed", domainerrors.ErrLedgerFailure)
	}

	logger.Info(ctx, "astra purchased",
		zap.String("wallet", wallet.ID.String()),
		zap.Int64("astra", astra),
		zap.String("tx", tx.TxID))

	return &BuyAstraResponse{AstraCredited: astra, TxID: tx.TxID}, nil
}

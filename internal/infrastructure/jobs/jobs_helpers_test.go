package jobs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"astraldraw.backend/internal/infrastructure/ledger"
	"astraldraw.backend/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Init("development")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")

	stmts := []string{
		`CREATE TABLE wallets (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			fiat_balance TEXT NOT NULL DEFAULT '0',
			public_key TEXT NOT NULL,
			private_key_enc TEXT NOT NULL,
			account_id TEXT NOT NULL,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		);`,
		`CREATE TABLE draws (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			symbol TEXT NOT NULL,
			prize_pool TEXT NOT NULL DEFAULT '0',
			draw_at DATETIME NOT NULL,
			status TEXT NOT NULL,
			total_tickets_sold INTEGER NOT NULL DEFAULT 0,
			star_keys TEXT NOT NULL DEFAULT '[]',
			commit_hash TEXT,
			reveal_seed TEXT,
			winner_wallet_id TEXT,
			winning_ticket_serial TEXT,
			total_prize_distributed TEXT NOT NULL DEFAULT '0',
			nft_token_id TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		);`,
		`CREATE TABLE forged_keys (
			id TEXT PRIMARY KEY,
			wallet_id TEXT NOT NULL,
			draw_id TEXT NOT NULL,
			serial_number TEXT NOT NULL UNIQUE,
			star_keys TEXT NOT NULL,
			nft_serial INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME,
			UNIQUE(wallet_id, draw_id)
		);`,
		`CREATE TABLE venture_tickets (
			id TEXT PRIMARY KEY,
			venture_id TEXT NOT NULL,
			buyer_id TEXT NOT NULL,
			ticket_number INTEGER NOT NULL,
			purchase_price TEXT NOT NULL,
			status TEXT NOT NULL,
			failed_step TEXT,
			nft_serial INTEGER,
			metadata TEXT DEFAULT '{}',
			purchase_hash TEXT,
			purchased_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE UNIQUE INDEX idx_venture_buyer_live ON venture_tickets (venture_id, buyer_id)
			WHERE status NOT IN ('failed','cancelled');`,
		`CREATE TABLE ledger_intents (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			subject_id TEXT NOT NULL,
			step TEXT NOT NULL,
			status TEXT NOT NULL,
			last_error TEXT,
			completed_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE alerts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			category TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		);`,
	}
	for _, q := range stmts {
		require.NoError(t, db.Exec(q).Error, "schema: %s", q)
	}
	return db
}

// recordingGateway succeeds on every call and records transfers
type recordingGateway struct {
	transfers   []ledger.TransferInput
	transferErr error
}

func (g *recordingGateway) CreateAccount(context.Context, string) (*ledger.AccountResult, error) {
	return &ledger.AccountResult{AccountID: "0.0.1234", TxID: "tx-account"}, nil
}

func (g *recordingGateway) AssociateToken(context.Context, string, string, string) (*ledger.TxResult, error) {
	return &ledger.TxResult{TxID: "tx-associate", Status: "SUCCESS"}, nil
}

func (g *recordingGateway) TransferTokens(_ context.Context, in ledger.TransferInput) (*ledger.TxResult, error) {
	if g.transferErr != nil {
		return nil, g.transferErr
	}
	g.transfers = append(g.transfers, in)
	return &ledger.TxResult{TxID: "tx-transfer", Status: "SUCCESS"}, nil
}

func (g *recordingGateway) CreateNFTCollection(context.Context, string, string) (*ledger.TokenResult, error) {
	return &ledger.TokenResult{TokenID: "0.0.7777", TxID: "tx-collection"}, nil
}

func (g *recordingGateway) MintNFT(context.Context, string, []byte) (*ledger.MintResult, error) {
	return &ledger.MintResult{Serial: 1, TxID: "tx-mint"}, nil
}

func (g *recordingGateway) TransferNFT(context.Context, ledger.NFTTransferInput) (*ledger.TxResult, error) {
	return &ledger.TxResult{TxID: "tx-nft-transfer", Status: "SUCCESS"}, nil
}

func (g *recordingGateway) SubmitMessage(context.Context, string, []byte) (*ledger.MessageResult, error) {
	return &ledger.MessageResult{SequenceNumber: 1, TxID: "tx-message"}, nil
}

// fixedMirror reports the same token balance for every account
type fixedMirror struct {
	balance int64
}

func (m *fixedMirror) GetTokenBalance(context.Context, string, string) (int64, error) {
	return m.balance, nil
}

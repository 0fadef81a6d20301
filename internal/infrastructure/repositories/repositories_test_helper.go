package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		first_name TEXT,
		last_name TEXT,
		password_hash TEXT,
		role TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createWalletTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE wallets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		fiat_balance TEXT NOT NULL DEFAULT '0',
		public_key TEXT NOT NULL,
		private_key_enc TEXT NOT NULL,
		account_id TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createVentureTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE ventures (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT,
		founder_id TEXT NOT NULL,
		funding_goal TEXT NOT NULL,
		funding_raised TEXT NOT NULL DEFAULT '0',
		ticket_price TEXT NOT NULL,
		max_tickets INTEGER NOT NULL,
		tickets_sold INTEGER NOT NULL DEFAULT 0,
		ticket_seq INTEGER NOT NULL DEFAULT 0,
		nft_token_id TEXT,
		funding_start DATETIME,
		funding_end DATETIME,
		status TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE venture_tickets (
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
	);`)
	mustExec(t, db, `CREATE UNIQUE INDEX idx_venture_buyer_live ON venture_tickets (venture_id, buyer_id)
		WHERE status NOT IN ('failed','cancelled');`)
	mustExec(t, db, `CREATE TABLE venture_ownerships (
		id TEXT PRIMARY KEY,
		venture_id TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		ticket_id TEXT NOT NULL UNIQUE,
		equity_percentage TEXT NOT NULL,
		investment_amount TEXT NOT NULL,
		acquired_at DATETIME,
		created_at DATETIME
	);`)
}

func createDrawTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE draws (
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
	);`)
	mustExec(t, db, `CREATE TABLE forged_keys (
		id TEXT PRIMARY KEY,
		wallet_id TEXT NOT NULL,
		draw_id TEXT NOT NULL,
		serial_number TEXT NOT NULL UNIQUE,
		star_keys TEXT NOT NULL,
		nft_serial INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE(wallet_id, draw_id)
	);`)
}

func createGovernanceTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE governance_nfts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		tier TEXT NOT NULL,
		nft_id TEXT NOT NULL UNIQUE,
		serial_number INTEGER NOT NULL,
		token_id TEXT NOT NULL,
		voting_power INTEGER NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		acquired_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE governance_topics (
		id TEXT PRIMARY KEY,
		topic_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE governance_proposals (
		id TEXT PRIMARY KEY,
		topic_id TEXT NOT NULL,
		creator_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		voting_start DATETIME NOT NULL,
		voting_end DATETIME NOT NULL,
		status TEXT NOT NULL,
		min_approval_percentage INTEGER NOT NULL DEFAULT 60,
		ledger_message_id TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE votes (
		id TEXT PRIMARY KEY,
		proposal_id TEXT NOT NULL,
		voter_id TEXT NOT NULL,
		choice TEXT NOT NULL,
		voting_power INTEGER NOT NULL,
		ledger_tx_id TEXT,
		voted_at DATETIME NOT NULL,
		created_at DATETIME,
		UNIQUE(proposal_id, voter_id)
	);`)
	mustExec(t, db, `CREATE TABLE nft_listings (
		id TEXT PRIMARY KEY,
		nft_id TEXT NOT NULL,
		seller_id TEXT NOT NULL,
		price TEXT NOT NULL,
		is_sold BOOLEAN NOT NULL DEFAULT 0,
		buyer_id TEXT,
		listed_at DATETIME NOT NULL,
		sold_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createAlertTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE alerts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		category TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createLedgerIntentTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE ledger_intents (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		subject_id TEXT NOT NULL,
		step TEXT NOT NULL,
		status TEXT NOT NULL,
		last_error TEXT,
		completed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

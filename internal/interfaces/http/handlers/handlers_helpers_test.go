package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"astraldraw.backend/internal/domain/entities"
	"astraldraw.backend/internal/infrastructure/ledger"
	infraRepos "astraldraw.backend/internal/infrastructure/repositories"
	"astraldraw.backend/internal/interfaces/http/middleware"
	"astraldraw.backend/internal/usecases"
	"astraldraw.backend/pkg/crypto"
	"astraldraw.backend/pkg/jwt"
	"astraldraw.backend/pkg/logger"
	"astraldraw.backend/pkg/redis"
)

// handlerEnv wires real usecases over sqlite and a fake ledger so
// handlers are exercised end to end.
type handlerEnv struct {
	db *gorm.DB
	gw *fakeLedger
	mr *miniredis.Miniredis

	jwtService *jwt.JWTService

	auth       *usecases.AuthUsecase
	wallet     *usecases.WalletUsecase
	draw       *usecases.DrawUsecase
	venture    *usecases.VentureUsecase
	governance *usecases.GovernanceUsecase
	alert      *usecases.AlertUsecase
	stats      *usecases.StatsUsecase
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Init("development")

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	createSchema(t, db)

	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))

	gw := &fakeLedger{}
	cipher, err := crypto.NewKeyCipher("test-encryption-secret")
	require.NoError(t, err)
	jwtService := jwt.NewJWTService("test-jwt-secret", 15*time.Minute, 7*24*time.Hour)

	userRepo := infraRepos.NewUserRepository(db)
	walletRepo := infraRepos.NewWalletRepository(db)
	drawRepo := infraRepos.NewDrawRepository(db)
	keyRepo := infraRepos.NewForgedKeyRepository(db)
	alertRepo := infraRepos.NewAlertRepository(db)
	intentRepo := infraRepos.NewLedgerIntentRepository(db)
	ventureRepo := infraRepos.NewVentureRepository(db)
	ticketRepo := infraRepos.NewVentureTicketRepository(db)
	ownershipRepo := infraRepos.NewVentureOwnershipRepository(db)
	nftRepo := infraRepos.NewGovernanceNFTRepository(db)
	topicRepo := infraRepos.NewGovernanceTopicRepository(db)
	proposalRepo := infraRepos.NewProposalRepository(db)
	voteRepo := infraRepos.NewVoteRepository(db)
	listingRepo := infraRepos.NewNFTListingRepository(db)
	uow := infraRepos.NewUnitOfWork(db)

	return &handlerEnv{
		db:         db,
		gw:         gw,
		mr:         mr,
		jwtService: jwtService,
		auth:       usecases.NewAuthUsecase(userRepo, walletRepo, uow, gw, cipher, jwtService, "0.0.1111"),
		wallet:     usecases.NewWalletUsecase(walletRepo, gw, &stubMirror{balance: 4200}, "0.0.1111", "0.0.2222"),
		draw: usecases.NewDrawUsecase(drawRepo, keyRepo, walletRepo, alertRepo, intentRepo, uow, gw, &stubMirror{balance: 4200},
			"0.0.1111", "0.0.2222", "0.0.3333", usecases.DrawEntryFee, usecases.PrizeFraction),
		venture: usecases.NewVentureUsecase(ventureRepo, ticketRepo, ownershipRepo, walletRepo, alertRepo, intentRepo, uow, gw,
			"0.0.1111", "0.0.2222", "0.0.3333"),
		governance: usecases.NewGovernanceUsecase(nftRepo, topicRepo, proposalRepo, voteRepo, listingRepo, walletRepo, intentRepo, uow, gw,
			redis.NewRateLimiter(usecases.RateLimitRules), "0.0.1111", "0.0.2222",
			tiersWithTokens(), 7*24*time.Hour, 60),
		alert: usecases.NewAlertUsecase(alertRepo),
		stats: usecases.NewStatsUsecase(userRepo, drawRepo, ventureRepo),
	}
}

// register creates a user through the auth usecase and returns its ID
// plus a valid access token.
func (e *handlerEnv) register(t *testing.T, email string) (uuid.UUID, string) {
	t.Helper()
	in := registerInput(email)
	resp, err := e.auth.Register(context.Background(), &in)
	require.NoError(t, err)
	return resp.User.ID, resp.Tokens.AccessToken
}

// withUser injects the authenticated user the way the auth middleware does
func withUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body=%s", w.Body.String())
}

func createSchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	stmts := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			first_name TEXT,
			last_name TEXT,
			password_hash TEXT,
			role TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		);`,
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
		`CREATE TABLE ventures (
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
		`CREATE TABLE venture_ownerships (
			id TEXT PRIMARY KEY,
			venture_id TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			ticket_id TEXT NOT NULL UNIQUE,
			equity_percentage TEXT NOT NULL,
			investment_amount TEXT NOT NULL,
			acquired_at DATETIME,
			created_at DATETIME
		);`,
		`CREATE TABLE governance_nfts (
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
		);`,
		`CREATE TABLE governance_topics (
			id TEXT PRIMARY KEY,
			topic_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE governance_proposals (
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
		);`,
		`CREATE TABLE votes (
			id TEXT PRIMARY KEY,
			proposal_id TEXT NOT NULL,
			voter_id TEXT NOT NULL,
			choice TEXT NOT NULL,
			voting_power INTEGER NOT NULL,
			ledger_tx_id TEXT,
			voted_at DATETIME NOT NULL,
			created_at DATETIME,
			UNIQUE(proposal_id, voter_id)
		);`,
		`CREATE TABLE nft_listings (
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
	}
	for _, q := range stmts {
		require.NoError(t, db.Exec(q).Error, "schema: %s", q)
	}
}

// fakeLedger is a ledger.Gateway that always succeeds with canned results
type fakeLedger struct {
	accounts int
	mints    int
	messages int
}

func (g *fakeLedger) CreateAccount(context.Context, string) (*ledger.AccountResult, error) {
	g.accounts++
	return &ledger.AccountResult{AccountID: fmt.Sprintf("0.0.%d", 5000+g.accounts), TxID: "tx-account"}, nil
}

func (g *fakeLedger) AssociateToken(context.Context, string, string, string) (*ledger.TxResult, error) {
	return &ledger.TxResult{TxID: "tx-associate", Status: "SUCCESS"}, nil
}

func (g *fakeLedger) TransferTokens(context.Context, ledger.TransferInput) (*ledger.TxResult, error) {
	return &ledger.TxResult{TxID: "tx-transfer", Status: "SUCCESS"}, nil
}

func (g *fakeLedger) CreateNFTCollection(context.Context, string, string) (*ledger.TokenResult, error) {
	return &ledger.TokenResult{TokenID: "0.0.7777", TxID: "tx-collection"}, nil
}

func (g *fakeLedger) MintNFT(context.Context, string, []byte) (*ledger.MintResult, error) {
	g.mints++
	return &ledger.MintResult{Serial: int64(g.mints), TxID: "tx-mint"}, nil
}

func (g *fakeLedger) TransferNFT(context.Context, ledger.NFTTransferInput) (*ledger.TxResult, error) {
	return &ledger.TxResult{TxID: "tx-nft-transfer", Status: "SUCCESS"}, nil
}

func (g *fakeLedger) SubmitMessage(context.Context, string, []byte) (*ledger.MessageResult, error) {
	g.messages++
	return &ledger.MessageResult{SequenceNumber: int64(g.messages), TxID: "tx-message"}, nil
}

type stubMirror struct {
	balance int64
}

func (m *stubMirror) GetTokenBalance(context.Context, string, string) (int64, error) {
	return m.balance, nil
}

func tiersWithTokens() map[string]entities.TierConfig {
	tiers := make(map[string]entities.TierConfig, len(usecases.GovernanceTiers))
	for name, tier := range usecases.GovernanceTiers {
		tier.TokenID = "0.0.9" + name
		tiers[name] = tier
	}
	return tiers
}

func registerInput(email string) entities.RegisterInput {
	return entities.RegisterInput{
		Email:           email,
		FirstName:       "Nova",
		LastName:        "Trelis",
		Password:        "astral-pass-1",
		ConfirmPassword: "astral-pass-1",
	}
}

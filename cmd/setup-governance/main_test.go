package main

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"astraldraw.backend/internal/infrastructure/ledger"
	infraRepos "astraldraw.backend/internal/infrastructure/repositories"
	"astraldraw.backend/pkg/logger"
)

type setupGateway struct {
	collections []string
}

func (g *setupGateway) CreateAccount(context.Context, string) (*ledger.AccountResult, error) {
	return &ledger.AccountResult{AccountID: "0.0.1", TxID: "tx"}, nil
}

func (g *setupGateway) AssociateToken(context.Context, string, string, string) (*ledger.TxResult, error) {
	return &ledger.TxResult{TxID: "tx", Status: "SUCCESS"}, nil
}

func (g *setupGateway) TransferTokens(context.Context, ledger.TransferInput) (*ledger.TxResult, error) {
	return &ledger.TxResult{TxID: "tx", Status: "SUCCESS"}, nil
}

func (g *setupGateway) CreateNFTCollection(_ context.Context, name, _ string) (*ledger.TokenResult, error) {
	g.collections = append(g.collections, name)
	return &ledger.TokenResult{TokenID: fmt.Sprintf("0.0.%d", 8000+len(g.collections)), TxID: "tx"}, nil
}

func (g *setupGateway) MintNFT(context.Context, string, []byte) (*ledger.MintResult, error) {
	return &ledger.MintResult{Serial: 1, TxID: "tx"}, nil
}

func (g *setupGateway) TransferNFT(context.Context, ledger.NFTTransferInput) (*ledger.TxResult, error) {
	return &ledger.TxResult{TxID: "tx", Status: "SUCCESS"}, nil
}

func (g *setupGateway) SubmitMessage(context.Context, string, []byte) (*ledger.MessageResult, error) {
	return &ledger.MessageResult{SequenceNumber: 1, TxID: "tx"}, nil
}

func newTopicDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Init("development")
	dsn := fmt.Sprintf("file:setupgov_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE governance_topics (
		id TEXT PRIMARY KEY,
		topic_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	);`).Error)
	return db
}

func TestRunSetup_CreatesCollectionsAndTopics(t *testing.T) {
	db := newTopicDB(t)
	gw := &setupGateway{}
	repo := infraRepos.NewGovernanceTopicRepository(db)
	ids := []string{"0.0.100", "0.0.101", "0.0.102"}

	out, err := runSetup(context.Background(), gw, repo, ids)
	require.NoError(t, err)

	require.Len(t, gw.collections, 3)
	require.Contains(t, out, "GOVERNANCE_CELESTIAL_TOKEN_ID=0.0.8001")
	require.Contains(t, out, "GOVERNANCE_STELLAR_TOKEN_ID=0.0.8002")
	require.Contains(t, out, "GOVERNANCE_COSMIC_TOKEN_ID=0.0.8003")

	topics, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, topics, 3)
}

func TestRunSetup_SkipsExistingTopics(t *testing.T) {
	db := newTopicDB(t)
	gw := &setupGateway{}
	repo := infraRepos.NewGovernanceTopicRepository(db)
	ids := []string{"0.0.100", "0.0.101", "0.0.102"}

	_, err := runSetup(context.Background(), gw, repo, ids)
	require.NoError(t, err)
	_, err = runSetup(context.Background(), gw, repo, ids)
	require.NoError(t, err)

	topics, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, topics, 3)
}

func TestRunSetup_RejectsWrongTopicCount(t *testing.T) {
	db := newTopicDB(t)
	repo := infraRepos.NewGovernanceTopicRepository(db)

	_, err := runSetup(context.Background(), &setupGateway{}, repo, []string{"0.0.100"})
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "topic IDs"))
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"astraldraw.backend/internal/config"
	"astraldraw.backend/internal/domain/entities"
	"astraldraw.backend/internal/domain/repositories"
	"astraldraw.backend/internal/infrastructure/ledger"
	infraRepos "astraldraw.backend/internal/infrastructure/repositories"
	"astraldraw.backend/pkg/logger"
	"astraldraw.backend/pkg/utils"
)

// tierCollections fixes the collection naming per governance tier
var tierCollections = []struct {
	tier   string
	name   string
	symbol string
	envVar string
}{
	{entities.TierCelestial, "AstralDraw Celestial Governance", "ASTRC", "GOVERNANCE_CELESTIAL_TOKEN_ID"},
	{entities.TierStellar, "AstralDraw Stellar Governance", "ASTRS", "GOVERNANCE_STELLAR_TOKEN_ID"},
	{entities.TierCosmic, "AstralDraw Cosmic Governance", "ASTRK", "GOVERNANCE_COSMIC_TOKEN_ID"},
}

// defaultTopics are the discussion areas proposals attach to
var defaultTopics = []struct {
	name        string
	description string
}{
	{"Platform Parameters", "Fees, prize fractions and tier pricing"},
	{"Treasury", "Prize pool and treasury allocation"},
	{"Features", "New draws, venture rules and platform features"},
}

// setup-governance provisions the NFT collections and governance
// topics a fresh deployment needs, then prints the env lines to add
// to the server configuration.
func main() {
	topicIDs := flag.String("topic-ids", "", "comma separated consensus topic IDs, one per governance topic (required)")
	flag.Parse()

	ids := strings.Split(*topicIDs, ",")
	if *topicIDs == "" || len(ids) != len(defaultTopics) {
		log.Fatalf("-topic-ids needs exactly %d comma separated IDs", len(defaultTopics))
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()
	logger.Init(cfg.Server.Env)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.Database.URL(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{PrepareStmt: false})
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	gateway := ledger.NewBridgeClient(cfg.Ledger.BridgeURL, cfg.Ledger.OperatorID, cfg.Ledger.RequestTimeout)
	topicRepo := infraRepos.NewGovernanceTopicRepository(db)

	out, err := runSetup(context.Background(), gateway, topicRepo, ids)
	if err != nil {
		log.Fatalf("governance setup failed: %v", err)
	}
	fmt.Print(out)
}

// runSetup creates one NFT collection per tier and seeds the topic
// catalogue. Existing topics are left alone so the command is safe to
// re-run.
func runSetup(ctx context.Context, gateway ledger.Gateway, topicRepo repositories.GovernanceTopicRepository, topicIDs []string) (string, error) {
	if len(topicIDs) != len(defaultTopics) {
		return "", fmt.Errorf("need %d topic IDs, got %d", len(defaultTopics), len(topicIDs))
	}

	var b strings.Builder
	b.WriteString("# add to .env\n")

	for _, tc := range tierCollections {
		collection, err := gateway.CreateNFTCollection(ctx, tc.name, tc.symbol)
		if err != nil {
			return "", fmt.Errorf("create %s collection: %w", tc.tier, err)
		}
		fmt.Fprintf(&b, "%s=%s\n", tc.envVar, collection.TokenID)
	}

	existing, err := topicRepo.ListActive(ctx)
	if err != nil {
		return "", fmt.Errorf("list topics: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, topic := range existing {
		have[topic.Name] = true
	}

	for i, dt := range defaultTopics {
		if have[dt.name] {
			continue
		}
		topic := &entities.GovernanceTopic{
			ID:          utils.GenerateUUIDv7(),
			TopicID:     topicIDs[i],
			Name:        dt.name,
			Description: dt.description,
			IsActive:    true,
			CreatedAt:   time.Now(),
		}
		if err := topicRepo.Create(ctx, topic); err != nil {
			return "", fmt.Errorf("create topic %s: %w", dt.name, err)
		}
	}

	return b.String(), nil
}

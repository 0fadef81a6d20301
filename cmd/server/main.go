package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"astraldraw.backend/internal/config"
	"astraldraw.backend/internal/domain/entities"
	"astraldraw.backend/internal/infrastructure/jobs"
	"astraldraw.backend/internal/infrastructure/ledger"
	"astraldraw.backend/internal/infrastructure/repositories"
	"astraldraw.backend/internal/interfaces/http/handlers"
	"astraldraw.backend/internal/interfaces/http/middleware"
	"astraldraw.backend/internal/usecases"
	"astraldraw.backend/pkg/crypto"
	"astraldraw.backend/pkg/jwt"
	"astraldraw.backend/pkg/logger"
	"astraldraw.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("Connected to PostgreSQL via GORM")
	}

	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	keyCipher, err := crypto.NewKeyCipher(cfg.Security.WalletEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize key cipher: %w", err)
	}

	gateway := ledger.NewBridgeClient(cfg.Ledger.BridgeURL, cfg.Ledger.OperatorID, cfg.Ledger.RequestTimeout)
	mirror := ledger.NewMirrorClient(cfg.Ledger.MirrorURL, cfg.Ledger.RequestTimeout)
	limiter := redis.NewRateLimiter(usecases.RateLimitRules)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	drawRepo := repositories.NewDrawRepository(db)
	keyRepo := repositories.NewForgedKeyRepository(db)
	ventureRepo := repositories.NewVentureRepository(db)
	ticketRepo := repositories.NewVentureTicketRepository(db)
	ownershipRepo := repositories.NewVentureOwnershipRepository(db)
	nftRepo := repositories.NewGovernanceNFTRepository(db)
	topicRepo := repositories.NewGovernanceTopicRepository(db)
	proposalRepo := repositories.NewProposalRepository(db)
	voteRepo := repositories.NewVoteRepository(db)
	listingRepo := repositories.NewNFTListingRepository(db)
	alertRepo := repositories.NewAlertRepository(db)
	intentRepo := repositories.NewLedgerIntentRepository(db)
	uow := repositories.NewUnitOfWork(db)

	tiers := governanceTiers(cfg)

	// Initialize usecases
	authUsecase := usecases.NewAuthUsecase(userRepo, walletRepo, uow, gateway, keyCipher, jwtService, cfg.Ledger.TokenID)
	walletUsecase := usecases.NewWalletUsecase(walletRepo, gateway, mirror, cfg.Ledger.TokenID, cfg.Ledger.PoolAccountID)
	drawUsecase := usecases.NewDrawUsecase(drawRepo, keyRepo, walletRepo, alertRepo, intentRepo, uow, gateway, mirror,
		cfg.Ledger.TokenID, cfg.Ledger.PoolAccountID, cfg.Ledger.AuditTopicID, cfg.Draw.EntryFee, cfg.Draw.PrizeFraction)
	ventureUsecase := usecases.NewVentureUsecase(ventureRepo, ticketRepo, ownershipRepo, walletRepo, alertRepo, intentRepo, uow, gateway,
		cfg.Ledger.TokenID, cfg.Ledger.PoolAccountID, cfg.Ledger.AuditTopicID)
	governanceUsecase := usecases.NewGovernanceUsecase(nftRepo, topicRepo, proposalRepo, voteRepo, listingRepo, walletRepo, intentRepo, uow, gateway,
		limiter, cfg.Ledger.TokenID, cfg.Ledger.PoolAccountID, tiers,
		cfg.Governance.VotingDuration, cfg.Governance.MinApprovalPercentage)
	alertUsecase := usecases.NewAlertUsecase(alertRepo)
	statsUsecase := usecases.NewStatsUsecase(userRepo, drawRepo, ventureRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authUsecase)
	walletHandler := handlers.NewWalletHandler(walletUsecase)
	drawHandler := handlers.NewDrawHandler(drawUsecase)
	ventureHandler := handlers.NewVentureHandler(ventureUsecase)
	governanceHandler := handlers.NewGovernanceHandler(governanceUsecase)
	alertHandler := handlers.NewAlertHandler(alertUsecase)
	statsHandler := handlers.NewStatsHandler(statsUsecase)

	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reconciler := jobs.NewIntentReconciler(intentRepo, keyRepo, ticketRepo, drawRepo, walletRepo, gateway,
		cfg.Ledger.TokenID, cfg.Ledger.PoolAccountID)
	go reconciler.Start(ctx)

	scheduler := jobs.NewDrawScheduler(drawRepo, drawUsecase, "")
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start draw scheduler: %w", err)
	}

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:       authHandler,
		walletHandler:     walletHandler,
		drawHandler:       drawHandler,
		ventureHandler:    ventureHandler,
		governanceHandler: governanceHandler,
		alertHandler:      alertHandler,
		statsHandler:      statsHandler,
		authMiddleware:    authMiddleware,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		reconciler.Stop()
		scheduler.Stop()
		cancel()
	}()

	log.Printf("AstralDraw backend starting on port %s", cfg.Server.Port)
	log.Printf("API: http://localhost:%s/api/v1", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// governanceTiers binds the fixed tier catalogue to the NFT collections
// configured for this deployment
func governanceTiers(cfg *config.Config) map[string]entities.TierConfig {
	tokenIDs := map[string]string{
		entities.TierCelestial: cfg.Governance.CelestialTokenID,
		entities.TierStellar:   cfg.Governance.StellarTokenID,
		entities.TierCosmic:    cfg.Governance.CosmicTokenID,
	}
	tiers := make(map[string]entities.TierConfig, len(usecases.GovernanceTiers))
	for name, tier := range usecases.GovernanceTiers {
		tier.TokenID = tokenIDs[name]
		tiers[name] = tier
	}
	return tiers
}

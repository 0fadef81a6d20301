package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"astraldraw.backend/internal/domain/entities"
	"astraldraw.backend/internal/infrastructure/repositories"
	"astraldraw.backend/pkg/crypto"
	"astraldraw.backend/pkg/utils"
)

func TestStatsUsecase_GetPlatformStats(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	createDrawTables(t, db)
	createVentureTables(t, db)
	newTestRedis(t)

	userRepo := repositories.NewUserRepository(db)
	drawRepo := repositories.NewDrawRepository(db)
	ventureRepo := repositories.NewVentureRepository(db)
	ctx := context.Background()

	hash, err := crypto.HashPassword("sup3r-secret")
	require.NoError(t, err)
	require.NoError(t, userRepo.Create(ctx, &entities.User{
		ID:           utils.GenerateUUIDv7(),
		Email:        "ada@example.com",
		PasswordHash: hash,
		Role:         entities.RoleUser,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}))

	require.NoError(t, drawRepo.Create(ctx, &entities.Draw{
		ID:                    utils.GenerateUUIDv7(),
		Title:                 "Ended Round",
		Symbol:                "END",
		PrizePool:             decimal.NewFromInt(1000),
		DrawAt:                time.Now().Add(-time.Hour),
		Status:                entities.DrawStatusEnded,
		TotalTicketsSold:      12,
		TotalPrizeDistributed: decimal.NewFromInt(700),
		CreatedAt:             time.Now(),
	}))

	require.NoError(t, ventureRepo.Create(ctx, &entities.Venture{
		ID:            utils.GenerateUUIDv7(),
		Name:          "Orbital Farms",
		Slug:          "orbital-farms",
		FounderID:     utils.GenerateUUIDv7(),
		FundingGoal:   decimal.NewFromInt(10000),
		FundingRaised: decimal.NewFromInt(2500),
		TicketPrice:   decimal.NewFromInt(500),
		MaxTickets:    20,
		FundingStart:  time.Now(),
		FundingEnd:    time.Now().Add(time.Hour),
		Status:        entities.VentureStatusFunding,
		CreatedAt:     time.Now(),
	}))

	uc := NewStatsUsecase(userRepo, drawRepo, ventureRepo)

	stats, err := uc.GetPlatformStats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.TotalUsers)
	require.Equal(t, int64(1), stats.TotalDraws)
	require.Equal(t, int64(12), stats.TotalTicketsSold)
	require.True(t, stats.TotalPrizeDistributed.Equal(decimal.NewFromInt(700)))
	require.Equal(t, int64(1), stats.TotalVentures)
	require.True(t, stats.TotalFundingRaised.Equal(decimal.NewFromInt(2500)))

	// second read comes from the cache, not the DB
	require.NoError(t, userRepo.Create(ctx, &entities.User{
		ID:           utils.GenerateUUIDv7(),
		Email:        "grace@example.com",
		PasswordHash: hash,
		Role:         entities.RoleUser,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}))
	cached, err := uc.GetPlatformStats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), cached.TotalUsers)
}

func TestAlertUsecase(t *testing.T) {
	db := newTestDB(t)
	createAlertTable(t, db)

	alertRepo := repositories.NewAlertRepository(db)
	uc := NewAlertUsecase(alertRepo)
	ctx := context.Background()
	userID := utils.GenerateUUIDv7()

	for i := 0; i < 3; i++ {
		require.NoError(t, alertRepo.Create(ctx, &entities.Alert{
			ID:        utils.GenerateUUIDv7(),
			UserID:    userID,
			Category:  entities.AlertDraw,
			Title:     "Draw opened",
			Message:   "A new draw is live",
			CreatedAt: time.Now(),
		}))
	}

	alerts, total, err := uc.List(ctx, userID, true, 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)

	require.NoError(t, uc.MarkRead(ctx, alerts[0].ID, userID))
	_, total, err = uc.List(ctx, userID, true, 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)

	require.NoError(t, uc.MarkAllRead(ctx, userID))
	_, total, err = uc.List(ctx, userID, true, 10, 0)
	require.NoError(t, err)
	require.Zero(t, total)
}

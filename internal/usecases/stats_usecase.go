package usecases

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"astraldraw.backend/internal/domain/repositories"
	"astraldraw.backend/pkg/logger"
	"astraldraw.backend/pkg/redis"
)

const (
	statsCacheKey = "platform_stats"
	statsCacheTTL = time.Minute
)

// PlatformStats is the public landing-page summary
type PlatformStats struct {
	TotalUsers            int64           `json:"totalUsers"`
	TotalDraws            int64           `json:"totalDraws"`
	TotalTicketsSold      int64           `json:"totalTicketsSold"`
	TotalPrizeDistributed decimal.Decimal `json:"totalPrizeDistributed"`
	TotalVentures         int64           `json:"totalVentures"`
	TotalFundingRaised    decimal.Decimal `json:"totalFundingRaised"`
	GeneratedAt           time.Time       `json:"generatedAt"`
}

// StatsUsecase aggregates platform counters, cached briefly in redis
// so the landing page does not hammer the database.
type StatsUsecase struct {
	userRepo    repositories.UserRepository
	drawRepo    repositories.DrawRepository
	ventureRepo repositories.VentureRepository
}

// NewStatsUsecase creates a new stats usecase
func NewStatsUsecase(
	userRepo repositories.UserRepository,
	drawRepo repositories.DrawRepository,
	ventureRepo repositories.VentureRepository,
) *StatsUsecase {
	return &StatsUsecase{
		userRepo:    userRepo,
		drawRepo:    drawRepo,
		ventureRepo: ventureRepo,
	}
}

// GetPlatformStats returns the cached summary, recomputing on a miss
func (u *StatsUsecase) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	if cached, err := redis.Get(ctx, statsCacheKey); err == nil {
		var stats PlatformStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	stats, err := u.compute(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(stats); err == nil {
		if err := redis.Set(ctx, statsCacheKey, raw, statsCacheTTL); err != nil {
			logger.Warn(ctx, "stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (u *StatsUsecase) compute(ctx context.Context) (*PlatformStats, error) {
	stats := &PlatformStats{
		TotalPrizeDistributed: decimal.Zero,
		TotalFundingRaised:    decimal.Zero,
		GeneratedAt:           time.Now(),
	}

	users, err := u.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalUsers = users

	draws, total, err := u.drawRepo.List(ctx, nil, MaxPageSize, 0)
	if err != nil {
		return nil, err
	}
	stats.TotalDraws = total
	for _, d := range draws {
		stats.TotalTicketsSold += int64(d.TotalTicketsSold)
		stats.TotalPrizeDistributed = stats.TotalPrizeDistributed.Add(d.TotalPrizeDistributed)
	}

	ventures, total, err := u.ventureRepo.List(ctx, nil, MaxPageSize, 0)
	if err != nil {
		return nil, err
	}
	stats.TotalVentures = total
	for _, v := range ventures {
		stats.TotalFundingRaised = stats.TotalFundingRaised.Add(v.FundingRaised)
	}

	return stats, nil
}

package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	domainerrors "astraldraw.backend/internal/domain/errors"
	"astraldraw.backend/internal/domain/repositories"
	"astraldraw.backend/internal/usecases"
	"astraldraw.backend/pkg/logger"
)

// DrawScheduler settles active draws whose draw time has passed. It
// runs on a cron schedule so settlement does not depend on an admin
// calling the process endpoint.
type DrawScheduler struct {
	drawRepo    repositories.DrawRepository
	drawUsecase *usecases.DrawUsecase
	cron        *cron.Cron
	spec        string
}

func NewDrawScheduler(drawRepo repositories.DrawRepository, drawUsecase *usecases.DrawUsecase, spec string) *DrawScheduler {
	if spec == "" {
		spec = "@every 1m"
	}
	return &DrawScheduler{
		drawRepo:    drawRepo,
		drawUsecase: drawUsecase,
		cron:        cron.New(),
		spec:        spec,
	}
}

func (j *DrawScheduler) Start(ctx context.Context) error {
	if _, err := j.cron.AddFunc(j.spec, func() { j.RunOnce(ctx) }); err != nil {
		return err
	}
	j.cron.Start()
	logger.Info(ctx, "draw scheduler started", zap.String("spec", j.spec))
	return nil
}

func (j *DrawScheduler) Stop() {
	<-j.cron.Stop().Done()
}

// RunOnce settles every due draw. Each draw is processed independently
// so one failure does not block the rest.
func (j *DrawScheduler) RunOnce(ctx context.Context) {
	due, err := j.drawRepo.ListDue(ctx, time.Now())
	if err != nil {
		logger.Error(ctx, "due draw listing failed", zap.Error(err))
		return
	}

	for _, draw := range due {
		result, err := j.drawUsecase.ProcessDraw(ctx, draw.ID)
		if err != nil {
			// lost the race with a concurrent processor
			if errors.Is(err, domainerrors.ErrDrawNotActive) {
				continue
			}
			logger.Error(ctx, "scheduled draw settlement failed",
				zap.String("draw_id", draw.ID.String()),
				zap.Error(err))
			continue
		}
		logger.Info(ctx, "draw settled on schedule",
			zap.String("draw_id", draw.ID.String()),
			zap.Ints("winning_keys", result.WinningKeys))
	}
}

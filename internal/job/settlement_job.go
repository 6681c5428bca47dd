package job

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"stars-workflow-api/internal/domain"
	"stars-workflow-api/internal/dto"
	"stars-workflow-api/internal/response"
)

// RoundProcessor is the part of the settlement service the job drives
type RoundProcessor interface {
	ProcessRound(ctx context.Context, year, quarter int, round domain.SettlementRound) (*dto.RoundReport, error)
}

// SettlementJob processes the configured round of the current quarter on a cron schedule
type SettlementJob struct {
	processor RoundProcessor
	round     domain.SettlementRound
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time

	cron *cron.Cron
}

// NewSettlementJob creates a new SettlementJob. A non-positive timeout means 10 minutes.
func NewSettlementJob(processor RoundProcessor, round domain.SettlementRound, timeout time.Duration, logger *zap.Logger) *SettlementJob {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &SettlementJob{
		processor: processor,
		round:     round,
		timeout:   timeout,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run processes one round. Overlap with another replica is reported, not treated as failure.
func (j *SettlementJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	year, quarter := domain.QuarterOf(j.now())
	j.logger.Info("Starting settlement round",
		zap.Int("quarter_year", year),
		zap.Int("quarter_number", quarter),
		zap.String("round", string(j.round)),
	)

	report, err := j.processor.ProcessRound(ctx, year, quarter, j.round)
	if err != nil {
		var appErr *response.AppError
		if errors.As(err, &appErr) && appErr.Code == response.ErrCodeRoundInProgress {
			j.logger.Info("Settlement round already running elsewhere, skipping",
				zap.Int("quarter_year", year),
				zap.Int("quarter_number", quarter),
				zap.String("round", string(j.round)),
			)
			return
		}
		j.logger.Error("Settlement round failed",
			zap.Int("quarter_year", year),
			zap.Int("quarter_number", quarter),
			zap.String("round", string(j.round)),
			zap.Error(err),
		)
		return
	}

	j.logger.Info("Settlement round completed",
		zap.Int("quarter_year", year),
		zap.Int("quarter_number", quarter),
		zap.String("round", string(j.round)),
		zap.Int("total", report.Total),
		zap.Int("completed", report.Completed),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
	)
}

// Start schedules Run. An empty schedule leaves the job disabled and returns false.
func (j *SettlementJob) Start(schedule string) (bool, error) {
	if schedule == "" {
		j.logger.Info("Settlement cron schedule not set, scheduled rounds disabled")
		return false, nil
	}

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := c.AddJob(schedule, j); err != nil {
		return false, err
	}
	c.Start()
	j.cron = c

	j.logger.Info("Settlement job scheduled",
		zap.String("schedule", schedule),
		zap.String("round", string(j.round)),
	)
	return true, nil
}

// Stop stops scheduling and waits for a running round until ctx is done
func (j *SettlementJob) Stop(ctx context.Context) {
	if j.cron == nil {
		return
	}
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
		j.logger.Warn("Settlement round still running at shutdown")
	}
}

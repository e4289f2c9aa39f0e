package app

import (
	"context"
	"time"

	"github.com/pickemhq/pickem-api/internal/config"
	"github.com/pickemhq/pickem-api/internal/infrastructure/jobqueue"
	"github.com/pickemhq/pickem-api/internal/platform/logging"
	"github.com/pickemhq/pickem-api/internal/usecase"
)

// StartJobScheduler enqueues results-sync and leaderboard recompute
// runs through QStash on a fixed interval. QStash calls back into the
// internal job routes, so delivery retries live outside this process.
// The returned stop blocks until the scheduler goroutine exits.
func StartJobScheduler(cfg config.Config, games *usecase.GameService, logger *logging.Logger) func() {
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.QStashEnabled {
		logger.Info("job scheduler disabled", "reason", "QSTASH_ENABLED=false")
		return func() {}
	}

	publisher := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		Timeout:          cfg.QStashTimeout,
		CircuitBreaker:   cfg.QStashCircuit,
	}, logger)

	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)

		ticker := time.NewTicker(cfg.JobScheduleInterval)
		defer ticker.Stop()

		logger.Info("job scheduler started", "interval", cfg.JobScheduleInterval.String())
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				enqueueScheduledJobs(publisher, games, logger)
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}

func enqueueScheduledJobs(publisher *jobqueue.QStashPublisher, games *usecase.GameService, logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	week, err := games.CurrentWeek(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "resolve current week for scheduled sync", "error", err)
		return
	}

	if err := publisher.EnqueueResultsSync(ctx, week, 0); err != nil {
		logger.ErrorContext(ctx, "enqueue results sync", "week", week, "error", err)
	}
	if err := publisher.EnqueueRecompute(ctx, time.Minute); err != nil {
		logger.ErrorContext(ctx, "enqueue leaderboard recompute", "error", err)
	}
}

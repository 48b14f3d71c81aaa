package scheduler

import (
	"context"
	"sync"
	"time"

	billingUsecases "github.com/mentora-inc/mentora/internal/application/billing/usecases"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

// SweepScheduler drives the periodic subscription lifecycle sweep: trial
// conversion first, then expiry. The sweep also runs once at startup to
// catch rows that lapsed while the service was down.
type SweepScheduler struct {
	sweepUC  *billingUsecases.SweepSubscriptionsUseCase
	logger   logger.Interface
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	interval time.Duration
}

func NewSweepScheduler(
	sweepUC *billingUsecases.SweepSubscriptionsUseCase,
	interval time.Duration,
	logger logger.Interface,
) *SweepScheduler {
	return &SweepScheduler{
		sweepUC:  sweepUC,
		logger:   logger,
		stopChan: make(chan struct{}),
		interval: interval,
	}
}

// Start starts the scheduler
func (s *SweepScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting subscription sweep scheduler", "interval", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLoop(ctx)
	}()
}

// Stop stops the scheduler gracefully
func (s *SweepScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping subscription sweep scheduler")
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Infow("subscription sweep scheduler stopped")
	})
}

func (s *SweepScheduler) runLoop(ctx context.Context) {
	s.runSweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("sweep scheduler stopped due to context cancellation")
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *SweepScheduler) runSweep(ctx context.Context) {
	startTime := time.Now()

	result, err := s.sweepUC.Execute(ctx)
	if err != nil {
		s.logger.Errorw("subscription sweep failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if result.TrialsEnded > 0 || result.Expired > 0 || result.Errors > 0 {
		s.logger.Infow("subscription sweep finished",
			"sweep_run_id", result.RunID,
			"trials_ended", result.TrialsEnded,
			"expired", result.Expired,
			"errors", result.Errors,
			"duration", time.Since(startTime),
		)
	} else {
		s.logger.Debugw("subscription sweep found nothing to do",
			"sweep_run_id", result.RunID,
			"duration", time.Since(startTime),
		)
	}
}

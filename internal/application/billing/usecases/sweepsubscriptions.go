package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mentora-inc/mentora/internal/domain/billing"
	vo "github.com/mentora-inc/mentora/internal/domain/billing/valueobjects"
	"github.com/mentora-inc/mentora/internal/shared/clock"
	"github.com/mentora-inc/mentora/internal/shared/id"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

// SweepResult summarizes one sweep run.
type SweepResult struct {
	RunID        string
	TrialsEnded  int
	Expired      int
	Errors       int
}

// SweepSubscriptionsUseCase is the periodic lifecycle sweep. Pass one
// converts ended trials to ACTIVE paid periods; pass two expires ACTIVE
// subscriptions whose period has ended. Pass one completes before pass two
// starts, so a trial that ends gets its fresh paid period rather than being
// expired in the same run. Each row is processed in its own transaction; a
// failing row is logged and skipped.
type SweepSubscriptionsUseCase struct {
	subscriptionRepo billing.SubscriptionRepository
	eventRepo        billing.SubscriptionEventRepository
	txManager        TransactionManager
	clock            clock.Clock
	logger           logger.Interface
}

func NewSweepSubscriptionsUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	eventRepo billing.SubscriptionEventRepository,
	txManager TransactionManager,
	clk clock.Clock,
	logger logger.Interface,
) *SweepSubscriptionsUseCase {
	return &SweepSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		eventRepo:        eventRepo,
		txManager:        txManager,
		clock:            clk,
		logger:           logger,
	}
}

func (uc *SweepSubscriptionsUseCase) Execute(ctx context.Context) (SweepResult, error) {
	result := SweepResult{RunID: uuid.NewString()}
	now := uc.clock.Now()
	log := uc.logger.With("sweep_run_id", result.RunID)

	trials, err := uc.subscriptionRepo.FindTrialEnded(ctx, now)
	if err != nil {
		log.Errorw("failed to find ended trials", "error", err)
		return result, fmt.Errorf("failed to find ended trials: %w", err)
	}
	for _, sub := range trials {
		if err := uc.endTrial(ctx, sub, now, result.RunID); err != nil {
			result.Errors++
			log.Errorw("failed to end trial", "error", err, "subscription_sid", sub.SID())
			continue
		}
		result.TrialsEnded++
	}

	// Pass two runs after every trial conversion so a freshly converted
	// subscription is never expired in the same sweep.
	ended, err := uc.subscriptionRepo.FindPeriodEnded(ctx, now)
	if err != nil {
		log.Errorw("failed to find ended periods", "error", err)
		return result, fmt.Errorf("failed to find ended periods: %w", err)
	}
	for _, sub := range ended {
		if err := uc.expire(ctx, sub, now, result.RunID); err != nil {
			result.Errors++
			log.Errorw("failed to expire subscription", "error", err, "subscription_sid", sub.SID())
			continue
		}
		result.Expired++
	}

	if result.TrialsEnded > 0 || result.Expired > 0 || result.Errors > 0 {
		log.Infow("sweep completed",
			"trials_ended", result.TrialsEnded,
			"expired", result.Expired,
			"errors", result.Errors,
		)
	}
	return result, nil
}

func (uc *SweepSubscriptionsUseCase) endTrial(ctx context.Context, sub *billing.Subscription, now time.Time, runID string) error {
	trialEnd := sub.TrialEnd()
	return uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := sub.EndTrial(now); err != nil {
			return err
		}
		if err := uc.subscriptionRepo.Update(txCtx, sub); err != nil {
			// A concurrent admin action may win the version race; the
			// next sweep re-evaluates the row.
			return fmt.Errorf("failed to update subscription: %w", err)
		}

		payload := map[string]any{
			"sweep_run_id":       runID,
			"current_period_end": sub.CurrentPeriodEnd(),
		}
		if trialEnd != nil {
			payload["trial_end"] = *trialEnd
		}
		return uc.appendEvent(txCtx, sub, vo.EventTrialEnded, payload, now)
	})
}

func (uc *SweepSubscriptionsUseCase) expire(ctx context.Context, sub *billing.Subscription, now time.Time, runID string) error {
	return uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := sub.MarkExpired(now); err != nil {
			return err
		}
		if err := uc.subscriptionRepo.Update(txCtx, sub); err != nil {
			return fmt.Errorf("failed to update subscription: %w", err)
		}

		payload := map[string]any{
			"sweep_run_id":       runID,
			"current_period_end": sub.CurrentPeriodEnd(),
		}
		return uc.appendEvent(txCtx, sub, vo.EventExpired, payload, now)
	})
}

func (uc *SweepSubscriptionsUseCase) appendEvent(ctx context.Context, sub *billing.Subscription, eventType vo.EventType, payload map[string]any, now time.Time) error {
	sid, err := id.NewEventID()
	if err != nil {
		return fmt.Errorf("failed to generate event id: %w", err)
	}
	event, err := billing.NewSubscriptionEvent(sid, sub.ID(), eventType, payload, now)
	if err != nil {
		return fmt.Errorf("failed to build event: %w", err)
	}
	if err := uc.eventRepo.Append(ctx, event); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

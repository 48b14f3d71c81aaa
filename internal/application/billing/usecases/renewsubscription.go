package usecases

import (
	"context"
	"fmt"

	"github.com/mentora-inc/mentora/internal/application/billing/dto"
	"github.com/mentora-inc/mentora/internal/domain/billing"
	vo "github.com/mentora-inc/mentora/internal/domain/billing/valueobjects"
	"github.com/mentora-inc/mentora/internal/shared/clock"
	apperrors "github.com/mentora-inc/mentora/internal/shared/errors"
	"github.com/mentora-inc/mentora/internal/shared/id"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

type RenewSubscriptionCommand struct {
	SubscriptionSID string
}

// RenewSubscriptionUseCase extends the current period by one billing period
// length. Operators call this after confirming an out-of-band payment;
// unlike Reactivate the period start never moves.
type RenewSubscriptionUseCase struct {
	subscriptionRepo billing.SubscriptionRepository
	planRepo         billing.PlanRepository
	eventRepo        billing.SubscriptionEventRepository
	txManager        TransactionManager
	clock            clock.Clock
	logger           logger.Interface
}

func NewRenewSubscriptionUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	planRepo billing.PlanRepository,
	eventRepo billing.SubscriptionEventRepository,
	txManager TransactionManager,
	clk clock.Clock,
	logger logger.Interface,
) *RenewSubscriptionUseCase {
	return &RenewSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		eventRepo:        eventRepo,
		txManager:        txManager,
		clock:            clk,
		logger:           logger,
	}
}

func (uc *RenewSubscriptionUseCase) Execute(ctx context.Context, cmd RenewSubscriptionCommand) (*dto.SubscriptionDTO, error) {
	sub, err := uc.subscriptionRepo.GetBySID(ctx, cmd.SubscriptionSID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("subscription not found")
	}

	now := uc.clock.Now()

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := sub.Renew(now); err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		if err := uc.subscriptionRepo.Update(txCtx, sub); err != nil {
			return fmt.Errorf("failed to update subscription: %w", err)
		}

		sid, err := id.NewEventID()
		if err != nil {
			return fmt.Errorf("failed to generate event id: %w", err)
		}
		payload := map[string]any{
			"billing_period":     sub.BillingPeriod().String(),
			"current_period_end": sub.CurrentPeriodEnd(),
		}
		event, err := billing.NewSubscriptionEvent(sid, sub.ID(), vo.EventRenewed, payload, now)
		if err != nil {
			return fmt.Errorf("failed to build event: %w", err)
		}
		if err := uc.eventRepo.Append(txCtx, event); err != nil {
			return fmt.Errorf("failed to append event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("subscription renewed",
		"subscription_sid", sub.SID(),
		"teacher_id", sub.TeacherID(),
		"period_end", sub.CurrentPeriodEnd(),
	)

	plan, err := uc.planRepo.GetByID(ctx, sub.PlanID())
	if err != nil {
		uc.logger.Warnw("failed to load plan for response", "error", err, "plan_id", sub.PlanID())
	}
	return dto.ToSubscriptionDTO(sub, plan, -1, now), nil
}

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

type ReactivateSubscriptionCommand struct {
	SubscriptionSID string
	// ExtendDays <= 0 means one billing period. Clamped to [1,365].
	ExtendDays int
}

// ReactivateSubscriptionUseCase brings a canceled or expired subscription
// back to ACTIVE on its existing plan, extending an unexpired period or
// restarting an expired one.
type ReactivateSubscriptionUseCase struct {
	subscriptionRepo billing.SubscriptionRepository
	planRepo         billing.PlanRepository
	eventRepo        billing.SubscriptionEventRepository
	txManager        TransactionManager
	clock            clock.Clock
	logger           logger.Interface
}

func NewReactivateSubscriptionUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	planRepo billing.PlanRepository,
	eventRepo billing.SubscriptionEventRepository,
	txManager TransactionManager,
	clk clock.Clock,
	logger logger.Interface,
) *ReactivateSubscriptionUseCase {
	return &ReactivateSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		eventRepo:        eventRepo,
		txManager:        txManager,
		clock:            clk,
		logger:           logger,
	}
}

func (uc *ReactivateSubscriptionUseCase) Execute(ctx context.Context, cmd ReactivateSubscriptionCommand) (*dto.SubscriptionDTO, error) {
	sub, err := uc.subscriptionRepo.GetBySID(ctx, cmd.SubscriptionSID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("subscription not found")
	}

	plan, err := uc.planRepo.GetByID(ctx, sub.PlanID())
	if err != nil {
		uc.logger.Errorw("failed to get plan", "error", err, "plan_id", sub.PlanID())
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		return nil, apperrors.NewNotFoundError("plan not found")
	}

	prevStatus := sub.Status()
	now := uc.clock.Now()

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := sub.Reactivate(plan, cmd.ExtendDays, now); err != nil {
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
			"previous_status":    prevStatus.String(),
			"extend_days":        cmd.ExtendDays,
			"current_period_end": sub.CurrentPeriodEnd(),
		}
		event, err := billing.NewSubscriptionEvent(sid, sub.ID(), vo.EventReactivated, payload, now)
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

	uc.logger.Infow("subscription reactivated",
		"subscription_sid", sub.SID(),
		"teacher_id", sub.TeacherID(),
		"previous_status", prevStatus.String(),
		"period_end", sub.CurrentPeriodEnd(),
	)

	return dto.ToSubscriptionDTO(sub, plan, -1, now), nil
}

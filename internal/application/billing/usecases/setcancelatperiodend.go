package usecases

import (
	"context"
	"fmt"

	"github.com/mentora-inc/mentora/internal/application/billing/dto"
	"github.com/mentora-inc/mentora/internal/domain/billing"
	"github.com/mentora-inc/mentora/internal/shared/clock"
	apperrors "github.com/mentora-inc/mentora/internal/shared/errors"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

type SetCancelAtPeriodEndCommand struct {
	SubscriptionSID   string
	CancelAtPeriodEnd bool
}

// SetCancelAtPeriodEndUseCase flips the soft-cancel flag. This is the only
// mutation that records no audit event: the flag is advisory intent, not a
// lifecycle transition.
type SetCancelAtPeriodEndUseCase struct {
	subscriptionRepo billing.SubscriptionRepository
	planRepo         billing.PlanRepository
	clock            clock.Clock
	logger           logger.Interface
}

func NewSetCancelAtPeriodEndUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	planRepo billing.PlanRepository,
	clk clock.Clock,
	logger logger.Interface,
) *SetCancelAtPeriodEndUseCase {
	return &SetCancelAtPeriodEndUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		clock:            clk,
		logger:           logger,
	}
}

func (uc *SetCancelAtPeriodEndUseCase) Execute(ctx context.Context, cmd SetCancelAtPeriodEndCommand) (*dto.SubscriptionDTO, error) {
	sub, err := uc.subscriptionRepo.GetBySID(ctx, cmd.SubscriptionSID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("subscription not found")
	}

	now := uc.clock.Now()
	sub.SetCancelAtPeriodEnd(cmd.CancelAtPeriodEnd, now)

	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		uc.logger.Errorw("failed to update subscription", "error", err, "subscription_sid", sub.SID())
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	uc.logger.Infow("cancel_at_period_end updated",
		"subscription_sid", sub.SID(),
		"teacher_id", sub.TeacherID(),
		"cancel_at_period_end", cmd.CancelAtPeriodEnd,
	)

	plan, err := uc.planRepo.GetByID(ctx, sub.PlanID())
	if err != nil {
		uc.logger.Warnw("failed to load plan for response", "error", err, "plan_id", sub.PlanID())
	}
	return dto.ToSubscriptionDTO(sub, plan, -1, now), nil
}

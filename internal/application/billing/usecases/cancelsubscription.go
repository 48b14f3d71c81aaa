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

type CancelSubscriptionCommand struct {
	SubscriptionSID string
	Reason          string
}

// CancelSubscriptionUseCase terminates a subscription immediately. No
// proration, no refunds; existing student assignments are untouched and the
// roster subsystem stops admitting new ones on its next quota check.
type CancelSubscriptionUseCase struct {
	subscriptionRepo billing.SubscriptionRepository
	planRepo         billing.PlanRepository
	eventRepo        billing.SubscriptionEventRepository
	txManager        TransactionManager
	clock            clock.Clock
	logger           logger.Interface
}

func NewCancelSubscriptionUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	planRepo billing.PlanRepository,
	eventRepo billing.SubscriptionEventRepository,
	txManager TransactionManager,
	clk clock.Clock,
	logger logger.Interface,
) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		eventRepo:        eventRepo,
		txManager:        txManager,
		clock:            clk,
		logger:           logger,
	}
}

func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, cmd CancelSubscriptionCommand) (*dto.SubscriptionDTO, error) {
	sub, err := uc.subscriptionRepo.GetBySID(ctx, cmd.SubscriptionSID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("subscription not found")
	}

	prevStatus := sub.Status()
	now := uc.clock.Now()

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := sub.Cancel(now); err != nil {
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
			"previous_status": prevStatus.String(),
		}
		if cmd.Reason != "" {
			payload["reason"] = cmd.Reason
		}
		event, err := billing.NewSubscriptionEvent(sid, sub.ID(), vo.EventCanceled, payload, now)
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

	uc.logger.Infow("subscription canceled",
		"subscription_sid", sub.SID(),
		"teacher_id", sub.TeacherID(),
		"previous_status", prevStatus.String(),
	)

	plan, err := uc.planRepo.GetByID(ctx, sub.PlanID())
	if err != nil {
		uc.logger.Warnw("failed to load plan for response", "error", err, "plan_id", sub.PlanID())
	}
	return dto.ToSubscriptionDTO(sub, plan, -1, now), nil
}

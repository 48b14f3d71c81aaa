package usecases

import (
	"context"
	"fmt"

	"github.com/mentora-inc/mentora/internal/application/billing/dto"
	"github.com/mentora-inc/mentora/internal/domain/billing"
	"github.com/mentora-inc/mentora/internal/domain/roster"
	"github.com/mentora-inc/mentora/internal/shared/clock"
	apperrors "github.com/mentora-inc/mentora/internal/shared/errors"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

type GetSubscriptionCommand struct {
	SubscriptionSID string
}

type GetSubscriptionUseCase struct {
	subscriptionRepo billing.SubscriptionRepository
	planRepo         billing.PlanRepository
	rosterSvc        roster.Service
	clock            clock.Clock
	logger           logger.Interface
}

func NewGetSubscriptionUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	planRepo billing.PlanRepository,
	rosterSvc roster.Service,
	clk clock.Clock,
	logger logger.Interface,
) *GetSubscriptionUseCase {
	return &GetSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		rosterSvc:        rosterSvc,
		clock:            clk,
		logger:           logger,
	}
}

func (uc *GetSubscriptionUseCase) Execute(ctx context.Context, cmd GetSubscriptionCommand) (*dto.SubscriptionDTO, error) {
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

	assigned, err := uc.rosterSvc.CountAssignedStudents(ctx, sub.TeacherID())
	if err != nil {
		uc.logger.Warnw("failed to count assigned students", "error", err, "teacher_id", sub.TeacherID())
		assigned = -1
	}

	return dto.ToSubscriptionDTO(sub, plan, assigned, uc.clock.Now()), nil
}

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

type GetTeacherSubscriptionCommand struct {
	TeacherID uint
}

// GetTeacherSubscriptionUseCase resolves a teacher's subscription. Serves
// both the admin lookup and the teacher self-view.
type GetTeacherSubscriptionUseCase struct {
	subscriptionRepo billing.SubscriptionRepository
	planRepo         billing.PlanRepository
	rosterSvc        roster.Service
	clock            clock.Clock
	logger           logger.Interface
}

func NewGetTeacherSubscriptionUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	planRepo billing.PlanRepository,
	rosterSvc roster.Service,
	clk clock.Clock,
	logger logger.Interface,
) *GetTeacherSubscriptionUseCase {
	return &GetTeacherSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		rosterSvc:        rosterSvc,
		clock:            clk,
		logger:           logger,
	}
}

func (uc *GetTeacherSubscriptionUseCase) Execute(ctx context.Context, cmd GetTeacherSubscriptionCommand) (*dto.SubscriptionDTO, error) {
	sub, err := uc.subscriptionRepo.GetByTeacherID(ctx, cmd.TeacherID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "teacher_id", cmd.TeacherID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("teacher has no subscription")
	}

	plan, err := uc.planRepo.GetByID(ctx, sub.PlanID())
	if err != nil {
		uc.logger.Errorw("failed to get plan", "error", err, "plan_id", sub.PlanID())
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	assigned, err := uc.rosterSvc.CountAssignedStudents(ctx, cmd.TeacherID)
	if err != nil {
		uc.logger.Warnw("failed to count assigned students", "error", err, "teacher_id", cmd.TeacherID)
		assigned = -1
	}

	return dto.ToSubscriptionDTO(sub, plan, assigned, uc.clock.Now()), nil
}

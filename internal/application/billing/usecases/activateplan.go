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

type ActivatePlanCommand struct {
	PlanSID string
}

type ActivatePlanUseCase struct {
	planRepo billing.PlanRepository
	cache    PlanCatalogCache
	clock    clock.Clock
	logger   logger.Interface
}

func NewActivatePlanUseCase(
	planRepo billing.PlanRepository,
	cache PlanCatalogCache,
	clk clock.Clock,
	logger logger.Interface,
) *ActivatePlanUseCase {
	return &ActivatePlanUseCase{
		planRepo: planRepo,
		cache:    cache,
		clock:    clk,
		logger:   logger,
	}
}

func (uc *ActivatePlanUseCase) Execute(ctx context.Context, cmd ActivatePlanCommand) (*dto.PlanDTO, error) {
	plan, err := uc.planRepo.GetBySID(ctx, cmd.PlanSID)
	if err != nil {
		uc.logger.Errorw("failed to get plan", "error", err, "plan_sid", cmd.PlanSID)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		return nil, apperrors.NewNotFoundError("plan not found")
	}

	plan.Activate(uc.clock.Now())

	if err := uc.planRepo.Update(ctx, plan); err != nil {
		uc.logger.Errorw("failed to update plan", "error", err, "plan_sid", plan.SID())
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	uc.cache.Invalidate(ctx)

	uc.logger.Infow("plan activated", "plan_sid", plan.SID(), "code", plan.Code())
	return dto.ToPlanDTO(plan), nil
}

package usecases

import (
	"context"
	"fmt"

	"github.com/mentora-inc/mentora/internal/application/billing/dto"
	"github.com/mentora-inc/mentora/internal/domain/billing"
	apperrors "github.com/mentora-inc/mentora/internal/shared/errors"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

type GetPlanCommand struct {
	PlanSID string
}

type GetPlanUseCase struct {
	planRepo billing.PlanRepository
	logger   logger.Interface
}

func NewGetPlanUseCase(planRepo billing.PlanRepository, logger logger.Interface) *GetPlanUseCase {
	return &GetPlanUseCase{planRepo: planRepo, logger: logger}
}

func (uc *GetPlanUseCase) Execute(ctx context.Context, cmd GetPlanCommand) (*dto.PlanDTO, error) {
	plan, err := uc.planRepo.GetBySID(ctx, cmd.PlanSID)
	if err != nil {
		uc.logger.Errorw("failed to get plan", "error", err, "plan_sid", cmd.PlanSID)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		return nil, apperrors.NewNotFoundError("plan not found")
	}
	return dto.ToPlanDTO(plan), nil
}

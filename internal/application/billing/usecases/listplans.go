package usecases

import (
	"context"
	"fmt"

	"github.com/mentora-inc/mentora/internal/application/billing/dto"
	"github.com/mentora-inc/mentora/internal/domain/billing"
	"github.com/mentora-inc/mentora/internal/shared/logger"
	"github.com/mentora-inc/mentora/internal/shared/mapper"
)

type ListPlansCommand struct {
	// IsActive filters by sale availability when non-nil.
	IsActive *bool
	Page     int
	PageSize int
}

type ListPlansUseCase struct {
	planRepo billing.PlanRepository
	cache    PlanCatalogCache
	logger   logger.Interface
}

func NewListPlansUseCase(planRepo billing.PlanRepository, cache PlanCatalogCache, logger logger.Interface) *ListPlansUseCase {
	return &ListPlansUseCase{planRepo: planRepo, cache: cache, logger: logger}
}

func (uc *ListPlansUseCase) Execute(ctx context.Context, cmd ListPlansCommand) ([]*dto.PlanDTO, int64, error) {
	plans, total, err := uc.planRepo.List(ctx, billing.PlanFilter{
		IsActive: cmd.IsActive,
		Page:     cmd.Page,
		PageSize: cmd.PageSize,
	})
	if err != nil {
		uc.logger.Errorw("failed to list plans", "error", err)
		return nil, 0, fmt.Errorf("failed to list plans: %w", err)
	}
	return mapper.MapSlicePtr(plans, dto.ToPlanDTO), total, nil
}

// ExecutePublic serves the unauthenticated catalog: active plans only,
// unpaginated, read through the cache.
func (uc *ListPlansUseCase) ExecutePublic(ctx context.Context) ([]*dto.PlanDTO, error) {
	if cached, ok := uc.cache.GetActivePlans(ctx); ok {
		return cached, nil
	}

	active := true
	plans, _, err := uc.planRepo.List(ctx, billing.PlanFilter{IsActive: &active})
	if err != nil {
		uc.logger.Errorw("failed to list plans", "error", err)
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	result := mapper.MapSlicePtr(plans, dto.ToPlanDTO)
	uc.cache.SetActivePlans(ctx, result)
	return result, nil
}

package usecases

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mentora-inc/mentora/internal/application/billing/dto"
	"github.com/mentora-inc/mentora/internal/domain/billing"
	"github.com/mentora-inc/mentora/internal/shared/clock"
	apperrors "github.com/mentora-inc/mentora/internal/shared/errors"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

type UpdatePlanCommand struct {
	PlanSID      string
	Name         string
	StudentLimit int
	PriceMonthly string
	PriceYearly  string
	Currency     string
	TrialDays    int
	Features     map[string]any
}

// UpdatePlanUseCase edits the plan catalog. Existing subscriptions are not
// touched: their snapshots stay frozen until the next explicit transition.
type UpdatePlanUseCase struct {
	planRepo billing.PlanRepository
	cache    PlanCatalogCache
	clock    clock.Clock
	logger   logger.Interface
}

func NewUpdatePlanUseCase(
	planRepo billing.PlanRepository,
	cache PlanCatalogCache,
	clk clock.Clock,
	logger logger.Interface,
) *UpdatePlanUseCase {
	return &UpdatePlanUseCase{
		planRepo: planRepo,
		cache:    cache,
		clock:    clk,
		logger:   logger,
	}
}

func (uc *UpdatePlanUseCase) Execute(ctx context.Context, cmd UpdatePlanCommand) (*dto.PlanDTO, error) {
	plan, err := uc.planRepo.GetBySID(ctx, cmd.PlanSID)
	if err != nil {
		uc.logger.Errorw("failed to get plan", "error", err, "plan_sid", cmd.PlanSID)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		return nil, apperrors.NewNotFoundError("plan not found")
	}

	priceMonthly, err := decimal.NewFromString(cmd.PriceMonthly)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid monthly price")
	}
	priceYearly, err := decimal.NewFromString(cmd.PriceYearly)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid yearly price")
	}

	now := uc.clock.Now()
	if err := plan.Update(cmd.Name, cmd.StudentLimit, priceMonthly, priceYearly, cmd.Currency, cmd.TrialDays, now); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if cmd.Features != nil {
		plan.UpdateFeatures(cmd.Features, now)
	}

	if err := uc.planRepo.Update(ctx, plan); err != nil {
		uc.logger.Errorw("failed to update plan", "error", err, "plan_sid", plan.SID())
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	uc.cache.Invalidate(ctx)

	uc.logger.Infow("plan updated",
		"plan_sid", plan.SID(),
		"code", plan.Code(),
		"student_limit", plan.StudentLimit(),
	)

	return dto.ToPlanDTO(plan), nil
}

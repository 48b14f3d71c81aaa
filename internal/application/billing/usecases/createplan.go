package usecases

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mentora-inc/mentora/internal/application/billing/dto"
	"github.com/mentora-inc/mentora/internal/domain/billing"
	"github.com/mentora-inc/mentora/internal/shared/clock"
	apperrors "github.com/mentora-inc/mentora/internal/shared/errors"
	"github.com/mentora-inc/mentora/internal/shared/id"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

type CreatePlanCommand struct {
	Code         string
	Name         string
	StudentLimit int
	PriceMonthly string
	PriceYearly  string
	Currency     string
	TrialDays    int
	Features     map[string]any
}

type CreatePlanUseCase struct {
	planRepo billing.PlanRepository
	cache    PlanCatalogCache
	clock    clock.Clock
	logger   logger.Interface
}

func NewCreatePlanUseCase(
	planRepo billing.PlanRepository,
	cache PlanCatalogCache,
	clk clock.Clock,
	logger logger.Interface,
) *CreatePlanUseCase {
	return &CreatePlanUseCase{
		planRepo: planRepo,
		cache:    cache,
		clock:    clk,
		logger:   logger,
	}
}

func (uc *CreatePlanUseCase) Execute(ctx context.Context, cmd CreatePlanCommand) (*dto.PlanDTO, error) {
	existing, err := uc.planRepo.GetByCode(ctx, cmd.Code)
	if err != nil {
		uc.logger.Errorw("failed to check plan code", "error", err, "code", cmd.Code)
		return nil, fmt.Errorf("failed to check plan code: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("plan code already exists")
	}

	priceMonthly, err := decimal.NewFromString(cmd.PriceMonthly)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid monthly price")
	}
	priceYearly, err := decimal.NewFromString(cmd.PriceYearly)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid yearly price")
	}

	sid, err := id.NewPlanID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan id: %w", err)
	}

	plan, err := billing.NewPlan(sid, cmd.Code, cmd.Name, cmd.StudentLimit, priceMonthly, priceYearly, cmd.Currency, cmd.TrialDays, uc.clock.Now())
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if len(cmd.Features) > 0 {
		plan.UpdateFeatures(cmd.Features, uc.clock.Now())
	}

	if err := uc.planRepo.Create(ctx, plan); err != nil {
		if apperrors.IsDuplicateError(err) {
			return nil, apperrors.NewConflictError("plan code already exists")
		}
		uc.logger.Errorw("failed to create plan", "error", err, "code", cmd.Code)
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	uc.cache.Invalidate(ctx)

	uc.logger.Infow("plan created",
		"plan_sid", plan.SID(),
		"code", plan.Code(),
		"student_limit", plan.StudentLimit(),
	)

	return dto.ToPlanDTO(plan), nil
}

package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/mentora-inc/mentora/internal/application/billing/dto"
	"github.com/mentora-inc/mentora/internal/domain/billing"
	vo "github.com/mentora-inc/mentora/internal/domain/billing/valueobjects"
	"github.com/mentora-inc/mentora/internal/shared/clock"
	apperrors "github.com/mentora-inc/mentora/internal/shared/errors"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

type ListSubscriptionsCommand struct {
	Status             string
	PlanSID            string
	TeacherID          uint
	BillingPeriod      string
	ExpiringWithinDays int
	Page               int
	PageSize           int
}

// ListSubscriptionsUseCase is the admin listing. Roster counts are not
// joined in; the detail endpoints carry them.
type ListSubscriptionsUseCase struct {
	subscriptionRepo billing.SubscriptionRepository
	planRepo         billing.PlanRepository
	clock            clock.Clock
	logger           logger.Interface
}

func NewListSubscriptionsUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	planRepo billing.PlanRepository,
	clk clock.Clock,
	logger logger.Interface,
) *ListSubscriptionsUseCase {
	return &ListSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		clock:            clk,
		logger:           logger,
	}
}

func (uc *ListSubscriptionsUseCase) Execute(ctx context.Context, cmd ListSubscriptionsCommand) ([]*dto.SubscriptionDTO, int64, error) {
	filter := billing.SubscriptionFilter{
		Page:     cmd.Page,
		PageSize: cmd.PageSize,
	}

	if cmd.Status != "" {
		status, err := vo.ParseSubscriptionStatus(cmd.Status)
		if err != nil {
			return nil, 0, apperrors.NewValidationError(err.Error())
		}
		filter.Status = &status
	}
	if cmd.BillingPeriod != "" {
		period, err := vo.ParseBillingPeriod(cmd.BillingPeriod)
		if err != nil {
			return nil, 0, apperrors.NewValidationError(err.Error())
		}
		filter.BillingPeriod = &period
	}
	if cmd.TeacherID != 0 {
		filter.TeacherID = &cmd.TeacherID
	}
	if cmd.ExpiringWithinDays > 0 {
		from := uc.clock.Now()
		filter.Expiring = &billing.ExpiringWindow{
			From:  from,
			Until: from.Add(time.Duration(cmd.ExpiringWithinDays) * 24 * time.Hour),
		}
	}
	if cmd.PlanSID != "" {
		plan, err := uc.planRepo.GetBySID(ctx, cmd.PlanSID)
		if err != nil {
			uc.logger.Errorw("failed to get plan", "error", err, "plan_sid", cmd.PlanSID)
			return nil, 0, fmt.Errorf("failed to get plan: %w", err)
		}
		if plan == nil {
			return nil, 0, apperrors.NewNotFoundError("plan not found")
		}
		planID := plan.ID()
		filter.PlanID = &planID
	}

	subs, total, err := uc.subscriptionRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list subscriptions", "error", err)
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	// Resolve referenced plans in one pass instead of per row.
	planIDs := make(map[uint]*billing.Plan)
	for _, sub := range subs {
		planIDs[sub.PlanID()] = nil
	}
	for planID := range planIDs {
		plan, err := uc.planRepo.GetByID(ctx, planID)
		if err != nil {
			uc.logger.Warnw("failed to get plan", "error", err, "plan_id", planID)
			continue
		}
		planIDs[planID] = plan
	}

	now := uc.clock.Now()
	result := make([]*dto.SubscriptionDTO, 0, len(subs))
	for _, sub := range subs {
		result = append(result, dto.ToSubscriptionDTO(sub, planIDs[sub.PlanID()], -1, now))
	}
	return result, total, nil
}

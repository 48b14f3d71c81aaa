package usecases

import (
	"context"
	"fmt"

	"github.com/mentora-inc/mentora/internal/application/billing/dto"
	"github.com/mentora-inc/mentora/internal/domain/billing"
	vo "github.com/mentora-inc/mentora/internal/domain/billing/valueobjects"
	"github.com/mentora-inc/mentora/internal/domain/roster"
	"github.com/mentora-inc/mentora/internal/shared/clock"
	apperrors "github.com/mentora-inc/mentora/internal/shared/errors"
	"github.com/mentora-inc/mentora/internal/shared/id"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

type ChangePlanCommand struct {
	SubscriptionSID string
	NewPlanSID      string
	// NewBillingPeriod switches the cycle when non-empty, refreshing the
	// amount snapshot.
	NewBillingPeriod string
	// KeepPeriod preserves the current period boundaries on a live
	// subscription. Terminal subscriptions always restart.
	KeepPeriod bool
	// Effective is IMMEDIATE or NEXT_PERIOD; empty means IMMEDIATE. The
	// value is recorded in the event payload, but the change always
	// applies immediately (NEXT_PERIOD scheduling is not implemented).
	Effective string
}

const (
	EffectiveImmediate  = "IMMEDIATE"
	EffectiveNextPeriod = "NEXT_PERIOD"
)

// ChangePlanUseCase swaps a subscription's plan after checking the roster
// guard: the teacher's current student count must fit the new limit, or the
// whole operation is rejected with no mutation at all.
type ChangePlanUseCase struct {
	subscriptionRepo billing.SubscriptionRepository
	planRepo         billing.PlanRepository
	eventRepo        billing.SubscriptionEventRepository
	rosterSvc        roster.Service
	txManager        TransactionManager
	clock            clock.Clock
	logger           logger.Interface
}

func NewChangePlanUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	planRepo billing.PlanRepository,
	eventRepo billing.SubscriptionEventRepository,
	rosterSvc roster.Service,
	txManager TransactionManager,
	clk clock.Clock,
	logger logger.Interface,
) *ChangePlanUseCase {
	return &ChangePlanUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		eventRepo:        eventRepo,
		rosterSvc:        rosterSvc,
		txManager:        txManager,
		clock:            clk,
		logger:           logger,
	}
}

func (uc *ChangePlanUseCase) Execute(ctx context.Context, cmd ChangePlanCommand) (*dto.SubscriptionDTO, error) {
	sub, err := uc.subscriptionRepo.GetBySID(ctx, cmd.SubscriptionSID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "subscription_sid", cmd.SubscriptionSID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("subscription not found")
	}

	newPlan, err := uc.planRepo.GetBySID(ctx, cmd.NewPlanSID)
	if err != nil {
		uc.logger.Errorw("failed to get new plan", "error", err, "plan_sid", cmd.NewPlanSID)
		return nil, fmt.Errorf("failed to get new plan: %w", err)
	}
	if newPlan == nil {
		return nil, apperrors.NewNotFoundError("new plan not found")
	}
	if !newPlan.IsActive() {
		return nil, apperrors.NewValidationError("new plan is not active")
	}

	effective := cmd.Effective
	if effective == "" {
		effective = EffectiveImmediate
	}
	if effective != EffectiveImmediate && effective != EffectiveNextPeriod {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid effective value: %s", cmd.Effective))
	}

	var newPeriod *vo.BillingPeriod
	if cmd.NewBillingPeriod != "" {
		p, err := vo.ParseBillingPeriod(cmd.NewBillingPeriod)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		newPeriod = &p
	}

	// Guard before touching anything: a plan whose limit is below the
	// teacher's current roster cannot be assigned.
	assigned, err := uc.rosterSvc.CountAssignedStudents(ctx, sub.TeacherID())
	if err != nil {
		uc.logger.Errorw("failed to count assigned students", "error", err, "teacher_id", sub.TeacherID())
		return nil, fmt.Errorf("failed to count assigned students: %w", err)
	}
	if assigned > newPlan.StudentLimit() {
		return nil, billing.NewLimitTooLowError(assigned, newPlan.StudentLimit())
	}

	oldPlanID := sub.PlanID()
	oldLimit := sub.StudentLimitSnapshot()
	now := uc.clock.Now()

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := sub.ChangePlan(newPlan, newPeriod, cmd.KeepPeriod, now); err != nil {
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
			"from_plan_id":     oldPlanID,
			"to_plan_sid":      newPlan.SID(),
			"to_plan_code":     newPlan.Code(),
			"old_limit":        oldLimit,
			"new_limit":        newPlan.StudentLimit(),
			"current_students": assigned,
			"keep_period":      cmd.KeepPeriod,
			"effective":        effective,
			"billing_period":   sub.BillingPeriod().String(),
		}
		event, err := billing.NewSubscriptionEvent(sid, sub.ID(), vo.EventPlanChanged, payload, now)
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

	uc.logger.Infow("subscription plan changed",
		"subscription_sid", sub.SID(),
		"teacher_id", sub.TeacherID(),
		"from_plan_id", oldPlanID,
		"to_plan_sid", newPlan.SID(),
		"keep_period", cmd.KeepPeriod,
	)

	return dto.ToSubscriptionDTO(sub, newPlan, assigned, now), nil
}

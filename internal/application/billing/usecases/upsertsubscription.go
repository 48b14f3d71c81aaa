package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/mentora-inc/mentora/internal/application/billing/dto"
	"github.com/mentora-inc/mentora/internal/domain/billing"
	vo "github.com/mentora-inc/mentora/internal/domain/billing/valueobjects"
	"github.com/mentora-inc/mentora/internal/domain/roster"
	"github.com/mentora-inc/mentora/internal/shared/clock"
	apperrors "github.com/mentora-inc/mentora/internal/shared/errors"
	"github.com/mentora-inc/mentora/internal/shared/id"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

type UpsertSubscriptionCommand struct {
	TeacherID     uint
	PlanSID       string
	BillingPeriod string
	StartNow      bool
	// TrialDays overrides the plan default when non-nil. Zero disables the
	// trial entirely.
	TrialDays *int
}

// UpsertSubscriptionUseCase assigns a plan to a teacher. A teacher has at
// most one subscription row; assigning again overwrites it in place and
// records REASSIGNED instead of CREATED.
type UpsertSubscriptionUseCase struct {
	subscriptionRepo billing.SubscriptionRepository
	planRepo         billing.PlanRepository
	eventRepo        billing.SubscriptionEventRepository
	rosterSvc        roster.Service
	txManager        TransactionManager
	clock            clock.Clock
	logger           logger.Interface
}

func NewUpsertSubscriptionUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	planRepo billing.PlanRepository,
	eventRepo billing.SubscriptionEventRepository,
	rosterSvc roster.Service,
	txManager TransactionManager,
	clk clock.Clock,
	logger logger.Interface,
) *UpsertSubscriptionUseCase {
	return &UpsertSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		eventRepo:        eventRepo,
		rosterSvc:        rosterSvc,
		txManager:        txManager,
		clock:            clk,
		logger:           logger,
	}
}

func (uc *UpsertSubscriptionUseCase) Execute(ctx context.Context, cmd UpsertSubscriptionCommand) (*dto.UpsertResultDTO, error) {
	exists, err := uc.rosterSvc.TeacherExists(ctx, cmd.TeacherID)
	if err != nil {
		uc.logger.Errorw("failed to check teacher", "error", err, "teacher_id", cmd.TeacherID)
		return nil, fmt.Errorf("failed to check teacher: %w", err)
	}
	if !exists {
		return nil, apperrors.NewNotFoundError("teacher not found")
	}

	plan, err := uc.planRepo.GetBySID(ctx, cmd.PlanSID)
	if err != nil {
		uc.logger.Errorw("failed to get plan", "error", err, "plan_sid", cmd.PlanSID)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		return nil, apperrors.NewNotFoundError("plan not found")
	}
	if !plan.IsActive() {
		return nil, apperrors.NewValidationError("plan is not active")
	}

	period, err := vo.ParseBillingPeriod(cmd.BillingPeriod)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	assigned, err := uc.rosterSvc.CountAssignedStudents(ctx, cmd.TeacherID)
	if err != nil {
		uc.logger.Errorw("failed to count assigned students", "error", err, "teacher_id", cmd.TeacherID)
		return nil, fmt.Errorf("failed to count assigned students: %w", err)
	}
	if assigned > plan.StudentLimit() {
		return nil, billing.NewLimitTooLowError(assigned, plan.StudentLimit())
	}

	trialDays := plan.TrialDays()
	if cmd.TrialDays != nil {
		trialDays = *cmd.TrialDays
	}

	now := uc.clock.Now()

	var (
		sub     *billing.Subscription
		created bool
	)
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		existing, err := uc.subscriptionRepo.GetByTeacherID(txCtx, cmd.TeacherID)
		if err != nil {
			return fmt.Errorf("failed to get subscription: %w", err)
		}

		if existing != nil {
			if err := existing.Reassign(plan, period, cmd.StartNow, trialDays, now); err != nil {
				return apperrors.NewValidationError(err.Error())
			}
			if err := uc.subscriptionRepo.Update(txCtx, existing); err != nil {
				return fmt.Errorf("failed to update subscription: %w", err)
			}
			sub = existing
			created = false
			return uc.appendEvent(txCtx, sub, vo.EventReassigned, plan, trialDays, now)
		}

		sid, err := id.NewSubscriptionID()
		if err != nil {
			return fmt.Errorf("failed to generate subscription id: %w", err)
		}
		fresh, err := billing.NewSubscription(sid, cmd.TeacherID, plan, period, cmd.StartNow, trialDays, now)
		if err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		if err := uc.subscriptionRepo.Create(txCtx, fresh); err != nil {
			// A concurrent upsert for the same teacher hit the unique
			// index first; degrade to a reassign on the winner's row.
			if apperrors.IsDuplicateError(err) {
				winner, getErr := uc.subscriptionRepo.GetByTeacherID(txCtx, cmd.TeacherID)
				if getErr != nil || winner == nil {
					return fmt.Errorf("failed to create subscription: %w", err)
				}
				if rerr := winner.Reassign(plan, period, cmd.StartNow, trialDays, now); rerr != nil {
					return apperrors.NewValidationError(rerr.Error())
				}
				if uerr := uc.subscriptionRepo.Update(txCtx, winner); uerr != nil {
					return fmt.Errorf("failed to update subscription: %w", uerr)
				}
				sub = winner
				created = false
				return uc.appendEvent(txCtx, sub, vo.EventReassigned, plan, trialDays, now)
			}
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		sub = fresh
		created = true
		return uc.appendEvent(txCtx, sub, vo.EventCreated, plan, trialDays, now)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("subscription upserted",
		"teacher_id", cmd.TeacherID,
		"plan_sid", plan.SID(),
		"subscription_sid", sub.SID(),
		"created", created,
		"status", sub.Status().String(),
	)

	return &dto.UpsertResultDTO{
		Subscription: dto.ToSubscriptionDTO(sub, plan, assigned, now),
		Created:      created,
	}, nil
}

func (uc *UpsertSubscriptionUseCase) appendEvent(ctx context.Context, sub *billing.Subscription, eventType vo.EventType, plan *billing.Plan, trialDays int, now time.Time) error {
	payload := map[string]any{
		"plan_sid":           plan.SID(),
		"plan_code":          plan.Code(),
		"billing_period":     sub.BillingPeriod().String(),
		"status":             sub.Status().String(),
		"student_limit":      sub.StudentLimitSnapshot(),
		"current_period_end": sub.CurrentPeriodEnd(),
	}
	if trialDays > 0 {
		payload["trial_days"] = trialDays
	}

	sid, err := id.NewEventID()
	if err != nil {
		return fmt.Errorf("failed to generate event id: %w", err)
	}
	event, err := billing.NewSubscriptionEvent(sid, sub.ID(), eventType, payload, now)
	if err != nil {
		return fmt.Errorf("failed to build event: %w", err)
	}
	if err := uc.eventRepo.Append(ctx, event); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

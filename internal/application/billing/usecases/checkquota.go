package usecases

import (
	"context"
	"fmt"

	"github.com/mentora-inc/mentora/internal/application/billing/dto"
	"github.com/mentora-inc/mentora/internal/domain/billing"
	"github.com/mentora-inc/mentora/internal/domain/roster"
	"github.com/mentora-inc/mentora/internal/shared/clock"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

type CheckQuotaCommand struct {
	TeacherID uint
	// Additional is how many students the caller wants to add. Values
	// below one are treated as one.
	Additional int
}

// CheckQuotaUseCase answers whether a teacher may take more students.
// The roster subsystem calls this before every assignment. The check is
// advisory, not reserving: two concurrent assignments may both pass.
type CheckQuotaUseCase struct {
	subscriptionRepo billing.SubscriptionRepository
	rosterSvc        roster.Service
	clock            clock.Clock
	logger           logger.Interface
}

func NewCheckQuotaUseCase(
	subscriptionRepo billing.SubscriptionRepository,
	rosterSvc roster.Service,
	clk clock.Clock,
	logger logger.Interface,
) *CheckQuotaUseCase {
	return &CheckQuotaUseCase{
		subscriptionRepo: subscriptionRepo,
		rosterSvc:        rosterSvc,
		clock:            clk,
		logger:           logger,
	}
}

func (uc *CheckQuotaUseCase) Execute(ctx context.Context, cmd CheckQuotaCommand) (*dto.QuotaCheckDTO, error) {
	additional := cmd.Additional
	if additional < 1 {
		additional = 1
	}

	sub, err := uc.subscriptionRepo.GetByTeacherID(ctx, cmd.TeacherID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "teacher_id", cmd.TeacherID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return &dto.QuotaCheckDTO{
			Allowed: false,
			Reason:  billing.QuotaCodeNoSubscription,
		}, nil
	}

	if !sub.IsActive(uc.clock.Now()) {
		return &dto.QuotaCheckDTO{
			Allowed: false,
			Limit:   sub.StudentLimitSnapshot(),
			Reason:  billing.QuotaCodeInactive,
		}, nil
	}

	current, err := uc.rosterSvc.CountAssignedStudents(ctx, cmd.TeacherID)
	if err != nil {
		uc.logger.Errorw("failed to count assigned students", "error", err, "teacher_id", cmd.TeacherID)
		return nil, fmt.Errorf("failed to count assigned students: %w", err)
	}

	limit := sub.StudentLimitSnapshot()
	if current+additional > limit {
		return &dto.QuotaCheckDTO{
			Allowed: false,
			Limit:   limit,
			Current: current,
			Reason:  billing.QuotaCodeQuotaExceeded,
		}, nil
	}

	return &dto.QuotaCheckDTO{
		Allowed: true,
		Limit:   limit,
		Current: current,
		Reason:  billing.QuotaCodeOK,
	}, nil
}

package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentora-inc/mentora/internal/domain/billing"
	vo "github.com/mentora-inc/mentora/internal/domain/billing/valueobjects"
)

func seedSubscription(t *testing.T, f *fixture, teacherID uint, plan *billing.Plan, period vo.BillingPeriod, trialDays int) *billing.Subscription {
	t.Helper()
	f.addTeacher(teacherID, f.roster.counts[teacherID])
	uc := newUpsertUseCase(f)
	days := trialDays
	result, err := uc.Execute(context.Background(), UpsertSubscriptionCommand{
		TeacherID:     teacherID,
		PlanSID:       plan.SID(),
		BillingPeriod: period.String(),
		StartNow:      true,
		TrialDays:     &days,
	})
	require.NoError(t, err)
	sub, err := f.subRepo.GetBySID(context.Background(), result.Subscription.SID)
	require.NoError(t, err)
	return sub
}

func newChangePlanUseCase(f *fixture) *ChangePlanUseCase {
	return NewChangePlanUseCase(f.subRepo, f.planRepo, f.events, f.roster, f.tx, f.clock, f.logger)
}

func TestChangePlan_KeepPeriod(t *testing.T) {
	f := newFixture()
	pro := f.addPlan(t, "PRO_20", 20, 0, 499, 4990)
	premium := f.addPlan(t, "PREMIUM_30", 30, 0, 699, 6990)
	f.roster.counts[7] = 18
	sub := seedSubscription(t, f, 7, pro, vo.PeriodMonthly, 0)
	origEnd := sub.CurrentPeriodEnd()

	f.clock.Advance(10 * 24 * time.Hour)
	uc := newChangePlanUseCase(f)
	result, err := uc.Execute(context.Background(), ChangePlanCommand{
		SubscriptionSID: sub.SID(),
		NewPlanSID:      premium.SID(),
		KeepPeriod:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, 30, result.StudentLimitSnapshot)
	assert.Equal(t, origEnd, result.CurrentPeriodEnd)
	assert.Equal(t, "499.00", result.Amount) // period unchanged, amount frozen
	assert.Contains(t, f.events.typesFor(sub.ID()), vo.EventPlanChanged)
}

func TestChangePlan_RestartWithNewPeriod(t *testing.T) {
	f := newFixture()
	pro := f.addPlan(t, "PRO_20", 20, 0, 499, 4990)
	premium := f.addPlan(t, "PREMIUM_30", 30, 0, 699, 6990)
	sub := seedSubscription(t, f, 7, pro, vo.PeriodMonthly, 0)

	f.clock.Advance(10 * 24 * time.Hour)
	changedAt := f.clock.Now()
	uc := newChangePlanUseCase(f)
	result, err := uc.Execute(context.Background(), ChangePlanCommand{
		SubscriptionSID:  sub.SID(),
		NewPlanSID:       premium.SID(),
		NewBillingPeriod: "YEARLY",
		KeepPeriod:       false,
	})
	require.NoError(t, err)

	assert.Equal(t, "YEARLY", result.BillingPeriod)
	assert.Equal(t, "6990.00", result.Amount)
	assert.Equal(t, changedAt, result.CurrentPeriodStart)
	assert.Equal(t, changedAt.Add(365*24*time.Hour), result.CurrentPeriodEnd)
}

func TestChangePlan_EffectiveRecordedInPayload(t *testing.T) {
	f := newFixture()
	pro := f.addPlan(t, "PRO_20", 20, 0, 499, 4990)
	premium := f.addPlan(t, "PREMIUM_30", 30, 0, 699, 6990)
	sub := seedSubscription(t, f, 7, pro, vo.PeriodMonthly, 0)
	origEnd := sub.CurrentPeriodEnd()
	uc := newChangePlanUseCase(f)

	// NEXT_PERIOD is accepted and recorded but the plan still changes
	// immediately.
	result, err := uc.Execute(context.Background(), ChangePlanCommand{
		SubscriptionSID: sub.SID(),
		NewPlanSID:      premium.SID(),
		KeepPeriod:      true,
		Effective:       EffectiveNextPeriod,
	})
	require.NoError(t, err)
	assert.Equal(t, 30, result.StudentLimitSnapshot)
	assert.Equal(t, origEnd, result.CurrentPeriodEnd)

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, vo.EventPlanChanged, last.EventType())
	assert.Equal(t, EffectiveNextPeriod, last.Payload()["effective"])

	// Omitted effective defaults to IMMEDIATE in the payload.
	_, err = uc.Execute(context.Background(), ChangePlanCommand{
		SubscriptionSID: sub.SID(),
		NewPlanSID:      pro.SID(),
		KeepPeriod:      true,
	})
	require.NoError(t, err)
	last = f.events.events[len(f.events.events)-1]
	assert.Equal(t, EffectiveImmediate, last.Payload()["effective"])
}

func TestChangePlan_InvalidEffectiveRejected(t *testing.T) {
	f := newFixture()
	pro := f.addPlan(t, "PRO_20", 20, 0, 499, 4990)
	premium := f.addPlan(t, "PREMIUM_30", 30, 0, 699, 6990)
	sub := seedSubscription(t, f, 7, pro, vo.PeriodMonthly, 0)
	before := sub.Version()
	uc := newChangePlanUseCase(f)

	_, err := uc.Execute(context.Background(), ChangePlanCommand{
		SubscriptionSID: sub.SID(),
		NewPlanSID:      premium.SID(),
		Effective:       "EVENTUALLY",
	})
	require.Error(t, err)

	stored, err := f.subRepo.GetBySID(context.Background(), sub.SID())
	require.NoError(t, err)
	assert.Equal(t, before, stored.Version())
	assert.NotContains(t, f.events.typesFor(sub.ID()), vo.EventPlanChanged)
}

func TestChangePlan_LimitTooLowLeavesSubscriptionUntouched(t *testing.T) {
	f := newFixture()
	pro := f.addPlan(t, "PRO_20", 20, 0, 499, 4990)
	starter := f.addPlan(t, "STARTER_10", 10, 0, 299, 2990)
	f.roster.counts[7] = 15
	sub := seedSubscription(t, f, 7, pro, vo.PeriodMonthly, 0)
	versionBefore := sub.Version()
	planBefore := sub.PlanID()

	uc := newChangePlanUseCase(f)
	_, err := uc.Execute(context.Background(), ChangePlanCommand{
		SubscriptionSID: sub.SID(),
		NewPlanSID:      starter.SID(),
	})
	require.Error(t, err)

	qe, ok := billing.IsQuotaViolation(err)
	require.True(t, ok)
	assert.Equal(t, billing.QuotaCodeLimitTooLow, qe.Code)
	assert.Equal(t, 15, qe.Current)
	assert.Equal(t, 10, qe.Limit)

	reloaded, _ := f.subRepo.GetBySID(context.Background(), sub.SID())
	assert.Equal(t, planBefore, reloaded.PlanID())
	assert.Equal(t, versionBefore, reloaded.Version())
	assert.NotContains(t, f.events.typesFor(sub.ID()), vo.EventPlanChanged)
}

func TestChangePlan_ReactivatesTerminalSubscription(t *testing.T) {
	f := newFixture()
	pro := f.addPlan(t, "PRO_20", 20, 0, 499, 4990)
	premium := f.addPlan(t, "PREMIUM_30", 30, 0, 699, 6990)
	sub := seedSubscription(t, f, 7, pro, vo.PeriodMonthly, 0)
	require.NoError(t, sub.Cancel(f.clock.Now()))

	f.clock.Advance(5 * 24 * time.Hour)
	changedAt := f.clock.Now()
	uc := newChangePlanUseCase(f)
	result, err := uc.Execute(context.Background(), ChangePlanCommand{
		SubscriptionSID: sub.SID(),
		NewPlanSID:      premium.SID(),
		KeepPeriod:      true, // ignored for terminal subscriptions
	})
	require.NoError(t, err)

	assert.Equal(t, "ACTIVE", result.Status)
	assert.Equal(t, changedAt, result.CurrentPeriodStart)
	assert.Equal(t, changedAt.Add(30*24*time.Hour), result.CurrentPeriodEnd)
}

func TestChangePlan_ClearsCancelAtPeriodEnd(t *testing.T) {
	f := newFixture()
	pro := f.addPlan(t, "PRO_20", 20, 0, 499, 4990)
	premium := f.addPlan(t, "PREMIUM_30", 30, 0, 699, 6990)
	sub := seedSubscription(t, f, 7, pro, vo.PeriodMonthly, 0)
	sub.SetCancelAtPeriodEnd(true, f.clock.Now())

	uc := newChangePlanUseCase(f)
	result, err := uc.Execute(context.Background(), ChangePlanCommand{
		SubscriptionSID: sub.SID(),
		NewPlanSID:      premium.SID(),
		KeepPeriod:      true,
	})
	require.NoError(t, err)
	assert.False(t, result.CancelAtPeriodEnd)
}

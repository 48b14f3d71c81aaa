package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/mentora-inc/mentora/internal/domain/billing/valueobjects"
)

func TestCancelSubscription(t *testing.T) {
	f := newFixture()
	plan := f.addPlan(t, "PRO_20", 20, 0, 499, 4990)
	sub := seedSubscription(t, f, 7, plan, vo.PeriodMonthly, 0)

	uc := NewCancelSubscriptionUseCase(f.subRepo, f.planRepo, f.events, f.tx, f.clock, f.logger)
	result, err := uc.Execute(context.Background(), CancelSubscriptionCommand{
		SubscriptionSID: sub.SID(),
		Reason:          "requested by teacher",
	})
	require.NoError(t, err)

	assert.Equal(t, "CANCELED", result.Status)
	assert.False(t, result.IsActive)
	assert.Contains(t, f.events.typesFor(sub.ID()), vo.EventCanceled)
}

func TestReactivateSubscription_ExpiredPeriodResets(t *testing.T) {
	f := newFixture()
	plan := f.addPlan(t, "PRO_20", 20, 0, 499, 4990)
	sub := seedSubscription(t, f, 7, plan, vo.PeriodMonthly, 0)

	cancelUC := NewCancelSubscriptionUseCase(f.subRepo, f.planRepo, f.events, f.tx, f.clock, f.logger)
	_, err := cancelUC.Execute(context.Background(), CancelSubscriptionCommand{SubscriptionSID: sub.SID()})
	require.NoError(t, err)

	f.clock.Advance(40 * 24 * time.Hour)
	reactivateAt := f.clock.Now()

	uc := NewReactivateSubscriptionUseCase(f.subRepo, f.planRepo, f.events, f.tx, f.clock, f.logger)
	result, err := uc.Execute(context.Background(), ReactivateSubscriptionCommand{
		SubscriptionSID: sub.SID(),
	})
	require.NoError(t, err)

	assert.Equal(t, "ACTIVE", result.Status)
	assert.Equal(t, reactivateAt, result.CurrentPeriodStart)
	assert.Equal(t, reactivateAt.Add(30*24*time.Hour), result.CurrentPeriodEnd)
	assert.Contains(t, f.events.typesFor(sub.ID()), vo.EventReactivated)
}

func TestReactivateSubscription_LivePeriodStacks(t *testing.T) {
	f := newFixture()
	plan := f.addPlan(t, "PRO_20", 20, 0, 499, 4990)
	sub := seedSubscription(t, f, 7, plan, vo.PeriodMonthly, 0)
	origStart := sub.CurrentPeriodStart()
	origEnd := sub.CurrentPeriodEnd()

	cancelUC := NewCancelSubscriptionUseCase(f.subRepo, f.planRepo, f.events, f.tx, f.clock, f.logger)
	_, err := cancelUC.Execute(context.Background(), CancelSubscriptionCommand{SubscriptionSID: sub.SID()})
	require.NoError(t, err)

	f.clock.Advance(5 * 24 * time.Hour)
	uc := NewReactivateSubscriptionUseCase(f.subRepo, f.planRepo, f.events, f.tx, f.clock, f.logger)
	result, err := uc.Execute(context.Background(), ReactivateSubscriptionCommand{
		SubscriptionSID: sub.SID(),
		ExtendDays:      10,
	})
	require.NoError(t, err)

	assert.Equal(t, origStart, result.CurrentPeriodStart)
	assert.Equal(t, origEnd.Add(10*24*time.Hour), result.CurrentPeriodEnd)
}

func TestRenewSubscription(t *testing.T) {
	f := newFixture()
	plan := f.addPlan(t, "PRO_20", 20, 0, 499, 4990)
	sub := seedSubscription(t, f, 7, plan, vo.PeriodYearly, 0)
	origStart := sub.CurrentPeriodStart()
	origEnd := sub.CurrentPeriodEnd()

	f.clock.Advance(300 * 24 * time.Hour)
	uc := NewRenewSubscriptionUseCase(f.subRepo, f.planRepo, f.events, f.tx, f.clock, f.logger)
	result, err := uc.Execute(context.Background(), RenewSubscriptionCommand{SubscriptionSID: sub.SID()})
	require.NoError(t, err)

	assert.Equal(t, origStart, result.CurrentPeriodStart)
	assert.Equal(t, origEnd.Add(365*24*time.Hour), result.CurrentPeriodEnd)
	assert.Contains(t, f.events.typesFor(sub.ID()), vo.EventRenewed)
}

func TestSetCancelAtPeriodEnd_NoEvent(t *testing.T) {
	f := newFixture()
	plan := f.addPlan(t, "PRO_20", 20, 0, 499, 4990)
	sub := seedSubscription(t, f, 7, plan, vo.PeriodMonthly, 0)
	eventsBefore := len(f.events.events)

	uc := NewSetCancelAtPeriodEndUseCase(f.subRepo, f.planRepo, f.clock, f.logger)
	result, err := uc.Execute(context.Background(), SetCancelAtPeriodEndCommand{
		SubscriptionSID:   sub.SID(),
		CancelAtPeriodEnd: true,
	})
	require.NoError(t, err)

	assert.True(t, result.CancelAtPeriodEnd)
	assert.Equal(t, "ACTIVE", result.Status)
	assert.Len(t, f.events.events, eventsBefore)
}

func TestListSubscriptionEvents_NewestFirstCapped(t *testing.T) {
	f := newFixture()
	pro := f.addPlan(t, "PRO_20", 20, 0, 499, 4990)
	premium := f.addPlan(t, "PREMIUM_30", 30, 0, 699, 6990)
	sub := seedSubscription(t, f, 7, pro, vo.PeriodMonthly, 0)

	changeUC := newChangePlanUseCase(f)
	f.clock.Advance(time.Hour)
	_, err := changeUC.Execute(context.Background(), ChangePlanCommand{
		SubscriptionSID: sub.SID(),
		NewPlanSID:      premium.SID(),
		KeepPeriod:      true,
	})
	require.NoError(t, err)

	uc := NewListSubscriptionEventsUseCase(f.subRepo, f.events, f.logger)
	events, err := uc.Execute(context.Background(), ListSubscriptionEventsCommand{SubscriptionSID: sub.SID()})
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, "PLAN_CHANGED", events[0].EventType)
	assert.Equal(t, "CREATED", events[1].EventType)

	limited, err := uc.Execute(context.Background(), ListSubscriptionEventsCommand{SubscriptionSID: sub.SID(), Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGetTeacherSubscription(t *testing.T) {
	f := newFixture()
	plan := f.addPlan(t, "PRO_20", 20, 0, 499, 4990)
	f.roster.counts[7] = 8
	seedSubscription(t, f, 7, plan, vo.PeriodMonthly, 0)

	uc := NewGetTeacherSubscriptionUseCase(f.subRepo, f.planRepo, f.roster, f.clock, f.logger)
	result, err := uc.Execute(context.Background(), GetTeacherSubscriptionCommand{TeacherID: 7})
	require.NoError(t, err)

	assert.Equal(t, uint(7), result.TeacherID)
	assert.Equal(t, 8, result.AssignedStudents)
	assert.Equal(t, 12, result.RemainingSlots)
	require.NotNil(t, result.Plan)
	assert.Equal(t, "PRO_20", result.Plan.Code)
}

package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/mentora-inc/mentora/internal/domain/billing/valueobjects"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestSubscription(t *testing.T, plan *Plan, period vo.BillingPeriod, startNow bool, trialDays int) *Subscription {
	t.Helper()
	sub, err := NewSubscription("sub_test00000001", 42, plan, period, startNow, trialDays, t0)
	require.NoError(t, err)
	require.NoError(t, sub.SetID(1))
	return sub
}

func TestNewSubscription(t *testing.T) {
	plan := testPlan(t, 20)

	t.Run("active with immediate start", func(t *testing.T) {
		sub := newTestSubscription(t, plan, vo.PeriodMonthly, true, 0)

		assert.Equal(t, vo.StatusActive, sub.Status())
		assert.Equal(t, t0, sub.CurrentPeriodStart())
		assert.Equal(t, t0.Add(30*24*time.Hour), sub.CurrentPeriodEnd())
		assert.Nil(t, sub.TrialEnd())
		assert.Equal(t, 20, sub.StudentLimitSnapshot())
		assert.True(t, sub.Amount().Equal(decimal.NewFromInt(499)))
		assert.Equal(t, "TRY", sub.Currency())
		assert.True(t, sub.AutoRenew())
		assert.False(t, sub.CancelAtPeriodEnd())
		assert.True(t, sub.IsActive(t0.Add(time.Hour)))
	})

	t.Run("trial overrides start_now", func(t *testing.T) {
		sub := newTestSubscription(t, plan, vo.PeriodMonthly, false, 14)

		assert.Equal(t, vo.StatusTrialing, sub.Status())
		require.NotNil(t, sub.TrialEnd())
		wantEnd := t0.Add(14 * 24 * time.Hour)
		assert.Equal(t, wantEnd, *sub.TrialEnd())
		assert.Equal(t, wantEnd, sub.CurrentPeriodEnd())
		assert.True(t, sub.IsActive(t0.Add(time.Hour)))
	})

	t.Run("without start_now the period ends immediately", func(t *testing.T) {
		sub := newTestSubscription(t, plan, vo.PeriodMonthly, false, 0)

		assert.Equal(t, vo.StatusActive, sub.Status())
		assert.Equal(t, t0, sub.CurrentPeriodEnd())
		assert.False(t, sub.IsActive(t0))
	})

	t.Run("yearly period length", func(t *testing.T) {
		sub := newTestSubscription(t, plan, vo.PeriodYearly, true, 0)

		assert.Equal(t, t0.Add(365*24*time.Hour), sub.CurrentPeriodEnd())
		assert.True(t, sub.Amount().Equal(decimal.NewFromInt(4990)))
	})
}

func TestSubscriptionReassign(t *testing.T) {
	plan := testPlan(t, 20)

	starter, err := NewPlan("plan_starter0001", "STARTER_10", "Starter", 10,
		decimal.NewFromInt(299), decimal.NewFromInt(2990), "TRY", 0, t0)
	require.NoError(t, err)
	require.NoError(t, starter.SetID(1))

	sub := newTestSubscription(t, plan, vo.PeriodMonthly, true, 0)
	require.NoError(t, sub.Cancel(t0.Add(24*time.Hour)))

	later := t0.Add(48 * time.Hour)
	require.NoError(t, sub.Reassign(starter, vo.PeriodYearly, true, 0, later))

	assert.Equal(t, vo.StatusActive, sub.Status())
	assert.Equal(t, starter.ID(), sub.PlanID())
	assert.Equal(t, 10, sub.StudentLimitSnapshot())
	assert.Equal(t, vo.PeriodYearly, sub.BillingPeriod())
	assert.Equal(t, later, sub.CurrentPeriodStart())
	assert.Equal(t, later.Add(365*24*time.Hour), sub.CurrentPeriodEnd())
	assert.True(t, sub.Amount().Equal(decimal.NewFromInt(2990)))
}

func TestSubscriptionChangePlan(t *testing.T) {
	pro := testPlan(t, 20)

	premium, err := NewPlan("plan_premium0001", "PREMIUM_30", "Premium", 30,
		decimal.NewFromInt(699), decimal.NewFromInt(6990), "TRY", 0, t0)
	require.NoError(t, err)
	require.NoError(t, premium.SetID(3))

	t.Run("keep period preserves boundaries", func(t *testing.T) {
		sub := newTestSubscription(t, pro, vo.PeriodMonthly, true, 0)
		origEnd := sub.CurrentPeriodEnd()

		later := t0.Add(10 * 24 * time.Hour)
		require.NoError(t, sub.ChangePlan(premium, nil, true, later))

		assert.Equal(t, premium.ID(), sub.PlanID())
		assert.Equal(t, 30, sub.StudentLimitSnapshot())
		assert.Equal(t, origEnd, sub.CurrentPeriodEnd())
		// amount is only refreshed when the period changes
		assert.True(t, sub.Amount().Equal(decimal.NewFromInt(499)))
	})

	t.Run("restart period with new billing period", func(t *testing.T) {
		sub := newTestSubscription(t, pro, vo.PeriodMonthly, true, 0)

		later := t0.Add(10 * 24 * time.Hour)
		yearly := vo.PeriodYearly
		require.NoError(t, sub.ChangePlan(premium, &yearly, false, later))

		assert.Equal(t, vo.PeriodYearly, sub.BillingPeriod())
		assert.Equal(t, later, sub.CurrentPeriodStart())
		assert.Equal(t, later.Add(365*24*time.Hour), sub.CurrentPeriodEnd())
		assert.True(t, sub.Amount().Equal(decimal.NewFromInt(6990)))
	})

	t.Run("clears pending soft cancel", func(t *testing.T) {
		sub := newTestSubscription(t, pro, vo.PeriodMonthly, true, 0)
		sub.SetCancelAtPeriodEnd(true, t0.Add(time.Hour))

		require.NoError(t, sub.ChangePlan(premium, nil, true, t0.Add(2*time.Hour)))
		assert.False(t, sub.CancelAtPeriodEnd())
	})

	t.Run("terminal subscription restarts active", func(t *testing.T) {
		sub := newTestSubscription(t, pro, vo.PeriodMonthly, true, 0)
		require.NoError(t, sub.Cancel(t0.Add(time.Hour)))

		later := t0.Add(48 * time.Hour)
		require.NoError(t, sub.ChangePlan(premium, nil, true, later))

		assert.Equal(t, vo.StatusActive, sub.Status())
		assert.Equal(t, later, sub.CurrentPeriodStart())
		assert.Equal(t, later.Add(30*24*time.Hour), sub.CurrentPeriodEnd())
		assert.Nil(t, sub.TrialEnd())
	})
}

func TestSubscriptionCancel(t *testing.T) {
	plan := testPlan(t, 20)
	sub := newTestSubscription(t, plan, vo.PeriodMonthly, true, 14)

	later := t0.Add(3 * 24 * time.Hour)
	require.NoError(t, sub.Cancel(later))

	assert.Equal(t, vo.StatusCanceled, sub.Status())
	assert.Nil(t, sub.TrialEnd())
	assert.False(t, sub.CancelAtPeriodEnd())
	assert.False(t, sub.IsActive(later))
	assert.NoError(t, sub.Validate())
}

func TestSubscriptionReactivate(t *testing.T) {
	plan := testPlan(t, 20)

	t.Run("expired period resets from now", func(t *testing.T) {
		sub := newTestSubscription(t, plan, vo.PeriodMonthly, true, 0)
		require.NoError(t, sub.Cancel(t0.Add(time.Hour)))

		later := t0.Add(40 * 24 * time.Hour) // past the original period end
		require.NoError(t, sub.Reactivate(plan, 0, later))

		assert.Equal(t, vo.StatusActive, sub.Status())
		assert.Equal(t, later, sub.CurrentPeriodStart())
		assert.Equal(t, later.Add(30*24*time.Hour), sub.CurrentPeriodEnd())
	})

	t.Run("live period stacks extension", func(t *testing.T) {
		sub := newTestSubscription(t, plan, vo.PeriodMonthly, true, 0)
		require.NoError(t, sub.Cancel(t0.Add(time.Hour)))
		origEnd := sub.CurrentPeriodEnd()

		later := t0.Add(5 * 24 * time.Hour) // still inside the original period
		require.NoError(t, sub.Reactivate(plan, 10, later))

		assert.Equal(t, t0, sub.CurrentPeriodStart())
		assert.Equal(t, origEnd.Add(10*24*time.Hour), sub.CurrentPeriodEnd())
	})

	t.Run("clamps extension to a year", func(t *testing.T) {
		sub := newTestSubscription(t, plan, vo.PeriodMonthly, true, 0)
		require.NoError(t, sub.Cancel(t0.Add(time.Hour)))

		later := t0.Add(60 * 24 * time.Hour)
		require.NoError(t, sub.Reactivate(plan, 1000, later))

		assert.Equal(t, later.Add(365*24*time.Hour), sub.CurrentPeriodEnd())
	})

	t.Run("rejects mismatched plan", func(t *testing.T) {
		other, err := NewPlan("plan_other000001", "STARTER_10", "Starter", 10,
			decimal.NewFromInt(299), decimal.NewFromInt(2990), "TRY", 0, t0)
		require.NoError(t, err)
		require.NoError(t, other.SetID(9))

		sub := newTestSubscription(t, plan, vo.PeriodMonthly, true, 0)
		assert.Error(t, sub.Reactivate(other, 0, t0))
	})
}

func TestSubscriptionRenew(t *testing.T) {
	plan := testPlan(t, 20)
	sub := newTestSubscription(t, plan, vo.PeriodYearly, true, 0)
	origStart := sub.CurrentPeriodStart()
	origEnd := sub.CurrentPeriodEnd()

	later := t0.Add(300 * 24 * time.Hour)
	require.NoError(t, sub.Renew(later))

	assert.Equal(t, origStart, sub.CurrentPeriodStart())
	assert.Equal(t, origEnd.Add(365*24*time.Hour), sub.CurrentPeriodEnd())
	assert.Equal(t, vo.StatusActive, sub.Status())
}

func TestSubscriptionEndTrial(t *testing.T) {
	plan := testPlan(t, 20)
	sub := newTestSubscription(t, plan, vo.PeriodMonthly, true, 3)

	sweep := t0.Add(4 * 24 * time.Hour) // one day past trial end
	require.NoError(t, sub.EndTrial(sweep))

	assert.Equal(t, vo.StatusActive, sub.Status())
	assert.Nil(t, sub.TrialEnd())
	assert.Equal(t, sweep, sub.CurrentPeriodStart())
	assert.Equal(t, sweep.Add(30*24*time.Hour), sub.CurrentPeriodEnd())

	// only trials can end a trial
	assert.Error(t, sub.EndTrial(sweep))
}

func TestSubscriptionMarkExpired(t *testing.T) {
	plan := testPlan(t, 20)
	sub := newTestSubscription(t, plan, vo.PeriodMonthly, true, 0)

	later := t0.Add(31 * 24 * time.Hour)
	require.NoError(t, sub.MarkExpired(later))
	assert.Equal(t, vo.StatusExpired, sub.Status())

	// idempotent on already-expired
	require.NoError(t, sub.MarkExpired(later))

	require.NoError(t, sub.Cancel(later))
	assert.Error(t, sub.MarkExpired(later))
}

func TestSubscriptionIsActive(t *testing.T) {
	plan := testPlan(t, 20)

	t.Run("period boundary is exclusive", func(t *testing.T) {
		sub := newTestSubscription(t, plan, vo.PeriodMonthly, true, 0)
		end := sub.CurrentPeriodEnd()
		assert.True(t, sub.IsActive(end.Add(-time.Second)))
		assert.False(t, sub.IsActive(end))
	})

	t.Run("expired trial is inactive even before sweep", func(t *testing.T) {
		sub := newTestSubscription(t, plan, vo.PeriodMonthly, true, 3)
		assert.True(t, sub.IsActive(t0.Add(24*time.Hour)))
		assert.False(t, sub.IsActive(t0.Add(4*24*time.Hour)))
	})
}

func TestSubscriptionRemainingSlots(t *testing.T) {
	plan := testPlan(t, 20)
	sub := newTestSubscription(t, plan, vo.PeriodMonthly, true, 0)

	assert.Equal(t, 20, sub.RemainingSlots(0))
	assert.Equal(t, 5, sub.RemainingSlots(15))
	assert.Equal(t, 0, sub.RemainingSlots(20))
	assert.Equal(t, 0, sub.RemainingSlots(25))
}

func TestSubscriptionValidate(t *testing.T) {
	plan := testPlan(t, 20)
	sub := newTestSubscription(t, plan, vo.PeriodMonthly, true, 14)
	assert.NoError(t, sub.Validate())
}

func TestSubscriptionVersionBumps(t *testing.T) {
	plan := testPlan(t, 20)
	sub := newTestSubscription(t, plan, vo.PeriodMonthly, true, 0)
	assert.Equal(t, 1, sub.Version())

	sub.SetCancelAtPeriodEnd(true, t0.Add(time.Hour))
	assert.Equal(t, 2, sub.Version())

	// setting the same value again is a no-op
	sub.SetCancelAtPeriodEnd(true, t0.Add(2*time.Hour))
	assert.Equal(t, 2, sub.Version())

	require.NoError(t, sub.Cancel(t0.Add(3*time.Hour)))
	assert.Equal(t, 3, sub.Version())
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mentora-inc/mentora/internal/domain/billing"
	vo "github.com/mentora-inc/mentora/internal/domain/billing/valueobjects"
	"github.com/mentora-inc/mentora/internal/infrastructure/persistence/models"
	"github.com/mentora-inc/mentora/internal/shared/id"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

var repoBaseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = gdb.AutoMigrate(
		&models.PlanModel{},
		&models.SubscriptionModel{},
		&models.SubscriptionEventModel{},
	)
	require.NoError(t, err)

	return gdb
}

func newSID(t *testing.T, gen func() (string, error)) string {
	t.Helper()
	sid, err := gen()
	require.NoError(t, err)
	return sid
}

func createTestPlan(t *testing.T, gdb *gorm.DB) *billing.Plan {
	t.Helper()

	plan, err := billing.NewPlan(
		newSID(t, id.NewPlanID), "PRO_20", "Pro",
		20,
		decimal.NewFromInt(499), decimal.NewFromInt(4990),
		"TRY", 7, repoBaseTime,
	)
	require.NoError(t, err)

	planRepo := NewPlanRepository(gdb, logger.NewLogger())
	require.NoError(t, planRepo.Create(context.Background(), plan))
	return plan
}

func createTestSubscription(t *testing.T, plan *billing.Plan, teacherID uint) *billing.Subscription {
	t.Helper()

	sub, err := billing.NewSubscription(
		newSID(t, id.NewSubscriptionID), teacherID, plan,
		vo.PeriodMonthly, true, 0, repoBaseTime,
	)
	require.NoError(t, err)
	return sub
}

func TestSubscriptionRepository_CreateAndGet(t *testing.T) {
	gdb := setupTestDB(t)
	plan := createTestPlan(t, gdb)
	repo := NewSubscriptionRepository(gdb, logger.NewLogger())
	ctx := context.Background()

	t.Run("create assigns database ID", func(t *testing.T) {
		sub := createTestSubscription(t, plan, 1)
		err := repo.Create(ctx, sub)
		require.NoError(t, err)
		assert.NotZero(t, sub.ID())
	})

	t.Run("get by teacher ID round-trips the row", func(t *testing.T) {
		sub := createTestSubscription(t, plan, 2)
		require.NoError(t, repo.Create(ctx, sub))

		found, err := repo.GetByTeacherID(ctx, 2)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, sub.SID(), found.SID())
		assert.Equal(t, vo.StatusActive, found.Status())
		assert.Equal(t, 20, found.StudentLimitSnapshot())
		assert.True(t, sub.Amount().Equal(found.Amount()))
		assert.True(t, found.CurrentPeriodEnd().Equal(repoBaseTime.Add(30*24*time.Hour)))
	})

	t.Run("get by missing teacher returns nil without error", func(t *testing.T) {
		found, err := repo.GetByTeacherID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("duplicate teacher ID is rejected", func(t *testing.T) {
		first := createTestSubscription(t, plan, 3)
		require.NoError(t, repo.Create(ctx, first))

		second := createTestSubscription(t, plan, 3)
		err := repo.Create(ctx, second)
		assert.Error(t, err)
	})
}

func TestSubscriptionRepository_Update(t *testing.T) {
	gdb := setupTestDB(t)
	plan := createTestPlan(t, gdb)
	repo := NewSubscriptionRepository(gdb, logger.NewLogger())
	ctx := context.Background()

	t.Run("update persists a state transition", func(t *testing.T) {
		sub := createTestSubscription(t, plan, 1)
		require.NoError(t, repo.Create(ctx, sub))

		require.NoError(t, sub.Cancel(repoBaseTime.Add(time.Hour)))
		require.NoError(t, repo.Update(ctx, sub))

		found, err := repo.GetByID(ctx, sub.ID())
		require.NoError(t, err)
		assert.Equal(t, vo.StatusCanceled, found.Status())
		assert.Equal(t, sub.Version(), found.Version())
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		sub := createTestSubscription(t, plan, 2)
		require.NoError(t, repo.Create(ctx, sub))

		// Two copies of the same row; the second writer loses.
		stale, err := repo.GetByID(ctx, sub.ID())
		require.NoError(t, err)

		require.NoError(t, sub.Cancel(repoBaseTime.Add(time.Hour)))
		require.NoError(t, repo.Update(ctx, sub))

		require.NoError(t, stale.Cancel(repoBaseTime.Add(2*time.Hour)))
		err = repo.Update(ctx, stale)
		assert.ErrorIs(t, err, billing.ErrConcurrencyConflict)
	})
}

func TestSubscriptionRepository_SweepQueries(t *testing.T) {
	gdb := setupTestDB(t)
	plan := createTestPlan(t, gdb)
	repo := NewSubscriptionRepository(gdb, logger.NewLogger())
	ctx := context.Background()

	// Teacher 1: trial that lapsed before the sweep moment.
	trialing, err := billing.NewSubscription(newSID(t, id.NewSubscriptionID), 1, plan, vo.PeriodMonthly, true, 3, repoBaseTime)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, trialing))

	// Teacher 2: active subscription whose period already ended.
	ended := createTestSubscription(t, plan, 2)
	require.NoError(t, repo.Create(ctx, ended))

	// Teacher 3: active subscription with time remaining.
	current, err := billing.NewSubscription(newSID(t, id.NewSubscriptionID), 3, plan, vo.PeriodYearly, true, 0, repoBaseTime)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, current))

	sweepAt := repoBaseTime.Add(40 * 24 * time.Hour)

	t.Run("find trial ended picks only lapsed trials", func(t *testing.T) {
		subs, err := repo.FindTrialEnded(ctx, sweepAt)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, trialing.SID(), subs[0].SID())
	})

	t.Run("find period ended picks only lapsed active rows", func(t *testing.T) {
		subs, err := repo.FindPeriodEnded(ctx, sweepAt)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, ended.SID(), subs[0].SID())
	})

	t.Run("expiring window bounds come from the filter", func(t *testing.T) {
		window := &billing.ExpiringWindow{
			From:  repoBaseTime.Add(25 * 24 * time.Hour),
			Until: repoBaseTime.Add(32 * 24 * time.Hour),
		}
		subs, total, err := repo.List(ctx, billing.SubscriptionFilter{Expiring: window})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		sids := make([]string, 0, len(subs))
		for _, s := range subs {
			sids = append(sids, s.SID())
		}
		assert.ElementsMatch(t, []string{trialing.SID(), ended.SID()}, sids)
	})

	t.Run("list filters by status", func(t *testing.T) {
		status := vo.StatusTrialing
		subs, total, err := repo.List(ctx, billing.SubscriptionFilter{Status: &status})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, subs, 1)
		assert.Equal(t, trialing.SID(), subs[0].SID())
	})
}

func TestSubscriptionEventRepository_AppendAndList(t *testing.T) {
	gdb := setupTestDB(t)
	plan := createTestPlan(t, gdb)
	subRepo := NewSubscriptionRepository(gdb, logger.NewLogger())
	eventRepo := NewSubscriptionEventRepository(gdb, logger.NewLogger())
	ctx := context.Background()

	sub := createTestSubscription(t, plan, 1)
	require.NoError(t, subRepo.Create(ctx, sub))

	created, err := billing.NewSubscriptionEvent(newSID(t, id.NewEventID), sub.ID(), vo.EventCreated,
		map[string]any{"plan_code": "PRO_20"}, repoBaseTime)
	require.NoError(t, err)
	require.NoError(t, eventRepo.Append(ctx, created))

	canceled, err := billing.NewSubscriptionEvent(newSID(t, id.NewEventID), sub.ID(), vo.EventCanceled,
		nil, repoBaseTime.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, eventRepo.Append(ctx, canceled))

	events, err := eventRepo.ListBySubscriptionID(ctx, sub.ID(), 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Newest first.
	assert.Equal(t, vo.EventCanceled, events[0].EventType())
	assert.Equal(t, vo.EventCreated, events[1].EventType())
	assert.Equal(t, "PRO_20", events[1].Payload()["plan_code"])

	t.Run("limit caps the slice", func(t *testing.T) {
		events, err := eventRepo.ListBySubscriptionID(ctx, sub.ID(), 1)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, vo.EventCanceled, events[0].EventType())
	})
}

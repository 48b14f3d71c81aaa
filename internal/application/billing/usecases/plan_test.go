package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mentora-inc/mentora/internal/shared/errors"
)

func TestCreatePlan(t *testing.T) {
	f := newFixture()
	cache := &fakeCache{}
	uc := NewCreatePlanUseCase(f.planRepo, cache, f.clock, f.logger)

	result, err := uc.Execute(context.Background(), CreatePlanCommand{
		Code:         "STARTER_10",
		Name:         "Starter",
		StudentLimit: 10,
		PriceMonthly: "299.00",
		PriceYearly:  "2990.00",
		Currency:     "TRY",
	})
	require.NoError(t, err)

	assert.Equal(t, "STARTER_10", result.Code)
	assert.Equal(t, 10, result.StudentLimit)
	assert.Equal(t, "299.00", result.PriceMonthly)
	assert.True(t, result.IsActive)
	assert.NotEmpty(t, result.SID)
	assert.Equal(t, 1, cache.invalidated)
}

func TestCreatePlan_DuplicateCode(t *testing.T) {
	f := newFixture()
	f.addPlan(t, "STARTER_10", 10, 0, 299, 2990)
	uc := NewCreatePlanUseCase(f.planRepo, &fakeCache{}, f.clock, f.logger)

	_, err := uc.Execute(context.Background(), CreatePlanCommand{
		Code:         "STARTER_10",
		Name:         "Starter",
		StudentLimit: 10,
		PriceMonthly: "299.00",
		PriceYearly:  "2990.00",
	})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
}

func TestCreatePlan_InvalidPrice(t *testing.T) {
	f := newFixture()
	uc := NewCreatePlanUseCase(f.planRepo, &fakeCache{}, f.clock, f.logger)

	_, err := uc.Execute(context.Background(), CreatePlanCommand{
		Code:         "X",
		Name:         "X",
		StudentLimit: 5,
		PriceMonthly: "not-a-number",
		PriceYearly:  "10.00",
	})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestUpdatePlan_LeavesSnapshotsFrozen(t *testing.T) {
	f := newFixture()
	plan := f.addPlan(t, "PRO_20", 20, 0, 499, 4990)
	f.addTeacher(7, 0)

	upsert := newUpsertUseCase(f)
	created, err := upsert.Execute(context.Background(), UpsertSubscriptionCommand{
		TeacherID: 7, PlanSID: plan.SID(), BillingPeriod: "MONTHLY", StartNow: true,
	})
	require.NoError(t, err)

	uc := NewUpdatePlanUseCase(f.planRepo, &fakeCache{}, f.clock, f.logger)
	_, err = uc.Execute(context.Background(), UpdatePlanCommand{
		PlanSID:      plan.SID(),
		Name:         "Pro",
		StudentLimit: 50,
		PriceMonthly: "599.00",
		PriceYearly:  "5990.00",
		Currency:     "TRY",
	})
	require.NoError(t, err)

	sub, _ := f.subRepo.GetBySID(context.Background(), created.Subscription.SID)
	assert.Equal(t, 20, sub.StudentLimitSnapshot())
	assert.Equal(t, "499", sub.Amount().String())
}

func TestDeactivatePlan_BlocksNewAssignments(t *testing.T) {
	f := newFixture()
	plan := f.addPlan(t, "PRO_20", 20, 0, 499, 4990)
	f.addTeacher(7, 0)
	cache := &fakeCache{}

	deactivate := NewDeactivatePlanUseCase(f.planRepo, cache, f.clock, f.logger)
	result, err := deactivate.Execute(context.Background(), DeactivatePlanCommand{PlanSID: plan.SID()})
	require.NoError(t, err)
	assert.False(t, result.IsActive)
	assert.Equal(t, 1, cache.invalidated)

	upsert := newUpsertUseCase(f)
	_, err = upsert.Execute(context.Background(), UpsertSubscriptionCommand{
		TeacherID: 7, PlanSID: plan.SID(), BillingPeriod: "MONTHLY", StartNow: true,
	})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestListPlans_PublicReadsThroughCache(t *testing.T) {
	f := newFixture()
	f.addPlan(t, "STARTER_10", 10, 0, 299, 2990)
	inactive := f.addPlan(t, "LEGACY_5", 5, 0, 99, 990)
	inactive.Deactivate(baseTime)
	cache := &fakeCache{}
	uc := NewListPlansUseCase(f.planRepo, cache, f.logger)

	plans, err := uc.ExecutePublic(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "STARTER_10", plans[0].Code)
	assert.True(t, cache.set)

	// Second read is served from the cache.
	f.addPlan(t, "PRO_20", 20, 0, 499, 4990)
	cached, err := uc.ExecutePublic(context.Background())
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}

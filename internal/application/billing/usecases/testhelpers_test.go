package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mentora-inc/mentora/internal/application/billing/dto"
	"github.com/mentora-inc/mentora/internal/domain/billing"
	vo "github.com/mentora-inc/mentora/internal/domain/billing/valueobjects"
	"github.com/mentora-inc/mentora/internal/shared/clock"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakePlanRepo struct {
	plans  map[uint]*billing.Plan
	nextID uint
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[uint]*billing.Plan), nextID: 1}
}

func (r *fakePlanRepo) Create(_ context.Context, plan *billing.Plan) error {
	if plan.ID() == 0 {
		_ = plan.SetID(r.nextID)
		r.nextID++
	}
	r.plans[plan.ID()] = plan
	return nil
}

func (r *fakePlanRepo) Update(_ context.Context, plan *billing.Plan) error {
	r.plans[plan.ID()] = plan
	return nil
}

func (r *fakePlanRepo) GetByID(_ context.Context, id uint) (*billing.Plan, error) {
	return r.plans[id], nil
}

func (r *fakePlanRepo) GetBySID(_ context.Context, sid string) (*billing.Plan, error) {
	for _, p := range r.plans {
		if p.SID() == sid {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) GetByCode(_ context.Context, code string) (*billing.Plan, error) {
	for _, p := range r.plans {
		if p.Code() == code {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) List(_ context.Context, filter billing.PlanFilter) ([]*billing.Plan, int64, error) {
	var result []*billing.Plan
	for _, p := range r.plans {
		if filter.IsActive != nil && p.IsActive() != *filter.IsActive {
			continue
		}
		result = append(result, p)
	}
	return result, int64(len(result)), nil
}

type fakeSubscriptionRepo struct {
	subs   map[uint]*billing.Subscription
	nextID uint
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[uint]*billing.Subscription), nextID: 1}
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, sub *billing.Subscription) error {
	if sub.ID() == 0 {
		_ = sub.SetID(r.nextID)
		r.nextID++
	}
	r.subs[sub.ID()] = sub
	return nil
}

func (r *fakeSubscriptionRepo) Update(_ context.Context, sub *billing.Subscription) error {
	r.subs[sub.ID()] = sub
	return nil
}

func (r *fakeSubscriptionRepo) GetByID(_ context.Context, id uint) (*billing.Subscription, error) {
	return r.subs[id], nil
}

func (r *fakeSubscriptionRepo) GetBySID(_ context.Context, sid string) (*billing.Subscription, error) {
	for _, s := range r.subs {
		if s.SID() == sid {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) GetByTeacherID(_ context.Context, teacherID uint) (*billing.Subscription, error) {
	for _, s := range r.subs {
		if s.TeacherID() == teacherID {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) List(_ context.Context, filter billing.SubscriptionFilter) ([]*billing.Subscription, int64, error) {
	var result []*billing.Subscription
	for _, s := range r.subs {
		if filter.Status != nil && s.Status() != *filter.Status {
			continue
		}
		if filter.TeacherID != nil && s.TeacherID() != *filter.TeacherID {
			continue
		}
		if filter.PlanID != nil && s.PlanID() != *filter.PlanID {
			continue
		}
		if filter.Expiring != nil {
			if !s.Status().IsLive() {
				continue
			}
			end := s.CurrentPeriodEnd()
			if end.Before(filter.Expiring.From) || end.After(filter.Expiring.Until) {
				continue
			}
		}
		result = append(result, s)
	}
	return result, int64(len(result)), nil
}

func (r *fakeSubscriptionRepo) FindTrialEnded(_ context.Context, now time.Time) ([]*billing.Subscription, error) {
	var result []*billing.Subscription
	for _, s := range r.subs {
		if s.Status() == vo.StatusTrialing && s.TrialEnd() != nil && s.TrialEnd().Before(now) {
			result = append(result, s)
		}
	}
	return result, nil
}

func (r *fakeSubscriptionRepo) FindPeriodEnded(_ context.Context, now time.Time) ([]*billing.Subscription, error) {
	var result []*billing.Subscription
	for _, s := range r.subs {
		if s.Status() == vo.StatusActive && s.CurrentPeriodEnd().Before(now) {
			result = append(result, s)
		}
	}
	return result, nil
}

type fakeEventRepo struct {
	events []*billing.SubscriptionEvent
	nextID uint
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{nextID: 1}
}

func (r *fakeEventRepo) Append(_ context.Context, event *billing.SubscriptionEvent) error {
	_ = event.SetID(r.nextID)
	r.nextID++
	r.events = append(r.events, event)
	return nil
}

func (r *fakeEventRepo) ListBySubscriptionID(_ context.Context, subscriptionID uint, limit int) ([]*billing.SubscriptionEvent, error) {
	var result []*billing.SubscriptionEvent
	for i := len(r.events) - 1; i >= 0 && len(result) < limit; i-- {
		if r.events[i].SubscriptionID() == subscriptionID {
			result = append(result, r.events[i])
		}
	}
	return result, nil
}

// typesFor returns the event types recorded for a subscription, oldest
// first.
func (r *fakeEventRepo) typesFor(subscriptionID uint) []vo.EventType {
	var types []vo.EventType
	for _, e := range r.events {
		if e.SubscriptionID() == subscriptionID {
			types = append(types, e.EventType())
		}
	}
	return types
}

type fakeRoster struct {
	teachers map[uint]bool
	counts   map[uint]int
}

func newFakeRoster() *fakeRoster {
	return &fakeRoster{teachers: make(map[uint]bool), counts: make(map[uint]int)}
}

func (r *fakeRoster) CountAssignedStudents(_ context.Context, teacherID uint) (int, error) {
	return r.counts[teacherID], nil
}

func (r *fakeRoster) TeacherExists(_ context.Context, teacherID uint) (bool, error) {
	return r.teachers[teacherID], nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeCache struct {
	plans       []*dto.PlanDTO
	set         bool
	invalidated int
}

func (c *fakeCache) GetActivePlans(_ context.Context) ([]*dto.PlanDTO, bool) {
	return c.plans, c.set
}

func (c *fakeCache) SetActivePlans(_ context.Context, plans []*dto.PlanDTO) {
	c.plans = plans
	c.set = true
}

func (c *fakeCache) Invalidate(_ context.Context) {
	c.plans = nil
	c.set = false
	c.invalidated++
}

// fixture bundles the fakes most subscription usecase tests need.
type fixture struct {
	planRepo *fakePlanRepo
	subRepo  *fakeSubscriptionRepo
	events   *fakeEventRepo
	roster   *fakeRoster
	tx       fakeTxManager
	clock    *clock.Fixed
	logger   logger.Interface
}

func newFixture() *fixture {
	return &fixture{
		planRepo: newFakePlanRepo(),
		subRepo:  newFakeSubscriptionRepo(),
		events:   newFakeEventRepo(),
		roster:   newFakeRoster(),
		clock:    clock.NewFixed(baseTime),
		logger:   logger.NewLogger(),
	}
}

func (f *fixture) addPlan(t *testing.T, code string, limit, trialDays int, monthly, yearly int64) *billing.Plan {
	t.Helper()
	plan, err := billing.NewPlan(
		"plan_"+code, code, code, limit,
		decimal.NewFromInt(monthly), decimal.NewFromInt(yearly),
		"TRY", trialDays, baseTime,
	)
	require.NoError(t, err)
	require.NoError(t, f.planRepo.Create(context.Background(), plan))
	return plan
}

func (f *fixture) addTeacher(id uint, students int) {
	f.roster.teachers[id] = true
	f.roster.counts[id] = students
}

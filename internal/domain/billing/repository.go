package billing

import (
	"context"
	"time"

	vo "github.com/mentora-inc/mentora/internal/domain/billing/valueobjects"
)

// PlanFilter narrows a plan listing.
type PlanFilter struct {
	IsActive *bool
	Page     int
	PageSize int
}

// ExpiringWindow selects live subscriptions whose period ends inside
// [From, Until]. Callers compute the bounds from their injected clock.
type ExpiringWindow struct {
	From  time.Time
	Until time.Time
}

// SubscriptionFilter narrows a subscription listing.
type SubscriptionFilter struct {
	Status        *vo.SubscriptionStatus
	PlanID        *uint
	TeacherID     *uint
	BillingPeriod *vo.BillingPeriod
	Expiring      *ExpiringWindow
	Page          int
	PageSize      int
}

// PlanRepository persists plans. Lookup methods return (nil, nil) when no
// row matches.
type PlanRepository interface {
	Create(ctx context.Context, plan *Plan) error
	Update(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, id uint) (*Plan, error)
	GetBySID(ctx context.Context, sid string) (*Plan, error)
	GetByCode(ctx context.Context, code string) (*Plan, error)
	List(ctx context.Context, filter PlanFilter) ([]*Plan, int64, error)
}

// SubscriptionRepository persists subscriptions. Lookup methods return
// (nil, nil) when no row matches. Update applies optimistic locking on the
// version column and returns ErrConcurrencyConflict on a stale write.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *Subscription) error
	Update(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id uint) (*Subscription, error)
	GetBySID(ctx context.Context, sid string) (*Subscription, error)
	GetByTeacherID(ctx context.Context, teacherID uint) (*Subscription, error)
	List(ctx context.Context, filter SubscriptionFilter) ([]*Subscription, int64, error)
	// FindTrialEnded returns TRIALING subscriptions whose trial window
	// closed strictly before now.
	FindTrialEnded(ctx context.Context, now time.Time) ([]*Subscription, error)
	// FindPeriodEnded returns ACTIVE subscriptions whose period closed
	// strictly before now.
	FindPeriodEnded(ctx context.Context, now time.Time) ([]*Subscription, error)
}

// SubscriptionEventRepository appends and reads the audit log.
type SubscriptionEventRepository interface {
	Append(ctx context.Context, event *SubscriptionEvent) error
	// ListBySubscriptionID returns the newest events first, capped at limit.
	ListBySubscriptionID(ctx context.Context, subscriptionID uint, limit int) ([]*SubscriptionEvent, error)
}

package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/mentora-inc/mentora/internal/domain/billing/valueobjects"
)

// Subscription is the aggregate root of the entitlement engine. A teacher
// owns at most one subscription, ever; a second assignment overwrites the
// existing row instead of creating a sibling. All legal state transitions
// are methods here so the invariants (trial_end set iff TRIALING, frozen
// snapshots, end >= start) are enforced in one place.
//
// amount, currency and studentLimitSnapshot are copied from the plan at
// transition time and are never re-derived from later plan edits.
type Subscription struct {
	id                   uint
	sid                  string
	teacherID            uint
	planID               uint
	status               vo.SubscriptionStatus
	billingPeriod        vo.BillingPeriod
	amount               decimal.Decimal
	currency             string
	currentPeriodStart   time.Time
	currentPeriodEnd     time.Time
	trialEnd             *time.Time
	studentLimitSnapshot int
	cancelAtPeriodEnd    bool
	autoRenew            bool
	version              int
	createdAt            time.Time
	updatedAt            time.Time
}

// NewSubscription assigns a plan to a teacher for the first time.
// With trialDays > 0 the subscription starts TRIALING and the trial window
// doubles as the current period. Otherwise it starts ACTIVE; startNow=false
// yields a period that ends immediately (kept intentionally, flagged to
// product, see HTTP handler docs).
func NewSubscription(sid string, teacherID uint, plan *Plan, period vo.BillingPeriod, startNow bool, trialDays int, now time.Time) (*Subscription, error) {
	if sid == "" {
		return nil, fmt.Errorf("subscription SID is required")
	}
	if teacherID == 0 {
		return nil, fmt.Errorf("teacher ID is required")
	}
	if plan == nil || plan.ID() == 0 {
		return nil, fmt.Errorf("plan is required")
	}
	if !period.IsValid() {
		return nil, fmt.Errorf("invalid billing period: %s", period)
	}
	if trialDays < 0 || trialDays > maxTrialDays {
		return nil, fmt.Errorf("trial days must be between 0 and %d", maxTrialDays)
	}

	s := &Subscription{
		sid:       sid,
		teacherID: teacherID,
		autoRenew: true,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}
	s.applyAssignment(plan, period, startNow, trialDays, now)
	return s, nil
}

// ReconstructSubscription rebuilds a subscription from persistence.
func ReconstructSubscription(
	id uint, sid string, teacherID, planID uint,
	status vo.SubscriptionStatus, billingPeriod vo.BillingPeriod,
	amount decimal.Decimal, currency string,
	currentPeriodStart, currentPeriodEnd time.Time,
	trialEnd *time.Time,
	studentLimitSnapshot int,
	cancelAtPeriodEnd, autoRenew bool,
	version int,
	createdAt, updatedAt time.Time,
) (*Subscription, error) {
	if id == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if teacherID == 0 {
		return nil, fmt.Errorf("teacher ID is required")
	}
	if planID == 0 {
		return nil, fmt.Errorf("plan ID is required")
	}
	if !vo.ValidStatuses[status] {
		return nil, fmt.Errorf("invalid subscription status: %s", status)
	}
	if !billingPeriod.IsValid() {
		return nil, fmt.Errorf("invalid billing period: %s", billingPeriod)
	}

	return &Subscription{
		id:                   id,
		sid:                  sid,
		teacherID:            teacherID,
		planID:               planID,
		status:               status,
		billingPeriod:        billingPeriod,
		amount:               amount,
		currency:             currency,
		currentPeriodStart:   currentPeriodStart,
		currentPeriodEnd:     currentPeriodEnd,
		trialEnd:             trialEnd,
		studentLimitSnapshot: studentLimitSnapshot,
		cancelAtPeriodEnd:    cancelAtPeriodEnd,
		autoRenew:            autoRenew,
		version:              version,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}, nil
}

func (s *Subscription) ID() uint                       { return s.id }
func (s *Subscription) SID() string                    { return s.sid }
func (s *Subscription) TeacherID() uint                { return s.teacherID }
func (s *Subscription) PlanID() uint                   { return s.planID }
func (s *Subscription) Status() vo.SubscriptionStatus  { return s.status }
func (s *Subscription) BillingPeriod() vo.BillingPeriod { return s.billingPeriod }
func (s *Subscription) Amount() decimal.Decimal        { return s.amount }
func (s *Subscription) Currency() string               { return s.currency }
func (s *Subscription) CurrentPeriodStart() time.Time  { return s.currentPeriodStart }
func (s *Subscription) CurrentPeriodEnd() time.Time    { return s.currentPeriodEnd }
func (s *Subscription) TrialEnd() *time.Time           { return s.trialEnd }
func (s *Subscription) StudentLimitSnapshot() int      { return s.studentLimitSnapshot }
func (s *Subscription) CancelAtPeriodEnd() bool        { return s.cancelAtPeriodEnd }
func (s *Subscription) AutoRenew() bool                { return s.autoRenew }
func (s *Subscription) Version() int                   { return s.version }
func (s *Subscription) CreatedAt() time.Time           { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time           { return s.updatedAt }

// SetID sets the subscription ID (only for persistence layer use)
func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

// applyAssignment writes the full plan/period/status block shared by the
// create and reassign paths.
func (s *Subscription) applyAssignment(plan *Plan, period vo.BillingPeriod, startNow bool, trialDays int, now time.Time) {
	s.planID = plan.ID()
	s.billingPeriod = period
	s.amount = plan.PriceFor(period)
	s.currency = plan.Currency()
	s.studentLimitSnapshot = plan.StudentLimit()
	s.cancelAtPeriodEnd = false
	s.currentPeriodStart = now

	if trialDays > 0 {
		trialEnd := now.Add(time.Duration(trialDays) * 24 * time.Hour)
		s.status = vo.StatusTrialing
		s.trialEnd = &trialEnd
		s.currentPeriodEnd = trialEnd
	} else {
		s.status = vo.StatusActive
		s.trialEnd = nil
		if startNow {
			s.currentPeriodEnd = now.Add(period.Duration())
		} else {
			// Deliberately an already-ended period; the sweeper will
			// expire it on its next pass.
			s.currentPeriodEnd = now
		}
	}
	s.updatedAt = now
}

// Reassign overwrites the plan, period and status of an existing
// subscription regardless of its current state. This is the upsert path:
// a teacher only ever has one subscription row.
func (s *Subscription) Reassign(plan *Plan, period vo.BillingPeriod, startNow bool, trialDays int, now time.Time) error {
	if plan == nil || plan.ID() == 0 {
		return fmt.Errorf("plan is required")
	}
	if !period.IsValid() {
		return fmt.Errorf("invalid billing period: %s", period)
	}
	if trialDays < 0 || trialDays > maxTrialDays {
		return fmt.Errorf("trial days must be between 0 and %d", maxTrialDays)
	}

	s.applyAssignment(plan, period, startNow, trialDays, now)
	s.version++
	return nil
}

// ChangePlan swaps the plan, refreshing the limit snapshot and clearing any
// pending soft-cancel. Callers check the roster guard first; this method
// assumes the new limit fits. When newPeriod is non-nil the billing period
// and amount/currency snapshot are refreshed too.
//
// Terminal subscriptions come back ACTIVE with a fresh period. Live ones
// keep their period boundaries unless keepPeriod is false.
func (s *Subscription) ChangePlan(plan *Plan, newPeriod *vo.BillingPeriod, keepPeriod bool, now time.Time) error {
	if plan == nil || plan.ID() == 0 {
		return fmt.Errorf("plan is required")
	}
	if newPeriod != nil && !newPeriod.IsValid() {
		return fmt.Errorf("invalid billing period: %s", *newPeriod)
	}

	s.planID = plan.ID()
	s.studentLimitSnapshot = plan.StudentLimit()
	s.cancelAtPeriodEnd = false

	if newPeriod != nil {
		s.billingPeriod = *newPeriod
		s.amount = plan.PriceFor(*newPeriod)
		s.currency = plan.Currency()
	}

	if s.status.IsTerminal() {
		s.status = vo.StatusActive
		s.trialEnd = nil
		s.currentPeriodStart = now
		s.currentPeriodEnd = now.Add(s.billingPeriod.Duration())
	} else if !keepPeriod {
		s.currentPeriodStart = now
		s.currentPeriodEnd = now.Add(s.billingPeriod.Duration())
	}

	s.updatedAt = now
	s.version++
	return nil
}

// Cancel terminates the subscription immediately. There is no proration;
// any soft-cancel intent is overridden.
func (s *Subscription) Cancel(now time.Time) error {
	s.status = vo.StatusCanceled
	s.cancelAtPeriodEnd = false
	s.trialEnd = nil
	s.updatedAt = now
	s.version++
	return nil
}

// Reactivate brings a subscription back to ACTIVE, extending an unexpired
// period or restarting an expired one. extendDays <= 0 means one billing
// period; the value is clamped to [1,365]. The limit snapshot is refreshed
// from the plan. Safe to call on an already-ACTIVE subscription: it simply
// extends.
func (s *Subscription) Reactivate(plan *Plan, extendDays int, now time.Time) error {
	if plan == nil || plan.ID() != s.planID {
		return fmt.Errorf("plan does not match subscription")
	}

	if extendDays <= 0 {
		extendDays = s.billingPeriod.Days()
	}
	if extendDays < 1 {
		extendDays = 1
	}
	if extendDays > 365 {
		extendDays = 365
	}
	extension := time.Duration(extendDays) * 24 * time.Hour

	if s.currentPeriodEnd.Before(now) {
		s.currentPeriodStart = now
		s.currentPeriodEnd = now.Add(extension)
	} else {
		s.currentPeriodEnd = s.currentPeriodEnd.Add(extension)
	}

	s.status = vo.StatusActive
	s.cancelAtPeriodEnd = false
	s.trialEnd = nil
	s.studentLimitSnapshot = plan.StudentLimit()
	s.updatedAt = now
	s.version++
	return nil
}

// Renew extends the current period by one billing period length, leaving
// the period start untouched. No expiry check is performed; unlike
// Reactivate it never resets the start and never clamps.
func (s *Subscription) Renew(now time.Time) error {
	s.currentPeriodEnd = s.currentPeriodEnd.Add(s.billingPeriod.Duration())
	s.status = vo.StatusActive
	s.trialEnd = nil
	s.updatedAt = now
	s.version++
	return nil
}

// SetCancelAtPeriodEnd flips the soft-cancel flag. No event is recorded and
// no status changes. The sweeper currently ignores the flag and expires
// period-ended subscriptions regardless.
func (s *Subscription) SetCancelAtPeriodEnd(flag bool, now time.Time) {
	if s.cancelAtPeriodEnd == flag {
		return
	}
	s.cancelAtPeriodEnd = flag
	s.updatedAt = now
	s.version++
}

// EndTrial converts a trial whose window has passed into a paid ACTIVE
// subscription with a fresh full period starting at the sweep moment, not
// at trial_end.
func (s *Subscription) EndTrial(now time.Time) error {
	if s.status != vo.StatusTrialing {
		return ErrInvalidTransition(s.status.String(), vo.StatusActive.String())
	}
	s.status = vo.StatusActive
	s.trialEnd = nil
	s.currentPeriodStart = now
	s.currentPeriodEnd = now.Add(s.billingPeriod.Duration())
	s.updatedAt = now
	s.version++
	return nil
}

// MarkExpired transitions an ACTIVE subscription whose period has ended to
// EXPIRED. auto_renew is advisory metadata and is ignored. Calling on an
// already-EXPIRED subscription is a no-op.
func (s *Subscription) MarkExpired(now time.Time) error {
	if s.status == vo.StatusExpired {
		return nil
	}
	if s.status != vo.StatusActive {
		return ErrInvalidTransition(s.status.String(), vo.StatusExpired.String())
	}
	s.status = vo.StatusExpired
	s.updatedAt = now
	s.version++
	return nil
}

// IsActive reports whether the subscription currently grants entitlement:
// a live status, an unexpired period, and an unexpired trial if trialing.
func (s *Subscription) IsActive(now time.Time) bool {
	if !s.status.IsLive() {
		return false
	}
	if !s.currentPeriodEnd.After(now) {
		return false
	}
	if s.trialEnd != nil && !s.trialEnd.After(now) {
		return false
	}
	return true
}

// RemainingSlots is the quota headroom given a live assigned-student count.
func (s *Subscription) RemainingSlots(assigned int) int {
	remaining := s.studentLimitSnapshot - assigned
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Validate performs domain-level validation.
func (s *Subscription) Validate() error {
	if s.teacherID == 0 {
		return fmt.Errorf("teacher ID is required")
	}
	if s.planID == 0 {
		return fmt.Errorf("plan ID is required")
	}
	if !vo.ValidStatuses[s.status] {
		return fmt.Errorf("invalid status: %s", s.status)
	}
	if s.currentPeriodEnd.Before(s.currentPeriodStart) {
		return fmt.Errorf("current period end must not precede current period start")
	}
	if (s.status == vo.StatusTrialing) != (s.trialEnd != nil) {
		return fmt.Errorf("trial_end must be set exactly when status is TRIALING")
	}
	if s.studentLimitSnapshot <= 0 {
		return fmt.Errorf("student limit snapshot must be greater than 0")
	}
	return nil
}

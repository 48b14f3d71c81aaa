package dto

import (
	"time"

	"github.com/mentora-inc/mentora/internal/domain/billing"
)

type PlanDTO struct {
	ID                    uint           `json:"id"`
	SID                   string         `json:"sid"`
	Code                  string         `json:"code"`
	Name                  string         `json:"name"`
	StudentLimit          int            `json:"student_limit"`
	PriceMonthly          string         `json:"price_monthly"`
	PriceYearly           string         `json:"price_yearly"`
	Currency              string         `json:"currency"`
	IsActive              bool           `json:"is_active"`
	TrialDays             int            `json:"trial_days"`
	Features              map[string]any `json:"features,omitempty"`
	YearlySavings         string         `json:"yearly_savings"`
	YearlyDiscountPercent string         `json:"yearly_discount_percent"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

type SubscriptionDTO struct {
	ID                   uint       `json:"id"`
	SID                  string     `json:"sid"`
	TeacherID            uint       `json:"teacher_id"`
	Plan                 *PlanDTO   `json:"plan,omitempty"`
	Status               string     `json:"status"`
	BillingPeriod        string     `json:"billing_period"`
	Amount               string     `json:"amount"`
	Currency             string     `json:"currency"`
	CurrentPeriodStart   time.Time  `json:"current_period_start"`
	CurrentPeriodEnd     time.Time  `json:"current_period_end"`
	TrialEnd             *time.Time `json:"trial_end,omitempty"`
	StudentLimitSnapshot int        `json:"student_limit_snapshot"`
	CancelAtPeriodEnd    bool       `json:"cancel_at_period_end"`
	AutoRenew            bool       `json:"auto_renew"`
	IsActive             bool       `json:"is_active"`
	IsExpired            bool       `json:"is_expired"`
	PeriodDaysRemaining  int        `json:"period_days_remaining"`
	AssignedStudents     int        `json:"assigned_students"`
	RemainingSlots       int        `json:"remaining_slots"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type SubscriptionEventDTO struct {
	ID        uint           `json:"id"`
	SID       string         `json:"sid"`
	EventType string         `json:"event_type"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// QuotaCheckDTO is the answer to "can this teacher take one more student".
type QuotaCheckDTO struct {
	Allowed bool   `json:"allowed"`
	Limit   int    `json:"limit"`
	Current int    `json:"current"`
	Reason  string `json:"reason"`
}

// UpsertResultDTO wraps an upsert outcome with whether the row was created
// fresh or an existing assignment was overwritten.
type UpsertResultDTO struct {
	Subscription *SubscriptionDTO `json:"subscription"`
	Created      bool             `json:"created"`
}

func ToPlanDTO(plan *billing.Plan) *PlanDTO {
	if plan == nil {
		return nil
	}
	return &PlanDTO{
		ID:                    plan.ID(),
		SID:                   plan.SID(),
		Code:                  plan.Code(),
		Name:                  plan.Name(),
		StudentLimit:          plan.StudentLimit(),
		PriceMonthly:          plan.PriceMonthly().StringFixed(2),
		PriceYearly:           plan.PriceYearly().StringFixed(2),
		Currency:              plan.Currency(),
		IsActive:              plan.IsActive(),
		TrialDays:             plan.TrialDays(),
		Features:              plan.Features(),
		YearlySavings:         plan.YearlySavings().StringFixed(2),
		YearlyDiscountPercent: plan.YearlyDiscountPercent().StringFixed(1),
		CreatedAt:             plan.CreatedAt(),
		UpdatedAt:             plan.UpdatedAt(),
	}
}

// ToSubscriptionDTO builds the subscription view. assignedStudents comes
// from the roster; the caller passes -1 when the roster count was skipped,
// which zeroes the derived quota fields.
func ToSubscriptionDTO(sub *billing.Subscription, plan *billing.Plan, assignedStudents int, now time.Time) *SubscriptionDTO {
	if sub == nil {
		return nil
	}

	daysRemaining := 0
	if remaining := sub.CurrentPeriodEnd().Sub(now); remaining > 0 {
		daysRemaining = int(remaining.Hours() / 24)
	}

	assigned := 0
	remainingSlots := 0
	if assignedStudents >= 0 {
		assigned = assignedStudents
		if !sub.Status().IsTerminal() {
			remainingSlots = sub.RemainingSlots(assignedStudents)
		}
	}

	return &SubscriptionDTO{
		ID:                   sub.ID(),
		SID:                  sub.SID(),
		TeacherID:            sub.TeacherID(),
		Plan:                 ToPlanDTO(plan),
		Status:               sub.Status().String(),
		BillingPeriod:        sub.BillingPeriod().String(),
		Amount:               sub.Amount().StringFixed(2),
		Currency:             sub.Currency(),
		CurrentPeriodStart:   sub.CurrentPeriodStart(),
		CurrentPeriodEnd:     sub.CurrentPeriodEnd(),
		TrialEnd:             sub.TrialEnd(),
		StudentLimitSnapshot: sub.StudentLimitSnapshot(),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd(),
		AutoRenew:            sub.AutoRenew(),
		IsActive:             sub.IsActive(now),
		IsExpired:            !sub.CurrentPeriodEnd().After(now),
		PeriodDaysRemaining:  daysRemaining,
		AssignedStudents:     assigned,
		RemainingSlots:       remainingSlots,
		CreatedAt:            sub.CreatedAt(),
		UpdatedAt:            sub.UpdatedAt(),
	}
}

func ToSubscriptionEventDTO(event *billing.SubscriptionEvent) *SubscriptionEventDTO {
	if event == nil {
		return nil
	}
	return &SubscriptionEventDTO{
		ID:        event.ID(),
		SID:       event.SID(),
		EventType: event.EventType().String(),
		Payload:   event.Payload(),
		CreatedAt: event.CreatedAt(),
	}
}

package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/mentora-inc/mentora/internal/domain/billing/valueobjects"
)

const (
	maxTrialDays = 365
)

// Plan is a subscription tier: a student quota plus monthly/yearly pricing.
// Plans referenced by subscriptions are never hard-deleted, only deactivated.
type Plan struct {
	id           uint
	sid          string
	code         string
	name         string
	studentLimit int
	priceMonthly decimal.Decimal
	priceYearly  decimal.Decimal
	currency     string
	isActive     bool
	trialDays    int
	features     map[string]interface{}
	version      int
	createdAt    time.Time
	updatedAt    time.Time
}

func NewPlan(sid, code, name string, studentLimit int, priceMonthly, priceYearly decimal.Decimal, currency string, trialDays int, now time.Time) (*Plan, error) {
	if sid == "" {
		return nil, fmt.Errorf("plan SID is required")
	}
	if code == "" {
		return nil, fmt.Errorf("plan code is required")
	}
	if name == "" {
		return nil, fmt.Errorf("plan name is required")
	}
	if len(code) > 50 {
		return nil, fmt.Errorf("plan code too long (max 50 characters)")
	}
	if len(name) > 100 {
		return nil, fmt.Errorf("plan name too long (max 100 characters)")
	}
	if studentLimit <= 0 {
		return nil, fmt.Errorf("student limit must be greater than 0")
	}
	if trialDays < 0 || trialDays > maxTrialDays {
		return nil, fmt.Errorf("trial days must be between 0 and %d", maxTrialDays)
	}
	if priceMonthly.IsNegative() || priceYearly.IsNegative() {
		return nil, fmt.Errorf("plan prices cannot be negative")
	}
	if currency == "" {
		currency = "TRY"
	}

	return &Plan{
		sid:          sid,
		code:         code,
		name:         name,
		studentLimit: studentLimit,
		priceMonthly: priceMonthly,
		priceYearly:  priceYearly,
		currency:     currency,
		isActive:     true,
		trialDays:    trialDays,
		features:     make(map[string]interface{}),
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructPlan rebuilds a plan from persistence.
func ReconstructPlan(id uint, sid, code, name string, studentLimit int,
	priceMonthly, priceYearly decimal.Decimal, currency string, isActive bool,
	trialDays int, features map[string]interface{}, version int,
	createdAt, updatedAt time.Time) (*Plan, error) {

	if id == 0 {
		return nil, fmt.Errorf("plan ID cannot be zero")
	}
	if features == nil {
		features = make(map[string]interface{})
	}

	return &Plan{
		id:           id,
		sid:          sid,
		code:         code,
		name:         name,
		studentLimit: studentLimit,
		priceMonthly: priceMonthly,
		priceYearly:  priceYearly,
		currency:     currency,
		isActive:     isActive,
		trialDays:    trialDays,
		features:     features,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

func (p *Plan) ID() uint {
	return p.id
}

// SetID sets the plan ID (only for persistence layer use)
func (p *Plan) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("plan ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("plan ID cannot be zero")
	}
	p.id = id
	return nil
}

func (p *Plan) SID() string {
	return p.sid
}

func (p *Plan) Code() string {
	return p.code
}

func (p *Plan) Name() string {
	return p.name
}

func (p *Plan) StudentLimit() int {
	return p.studentLimit
}

func (p *Plan) PriceMonthly() decimal.Decimal {
	return p.priceMonthly
}

func (p *Plan) PriceYearly() decimal.Decimal {
	return p.priceYearly
}

func (p *Plan) Currency() string {
	return p.currency
}

func (p *Plan) IsActive() bool {
	return p.isActive
}

func (p *Plan) TrialDays() int {
	return p.trialDays
}

func (p *Plan) Features() map[string]interface{} {
	return p.features
}

func (p *Plan) Version() int {
	return p.version
}

func (p *Plan) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Plan) UpdatedAt() time.Time {
	return p.updatedAt
}

// PriceFor returns the plan price for the given billing period.
func (p *Plan) PriceFor(period vo.BillingPeriod) decimal.Decimal {
	if period == vo.PeriodYearly {
		return p.priceYearly
	}
	return p.priceMonthly
}

// YearlySavings is price_monthly*12 - price_yearly.
func (p *Plan) YearlySavings() decimal.Decimal {
	return p.priceMonthly.Mul(decimal.NewFromInt(12)).Sub(p.priceYearly)
}

// YearlyDiscountPercent is the yearly saving as a percentage of twelve
// monthly payments. Zero when the plan has no monthly price.
func (p *Plan) YearlyDiscountPercent() decimal.Decimal {
	monthlyTotal := p.priceMonthly.Mul(decimal.NewFromInt(12))
	if !monthlyTotal.IsPositive() {
		return decimal.Zero
	}
	return p.YearlySavings().Div(monthlyTotal).Mul(decimal.NewFromInt(100))
}

// Update replaces the editable plan fields. Existing subscriptions keep
// their snapshots; edits never propagate to them.
func (p *Plan) Update(name string, studentLimit int, priceMonthly, priceYearly decimal.Decimal, currency string, trialDays int, now time.Time) error {
	if name == "" {
		return fmt.Errorf("plan name is required")
	}
	if studentLimit <= 0 {
		return fmt.Errorf("student limit must be greater than 0")
	}
	if trialDays < 0 || trialDays > maxTrialDays {
		return fmt.Errorf("trial days must be between 0 and %d", maxTrialDays)
	}
	if priceMonthly.IsNegative() || priceYearly.IsNegative() {
		return fmt.Errorf("plan prices cannot be negative")
	}

	p.name = name
	p.studentLimit = studentLimit
	p.priceMonthly = priceMonthly
	p.priceYearly = priceYearly
	if currency != "" {
		p.currency = currency
	}
	p.trialDays = trialDays
	p.updatedAt = now
	p.version++
	return nil
}

func (p *Plan) UpdateFeatures(features map[string]interface{}, now time.Time) {
	if features == nil {
		features = make(map[string]interface{})
	}
	p.features = features
	p.updatedAt = now
	p.version++
}

func (p *Plan) Activate(now time.Time) {
	if p.isActive {
		return
	}
	p.isActive = true
	p.updatedAt = now
	p.version++
}

// Deactivate soft-disables the plan. Referenced plans stay in place so
// snapshots and audit payloads keep resolving.
func (p *Plan) Deactivate(now time.Time) {
	if !p.isActive {
		return
	}
	p.isActive = false
	p.updatedAt = now
	p.version++
}

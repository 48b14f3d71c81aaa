package valueobjects

import (
	"fmt"
	"time"
)

// BillingPeriod is the length of a billed window. Period math uses fixed
// day counts rather than calendar months so periods never drift across
// month boundaries.
type BillingPeriod string

const (
	PeriodMonthly BillingPeriod = "MONTHLY"
	PeriodYearly  BillingPeriod = "YEARLY"
)

func (p BillingPeriod) String() string {
	return string(p)
}

func (p BillingPeriod) IsValid() bool {
	return p == PeriodMonthly || p == PeriodYearly
}

// Days returns the fixed period length: MONTHLY=30, YEARLY=365.
func (p BillingPeriod) Days() int {
	if p == PeriodYearly {
		return 365
	}
	return 30
}

// Duration returns the period length as a time.Duration.
func (p BillingPeriod) Duration() time.Duration {
	return time.Duration(p.Days()) * 24 * time.Hour
}

// ParseBillingPeriod validates a raw billing period string, defaulting to
// MONTHLY when empty.
func ParseBillingPeriod(raw string) (BillingPeriod, error) {
	if raw == "" {
		return PeriodMonthly, nil
	}
	p := BillingPeriod(raw)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid billing period: %q", raw)
	}
	return p, nil
}

package billing

import (
	"errors"
	"fmt"
)

var (
	ErrPlanNotFound            = errors.New("plan not found")
	ErrPlanInactive            = errors.New("plan inactive")
	ErrPlanCodeExists          = errors.New("plan code already exists")
	ErrSubscriptionNotFound    = errors.New("subscription not found")
	ErrTeacherNotFound         = errors.New("teacher not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrConcurrencyConflict     = errors.New("subscription was modified concurrently")
)

// Machine-readable codes carried on quota violation responses.
const (
	QuotaCodeOK             = "OK"
	QuotaCodeLimitTooLow    = "LIMIT_TOO_LOW"
	QuotaCodeQuotaExceeded  = "QUOTA_EXCEEDED"
	QuotaCodeNoSubscription = "NO_SUBSCRIPTION"
	QuotaCodeInactive       = "INACTIVE"
)

// QuotaViolationError is returned when a roster size check blocks an
// operation. It carries the numbers callers surface to the end user.
type QuotaViolationError struct {
	Code    string
	Current int
	Limit   int
}

func (e *QuotaViolationError) Error() string {
	return fmt.Sprintf("%s: current=%d limit=%d", e.Code, e.Current, e.Limit)
}

// NewLimitTooLowError reports an assigned-student count that exceeds the
// target plan's limit. The operation must leave the subscription untouched.
func NewLimitTooLowError(current, limit int) *QuotaViolationError {
	return &QuotaViolationError{Code: QuotaCodeLimitTooLow, Current: current, Limit: limit}
}

// IsQuotaViolation extracts a QuotaViolationError from err, if present.
func IsQuotaViolation(err error) (*QuotaViolationError, bool) {
	var qe *QuotaViolationError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}

func ErrInvalidTransition(from, to string) error {
	return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, from, to)
}

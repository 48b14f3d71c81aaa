package valueobjects

import "fmt"

// SubscriptionStatus represents the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	StatusTrialing SubscriptionStatus = "TRIALING"
	StatusActive   SubscriptionStatus = "ACTIVE"
	StatusExpired  SubscriptionStatus = "EXPIRED"
	StatusCanceled SubscriptionStatus = "CANCELED"
)

// ValidStatuses is the set of statuses accepted from persistence and input.
var ValidStatuses = map[SubscriptionStatus]bool{
	StatusTrialing: true,
	StatusActive:   true,
	StatusExpired:  true,
	StatusCanceled: true,
}

func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsLive reports whether the status counts toward quota enforcement.
// EXPIRED and CANCELED subscriptions hold no entitlement.
func (s SubscriptionStatus) IsLive() bool {
	return s == StatusTrialing || s == StatusActive
}

// IsTerminal reports whether the status can only be left via an explicit
// reactivation or reassignment.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == StatusExpired || s == StatusCanceled
}

// ParseSubscriptionStatus validates a raw status string.
func ParseSubscriptionStatus(raw string) (SubscriptionStatus, error) {
	s := SubscriptionStatus(raw)
	if !ValidStatuses[s] {
		return "", fmt.Errorf("invalid subscription status: %q", raw)
	}
	return s, nil
}

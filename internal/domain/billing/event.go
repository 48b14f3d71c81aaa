package billing

import (
	"fmt"
	"time"

	vo "github.com/mentora-inc/mentora/internal/domain/billing/valueobjects"
)

// SubscriptionEvent is an immutable audit record of a lifecycle transition.
// Events are append-only: they are never updated or deleted, and failures
// during a transition roll back the event together with the mutation.
type SubscriptionEvent struct {
	id             uint
	sid            string
	subscriptionID uint
	eventType      vo.EventType
	payload        map[string]any
	createdAt      time.Time
}

// NewSubscriptionEvent creates an event for a subscription transition.
// The payload carries transition-specific context (plan ids, limits,
// period boundaries) and may be nil.
func NewSubscriptionEvent(sid string, subscriptionID uint, eventType vo.EventType, payload map[string]any, now time.Time) (*SubscriptionEvent, error) {
	if sid == "" {
		return nil, fmt.Errorf("event SID is required")
	}
	if subscriptionID == 0 {
		return nil, fmt.Errorf("subscription ID is required")
	}
	if !vo.ValidEventTypes[eventType] {
		return nil, fmt.Errorf("invalid event type: %s", eventType)
	}

	return &SubscriptionEvent{
		sid:            sid,
		subscriptionID: subscriptionID,
		eventType:      eventType,
		payload:        payload,
		createdAt:      now,
	}, nil
}

// ReconstructSubscriptionEvent rebuilds an event from persistence.
func ReconstructSubscriptionEvent(id uint, sid string, subscriptionID uint, eventType vo.EventType, payload map[string]any, createdAt time.Time) (*SubscriptionEvent, error) {
	if id == 0 {
		return nil, fmt.Errorf("event ID cannot be zero")
	}
	if subscriptionID == 0 {
		return nil, fmt.Errorf("subscription ID is required")
	}
	if !vo.ValidEventTypes[eventType] {
		return nil, fmt.Errorf("invalid event type: %s", eventType)
	}

	return &SubscriptionEvent{
		id:             id,
		sid:            sid,
		subscriptionID: subscriptionID,
		eventType:      eventType,
		payload:        payload,
		createdAt:      createdAt,
	}, nil
}

func (e *SubscriptionEvent) ID() uint                { return e.id }
func (e *SubscriptionEvent) SID() string             { return e.sid }
func (e *SubscriptionEvent) SubscriptionID() uint    { return e.subscriptionID }
func (e *SubscriptionEvent) EventType() vo.EventType { return e.eventType }
func (e *SubscriptionEvent) Payload() map[string]any { return e.payload }
func (e *SubscriptionEvent) CreatedAt() time.Time    { return e.createdAt }

// SetID sets the event ID (only for persistence layer use)
func (e *SubscriptionEvent) SetID(id uint) error {
	if e.id != 0 {
		return fmt.Errorf("event ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("event ID cannot be zero")
	}
	e.id = id
	return nil
}

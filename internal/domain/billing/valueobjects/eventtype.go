package valueobjects

import "fmt"

// EventType classifies an entry in the append-only subscription audit log.
type EventType string

const (
	EventCreated     EventType = "CREATED"
	EventPlanChanged EventType = "PLAN_CHANGED"
	EventRenewed     EventType = "RENEWED"
	EventReactivated EventType = "REACTIVATED"
	EventReassigned  EventType = "REASSIGNED"
	EventCanceled    EventType = "CANCELED"
	EventExpired     EventType = "EXPIRED"
	EventTrialEnded  EventType = "TRIAL_ENDED"
)

var ValidEventTypes = map[EventType]bool{
	EventCreated:     true,
	EventPlanChanged: true,
	EventRenewed:     true,
	EventReactivated: true,
	EventReassigned:  true,
	EventCanceled:    true,
	EventExpired:     true,
	EventTrialEnded:  true,
}

func (e EventType) String() string {
	return string(e)
}

// ParseEventType validates a raw event type string.
func ParseEventType(raw string) (EventType, error) {
	e := EventType(raw)
	if !ValidEventTypes[e] {
		return "", fmt.Errorf("invalid event type: %q", raw)
	}
	return e, nil
}

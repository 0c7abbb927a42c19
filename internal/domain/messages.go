package domain

import "time"

// EngineEventType identifies an outbound engine event
type EngineEventType string

const (
	EngineEventCreated  EngineEventType = "event.created"
	EngineEventUpdated  EngineEventType = "event.updated"
	EngineEventDeclined EngineEventType = "event.declined"
	EngineEventSettled  EngineEventType = "payment.settled"
)

// EngineEvent is the message published to the event stream after a
// state transition commits. Consumers index bookings and settlements
// off-engine; nothing in the engine depends on delivery.
type EngineEvent struct {
	ID         string          `json:"id"`
	Type       EngineEventType `json:"type"`
	EventID    EventID         `json:"event_id"`
	Event      *Event          `json:"event,omitempty"`
	Settlement *Settlement     `json:"settlement,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewEngineEvent builds an outbound message for the given transition
func NewEngineEvent(t EngineEventType, id string, ev *Event, st *Settlement) *EngineEvent {
	e := &EngineEvent{
		ID:         id,
		Type:       t,
		Event:      ev,
		Settlement: st,
		OccurredAt: time.Now(),
	}
	if ev != nil {
		e.EventID = ev.ID
	} else if st != nil {
		e.EventID = st.EventID
	}
	return e
}

// Key returns the partition key for the message
func (e *EngineEvent) Key() string {
	return string(e.EventID)
}

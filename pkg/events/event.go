package events

import "time"

// TypeChatLogged is published once per finished exchange; its payload is the
// full chat-log record.
const TypeChatLogged = "CHAT_LOGGED"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_LOGGED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used by publishers.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewChatLogged builds the event emitted after a terminal answer is produced.
// data carries the serialized chat-log record.
func NewChatLogged(data map[string]interface{}) Event {
	return BaseEvent{
		Type:       TypeChatLogged,
		Data:       data,
		OccurredAt: time.Now(),
	}
}

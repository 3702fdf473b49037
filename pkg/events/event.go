package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation used by the constructors below.
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

// NewChatTurnCompleted signals that one chat turn finished, successfully or
// not. Step carries the terminal pipeline step.
func NewChatTurnCompleted(sessionID, step string, iterationCount int, answerLen int) Event {
	return BaseEvent{
		Type: "CHAT_TURN_COMPLETED",
		Data: map[string]interface{}{
			"session_id":      sessionID,
			"step":            step,
			"iteration_count": iterationCount,
			"answer_len":      answerLen,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentEmbedded signals that a source document was re-chunked and its
// embeddings persisted.
func NewDocumentEmbedded(documentType, documentID string, chunks int) Event {
	return BaseEvent{
		Type: "DOCUMENT_EMBEDDED",
		Data: map[string]interface{}{
			"document_type": documentType,
			"document_id":   documentID,
			"chunks":        chunks,
		},
		OccurredAt: time.Now(),
	}
}

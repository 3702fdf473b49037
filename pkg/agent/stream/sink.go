package stream

import (
	"sync"

	"ai-taxconsult-be/internal/pkg/logger"
)

// EventName labels a streaming event frame.
type EventName string

const (
	EventStart             EventName = "start"
	EventSession           EventName = "session"
	EventStep              EventName = "step"
	EventChunk             EventName = "chunk"
	EventMessage           EventName = "message"
	EventValidation        EventName = "validation"
	EventComplete          EventName = "complete"
	EventStreamingComplete EventName = "streaming-complete"
	EventError             EventName = "error"
	EventInfo              EventName = "info"
)

// Event is one frame of a streaming chat turn.
type Event struct {
	Name EventName `json:"name"`
	Data string    `json:"data"`
}

// Sink receives streaming events. Implementations must not block the sender.
type Sink interface {
	Send(event Event)
}

// BufferedSink is a bounded, non-blocking Sink backed by a channel. When the
// buffer is full events are dropped with a warning rather than stalling the
// LLM stream. Close is idempotent and safe to call concurrently with Send.
type BufferedSink struct {
	ch      chan Event
	logger  logger.ILogger
	mu      sync.Mutex
	closed  bool
	dropped int
}

func NewBufferedSink(size int, log logger.ILogger) *BufferedSink {
	if size <= 0 {
		size = 64
	}
	return &BufferedSink{
		ch:     make(chan Event, size),
		logger: log,
	}
}

func (s *BufferedSink) Send(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- event:
	default:
		s.dropped++
		if s.logger != nil {
			s.logger.Warn("Stream", "Event buffer full, dropping frame", map[string]interface{}{
				"event":   string(event.Name),
				"dropped": s.dropped,
			})
		}
	}
}

// Events exposes the receive side for the transport draining this sink.
func (s *BufferedSink) Events() <-chan Event {
	return s.ch
}

// Close marks the sink finished and closes the event channel.
func (s *BufferedSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Dropped reports how many frames were discarded due to a full buffer.
func (s *BufferedSink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

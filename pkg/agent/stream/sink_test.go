package stream

import (
	"testing"
)

func drain(s *BufferedSink) []Event {
	var out []Event
	for e := range s.Events() {
		out = append(out, e)
	}
	return out
}

func TestBufferedSinkDelivery(t *testing.T) {
	s := NewBufferedSink(8, nil)

	s.Send(Event{Name: EventStart})
	s.Send(Event{Name: EventChunk, Data: "안녕"})
	s.Send(Event{Name: EventComplete, Data: "{}"})
	s.Close()

	events := drain(s)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[1].Name != EventChunk || events[1].Data != "안녕" {
		t.Errorf("unexpected second event: %+v", events[1])
	}
}

func TestBufferedSinkDropsWhenFull(t *testing.T) {
	s := NewBufferedSink(2, nil)

	for i := 0; i < 5; i++ {
		s.Send(Event{Name: EventChunk, Data: "x"})
	}
	s.Close()

	if got := len(drain(s)); got != 2 {
		t.Errorf("delivered %d events, want 2", got)
	}
	if s.Dropped() != 3 {
		t.Errorf("Dropped() = %d, want 3", s.Dropped())
	}
}

func TestBufferedSinkSendAfterClose(t *testing.T) {
	s := NewBufferedSink(4, nil)
	s.Close()
	s.Close() // idempotent

	// must not panic on a closed channel
	s.Send(Event{Name: EventChunk, Data: "late"})

	if got := len(drain(s)); got != 0 {
		t.Errorf("delivered %d events, want 0", got)
	}
}

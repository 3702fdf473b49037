package pipeline

import (
	"context"
	"strings"

	"ai-taxconsult-be/internal/constant"
	"ai-taxconsult-be/pkg/agent/state"
	"ai-taxconsult-be/pkg/agent/stream"
	"ai-taxconsult-be/pkg/llm"
	"ai-taxconsult-be/pkg/rag/prompt"
)

// ExecuteStreaming runs the same step machine as Execute but pushes chunk
// events to the sink as the provider produces text. When the provider has no
// streaming support the turn falls back to a blocking call and the whole
// answer goes out as a single chunk.
func (p *Pipeline) ExecuteStreaming(ctx context.Context, st *state.AgentState, sink stream.Sink) *state.AgentState {
	if !p.runInput(st) {
		sink.Send(stream.Event{Name: stream.EventError, Data: st.ErrorMessage})
		return st
	}
	sink.Send(stream.Event{Name: stream.EventStep, Data: string(st.CurrentStep)})

	p.runLLMStreaming(ctx, st, sink)
	p.route(st)
	if st.CurrentStep != state.StepError {
		// an error turn already ended with its error event
		sink.Send(stream.Event{Name: stream.EventStep, Data: string(st.CurrentStep)})
	}
	return st
}

func (p *Pipeline) runLLMStreaming(ctx context.Context, st *state.AgentState, sink stream.Sink) {
	if st.IterationCount >= p.maxIterations {
		p.logger.Warn("Pipeline", "Max LLM iterations exceeded, skipping call", map[string]interface{}{
			"session_id":     st.SessionID,
			"iteration":      st.IterationCount,
			"max_iterations": p.maxIterations,
		})
		st.SetError(constant.ErrMsgMaxIterations(p.maxIterations))
		sink.Send(stream.Event{Name: stream.EventError, Data: st.ErrorMessage})
		return
	}
	st.IterationCount++

	messages := prompt.BuildMessages(p.instruction(st), st.History, st.UserText)

	if p.streaming == nil {
		sink.Send(stream.Event{Name: stream.EventInfo, Data: "스트리밍을 지원하지 않아 일반 모드로 실행합니다."})
		answer, err := p.provider.Chat(ctx, messages)
		if err != nil {
			p.failLLM(st, err)
			sink.Send(stream.Event{Name: stream.EventError, Data: st.ErrorMessage})
			return
		}
		if answer != "" {
			sink.Send(stream.Event{Name: stream.EventChunk, Data: answer})
		}
		p.acceptAnswer(st, answer)
		return
	}

	emitter := newDeltaEmitter(sink)
	err := p.streaming.ChatStream(ctx, messages, emitter.onFrame)
	if err != nil {
		p.logger.Error("Pipeline", "LLM streaming failed", map[string]interface{}{
			"session_id": st.SessionID,
			"iteration":  st.IterationCount,
			"error":      err.Error(),
		})
		if llm.IsQuotaError(err) {
			st.SetError(constant.ErrMsgQuotaExceeded)
		} else {
			st.SetError(constant.ErrMsgStreamingError + err.Error())
		}
		sink.Send(stream.Event{Name: stream.EventError, Data: st.ErrorMessage})
		return
	}
	p.acceptAnswer(st, emitter.accumulated)
}

// deltaEmitter turns provider frames into non-overlapping chunk events.
// Providers disagree on framing: some send plain deltas, some resend the
// whole accumulated text each frame. A frame that extends what we already
// emitted contributes only its suffix; anything else is treated as a fresh
// delta and appended. Empty frames are skipped without an event.
type deltaEmitter struct {
	sink        stream.Sink
	accumulated string
}

func newDeltaEmitter(sink stream.Sink) *deltaEmitter {
	return &deltaEmitter{sink: sink}
}

func (e *deltaEmitter) onFrame(text string) error {
	if text == "" {
		return nil
	}
	var delta string
	if strings.HasPrefix(text, e.accumulated) {
		delta = text[len(e.accumulated):]
		e.accumulated = text
	} else {
		delta = text
		e.accumulated += text
	}
	if delta == "" {
		return nil
	}
	e.sink.Send(stream.Event{Name: stream.EventChunk, Data: delta})
	return nil
}

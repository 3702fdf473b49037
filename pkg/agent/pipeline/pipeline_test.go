package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-taxconsult-be/internal/constant"
	"ai-taxconsult-be/pkg/agent/state"
	"ai-taxconsult-be/pkg/agent/stream"
	"ai-taxconsult-be/pkg/llm"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// fakeProvider answers blocking calls only.
type fakeProvider struct {
	answer   string
	err      error
	lastMsgs []llm.Message
	calls    int
}

func (f *fakeProvider) Chat(_ context.Context, messages []llm.Message, _ ...llm.Option) (string, error) {
	f.calls++
	f.lastMsgs = messages
	return f.answer, f.err
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

// fakeStreamingProvider replays a fixed frame sequence.
type fakeStreamingProvider struct {
	fakeProvider
	frames    []string
	streamErr error
}

func (f *fakeStreamingProvider) ChatStream(_ context.Context, _ []llm.Message, onFrame func(string) error, _ ...llm.Option) error {
	for _, frame := range f.frames {
		if err := onFrame(frame); err != nil {
			return err
		}
	}
	return f.streamErr
}

// collectorSink records every event synchronously.
type collectorSink struct {
	events []stream.Event
}

func (c *collectorSink) Send(event stream.Event) {
	c.events = append(c.events, event)
}

func (c *collectorSink) chunks() []string {
	var out []string
	for _, e := range c.events {
		if e.Name == stream.EventChunk {
			out = append(out, e.Data)
		}
	}
	return out
}

func (c *collectorSink) has(name stream.EventName) bool {
	for _, e := range c.events {
		if e.Name == name {
			return true
		}
	}
	return false
}

func TestExecuteSuccess(t *testing.T) {
	provider := &fakeProvider{answer: "부가가치세는 간접세입니다."}
	p := NewPipeline(provider, 5, nopLogger{})

	st := state.New("s", "당신은 세무 상담가입니다.", "부가가치세가 무엇인가요?")
	p.Execute(context.Background(), st)

	if st.CurrentStep != state.StepResponse {
		t.Fatalf("CurrentStep = %s, want %s", st.CurrentStep, state.StepResponse)
	}
	if st.AssistantText != provider.answer {
		t.Errorf("AssistantText = %q", st.AssistantText)
	}
	if st.IterationCount != 1 {
		t.Errorf("IterationCount = %d, want 1", st.IterationCount)
	}
	if len(st.History) != 2 {
		t.Fatalf("History length = %d, want 2", len(st.History))
	}
	if st.History[0].Role != state.RoleUser || st.History[1].Role != state.RoleAssistant {
		t.Errorf("unexpected history roles: %v", st.History)
	}
	// system instruction goes out first
	if provider.lastMsgs[0].Role != "system" {
		t.Errorf("first message role = %s, want system", provider.lastMsgs[0].Role)
	}
}

func TestExecuteEmptyInput(t *testing.T) {
	provider := &fakeProvider{answer: "ignored"}
	p := NewPipeline(provider, 5, nopLogger{})

	st := state.New("s", "", "   ")
	p.Execute(context.Background(), st)

	if st.CurrentStep != state.StepError {
		t.Fatalf("CurrentStep = %s, want %s", st.CurrentStep, state.StepError)
	}
	if st.ErrorMessage != constant.ErrMsgEmptyQuestion {
		t.Errorf("ErrorMessage = %q", st.ErrorMessage)
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times, want 0", provider.calls)
	}
}

func TestExecuteIterationCap(t *testing.T) {
	provider := &fakeProvider{answer: "ignored"}
	p := NewPipeline(provider, 3, nopLogger{})

	st := state.New("s", "", "질문입니다")
	st.IterationCount = 3
	p.Execute(context.Background(), st)

	if st.CurrentStep != state.StepError {
		t.Fatalf("CurrentStep = %s, want %s", st.CurrentStep, state.StepError)
	}
	if st.ErrorMessage != constant.ErrMsgMaxIterations(3) {
		t.Errorf("ErrorMessage = %q", st.ErrorMessage)
	}
	// the cap is checked before incrementing, so no call and no increment
	if provider.calls != 0 {
		t.Errorf("provider called %d times, want 0", provider.calls)
	}
	if st.IterationCount != 3 {
		t.Errorf("IterationCount = %d, want 3", st.IterationCount)
	}
}

func TestExecuteErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantMessage string
		wantExact   bool
	}{
		{
			name:        "quota marker",
			err:         errors.New("RESOURCE_EXHAUSTED: insufficient_quota for model"),
			wantMessage: constant.ErrMsgQuotaExceeded,
			wantExact:   true,
		},
		{
			name:        "http 429",
			err:         errors.New("unexpected status 429 from upstream"),
			wantMessage: constant.ErrMsgQuotaExceeded,
			wantExact:   true,
		},
		{
			name:        "generic failure",
			err:         errors.New("connection refused"),
			wantMessage: constant.ErrMsgLLMCallFailed,
			wantExact:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline(&fakeProvider{err: tt.err}, 5, nopLogger{})
			st := state.New("s", "", "질문입니다")
			p.Execute(context.Background(), st)

			if st.CurrentStep != state.StepError {
				t.Fatalf("CurrentStep = %s, want %s", st.CurrentStep, state.StepError)
			}
			if tt.wantExact && st.ErrorMessage != tt.wantMessage {
				t.Errorf("ErrorMessage = %q, want %q", st.ErrorMessage, tt.wantMessage)
			}
			if !tt.wantExact && !strings.HasPrefix(st.ErrorMessage, tt.wantMessage) {
				t.Errorf("ErrorMessage = %q, want prefix %q", st.ErrorMessage, tt.wantMessage)
			}
		})
	}
}

func TestExecuteStreamingDeltas(t *testing.T) {
	provider := &fakeStreamingProvider{frames: []string{"부가", "부가가치세는", "부가가치세는 간접세입니다."}}
	p := NewPipeline(provider, 5, nopLogger{})

	st := state.New("s", "", "부가가치세가 무엇인가요?")
	sink := &collectorSink{}
	p.ExecuteStreaming(context.Background(), st, sink)

	if st.CurrentStep != state.StepResponse {
		t.Fatalf("CurrentStep = %s, want %s", st.CurrentStep, state.StepResponse)
	}
	// cumulative frames become suffix-only deltas
	want := []string{"부가", "가치세는", " 간접세입니다."}
	got := sink.chunks()
	if len(got) != len(want) {
		t.Fatalf("chunks = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, got[i], want[i])
		}
	}
	if st.AssistantText != "부가가치세는 간접세입니다." {
		t.Errorf("AssistantText = %q", st.AssistantText)
	}
}

func TestExecuteStreamingPlainDeltaFrames(t *testing.T) {
	provider := &fakeStreamingProvider{frames: []string{"소득세는 ", "", "직접세입니다."}}
	p := NewPipeline(provider, 5, nopLogger{})

	st := state.New("s", "", "소득세는 무엇인가요?")
	sink := &collectorSink{}
	p.ExecuteStreaming(context.Background(), st, sink)

	got := sink.chunks()
	// empty frames are skipped, non-extending frames pass through whole
	want := []string{"소득세는 ", "직접세입니다."}
	if len(got) != len(want) {
		t.Fatalf("chunks = %q, want %q", got, want)
	}
	if st.AssistantText != "소득세는 직접세입니다." {
		t.Errorf("AssistantText = %q", st.AssistantText)
	}
}

func TestExecuteStreamingFallbackToBlocking(t *testing.T) {
	provider := &fakeProvider{answer: "전체 답변입니다."}
	p := NewPipeline(provider, 5, nopLogger{})

	st := state.New("s", "", "질문입니다")
	sink := &collectorSink{}
	p.ExecuteStreaming(context.Background(), st, sink)

	if !sink.has(stream.EventInfo) {
		t.Error("expected an info event announcing the fallback")
	}
	got := sink.chunks()
	if len(got) != 1 || got[0] != "전체 답변입니다." {
		t.Errorf("chunks = %q, want the full answer as one chunk", got)
	}
	if st.CurrentStep != state.StepResponse {
		t.Errorf("CurrentStep = %s, want %s", st.CurrentStep, state.StepResponse)
	}
}

func TestExecuteStreamingError(t *testing.T) {
	provider := &fakeStreamingProvider{
		frames:    []string{"부분 답변"},
		streamErr: errors.New("stream reset"),
	}
	p := NewPipeline(provider, 5, nopLogger{})

	st := state.New("s", "", "질문입니다")
	sink := &collectorSink{}
	p.ExecuteStreaming(context.Background(), st, sink)

	if st.CurrentStep != state.StepError {
		t.Fatalf("CurrentStep = %s, want %s", st.CurrentStep, state.StepError)
	}
	if !strings.HasPrefix(st.ErrorMessage, constant.ErrMsgStreamingError) {
		t.Errorf("ErrorMessage = %q", st.ErrorMessage)
	}
	if !sink.has(stream.EventError) {
		t.Error("expected an error event")
	}
	if last := sink.events[len(sink.events)-1]; last.Name != stream.EventError {
		t.Errorf("last event = %s, want %s as the terminal frame", last.Name, stream.EventError)
	}
	if st.AssistantText != "" {
		t.Errorf("AssistantText = %q, want empty on stream failure", st.AssistantText)
	}
}

package validation

import (
	"context"
	"errors"
	"testing"

	"ai-taxconsult-be/pkg/agent/state"
	"ai-taxconsult-be/pkg/llm"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type fakeJudge struct {
	verdict string
	err     error
	calls   int
}

func (f *fakeJudge) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	f.calls++
	return f.verdict, f.err
}

func (f *fakeJudge) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, nil, options...)
}

func answeredState() *state.AgentState {
	st := state.New("s", "", "간이과세자 기준이 어떻게 되나요?")
	st.AssistantText = "직전 연도 공급대가 합계가 8,000만원 미만이면 간이과세를 적용받을 수 있습니다."
	return st
}

func TestValidateDisabled(t *testing.T) {
	judge := &fakeJudge{}
	v := NewValidator(judge, false, 0.7, nopLogger{})

	st := answeredState()
	v.Validate(context.Background(), st)

	if skipped, _ := st.Metadata["validationSkipped"].(bool); !skipped {
		t.Error("expected validationSkipped metadata")
	}
	if judge.calls != 0 {
		t.Errorf("judge called %d times, want 0", judge.calls)
	}
}

func TestValidatePassing(t *testing.T) {
	judge := &fakeJudge{verdict: `{"score": 0.9, "feedback": "정확한 답변입니다"}`}
	v := NewValidator(judge, true, 0.7, nopLogger{})

	st := answeredState()
	v.Validate(context.Background(), st)

	if score, _ := st.Metadata["validationScore"].(float64); score != 0.9 {
		t.Errorf("validationScore = %v", st.Metadata["validationScore"])
	}
	if passed, _ := st.Metadata["validationPassed"].(bool); !passed {
		t.Error("expected validationPassed = true")
	}
	if _, failed := st.Metadata["validationFailed"]; failed {
		t.Error("validationFailed must not be set on a pass")
	}
}

func TestValidateFailing(t *testing.T) {
	judge := &fakeJudge{verdict: `{"score": 0.3, "feedback": "근거 법령이 없습니다"}`}
	v := NewValidator(judge, true, 0.7, nopLogger{})

	st := answeredState()
	v.Validate(context.Background(), st)

	if passed, _ := st.Metadata["validationPassed"].(bool); passed {
		t.Error("expected validationPassed = false")
	}
	if needsRegen, _ := st.Metadata["validationNeedsRegeneration"].(bool); !needsRegen {
		t.Error("expected validationNeedsRegeneration = true")
	}
	if failed, _ := st.Metadata["validationFailed"].(bool); !failed {
		t.Error("expected validationFailed metadata")
	}
}

func TestValidateJudgeWrapsJSONInProse(t *testing.T) {
	judge := &fakeJudge{verdict: "검토 결과는 다음과 같습니다.\n```json\n{\"score\": 0.85, \"feedback\": \"좋음\"}\n```"}
	v := NewValidator(judge, true, 0.7, nopLogger{})

	st := answeredState()
	v.Validate(context.Background(), st)

	if score, _ := st.Metadata["validationScore"].(float64); score != 0.85 {
		t.Errorf("validationScore = %v", st.Metadata["validationScore"])
	}
}

func TestValidateUnparseableVerdict(t *testing.T) {
	judge := &fakeJudge{verdict: "점수를 매길 수 없습니다"}
	v := NewValidator(judge, true, 0.7, nopLogger{})

	st := answeredState()
	v.Validate(context.Background(), st)

	// unparseable verdicts default to a lenient pass
	if score, _ := st.Metadata["validationScore"].(float64); score != 0.8 {
		t.Errorf("validationScore = %v, want 0.8", st.Metadata["validationScore"])
	}
	if passed, _ := st.Metadata["validationPassed"].(bool); !passed {
		t.Error("expected validationPassed = true on parse failure")
	}
}

func TestValidateScoreClamped(t *testing.T) {
	judge := &fakeJudge{verdict: `{"score": 3.5}`}
	v := NewValidator(judge, true, 0.7, nopLogger{})

	st := answeredState()
	v.Validate(context.Background(), st)

	if score, _ := st.Metadata["validationScore"].(float64); score != 1.0 {
		t.Errorf("validationScore = %v, want clamped 1.0", st.Metadata["validationScore"])
	}
}

func TestValidateJudgeError(t *testing.T) {
	judge := &fakeJudge{err: errors.New("timeout")}
	v := NewValidator(judge, true, 0.7, nopLogger{})

	st := answeredState()
	v.Validate(context.Background(), st)

	if _, ok := st.Metadata["validationError"]; !ok {
		t.Error("expected validationError metadata")
	}
	if _, ok := st.Metadata["validationScore"]; ok {
		t.Error("no score should be recorded when the judge call fails")
	}
}

func TestValidateEmptyAnswer(t *testing.T) {
	judge := &fakeJudge{verdict: `{"score": 1.0}`}
	v := NewValidator(judge, true, 0.7, nopLogger{})

	st := state.New("s", "", "질문")
	v.Validate(context.Background(), st)

	if judge.calls != 0 {
		t.Errorf("judge called %d times, want 0", judge.calls)
	}
	if _, ok := st.Metadata["validationError"]; !ok {
		t.Error("expected validationError metadata")
	}
}

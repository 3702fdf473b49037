package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-taxconsult-be/internal/constant"
	"ai-taxconsult-be/internal/pkg/logger"
	"ai-taxconsult-be/pkg/agent/state"
	"ai-taxconsult-be/pkg/llm"
)

const DefaultMinScore = 0.7

// Result is the judge's verdict on one answer.
type Result struct {
	Score             float64 `json:"score"`
	Passed            bool    `json:"passed"`
	Feedback          string  `json:"feedback"`
	NeedsRegeneration bool    `json:"needsRegeneration"`
}

// Validator reviews generated answers with a second LLM call and records the
// verdict in state metadata. Validation is advisory: no failure here ever
// blocks or alters the answer already produced.
type Validator struct {
	provider llm.LLMProvider
	enabled  bool
	minScore float64
	logger   logger.ILogger
}

func NewValidator(provider llm.LLMProvider, enabled bool, minScore float64, log logger.ILogger) *Validator {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	return &Validator{
		provider: provider,
		enabled:  enabled,
		minScore: minScore,
		logger:   log,
	}
}

// Validate scores the answer currently held in st and writes the verdict
// into metadata under the validation* keys.
func (v *Validator) Validate(ctx context.Context, st *state.AgentState) {
	if !v.enabled {
		st.PutMetadata("validationSkipped", true)
		return
	}
	if strings.TrimSpace(st.AssistantText) == "" {
		v.logger.Warn("Validation", "No answer to validate", map[string]interface{}{
			"session_id": st.SessionID,
		})
		st.PutMetadata("validationError", "검수할 답변이 없습니다")
		return
	}

	judgePrompt := fmt.Sprintf(constant.ValidationPromptTemplate, st.UserText, st.AssistantText)
	raw, err := v.provider.Chat(ctx, []llm.Message{
		{Role: state.RoleSystem, Content: constant.ValidationSystemPrompt},
		{Role: state.RoleUser, Content: judgePrompt},
	})
	if err != nil {
		v.logger.Error("Validation", "Judge call failed", map[string]interface{}{
			"session_id": st.SessionID,
			"error":      err.Error(),
		})
		st.PutMetadata("validationError", "검수 중 오류 발생: "+err.Error())
		return
	}

	result := v.parse(raw)
	st.PutMetadata("validationScore", result.Score)
	st.PutMetadata("validationPassed", result.Passed)
	st.PutMetadata("validationFeedback", result.Feedback)
	st.PutMetadata("validationNeedsRegeneration", result.NeedsRegeneration)

	v.logger.Info("Validation", "Answer reviewed", map[string]interface{}{
		"session_id": st.SessionID,
		"score":      result.Score,
		"passed":     result.Passed,
	})
	if !result.Passed && result.NeedsRegeneration {
		st.PutMetadata("validationFailed", true)
	}
}

// parse tolerates judges that wrap JSON in prose or code fences. A payload
// that cannot be parsed counts as a pass with a default score.
func (v *Validator) parse(raw string) Result {
	payload := extractJSON(raw)

	var result Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		v.logger.Warn("Validation", "Judge payload unparseable, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return Result{Score: 0.8, Passed: true, Feedback: "검수 결과 파싱 실패, 기본값 사용"}
	}

	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 1 {
		result.Score = 1
	}
	if result.Feedback == "" {
		result.Feedback = "검수 완료"
	}
	result.Passed = result.Score >= v.minScore
	if !result.Passed {
		result.NeedsRegeneration = true
	}
	return result
}

func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

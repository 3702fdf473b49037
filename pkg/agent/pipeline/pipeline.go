package pipeline

import (
	"context"
	"strings"

	"ai-taxconsult-be/internal/constant"
	"ai-taxconsult-be/internal/pkg/logger"
	"ai-taxconsult-be/pkg/agent/state"
	"ai-taxconsult-be/pkg/llm"
	"ai-taxconsult-be/pkg/rag/prompt"
)

const DefaultMaxIterations = 5

// Pipeline drives one conversational turn through the step machine
// input -> llm -> (response | error). It never returns an error: every
// failure is recorded in the state and routed to the error step so the
// caller always gets a terminal state back.
type Pipeline struct {
	provider      llm.LLMProvider
	streaming     llm.StreamingProvider // nil when the provider cannot stream
	maxIterations int
	logger        logger.ILogger
}

// NewPipeline resolves streaming capability once, at construction.
func NewPipeline(provider llm.LLMProvider, maxIterations int, log logger.ILogger) *Pipeline {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	sp, _ := provider.(llm.StreamingProvider)
	return &Pipeline{
		provider:      provider,
		streaming:     sp,
		maxIterations: maxIterations,
		logger:        log,
	}
}

// Execute runs a blocking turn and returns the same state, now terminal.
func (p *Pipeline) Execute(ctx context.Context, st *state.AgentState) *state.AgentState {
	if !p.runInput(st) {
		return st
	}
	p.runLLM(ctx, st)
	p.route(st)
	return st
}

// runInput validates the question. Returns false when the turn is already dead.
func (p *Pipeline) runInput(st *state.AgentState) bool {
	st.CurrentStep = state.StepInput
	if strings.TrimSpace(st.UserText) == "" {
		p.logger.Warn("Pipeline", "Empty user input", map[string]interface{}{
			"session_id": st.SessionID,
		})
		st.SetError(constant.ErrMsgEmptyQuestion)
		return false
	}
	st.CurrentStep = state.StepLLM
	return true
}

// runLLM performs the iteration-cap check, the provider call and error
// classification. The cap is checked before incrementing so a state already
// at the limit never triggers another call.
func (p *Pipeline) runLLM(ctx context.Context, st *state.AgentState) {
	if st.IterationCount >= p.maxIterations {
		p.logger.Warn("Pipeline", "Max LLM iterations exceeded, skipping call", map[string]interface{}{
			"session_id":     st.SessionID,
			"iteration":      st.IterationCount,
			"max_iterations": p.maxIterations,
		})
		st.SetError(constant.ErrMsgMaxIterations(p.maxIterations))
		return
	}
	st.IterationCount++

	messages := prompt.BuildMessages(p.instruction(st), st.History, st.UserText)

	answer, err := p.provider.Chat(ctx, messages)
	if err != nil {
		p.failLLM(st, err)
		return
	}
	p.acceptAnswer(st, answer)
}

func (p *Pipeline) instruction(st *state.AgentState) string {
	if strings.TrimSpace(st.SystemInstruction) == "" {
		return constant.DefaultSystemInstruction
	}
	return st.SystemInstruction
}

func (p *Pipeline) acceptAnswer(st *state.AgentState, answer string) {
	st.AssistantText = answer
	st.AppendHistory(state.RoleUser, st.UserText)
	st.AppendHistory(state.RoleAssistant, answer)
	p.logger.Debug("Pipeline", "LLM call completed", map[string]interface{}{
		"session_id": st.SessionID,
		"iteration":  st.IterationCount,
		"answer_len": len(answer),
	})
}

// failLLM maps a provider error onto the user-facing message. Quota
// exhaustion gets its own message so clients can tell it apart from
// transient failures.
func (p *Pipeline) failLLM(st *state.AgentState, err error) {
	p.logger.Error("Pipeline", "LLM call failed", map[string]interface{}{
		"session_id": st.SessionID,
		"iteration":  st.IterationCount,
		"error":      err.Error(),
	})
	if llm.IsQuotaError(err) {
		st.SetError(constant.ErrMsgQuotaExceeded)
		return
	}
	st.SetError(constant.ErrMsgLLMCallFailed + err.Error())
}

// route finishes the turn: anything that is not an error becomes a response.
func (p *Pipeline) route(st *state.AgentState) {
	if st.CurrentStep == state.StepError {
		return
	}
	st.CurrentStep = state.StepResponse
}

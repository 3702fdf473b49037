package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"ai-taxconsult-be/internal/constant"
	"ai-taxconsult-be/internal/dto"
	"ai-taxconsult-be/internal/pkg/logger"
	"ai-taxconsult-be/pkg/agent/pipeline"
	"ai-taxconsult-be/pkg/agent/state"
	"ai-taxconsult-be/pkg/agent/stream"
	"ai-taxconsult-be/pkg/agent/validation"
	"ai-taxconsult-be/pkg/events"
	natspub "ai-taxconsult-be/pkg/nats"
	"ai-taxconsult-be/pkg/rag/prompt"
	"ai-taxconsult-be/pkg/rag/search"
	"ai-taxconsult-be/pkg/session"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

type IChatService interface {
	Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
	ChatStream(ctx context.Context, request *dto.ChatRequest) *stream.BufferedSink
	GetHistory(ctx context.Context, sessionId string) (*dto.ChatHistoryResponse, error)
	DeleteSession(ctx context.Context, sessionId string) error
}

// chatService runs one conversational turn end to end: session resolution,
// hybrid retrieval, pipeline execution, answer validation, persistence and
// event publishing. Store and NATS failures degrade to logs; only the
// pipeline result decides the response.
type chatService struct {
	pipeline           *pipeline.Pipeline
	sessionStore       *session.Store
	searchEngine       *search.Engine
	validator          *validation.Validator
	natsPublisher      *natspub.Publisher // optional
	defaultInstruction string
	logger             logger.ILogger
}

func NewChatService(
	agentPipeline *pipeline.Pipeline,
	sessionStore *session.Store,
	searchEngine *search.Engine,
	validator *validation.Validator,
	natsPublisher *natspub.Publisher,
	defaultInstruction string,
	log logger.ILogger,
) IChatService {
	if strings.TrimSpace(defaultInstruction) == "" {
		defaultInstruction = constant.DefaultSystemInstruction
	}
	return &chatService{
		pipeline:           agentPipeline,
		sessionStore:       sessionStore,
		searchEngine:       searchEngine,
		validator:          validator,
		natsPublisher:      natsPublisher,
		defaultInstruction: defaultInstruction,
		logger:             log,
	}
}

func (cs *chatService) Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	st, baseInstruction := cs.prepareState(ctx, request)

	cs.pipeline.Execute(ctx, st)

	if st.CurrentStep == state.StepResponse {
		cs.validator.Validate(ctx, st)
	}
	cs.finishTurn(ctx, st, baseInstruction)

	return cs.buildResponse(st), nil
}

// ChatStream starts an asynchronous streaming turn and returns the sink the
// transport should drain. The sink is closed when the turn ends.
func (cs *chatService) ChatStream(ctx context.Context, request *dto.ChatRequest) *stream.BufferedSink {
	sink := stream.NewBufferedSink(256, cs.logger)

	go func() {
		defer sink.Close()
		defer func() {
			if r := recover(); r != nil {
				cs.logger.Error("Chat", "Streaming turn panicked", map[string]interface{}{
					"panic": r,
				})
				sink.Send(stream.Event{Name: stream.EventError, Data: "내부 오류가 발생했습니다."})
			}
		}()

		sink.Send(stream.Event{Name: stream.EventStart, Data: ""})

		generatedSession := strings.TrimSpace(request.SessionId) == ""
		st, baseInstruction := cs.prepareState(ctx, request)
		if generatedSession {
			sink.Send(stream.Event{Name: stream.EventSession, Data: st.SessionID})
		}

		cs.pipeline.ExecuteStreaming(ctx, st, sink)

		if st.CurrentStep == state.StepError {
			// the pipeline already emitted the error event; it is the
			// terminal frame of this stream
			cs.finishTurn(ctx, st, baseInstruction)
			return
		}

		sink.Send(stream.Event{Name: stream.EventMessage, Data: st.AssistantText})
		cs.validator.Validate(ctx, st)
		if data, err := json.Marshal(cs.validationDTO(st)); err == nil {
			sink.Send(stream.Event{Name: stream.EventValidation, Data: string(data)})
		}
		cs.finishTurn(ctx, st, baseInstruction)

		if data, err := json.Marshal(cs.buildResponse(st)); err == nil {
			sink.Send(stream.Event{Name: stream.EventComplete, Data: string(data)})
		}
		sink.Send(stream.Event{Name: stream.EventStreamingComplete, Data: st.SessionID})
	}()

	return sink
}

func (cs *chatService) GetHistory(ctx context.Context, sessionId string) (*dto.ChatHistoryResponse, error) {
	if !cs.sessionStore.Exists(ctx, sessionId) {
		return nil, ErrSessionNotFound
	}
	history := cs.sessionStore.History(ctx, sessionId)
	messages := make([]dto.ChatHistoryMessage, len(history))
	for i, m := range history {
		messages[i] = dto.ChatHistoryMessage{Role: m.Role, Content: m.Content}
	}
	return &dto.ChatHistoryResponse{
		SessionId: sessionId,
		Messages:  messages,
	}, nil
}

func (cs *chatService) DeleteSession(ctx context.Context, sessionId string) error {
	if !cs.sessionStore.Exists(ctx, sessionId) {
		return ErrSessionNotFound
	}
	cs.sessionStore.Delete(ctx, sessionId)
	return nil
}

// prepareState resolves the session, the system instruction and the RAG
// context for one turn. Returns the ready state and the base (unenriched)
// instruction for persistence.
func (cs *chatService) prepareState(ctx context.Context, request *dto.ChatRequest) (*state.AgentState, string) {
	sessionId := strings.TrimSpace(request.SessionId)
	if sessionId == "" {
		sessionId = "session-" + uuid.NewString()
	}

	snapshot, hasSnapshot := cs.sessionStore.Load(ctx, sessionId)

	baseInstruction := strings.TrimSpace(request.SystemInstruction)
	if baseInstruction == "" && hasSnapshot {
		baseInstruction = snapshot.SystemInstruction
	}
	if baseInstruction == "" {
		baseInstruction = cs.defaultInstruction
	}

	// the iteration budget is per turn: the state starts at zero and the
	// snapshot's stored count is informational only
	st := state.New(sessionId, cs.enrich(ctx, baseInstruction, request.Message), request.Message)
	st.History = cs.sessionStore.History(ctx, sessionId)
	return st, baseInstruction
}

// enrich runs hybrid retrieval for the question and folds the formatted
// results into the system instruction. The search query is the raw question
// augmented with the consultant prefix and the active instruction, so
// retrieval sees the same persona the answer will be generated under.
// Retrieval failure or an empty result leaves the instruction untouched.
func (cs *chatService) enrich(ctx context.Context, instruction, question string) string {
	question = strings.TrimSpace(question)
	if question == "" {
		return instruction
	}
	query := question
	if strings.TrimSpace(instruction) != "" {
		query = question + "\n\n" + constant.SearchQueryContextPrefix + " " + instruction
	}
	results := cs.searchEngine.HybridSearch(ctx, query, 0, 0, 0)
	if len(results) == 0 {
		return instruction
	}
	formatted := search.FormatResults(question, results)
	return prompt.NewContextBuilder(instruction, formatted).Build()
}

// finishTurn persists the outcome and publishes the turn event. The
// snapshot stores the base instruction, not the per-turn enrichment.
func (cs *chatService) finishTurn(ctx context.Context, st *state.AgentState, baseInstruction string) {
	if st.CurrentStep == state.StepResponse {
		cs.sessionStore.AppendHistory(ctx, st.SessionID, st.UserText, st.AssistantText)
	}
	st.SystemInstruction = baseInstruction
	cs.sessionStore.Save(ctx, st)

	if cs.natsPublisher != nil {
		event := events.NewChatTurnCompleted(st.SessionID, string(st.CurrentStep), st.IterationCount, len(st.AssistantText))
		if err := cs.natsPublisher.Publish(ctx, event); err != nil {
			cs.logger.Warn("Chat", "Failed to publish turn event", map[string]interface{}{
				"session_id": st.SessionID,
				"error":      err.Error(),
			})
		}
	}
}

func (cs *chatService) buildResponse(st *state.AgentState) *dto.ChatResponse {
	return &dto.ChatResponse{
		SessionId:      st.SessionID,
		Answer:         st.AssistantText,
		Step:           string(st.CurrentStep),
		IterationCount: st.IterationCount,
		ErrorMessage:   st.ErrorMessage,
		Validation:     cs.validationDTO(st),
	}
}

func (cs *chatService) validationDTO(st *state.AgentState) *dto.ValidationDTO {
	if st.Metadata == nil {
		return nil
	}
	if skipped, ok := st.Metadata["validationSkipped"].(bool); ok && skipped {
		return &dto.ValidationDTO{Skipped: true}
	}
	if _, ok := st.Metadata["validationScore"]; !ok {
		return nil
	}
	result := &dto.ValidationDTO{}
	if v, ok := st.Metadata["validationScore"].(float64); ok {
		result.Score = v
	}
	if v, ok := st.Metadata["validationPassed"].(bool); ok {
		result.Passed = v
	}
	if v, ok := st.Metadata["validationFeedback"].(string); ok {
		result.Feedback = v
	}
	if v, ok := st.Metadata["validationNeedsRegeneration"].(bool); ok {
		result.NeedsRegeneration = v
	}
	return result
}

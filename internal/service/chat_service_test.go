package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ai-taxconsult-be/internal/constant"
	"ai-taxconsult-be/internal/dto"
	"ai-taxconsult-be/internal/entity"
	"ai-taxconsult-be/internal/repository/contract"
	"ai-taxconsult-be/internal/repository/specification"
	"ai-taxconsult-be/internal/repository/unitofwork"
	"ai-taxconsult-be/pkg/agent/pipeline"
	"ai-taxconsult-be/pkg/agent/state"
	"ai-taxconsult-be/pkg/agent/stream"
	"ai-taxconsult-be/pkg/agent/validation"
	"ai-taxconsult-be/pkg/embedding"
	"ai-taxconsult-be/pkg/llm"
	"ai-taxconsult-be/pkg/rag/search"
	"ai-taxconsult-be/pkg/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// scriptedLLM answers chat calls in order and records what it was asked.
type scriptedLLM struct {
	answers  []string
	calls    [][]llm.Message
	judgeRaw string
}

func (s *scriptedLLM) Chat(_ context.Context, messages []llm.Message, _ ...llm.Option) (string, error) {
	s.calls = append(s.calls, messages)
	if len(messages) > 0 && strings.Contains(messages[0].Content, "검수") {
		return s.judgeRaw, nil
	}
	if len(s.answers) == 0 {
		return "", errors.New("no scripted answer")
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

type failingEmbedder struct{}

func (failingEmbedder) Generate(string, string) (*embedding.EmbeddingResponse, error) {
	return nil, errors.New("embedding unavailable")
}

type emptyUow struct{}

func (emptyUow) Begin(context.Context) error                             { return nil }
func (emptyUow) Commit() error                                           { return nil }
func (emptyUow) Rollback() error                                         { return nil }
func (emptyUow) ConsultationRepository() contract.ConsultationRepository { return nil }
func (emptyUow) LawArticleRepository() contract.LawArticleRepository     { return nil }
func (emptyUow) DocumentEmbeddingRepository() contract.DocumentEmbeddingRepository {
	return emptyVectorRepo{}
}

type emptyVectorRepo struct{}

func (emptyVectorRepo) Create(context.Context, *entity.DocumentEmbedding) error       { return nil }
func (emptyVectorRepo) CreateBulk(context.Context, []*entity.DocumentEmbedding) error { return nil }
func (emptyVectorRepo) Delete(context.Context, uuid.UUID) error                       { return nil }
func (emptyVectorRepo) DeleteByConsultationId(context.Context, int64) error           { return nil }
func (emptyVectorRepo) DeleteByLawArticle(context.Context, string, string) error      { return nil }
func (emptyVectorRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return 0, nil
}
func (emptyVectorRepo) FindOne(context.Context, ...specification.Specification) (*entity.DocumentEmbedding, error) {
	return nil, nil
}
func (emptyVectorRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.DocumentEmbedding, error) {
	return nil, nil
}
func (emptyVectorRepo) SearchSimilarWithScore(context.Context, []float32, int, contract.VectorFilter, float64) ([]*contract.ScoredDocumentEmbedding, error) {
	return nil, nil
}

type emptyFactory struct{}

func (emptyFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork { return emptyUow{} }

func newTestChatService(provider llm.LLMProvider, validationEnabled bool) (IChatService, *session.Store) {
	log := nopLogger{}
	store := session.NewStore(session.NewMemoryKV(), time.Hour, 20, log)
	engine := search.NewEngine(failingEmbedder{}, emptyFactory{}, search.DefaultConfig(), log)
	p := pipeline.NewPipeline(provider, 5, log)
	v := validation.NewValidator(provider, validationEnabled, 0.7, log)
	return NewChatService(p, store, engine, v, nil, "", log), store
}

func TestChatGeneratesSessionId(t *testing.T) {
	provider := &scriptedLLM{answers: []string{"답변입니다."}}
	svc, _ := newTestChatService(provider, false)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "질문입니다"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.SessionId, "session-"))
	assert.Equal(t, "답변입니다.", res.Answer)
	assert.Equal(t, string(state.StepResponse), res.Step)
}

func TestChatPersistsHistoryAcrossTurns(t *testing.T) {
	provider := &scriptedLLM{answers: []string{"첫 번째 답변", "두 번째 답변"}}
	svc, store := newTestChatService(provider, false)

	first, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "첫 질문"})
	require.NoError(t, err)

	_, err = svc.Chat(context.Background(), &dto.ChatRequest{
		SessionId: first.SessionId,
		Message:   "두 번째 질문",
	})
	require.NoError(t, err)

	// the second LLM call sees the first turn's history
	require.Len(t, provider.calls, 2)
	second := provider.calls[1]
	var sawFirstAnswer bool
	for _, m := range second {
		if m.Content == "첫 번째 답변" {
			sawFirstAnswer = true
		}
	}
	assert.True(t, sawFirstAnswer, "second call should carry prior history")

	history := store.History(context.Background(), first.SessionId)
	assert.Len(t, history, 4)
}

func TestChatSnapshotKeepsBaseInstruction(t *testing.T) {
	provider := &scriptedLLM{answers: []string{"답변"}}
	svc, store := newTestChatService(provider, false)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{
		Message:           "질문",
		SystemInstruction: "맞춤 지침",
	})
	require.NoError(t, err)

	snap, found := store.Load(context.Background(), res.SessionId)
	require.True(t, found)
	assert.Equal(t, "맞춤 지침", snap.SystemInstruction)

	// a follow-up without an instruction inherits the stored one
	provider.answers = []string{"답변2"}
	_, err = svc.Chat(context.Background(), &dto.ChatRequest{
		SessionId: res.SessionId,
		Message:   "후속 질문",
	})
	require.NoError(t, err)
	last := provider.calls[len(provider.calls)-1]
	assert.Equal(t, "맞춤 지침", last[0].Content)
}

func TestChatErrorTurnSkipsHistory(t *testing.T) {
	provider := &scriptedLLM{} // no answers: the call errors
	svc, store := newTestChatService(provider, false)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "질문"})
	require.NoError(t, err)

	assert.Equal(t, string(state.StepError), res.Step)
	assert.NotEmpty(t, res.ErrorMessage)
	assert.Empty(t, store.History(context.Background(), res.SessionId))
}

func TestChatValidationInResponse(t *testing.T) {
	provider := &scriptedLLM{
		answers:  []string{"답변입니다."},
		judgeRaw: `{"score": 0.9, "feedback": "좋은 답변"}`,
	}
	svc, _ := newTestChatService(provider, true)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "질문"})
	require.NoError(t, err)

	require.NotNil(t, res.Validation)
	assert.Equal(t, 0.9, res.Validation.Score)
	assert.True(t, res.Validation.Passed)
	assert.Equal(t, "좋은 답변", res.Validation.Feedback)
}

func TestChatStreamEventSequence(t *testing.T) {
	provider := &scriptedLLM{answers: []string{"스트리밍 답변"}}
	svc, _ := newTestChatService(provider, false)

	sink := svc.ChatStream(context.Background(), &dto.ChatRequest{Message: "질문"})

	var names []stream.EventName
	for event := range sink.Events() {
		names = append(names, event.Name)
	}

	require.NotEmpty(t, names)
	assert.Equal(t, stream.EventStart, names[0])
	assert.Equal(t, stream.EventStreamingComplete, names[len(names)-1])

	var sawSession, sawChunk, sawComplete bool
	for _, n := range names {
		switch n {
		case stream.EventSession:
			sawSession = true
		case stream.EventChunk:
			sawChunk = true
		case stream.EventComplete:
			sawComplete = true
		}
	}
	assert.True(t, sawSession)
	assert.True(t, sawChunk)
	assert.True(t, sawComplete)
}

func TestGetHistoryUnknownSession(t *testing.T) {
	provider := &scriptedLLM{}
	svc, _ := newTestChatService(provider, false)

	_, err := svc.GetHistory(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDeleteSession(t *testing.T) {
	provider := &scriptedLLM{answers: []string{"답변"}}
	svc, store := newTestChatService(provider, false)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "질문"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(context.Background(), res.SessionId))
	assert.False(t, store.Exists(context.Background(), res.SessionId))

	assert.ErrorIs(t, svc.DeleteSession(context.Background(), res.SessionId), ErrSessionNotFound)
}

// recordingEmbedder captures the queries handed to retrieval, then fails so
// the rest of the search degrades to an empty result.
type recordingEmbedder struct {
	queries []string
}

func (r *recordingEmbedder) Generate(text, _ string) (*embedding.EmbeddingResponse, error) {
	r.queries = append(r.queries, text)
	return nil, errors.New("embedding unavailable")
}

func TestChatSearchQueryCarriesInstruction(t *testing.T) {
	provider := &scriptedLLM{answers: []string{"답변"}}
	log := nopLogger{}
	store := session.NewStore(session.NewMemoryKV(), time.Hour, 20, log)
	embedder := &recordingEmbedder{}
	engine := search.NewEngine(embedder, emptyFactory{}, search.DefaultConfig(), log)
	p := pipeline.NewPipeline(provider, 5, log)
	v := validation.NewValidator(provider, false, 0.7, log)
	svc := NewChatService(p, store, engine, v, nil, "", log)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{
		Message:           "이중과세 조정 문의",
		SystemInstruction: "당신은 국제조세 전문 상담가입니다.",
	})
	require.NoError(t, err)

	require.NotEmpty(t, embedder.queries)
	query := embedder.queries[0]
	assert.True(t, strings.HasPrefix(query, "이중과세 조정 문의"), "the raw question leads the query")
	assert.Contains(t, query, constant.SearchQueryContextPrefix)
	assert.Contains(t, query, "당신은 국제조세 전문 상담가입니다.")
}

func TestChatStreamErrorTurnEndsWithError(t *testing.T) {
	provider := &scriptedLLM{} // no answers: the call errors
	svc, _ := newTestChatService(provider, false)

	sink := svc.ChatStream(context.Background(), &dto.ChatRequest{Message: "질문"})

	var names []stream.EventName
	for event := range sink.Events() {
		names = append(names, event.Name)
	}

	require.NotEmpty(t, names)
	assert.Equal(t, stream.EventError, names[len(names)-1], "the error event terminates the stream")

	var errorCount int
	for _, n := range names {
		switch n {
		case stream.EventError:
			errorCount++
		case stream.EventComplete, stream.EventStreamingComplete, stream.EventMessage, stream.EventValidation:
			t.Errorf("unexpected %s event on an error turn", n)
		}
	}
	assert.Equal(t, 1, errorCount)
}

func TestChatStreamExistingSessionSkipsSessionEvent(t *testing.T) {
	provider := &scriptedLLM{answers: []string{"첫 답변", "둘째 답변"}}
	svc, _ := newTestChatService(provider, false)

	first, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "첫 질문"})
	require.NoError(t, err)

	sink := svc.ChatStream(context.Background(), &dto.ChatRequest{
		SessionId: first.SessionId,
		Message:   "후속 질문",
	})

	for event := range sink.Events() {
		if event.Name == stream.EventSession {
			t.Fatal("session event must only announce a generated id")
		}
	}
}

package session

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ai-taxconsult-be/internal/pkg/logger"
	"ai-taxconsult-be/pkg/agent/state"
)

const (
	sessionKeyPrefix = "chat:session:"
	historyKeyPrefix = "chat:history:"

	DefaultTTL        = 24 * time.Hour
	DefaultMaxHistory = 20
)

// Snapshot is the persisted slice of agent state. Conversation history is
// stored separately under the history key.
type Snapshot struct {
	SessionID         string                 `json:"sessionId"`
	SystemInstruction string                 `json:"systemInstruction"`
	IterationCount    int                    `json:"iterationCount"`
	CurrentStep       string                 `json:"currentStep"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

// Store keeps session snapshots and conversation history in a KV backend.
// Persistence is best-effort: every failure is logged and swallowed so a
// broken Redis never kills a chat turn. Both keys share one TTL that is
// refreshed on every write.
type Store struct {
	kv         KV
	ttl        time.Duration
	maxHistory int // <= 0 disables the sliding window
	logger     logger.ILogger
}

func NewStore(kv KV, ttl time.Duration, maxHistory int, log logger.ILogger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		kv:         kv,
		ttl:        ttl,
		maxHistory: maxHistory,
		logger:     log,
	}
}

// Save persists the session snapshot and refreshes the TTL.
func (s *Store) Save(ctx context.Context, st *state.AgentState) {
	snap := Snapshot{
		SessionID:         st.SessionID,
		SystemInstruction: st.SystemInstruction,
		IterationCount:    st.IterationCount,
		CurrentStep:       string(st.CurrentStep),
		Metadata:          st.Metadata,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		s.warn(st.SessionID, "Failed to marshal session snapshot", err)
		return
	}
	if err := s.kv.Set(ctx, sessionKeyPrefix+st.SessionID, string(data), s.ttl); err != nil {
		s.warn(st.SessionID, "Failed to save session", err)
	}
}

// Load returns the stored snapshot, or false when absent or unreadable.
func (s *Store) Load(ctx context.Context, sessionID string) (*Snapshot, bool) {
	raw, found, err := s.kv.Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		s.warn(sessionID, "Failed to load session", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.warn(sessionID, "Corrupt session snapshot", err)
		return nil, false
	}
	return &snap, true
}

// AppendHistory appends one question/answer pair, trims to the sliding
// window keeping the most recent messages, and refreshes the TTL. A blank
// question or answer is skipped rather than stored as an empty entry.
func (s *Store) AppendHistory(ctx context.Context, sessionID, userText, assistantText string) {
	history := s.History(ctx, sessionID)
	before := len(history)
	if strings.TrimSpace(userText) != "" {
		history = append(history, state.Message{Role: state.RoleUser, Content: userText})
	}
	if strings.TrimSpace(assistantText) != "" {
		history = append(history, state.Message{Role: state.RoleAssistant, Content: assistantText})
	}
	if len(history) == before {
		return
	}
	history = s.trim(history)

	data, err := json.Marshal(history)
	if err != nil {
		s.warn(sessionID, "Failed to marshal history", err)
		return
	}
	if err := s.kv.Set(ctx, historyKeyPrefix+sessionID, string(data), s.ttl); err != nil {
		s.warn(sessionID, "Failed to save history", err)
	}
}

// History returns the stored conversation, empty on miss or corrupt payload.
// The sliding window is applied on load too: a blob written under a larger
// window setting still comes back trimmed.
func (s *Store) History(ctx context.Context, sessionID string) []state.Message {
	raw, found, err := s.kv.Get(ctx, historyKeyPrefix+sessionID)
	if err != nil {
		s.warn(sessionID, "Failed to load history", err)
		return []state.Message{}
	}
	if !found {
		return []state.Message{}
	}
	var history []state.Message
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		s.warn(sessionID, "Corrupt history payload", err)
		return []state.Message{}
	}
	return s.trim(history)
}

func (s *Store) trim(history []state.Message) []state.Message {
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		return history[len(history)-s.maxHistory:]
	}
	return history
}

// Delete removes both session keys.
func (s *Store) Delete(ctx context.Context, sessionID string) {
	if err := s.kv.Del(ctx, sessionKeyPrefix+sessionID, historyKeyPrefix+sessionID); err != nil {
		s.warn(sessionID, "Failed to delete session", err)
	}
}

// Exists reports whether a session snapshot is present.
func (s *Store) Exists(ctx context.Context, sessionID string) bool {
	found, err := s.kv.Exists(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		s.warn(sessionID, "Failed to check session existence", err)
		return false
	}
	return found
}

func (s *Store) warn(sessionID, message string, err error) {
	s.logger.Warn("SessionStore", message, map[string]interface{}{
		"session_id": sessionID,
		"error":      err.Error(),
	})
}

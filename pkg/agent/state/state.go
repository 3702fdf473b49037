package state

// Step identifies where the agent currently is in its turn lifecycle.
type Step string

const (
	StepInput    Step = "input"
	StepLLM      Step = "llm"
	StepError    Step = "error"
	StepResponse Step = "response"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation entry carried in agent state.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AgentState is the mutable state threaded through one conversational turn.
// The pipeline owns it for the duration of Execute; callers read it afterwards.
type AgentState struct {
	SessionID         string
	SystemInstruction string

	UserText      string
	AssistantText string
	History       []Message

	IterationCount int
	CurrentStep    Step

	ErrorMessage string
	Metadata     map[string]interface{}
}

// New returns a fresh state positioned at the input step.
func New(sessionID, systemInstruction, userText string) *AgentState {
	return &AgentState{
		SessionID:         sessionID,
		SystemInstruction: systemInstruction,
		UserText:          userText,
		CurrentStep:       StepInput,
		Metadata:          make(map[string]interface{}),
	}
}

// SetError records a failure and moves the state machine to the error step.
func (s *AgentState) SetError(message string) {
	s.ErrorMessage = message
	s.CurrentStep = StepError
}

// AppendHistory adds a message to the in-state conversation history.
func (s *AgentState) AppendHistory(role, content string) {
	s.History = append(s.History, Message{Role: role, Content: content})
}

// PutMetadata sets a metadata entry, allocating the map on first use.
func (s *AgentState) PutMetadata(key string, value interface{}) {
	if s.Metadata == nil {
		s.Metadata = make(map[string]interface{})
	}
	s.Metadata[key] = value
}

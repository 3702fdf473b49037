package dto

type ChatRequest struct {
	SessionId         string `json:"session_id,omitempty"` // blank starts a new session
	Message           string `json:"message" validate:"required"`
	SystemInstruction string `json:"system_instruction,omitempty" validate:"max=4000"`
}

type ValidationDTO struct {
	Skipped           bool    `json:"skipped,omitempty"`
	Score             float64 `json:"score"`
	Passed            bool    `json:"passed"`
	Feedback          string  `json:"feedback,omitempty"`
	NeedsRegeneration bool    `json:"needs_regeneration,omitempty"`
}

type ChatResponse struct {
	SessionId      string         `json:"session_id"`
	Answer         string         `json:"answer,omitempty"`
	Step           string         `json:"step"`
	IterationCount int            `json:"iteration_count"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	Validation     *ValidationDTO `json:"validation,omitempty"`
}

type ChatHistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatHistoryResponse struct {
	SessionId string               `json:"session_id"`
	Messages  []ChatHistoryMessage `json:"messages"`
}

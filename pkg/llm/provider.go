package llm

import (
	"context"
	"strings"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// StreamingProvider is implemented by backends that can stream responses.
// onFrame receives the raw text of each frame as the backend produced it;
// frames may be incremental deltas or cumulative snapshots depending on the
// backend. Returning an error from onFrame aborts the stream.
type StreamingProvider interface {
	LLMProvider
	ChatStream(ctx context.Context, history []Message, onFrame func(text string) error, options ...Option) error
}

var quotaMarkers = []string{"quota", "insufficient_quota", "429", "exceeded"}

// IsQuotaError reports whether err looks like a provider quota/rate-limit
// exhaustion. Matching is substring-based on the error text because providers
// surface these through HTTP bodies rather than typed errors.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

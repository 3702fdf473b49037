package factory

import (
	"fmt"

	"ai-taxconsult-be/pkg/llm"
	"ai-taxconsult-be/pkg/llm/gemini"
	"ai-taxconsult-be/pkg/llm/huggingface"
	"ai-taxconsult-be/pkg/llm/ollama"
)

// NewLLMProvider builds the configured chat backend. Streaming capability
// depends on the provider: ollama streams, gemini and huggingface answer in
// one shot.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "gemini":
		return gemini.NewGeminiProvider(apiKey, modelName), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

package factory

import (
	"fmt"
	"time"

	"myfolio-chatbot-be/pkg/llm"
	"myfolio-chatbot-be/pkg/llm/huggingface"
	"myfolio-chatbot-be/pkg/llm/ollama"
	"myfolio-chatbot-be/pkg/llm/openai"
)

// NewLLMProvider selects the completion backend. timeout bounds every
// request the provider makes; a non-positive value falls back to the
// provider's own default.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string, timeout time.Duration) (llm.LLMProvider, error) {
	switch providerType {
	case "openai":
		return openai.NewOpenAIProvider(apiKey, "", modelName, timeout), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(apiKey, "", modelName, timeout), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

package factory

import (
	"fmt"
	"strings"

	"jurisperform-be/pkg/llm"
	"jurisperform-be/pkg/llm/huggingface"
	"jurisperform-be/pkg/llm/ollama"
	"jurisperform-be/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.ToolChatProvider, error) {
	switch strings.ToLower(providerType) {
	case "openai", "":
		if apiKey == "" {
			return nil, fmt.Errorf("openai provider requires an api key")
		}
		return openai.NewProvider(apiKey, baseURL, modelName), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(apiKey, baseURL, modelName), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

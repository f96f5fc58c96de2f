// Package huggingface targets the Hugging Face inference router, which speaks
// the OpenAI chat completions protocol.
package huggingface

import (
	"jurisperform-be/pkg/llm/openai"
)

const DefaultBaseURL = "https://router.huggingface.co/v1"

func NewHuggingFaceProvider(apiKey, baseURL, model string) *openai.Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return openai.NewProvider(apiKey, baseURL, model).Named("huggingface")
}

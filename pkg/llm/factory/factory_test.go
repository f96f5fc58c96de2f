package factory

import (
	"testing"

	"jurisperform-be/pkg/llm/ollama"
	"jurisperform-be/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider("openai", "gpt-4.1", "", "sk")
	require.NoError(t, err)
	assert.IsType(t, &openai.Provider{}, p)

	p, err = NewLLMProvider("HuggingFace", "meta-llama", "", "hf")
	require.NoError(t, err)
	assert.IsType(t, &openai.Provider{}, p)

	p, err = NewLLMProvider("ollama", "llama3.1", "", "")
	require.NoError(t, err)
	require.IsType(t, &ollama.OllamaProvider{}, p)
	assert.Equal(t, "http://localhost:11434", p.(*ollama.OllamaProvider).BaseURL)

	_, err = NewLLMProvider("openai", "gpt-4.1", "", "")
	assert.Error(t, err)

	_, err = NewLLMProvider("anthropic", "x", "", "k")
	assert.Error(t, err)
}

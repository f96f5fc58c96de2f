package integration

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"jurisperform-be/pkg/course"
	"jurisperform-be/pkg/llm"
	"jurisperform-be/pkg/llm/ollama"
	"jurisperform-be/pkg/tutor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emptyStore answers every lookup with no rows, so the loader reports not_found.
type emptyStore struct{}

func (emptyStore) FindFullContent(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (emptyStore) FindSummaries(context.Context, course.SummaryQuery) ([]course.Summary, error) {
	return nil, nil
}

func (emptyStore) FindSummariesByLevel(context.Context, course.Level) ([]course.Summary, error) {
	return nil, nil
}

func TestOllamaTutorTurn(t *testing.T) {
	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		t.Skip("Skipping integration test: OLLAMA_BASE_URL not set")
	}
	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = "llama3.1"
	}

	catalog := course.DefaultCatalog()
	orchestrator := tutor.NewOrchestrator(
		ollama.NewOllamaProvider(baseURL, model),
		[]tutor.Tool{
			tutor.NewFindRelevantCourseTool(course.NewResolver(catalog, course.DefaultScoringConfig())),
			tutor.NewLoadCoursePDFTool(course.NewLoader(catalog, emptyStore{})),
		},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	var buf bytes.Buffer
	turn, err := orchestrator.Answer(ctx, tutor.AnswerRequest{
		Messages:      []llm.Message{{Role: llm.RoleUser, Content: "Explique-moi la responsabilité du fait d'autrui."}},
		SelectedLevel: "L2",
	}, tutor.NewDataStreamWriter(&buf))
	require.NoError(t, err)

	t.Logf("finish=%s steps=%d violations=%v", turn.FinishReason, turn.Steps, turn.Compliance.Violations())
	assert.NotEmpty(t, turn.FinishReason)
	assert.True(t, strings.HasPrefix(buf.String(), "f:"))
	assert.Contains(t, buf.String(), "\nd:")
}

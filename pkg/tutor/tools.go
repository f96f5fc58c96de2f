package tutor

import (
	"context"
	"fmt"
	"strings"

	"jurisperform-be/pkg/course"
	"jurisperform-be/pkg/llm"
)

// Tool is a function the model may invoke during a turn. Execute returns a
// JSON-serialisable value that is handed back to the model verbatim.
type Tool interface {
	Name() string
	Description() string
	ParameterSchema() map[string]any
	Execute(ctx context.Context, params map[string]any) (any, error)
}

const (
	ToolFindRelevantCourse = "findRelevantCourse"
	ToolLoadCoursePDF      = "loadCoursePDF"
)

// Definitions converts tools into their provider-agnostic advertisement.
func Definitions(tools []Tool) []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, llm.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.ParameterSchema(),
		})
	}
	return defs
}

type FindRelevantCourseTool struct {
	resolver *course.Resolver
}

func NewFindRelevantCourseTool(resolver *course.Resolver) *FindRelevantCourseTool {
	return &FindRelevantCourseTool{resolver: resolver}
}

func (t *FindRelevantCourseTool) Name() string { return ToolFindRelevantCourse }

func (t *FindRelevantCourseTool) Description() string {
	return "MANDATORY tool to find and validate the most relevant course for the user question. Must be used before every response to ensure the correct course is selected. Returns the appropriate course for the question or validates the current selection."
}

func (t *FindRelevantCourseTool) ParameterSchema() map[string]any {
	levels := make([]string, 0, len(course.Levels()))
	for _, l := range course.Levels() {
		levels = append(levels, string(l))
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "The user question or topic"},
			"level": map[string]any{"type": "string", "enum": levels, "description": "The academic level if specified"},
		},
		"required":             []string{"query"},
		"additionalProperties": false,
	}
}

func (t *FindRelevantCourseTool) Execute(_ context.Context, params map[string]any) (any, error) {
	query, ok := params["query"].(string)
	if !ok {
		return nil, fmt.Errorf("%s: missing required param: query", t.Name())
	}

	var level *course.Level
	if raw, present := params["level"]; present && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%s: level must be a string", t.Name())
		}
		if strings.TrimSpace(s) != "" {
			l, err := course.ParseLevel(s)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", t.Name(), err)
			}
			level = &l
		}
	}

	return t.resolver.Resolve(query, level), nil
}

type LoadCoursePDFTool struct {
	loader *course.Loader
}

func NewLoadCoursePDFTool(loader *course.Loader) *LoadCoursePDFTool {
	return &LoadCoursePDFTool{loader: loader}
}

func (t *LoadCoursePDFTool) Name() string { return ToolLoadCoursePDF }

func (t *LoadCoursePDFTool) Description() string {
	return "MANDATORY tool to load the PDF content for a specific course. Must be used after findRelevantCourse to access the actual course content before providing any answer."
}

func (t *LoadCoursePDFTool) ParameterSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"courseId": map[string]any{"type": "string", "description": "The ID of the course to load"},
		},
		"required":             []string{"courseId"},
		"additionalProperties": false,
	}
}

// Execute never fails on a missing course or an unavailable store: those
// outcomes are reported in the LoadResult status for the model to read.
func (t *LoadCoursePDFTool) Execute(ctx context.Context, params map[string]any) (any, error) {
	courseId, ok := params["courseId"].(string)
	if !ok {
		return nil, fmt.Errorf("%s: missing required param: courseId", t.Name())
	}
	return t.loader.Load(ctx, courseId), nil
}

package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"jurisperform-be/pkg/llm"
)

const DefaultBaseURL = "https://api.openai.com/v1"

// Provider talks to any OpenAI compatible /chat/completions endpoint.
type Provider struct {
	apiKey  string
	baseURL string
	model   string
	name    string
	client  *http.Client
}

var _ llm.ToolChatProvider = &Provider{}

func NewProvider(apiKey, baseURL, model string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		name:    "openai",
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// Named sets the label used in error messages.
func (p *Provider) Named(name string) *Provider {
	p.name = name
	return p
}

// --- Wire structs ---

type wireMessage struct {
	Role       string         `json:"role"`
	Content    *string        `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallId string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

type wireToolCall struct {
	Index    *int   `json:"index,omitempty"`
	Id       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type wireTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string         `json:"name"`
		Description string         `json:"description,omitempty"`
		Parameters  map[string]any `json:"parameters,omitempty"`
	} `json:"function"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Tools       []wireTool    `json:"tools,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      wireMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type chunkResponse struct {
	Choices []struct {
		Delta struct {
			Content   string         `json:"content"`
			ToolCalls []wireToolCall `json:"tool_calls"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
}

// --- Interface Implementation ---

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	body := p.buildRequest(history, nil, false, options)

	resp, err := p.do(ctx, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("%s api returned error: %s", p.name, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty choices from %s api", p.name)
	}
	if c := chatResp.Choices[0].Message.Content; c != nil {
		return *c, nil
	}
	return "", nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func (p *Provider) StreamChat(ctx context.Context, history []llm.Message, tools []llm.ToolDefinition, onDelta llm.DeltaFunc, options ...llm.Option) (*llm.ChatResult, error) {
	body := p.buildRequest(history, tools, true, options)

	resp, err := p.do(ctx, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var (
		content strings.Builder
		calls   = map[int]*llm.ToolCall{}
		args    = map[int]*strings.Builder{}
		finish  = ""
	)

	err = streamSSE(resp.Body, func(_ string, data string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var chunk chunkResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("decode stream chunk: %w", err)
		}
		if chunk.Error != nil {
			return fmt.Errorf("%s api returned error: %s", p.name, chunk.Error.Message)
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				content.WriteString(choice.Delta.Content)
				if onDelta != nil {
					if err := onDelta(choice.Delta.Content); err != nil {
						return err
					}
				}
			}
			for i, tc := range choice.Delta.ToolCalls {
				idx := i
				if tc.Index != nil {
					idx = *tc.Index
				}
				call, ok := calls[idx]
				if !ok {
					call = &llm.ToolCall{}
					calls[idx] = call
					args[idx] = &strings.Builder{}
				}
				if tc.Id != "" {
					call.Id = tc.Id
				}
				if tc.Function.Name != "" {
					call.Name = tc.Function.Name
				}
				args[idx].WriteString(tc.Function.Arguments)
			}
			if choice.FinishReason != nil && *choice.FinishReason != "" {
				finish = *choice.FinishReason
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &llm.ChatResult{
		Content:      content.String(),
		FinishReason: mapFinishReason(finish, len(calls) > 0),
	}

	indexes := make([]int, 0, len(calls))
	for idx := range calls {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	for _, idx := range indexes {
		call := calls[idx]
		call.Arguments = args[idx].String()
		if call.Arguments == "" {
			call.Arguments = "{}"
		}
		result.ToolCalls = append(result.ToolCalls, *call)
	}
	return result, nil
}

func (p *Provider) buildRequest(history []llm.Message, tools []llm.ToolDefinition, stream bool, options []llm.Option) chatRequest {
	opts := &llm.Options{
		Model: p.model,
	}
	for _, o := range options {
		o(opts)
	}

	req := chatRequest{
		Model:       opts.Model,
		Messages:    toWireMessages(history),
		Stream:      stream,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	for _, def := range tools {
		var wt wireTool
		wt.Type = "function"
		wt.Function.Name = def.Name
		wt.Function.Description = def.Description
		wt.Function.Parameters = def.Parameters
		req.Tools = append(req.Tools, wt)
	}
	return req
}

func (p *Provider) do(ctx context.Context, body chatRequest) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if body.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%s api error (status %d): %s", p.name, resp.StatusCode, string(bodyBytes))
	}
	return resp, nil
}

func toWireMessages(history []llm.Message) []wireMessage {
	out := make([]wireMessage, 0, len(history))
	for _, m := range history {
		content := m.Content
		wm := wireMessage{
			Role:       m.Role,
			Content:    &content,
			ToolCallId: m.ToolCallId,
			Name:       m.Name,
		}
		if m.Role == llm.RoleAssistant && len(m.ToolCalls) > 0 {
			if content == "" {
				wm.Content = nil
			}
			for _, tc := range m.ToolCalls {
				var wtc wireToolCall
				wtc.Id = tc.Id
				wtc.Type = "function"
				wtc.Function.Name = tc.Name
				wtc.Function.Arguments = tc.Arguments
				wm.ToolCalls = append(wm.ToolCalls, wtc)
			}
		}
		out = append(out, wm)
	}
	return out
}

func mapFinishReason(reason string, hasToolCalls bool) string {
	switch reason {
	case "stop":
		if hasToolCalls {
			return llm.FinishToolCalls
		}
		return llm.FinishStop
	case "tool_calls", "function_call":
		return llm.FinishToolCalls
	case "length":
		return llm.FinishLength
	case "":
		if hasToolCalls {
			return llm.FinishToolCalls
		}
		return llm.FinishStop
	default:
		return llm.FinishUnknown
	}
}

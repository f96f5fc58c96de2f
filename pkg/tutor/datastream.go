package tutor

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"jurisperform-be/pkg/llm"
)

// DataStreamHeader marks a response as a line-oriented data stream.
const (
	DataStreamHeader      = "X-Vercel-AI-Data-Stream"
	DataStreamHeaderValue = "v1"
)

// EventSink receives the observable events of a turn in order.
type EventSink interface {
	StepStart(messageId string) error
	Text(delta string) error
	ToolCall(call llm.ToolCall, args map[string]any) error
	ToolResult(toolCallId string, result any) error
	StepFinish(finishReason string, isContinued bool) error
	Error(message string) error
	Finish(finishReason string) error
}

type flusher interface {
	Flush() error
}

// DataStreamWriter encodes events as "<code>:<json>\n" lines:
//
//	f: step start   0: text delta   9: tool call   a: tool result
//	e: step finish  3: error        d: end of message
//	2: empty data part, used as a heartbeat
//
// The underlying writer is flushed after every line when it supports it.
type DataStreamWriter struct {
	mu       sync.Mutex
	w        io.Writer
	finished bool
}

var _ EventSink = &DataStreamWriter{}

func NewDataStreamWriter(w io.Writer) *DataStreamWriter {
	return &DataStreamWriter{w: w}
}

type usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
}

func (d *DataStreamWriter) StepStart(messageId string) error {
	return d.write('f', map[string]any{"messageId": messageId})
}

func (d *DataStreamWriter) Text(delta string) error {
	if delta == "" {
		return nil
	}
	return d.write('0', delta)
}

func (d *DataStreamWriter) ToolCall(call llm.ToolCall, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	return d.write('9', map[string]any{
		"toolCallId": call.Id,
		"toolName":   call.Name,
		"args":       args,
	})
}

func (d *DataStreamWriter) ToolResult(toolCallId string, result any) error {
	return d.write('a', map[string]any{
		"toolCallId": toolCallId,
		"result":     result,
	})
}

func (d *DataStreamWriter) StepFinish(finishReason string, isContinued bool) error {
	return d.write('e', map[string]any{
		"finishReason": finishReason,
		"usage":        usage{},
		"isContinued":  isContinued,
	})
}

func (d *DataStreamWriter) Error(message string) error {
	return d.write('3', message)
}

func (d *DataStreamWriter) Finish(finishReason string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.finished = true
	return d.writeLocked('d', map[string]any{
		"finishReason": finishReason,
		"usage":        usage{},
	})
}

// Heartbeat writes an empty data part so a closed connection surfaces as a
// flush error while the model or a tool is still silent. It is a no-op once
// the message has finished.
func (d *DataStreamWriter) Heartbeat() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.finished {
		return nil
	}
	return d.writeLocked('2', []any{})
}

func (d *DataStreamWriter) write(code byte, payload any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeLocked(code, payload)
}

func (d *DataStreamWriter) writeLocked(code byte, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode stream part %c: %w", code, err)
	}

	line := make([]byte, 0, len(b)+3)
	line = append(line, code, ':')
	line = append(line, b...)
	line = append(line, '\n')
	if _, err := d.w.Write(line); err != nil {
		return err
	}
	if f, ok := d.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// DiscardSink drops every event.
type DiscardSink struct{}

func (DiscardSink) StepStart(string) error { return nil }
func (DiscardSink) Text(string) error { return nil }
func (DiscardSink) ToolCall(llm.ToolCall, map[string]any) error { return nil }
func (DiscardSink) ToolResult(string, any) error { return nil }
func (DiscardSink) StepFinish(string, bool) error { return nil }
func (DiscardSink) Error(string) error { return nil }
func (DiscardSink) Finish(string) error { return nil }

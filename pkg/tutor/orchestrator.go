// Package tutor runs the course-grounded answer loop: the model is given the
// course resolver and loader as tools, its text is streamed to an EventSink
// and the trailing course directive is reconciled into selection state.
package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"jurisperform-be/pkg/directive"
	"jurisperform-be/pkg/llm"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultMaxSteps     = 5
	DefaultErrorMessage = "Une erreur est survenue lors de la génération de la réponse."
)

var ErrNoMessages = errors.New("tutor: conversation has no messages")

type AnswerRequest struct {
	Messages         []llm.Message
	SelectedLevel    string
	SelectedCourseId string
}

type ToolInvocation struct {
	Call   llm.ToolCall   `json:"call"`
	Args   map[string]any `json:"args"`
	Result any            `json:"result,omitempty"`
	Step   int            `json:"step"`
}

// Compliance records whether the model followed the prompt contract. It is
// observed after the fact and never enforced.
type Compliance struct {
	ResolverCalled       bool     `json:"resolverCalled"`
	LoaderCalled         bool     `json:"loaderCalled"`
	ResolverBeforeLoader bool     `json:"resolverBeforeLoader"`
	DirectivePresent     bool     `json:"directivePresent"`
	ForbiddenPhrases     []string `json:"forbiddenPhrases,omitempty"`
}

func (c Compliance) Violations() []string {
	var v []string
	if !c.ResolverCalled {
		v = append(v, "resolver not called")
	}
	if !c.LoaderCalled {
		v = append(v, "loader not called")
	}
	if c.ResolverCalled && c.LoaderCalled && !c.ResolverBeforeLoader {
		v = append(v, "loader called before resolver")
	}
	if !c.DirectivePresent {
		v = append(v, "directive missing")
	}
	if len(c.ForbiddenPhrases) > 0 {
		v = append(v, "forbidden phrase: "+strings.Join(c.ForbiddenPhrases, ", "))
	}
	return v
}

// Turn summarises one answered turn.
type Turn struct {
	Text         string
	Tools        []ToolInvocation
	Steps        int
	FinishReason string
	Directive    *directive.Directive
	Compliance   Compliance
}

type Orchestrator struct {
	provider     llm.ToolChatProvider
	tools        []Tool
	byName       map[string]Tool
	filter       *PhraseFilter
	maxSteps     int
	errorMessage string
	llmOptions   []llm.Option
	log          *zap.Logger
	tracer       trace.Tracer
}

type Option func(*Orchestrator)

func WithMaxSteps(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxSteps = n
		}
	}
}

func WithPhraseFilter(f *PhraseFilter) Option {
	return func(o *Orchestrator) {
		if f != nil {
			o.filter = f
		}
	}
}

func WithLLMOptions(opts ...llm.Option) Option {
	return func(o *Orchestrator) {
		o.llmOptions = append(o.llmOptions, opts...)
	}
}

func WithErrorMessage(msg string) Option {
	return func(o *Orchestrator) {
		o.errorMessage = msg
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

func NewOrchestrator(provider llm.ToolChatProvider, tools []Tool, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:     provider,
		tools:        tools,
		byName:       make(map[string]Tool, len(tools)),
		filter:       NewPhraseFilter(DefaultForbiddenPhrases),
		maxSteps:     DefaultMaxSteps,
		errorMessage: DefaultErrorMessage,
		log:          zap.NewNop(),
		tracer:       otel.Tracer("jurisperform-be/pkg/tutor"),
	}
	for _, t := range tools {
		o.byName[t.Name()] = t
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Answer runs up to maxSteps model calls. Tool calls requested in a step are
// executed one after the other and their results fed back before the next
// step. A failing tool or model call ends the turn with an error event.
func (o *Orchestrator) Answer(ctx context.Context, req AnswerRequest, sink EventSink) (*Turn, error) {
	if len(req.Messages) == 0 {
		return nil, ErrNoMessages
	}
	if sink == nil {
		sink = DiscardSink{}
	}

	history := make([]llm.Message, 0, len(req.Messages)+1+2*o.maxSteps)
	history = append(history, llm.Message{
		Role:    llm.RoleSystem,
		Content: BuildSystemPrompt(req.SelectedLevel, req.SelectedCourseId, o.filter.Phrases()),
	})
	history = append(history, req.Messages...)

	defs := Definitions(o.tools)
	turn := &Turn{FinishReason: llm.FinishUnknown}
	var text strings.Builder

	for step := 1; step <= o.maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return turn, err
		}
		if err := sink.StepStart("msg-" + uuid.NewString()); err != nil {
			return turn, err
		}

		res, err := o.provider.StreamChat(ctx, history, defs, func(delta string) error {
			text.WriteString(delta)
			return sink.Text(delta)
		}, o.llmOptions...)
		turn.Steps = step
		turn.Text = text.String()
		if err != nil {
			return turn, o.fail(ctx, sink, fmt.Errorf("model call (step %d): %w", step, err))
		}

		if len(res.ToolCalls) == 0 {
			turn.FinishReason = res.FinishReason
			if err := sink.StepFinish(res.FinishReason, false); err != nil {
				return turn, err
			}
			break
		}

		history = append(history, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   res.Content,
			ToolCalls: res.ToolCalls,
		})
		for _, call := range res.ToolCalls {
			inv, err := o.invoke(ctx, sink, call, step)
			if err != nil {
				return turn, o.fail(ctx, sink, err)
			}
			turn.Tools = append(turn.Tools, inv)

			resultJSON, err := json.Marshal(inv.Result)
			if err != nil {
				return turn, o.fail(ctx, sink, fmt.Errorf("encode %s result: %w", call.Name, err))
			}
			history = append(history, llm.Message{
				Role:       llm.RoleTool,
				Content:    string(resultJSON),
				ToolCallId: call.Id,
				Name:       call.Name,
			})
		}

		turn.FinishReason = llm.FinishToolCalls
		if err := sink.StepFinish(llm.FinishToolCalls, false); err != nil {
			return turn, err
		}
	}

	decoded := directive.Decode(turn.Text)
	turn.Directive = decoded.Directive
	turn.Compliance = o.compliance(turn, decoded.CleanedText)
	if v := turn.Compliance.Violations(); len(v) > 0 {
		o.log.Warn("tutor turn did not follow the prompt contract",
			zap.Strings("violations", v),
			zap.Int("steps", turn.Steps),
			zap.String("selected_course_id", req.SelectedCourseId),
		)
	}

	if err := sink.Finish(turn.FinishReason); err != nil {
		return turn, err
	}
	return turn, nil
}

func (o *Orchestrator) invoke(ctx context.Context, sink EventSink, call llm.ToolCall, step int) (ToolInvocation, error) {
	inv := ToolInvocation{Call: call, Step: step}

	tool, ok := o.byName[call.Name]
	if !ok {
		return inv, fmt.Errorf("model requested unknown tool %q", call.Name)
	}

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return inv, fmt.Errorf("invalid arguments for %s: %w", call.Name, err)
		}
	}
	inv.Args = args

	if err := sink.ToolCall(call, args); err != nil {
		return inv, err
	}

	ctx, span := o.tracer.Start(ctx, "tutor.tool."+call.Name, trace.WithAttributes(
		attribute.String("tool.call_id", call.Id),
		attribute.Int("tutor.step", step),
	))
	result, err := tool.Execute(ctx, args)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return inv, fmt.Errorf("tool %s: %w", call.Name, err)
	}
	span.End()

	o.log.Debug("tool executed",
		zap.String("tool", call.Name),
		zap.String("tool_call_id", call.Id),
		zap.Any("args", args),
	)

	inv.Result = result
	if err := sink.ToolResult(call.Id, result); err != nil {
		return inv, err
	}
	return inv, nil
}

// fail reports err on the stream unless the client is already gone.
func (o *Orchestrator) fail(ctx context.Context, sink EventSink, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	o.log.Error("tutor turn failed", zap.Error(err))
	if sinkErr := sink.Error(o.errorMessage); sinkErr != nil {
		o.log.Warn("failed to report stream error", zap.Error(sinkErr))
	}
	return err
}

func (o *Orchestrator) compliance(turn *Turn, cleaned string) Compliance {
	c := Compliance{DirectivePresent: turn.Directive != nil}
	resolverAt, loaderAt := -1, -1
	for i, inv := range turn.Tools {
		switch inv.Call.Name {
		case ToolFindRelevantCourse:
			c.ResolverCalled = true
			if resolverAt < 0 {
				resolverAt = i
			}
		case ToolLoadCoursePDF:
			c.LoaderCalled = true
			if loaderAt < 0 {
				loaderAt = i
			}
		}
	}
	c.ResolverBeforeLoader = resolverAt >= 0 && loaderAt >= 0 && resolverAt < loaderAt
	c.ForbiddenPhrases = o.filter.Matches(cleaned)
	return c
}

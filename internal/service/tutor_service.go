package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"jurisperform-be/internal/constant"
	"jurisperform-be/internal/dto"
	"jurisperform-be/internal/repository/unitofwork"
	"jurisperform-be/internal/tracer"
	"jurisperform-be/pkg/course"
	"jurisperform-be/pkg/llm"
	"jurisperform-be/pkg/tutor"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Answerer runs one tutor turn against a sink.
type Answerer interface {
	Answer(ctx context.Context, req tutor.AnswerRequest, sink tutor.EventSink) (*tutor.Turn, error)
}

// PreparedTurn is a validated chat request ready to stream.
type PreparedTurn struct {
	UserId         uuid.UUID
	ConversationId *uuid.UUID
	Messages       []llm.Message
	Selection      tutor.Selection
	// Stored is the selection persisted on the conversation row.
	Stored      tutor.Selection
	UserContent string
}

type ITutorService interface {
	// Prepare checks ownership and resolves the starting selection. It is
	// called before any byte of the stream is written so failures can still
	// be answered with a status code.
	Prepare(ctx context.Context, userId uuid.UUID, req *dto.ChatRequest) (*PreparedTurn, error)
	Run(ctx context.Context, turn *PreparedTurn, sink tutor.EventSink) (*tutor.Turn, error)
}

type tutorService struct {
	answerer         Answerer
	uowFactory       unitofwork.RepositoryFactory
	selections       SelectionStore
	publisherService IPublisherService
	log              *zap.Logger
}

func NewTutorService(
	answerer Answerer,
	uowFactory unitofwork.RepositoryFactory,
	selections SelectionStore,
	publisherService IPublisherService,
	log *zap.Logger,
) ITutorService {
	if log == nil {
		log = zap.NewNop()
	}
	return &tutorService{
		answerer:         answerer,
		uowFactory:       uowFactory,
		selections:       selections,
		publisherService: publisherService,
		log:              log,
	}
}

func (s *tutorService) Prepare(ctx context.Context, userId uuid.UUID, req *dto.ChatRequest) (*PreparedTurn, error) {
	turn := &PreparedTurn{
		UserId:         userId,
		ConversationId: req.ConversationId,
		Selection: tutor.Selection{
			Level:    course.Level(req.SelectedLevel),
			CourseId: req.SelectedCourseId,
		},
	}

	// System messages from the client are dropped; the orchestrator owns the
	// system prompt.
	for _, m := range req.Messages {
		switch m.Role {
		case constant.MessageRoleUser:
			turn.Messages = append(turn.Messages, llm.Message{Role: llm.RoleUser, Content: m.Content})
			turn.UserContent = m.Content
		case constant.MessageRoleAssistant:
			turn.Messages = append(turn.Messages, llm.Message{Role: llm.RoleAssistant, Content: m.Content})
		}
	}
	if len(turn.Messages) == 0 {
		return nil, ErrEmptyConversation
	}

	if req.ConversationId == nil {
		return turn, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := findOwnedConversation(ctx, uow, userId, *req.ConversationId)
	if err != nil {
		return nil, err
	}

	turn.Stored = tutor.Selection{
		Level:    course.Level(conversation.SelectedLevel),
		CourseId: conversation.SelectedCourseId,
	}

	// The client's selection wins; otherwise fall back to the cached
	// reconciled selection, then to the stored row.
	if turn.Selection.Level == "" && turn.Selection.CourseId == "" {
		if cached, ok := s.selections.Get(conversation.Id); ok {
			turn.Selection = cached
		} else {
			turn.Selection = turn.Stored
		}
	}
	return turn, nil
}

func (s *tutorService) Run(ctx context.Context, prepared *PreparedTurn, sink tutor.EventSink) (*tutor.Turn, error) {
	ctx, span := tracer.Start(ctx, "tutor.turn", trace.WithAttributes(
		attribute.String("tutor.level", string(prepared.Selection.Level)),
		attribute.String("tutor.course_id", prepared.Selection.CourseId),
	))
	defer span.End()

	turn, err := s.answerer.Answer(ctx, tutor.AnswerRequest{
		Messages:         prepared.Messages,
		SelectedLevel:    string(prepared.Selection.Level),
		SelectedCourseId: prepared.Selection.CourseId,
	}, sink)
	if err != nil {
		if errors.Is(err, tutor.ErrNoMessages) {
			return nil, ErrEmptyConversation
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return turn, err
	}
	span.SetAttributes(
		attribute.String("tutor.finish_reason", turn.FinishReason),
		attribute.Int("tutor.steps", turn.Steps),
	)

	reconciler := tutor.NewReconciler(prepared.Selection)
	reconciler.Apply(turn.Text, true)

	if prepared.ConversationId == nil {
		return turn, nil
	}

	// Compared against the row, not the request: a client may send a
	// selection the server has never stored.
	selection := reconciler.Selection()
	changed := selection != prepared.Stored
	s.selections.Save(*prepared.ConversationId, selection)

	toolCalls, err := encodeToolCalls(turn.Tools)
	if err != nil {
		s.log.Warn("failed to encode tool calls", zap.Error(err))
	}

	msg := dto.TurnCompletedMessage{
		ConversationId:   *prepared.ConversationId,
		UserId:           prepared.UserId,
		UserContent:      prepared.UserContent,
		AssistantContent: turn.Text,
		ToolCalls:        toolCalls,
		SelectedLevel:    string(selection.Level),
		SelectedCourseId: selection.CourseId,
		SelectionChanged: changed,
		FinishReason:     turn.FinishReason,
		Steps:            turn.Steps,
		Violations:       turn.Compliance.Violations(),
	}
	if err := s.publisherService.Publish(context.WithoutCancel(ctx), msg); err != nil {
		s.log.Error("failed to publish completed turn",
			zap.String("conversation_id", prepared.ConversationId.String()),
			zap.Error(err),
		)
	}
	return turn, nil
}

// storedToolCall is the persisted shape of a tool invocation, matching what
// the chat UI reads back from messages.tool_calls.
type storedToolCall struct {
	ToolCallId string         `json:"toolCallId"`
	ToolName   string         `json:"toolName"`
	Args       map[string]any `json:"args"`
	Result     any            `json:"result,omitempty"`
	Step       int            `json:"step"`
}

func encodeToolCalls(tools []tutor.ToolInvocation) (json.RawMessage, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	stored := make([]storedToolCall, 0, len(tools))
	for _, inv := range tools {
		stored = append(stored, storedToolCall{
			ToolCallId: inv.Call.Id,
			ToolName:   inv.Call.Name,
			Args:       inv.Args,
			Result:     inv.Result,
			Step:       inv.Step,
		})
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("marshal tool calls: %w", err)
	}
	return raw, nil
}

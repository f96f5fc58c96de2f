package service

import (
	"context"
	"encoding/json"
	"errors"

	"jurisperform-be/internal/constant"
	"jurisperform-be/internal/dto"
	"jurisperform-be/internal/entity"
	"jurisperform-be/internal/repository/specification"
	"jurisperform-be/internal/repository/unitofwork"
	"jurisperform-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService persists completed tutor turns off the request path.
type consumerService struct {
	subscriber     message.Subscriber
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher EventPublisher
	log            *zap.Logger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher EventPublisher,
	log *zap.Logger,
) IConsumerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &consumerService{
		subscriber:     subscriber,
		topicName:      topicName,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.TurnCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("invalid turn payload", zap.String("message_id", msg.UUID), zap.Error(err))
		msg.Ack() // retrying cannot fix a malformed payload
		return
	}

	log := cs.log.With(zap.String("conversation_id", payload.ConversationId.String()))
	changed, err := cs.persistTurn(ctx, &payload)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			log.Warn("conversation gone before turn was persisted")
			msg.Ack()
			return
		}
		log.Error("failed to persist turn", zap.Error(err))
		msg.Nack()
		return
	}

	cs.publish(ctx, events.New(constant.EventTutorTurnCompleted, map[string]interface{}{
		"user_id":         payload.UserId.String(),
		"conversation_id": payload.ConversationId.String(),
		"finish_reason":   payload.FinishReason,
		"steps":           payload.Steps,
		"violations":      payload.Violations,
	}))
	if changed {
		cs.publish(ctx, events.New(constant.EventCourseSelectionChanged, map[string]interface{}{
			"user_id":         payload.UserId.String(),
			"conversation_id": payload.ConversationId.String(),
			"level":           payload.SelectedLevel,
			"course_id":       payload.SelectedCourseId,
		}))
	}

	log.Info("turn persisted", zap.Bool("selection_changed", changed))
	msg.Ack()
}

// persistTurn stores both messages and reports whether the conversation's
// selection was rewritten. The row is compared directly so a stale
// SelectionChanged flag cannot leave it behind.
func (cs *consumerService) persistTurn(ctx context.Context, payload *dto.TurnCompletedMessage) (bool, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: payload.ConversationId},
		specification.UserOwnedBy{UserID: payload.UserId},
	)
	if err != nil {
		return false, err
	}
	if conversation == nil {
		return false, ErrConversationNotFound
	}

	if payload.UserContent != "" {
		if err := uow.MessageRepository().Create(ctx, &entity.Message{
			ConversationId: payload.ConversationId,
			Role:           constant.MessageRoleUser,
			Content:        payload.UserContent,
		}); err != nil {
			return false, err
		}
	}
	if err := uow.MessageRepository().Create(ctx, &entity.Message{
		ConversationId: payload.ConversationId,
		Role:           constant.MessageRoleAssistant,
		Content:        payload.AssistantContent,
		ToolCalls:      payload.ToolCalls,
	}); err != nil {
		return false, err
	}

	changed := conversation.SelectedLevel != payload.SelectedLevel ||
		conversation.SelectedCourseId != payload.SelectedCourseId
	if changed {
		conversation.SelectedLevel = payload.SelectedLevel
		conversation.SelectedCourseId = payload.SelectedCourseId
		if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
			return false, err
		}
	} else if err := uow.ConversationRepository().Touch(ctx, conversation.Id); err != nil {
		return false, err
	}

	return changed, uow.Commit()
}

func (cs *consumerService) publish(ctx context.Context, event events.Event) {
	if cs.eventPublisher == nil {
		return
	}
	if err := cs.eventPublisher.Publish(ctx, event); err != nil {
		cs.log.Warn("failed to publish event", zap.String("type", event.EventType()), zap.Error(err))
	}
}

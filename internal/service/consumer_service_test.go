package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"jurisperform-be/internal/constant"
	"jurisperform-be/internal/dto"
	"jurisperform-be/internal/entity"
	"jurisperform-be/internal/model"
	"jurisperform-be/internal/repository/memory"
	"jurisperform-be/pkg/course"
	"jurisperform-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerService_PersistsTurn(t *testing.T) {
	factory, db := newTestFactory(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conv := entity.Conversation{UserId: uuid.New(), Title: "t", SelectedLevel: "L1"}
	require.NoError(t, factory.NewUnitOfWork(ctx).ConversationRepository().Create(ctx, &conv))

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	outward := &recordingEvents{}
	consumer := NewConsumerService(pubSub, constant.TurnCompletedTopic, factory, outward, nil)
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService(constant.TurnCompletedTopic, pubSub)
	require.NoError(t, publisher.Publish(ctx, dto.TurnCompletedMessage{
		ConversationId:   conv.Id,
		UserId:           conv.UserId,
		UserContent:      "Question ?",
		AssistantContent: "Réponse brute",
		ToolCalls:        json.RawMessage(`[{"toolCallId":"call_1"}]`),
		SelectedLevel:    "L2",
		SelectedCourseId: "l2-droit-penal",
		SelectionChanged: true,
		FinishReason:     "stop",
		Steps:            2,
	}))

	require.Eventually(t, func() bool {
		return len(outward.Types()) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{constant.EventTutorTurnCompleted, constant.EventCourseSelectionChanged}, outward.Types())

	var messages []model.Message
	require.NoError(t, db.Where("conversation_id = ?", conv.Id).Order("created_at ASC").Find(&messages).Error)
	require.Len(t, messages, 2)
	assert.Equal(t, constant.MessageRoleUser, messages[0].Role)
	assert.Equal(t, "Réponse brute", messages[1].Content)
	assert.JSONEq(t, `[{"toolCallId":"call_1"}]`, string(messages[1].ToolCalls))

	var stored model.Conversation
	require.NoError(t, db.First(&stored, "id = ?", conv.Id).Error)
	require.NotNil(t, stored.SelectedCourseId)
	assert.Equal(t, "l2-droit-penal", *stored.SelectedCourseId)
	assert.Equal(t, "L2", *stored.SelectedLevel)
}

func TestConsumerService_SelectionComparedWithStoredRow(t *testing.T) {
	tests := []struct {
		name       string
		flagged    bool
		level      string
		courseId   string
		wantEvents []string
		wantCourse string
	}{
		{
			name:       "differs from row without flag",
			flagged:    false,
			level:      "L2",
			courseId:   "l2-droit-obligations",
			wantEvents: []string{constant.EventTutorTurnCompleted, constant.EventCourseSelectionChanged},
			wantCourse: "l2-droit-obligations",
		},
		{
			name:       "matches row despite flag",
			flagged:    true,
			level:      "L1",
			courseId:   "l1-droit-prive",
			wantEvents: []string{constant.EventTutorTurnCompleted},
			wantCourse: "l1-droit-prive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory, db := newTestFactory(t)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			conv := entity.Conversation{UserId: uuid.New(), Title: "t", SelectedLevel: "L1", SelectedCourseId: "l1-droit-prive"}
			require.NoError(t, factory.NewUnitOfWork(ctx).ConversationRepository().Create(ctx, &conv))

			pubSub := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
			defer pubSub.Close()

			outward := &recordingEvents{}
			consumer := NewConsumerService(pubSub, constant.TurnCompletedTopic, factory, outward, nil)
			require.NoError(t, consumer.Consume(ctx))

			publisher := NewPublisherService(constant.TurnCompletedTopic, pubSub)
			require.NoError(t, publisher.Publish(ctx, dto.TurnCompletedMessage{
				ConversationId:   conv.Id,
				UserId:           conv.UserId,
				UserContent:      "Et la responsabilité ?",
				AssistantContent: "Réponse",
				SelectedLevel:    tt.level,
				SelectedCourseId: tt.courseId,
				SelectionChanged: tt.flagged,
				FinishReason:     "stop",
			}))

			assert.Equal(t, tt.wantEvents, outward.Types())

			var stored model.Conversation
			require.NoError(t, db.First(&stored, "id = ?", conv.Id).Error)
			require.NotNil(t, stored.SelectedCourseId)
			assert.Equal(t, tt.wantCourse, *stored.SelectedCourseId)
			assert.Equal(t, tt.level, *stored.SelectedLevel)
		})
	}
}

func TestConsumerService_UnknownConversationIsAcked(t *testing.T) {
	factory, db := newTestFactory(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	defer pubSub.Close()

	outward := &recordingEvents{}
	consumer := NewConsumerService(pubSub, constant.TurnCompletedTopic, factory, outward, nil)
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService(constant.TurnCompletedTopic, pubSub)
	require.NoError(t, publisher.Publish(ctx, dto.TurnCompletedMessage{
		ConversationId:   uuid.New(),
		UserId:           uuid.New(),
		AssistantContent: "x",
	}))

	// Publish blocks until the consumer acked.
	var count int64
	require.NoError(t, db.Model(&model.Message{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, outward.Types())
}

func TestSelectionSyncService_Handle(t *testing.T) {
	selections := memory.NewSelectionRepository(time.Minute)
	svc := NewSelectionSyncService(nil, selections, nil)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, svc.Handle(ctx, events.New(constant.EventCourseSelectionChanged, map[string]interface{}{
		"conversation_id": id.String(),
		"level":           "L3",
		"course_id":       "l3-tglf",
	})))
	got, ok := selections.Get(id)
	require.True(t, ok)
	assert.Equal(t, course.LevelL3, got.Level)
	assert.Equal(t, "l3-tglf", got.CourseId)

	require.NoError(t, svc.Handle(ctx, events.New(constant.EventConversationDeleted, map[string]interface{}{
		"conversation_id": id.String(),
	})))
	_, ok = selections.Get(id)
	assert.False(t, ok)

	assert.NoError(t, svc.Handle(ctx, events.New(constant.EventCourseSelectionChanged, map[string]interface{}{})))
}

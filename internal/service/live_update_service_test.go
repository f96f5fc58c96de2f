package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"jurisperform-be/internal/constant"
	"jurisperform-be/pkg/events"
	pktNats "jurisperform-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDelivery struct {
	mu     sync.Mutex
	frames map[uuid.UUID][][]byte
}

func (r *recordingDelivery) Send(userId uuid.UUID, frame []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frames == nil {
		r.frames = make(map[uuid.UUID][][]byte)
	}
	r.frames[userId] = append(r.frames[userId], frame)
}

type recordingSubscriber struct {
	subjects []string
}

func (r *recordingSubscriber) Subscribe(_ context.Context, eventType, durableName string, _ pktNats.EventHandler) error {
	r.subjects = append(r.subjects, eventType+"/"+durableName)
	return nil
}

func TestLiveUpdateService_Start(t *testing.T) {
	sub := &recordingSubscriber{}
	svc := NewLiveUpdateService(sub, &recordingDelivery{}, nil)

	require.NoError(t, svc.Start(context.Background()))
	assert.Equal(t, []string{
		constant.EventTutorTurnCompleted + "/",
		constant.EventCourseSelectionChanged + "/",
		constant.EventConversationDeleted + "/",
	}, sub.subjects)
}

func TestLiveUpdateService_Handle(t *testing.T) {
	delivery := &recordingDelivery{}
	svc := NewLiveUpdateService(nil, delivery, nil)
	userId := uuid.New()
	conversationId := uuid.New()

	tests := []struct {
		name   string
		event  events.Event
		frames int
	}{
		{
			name: "selection change reaches the owner",
			event: events.New(constant.EventCourseSelectionChanged, map[string]interface{}{
				"user_id":         userId.String(),
				"conversation_id": conversationId.String(),
				"level":           "L2",
				"course_id":       "l2-droit-penal",
			}),
			frames: 1,
		},
		{
			name:   "event without user is dropped",
			event:  events.New(constant.EventConversationDeleted, map[string]interface{}{"conversation_id": conversationId.String()}),
			frames: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, svc.Handle(context.Background(), tt.event))
			assert.Len(t, delivery.frames[userId], tt.frames)
		})
	}

	var frame struct {
		Type string                 `json:"type"`
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(delivery.frames[userId][0], &frame))
	assert.Equal(t, constant.EventCourseSelectionChanged, frame.Type)
	assert.Equal(t, "l2-droit-penal", frame.Data["course_id"])
}

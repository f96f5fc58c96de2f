package service

import (
	"context"

	"jurisperform-be/internal/constant"
	"jurisperform-be/pkg/course"
	"jurisperform-be/pkg/events"
	pktNats "jurisperform-be/pkg/nats"
	"jurisperform-be/pkg/tutor"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventSubscriber registers handlers on the outward bus.
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error
}

type ISelectionSyncService interface {
	Start(ctx context.Context) error
	Handle(ctx context.Context, event events.Event) error
}

// selectionSyncService keeps this instance's selection cache in line with
// changes made through other instances.
type selectionSyncService struct {
	subscriber EventSubscriber
	selections SelectionStore
	log        *zap.Logger
}

func NewSelectionSyncService(subscriber EventSubscriber, selections SelectionStore, log *zap.Logger) ISelectionSyncService {
	if log == nil {
		log = zap.NewNop()
	}
	return &selectionSyncService{
		subscriber: subscriber,
		selections: selections,
		log:        log,
	}
}

func (s *selectionSyncService) Start(ctx context.Context) error {
	for _, eventType := range []string{constant.EventCourseSelectionChanged, constant.EventConversationDeleted} {
		if err := s.subscriber.Subscribe(ctx, eventType, "", s.Handle); err != nil {
			return err
		}
	}
	return nil
}

func (s *selectionSyncService) Handle(ctx context.Context, event events.Event) error {
	id, err := uuid.Parse(events.String(event, "conversation_id"))
	if err != nil {
		s.log.Warn("event without conversation id", zap.String("type", event.EventType()))
		return nil
	}

	switch event.EventType() {
	case constant.EventCourseSelectionChanged:
		s.selections.Save(id, tutor.Selection{
			Level:    course.Level(events.String(event, "level")),
			CourseId: events.String(event, "course_id"),
		})
	case constant.EventConversationDeleted:
		s.selections.Delete(id)
	}
	return nil
}

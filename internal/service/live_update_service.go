package service

import (
	"context"

	"jurisperform-be/internal/constant"
	"jurisperform-be/pkg/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LiveDelivery pushes a frame to every live connection of a user.
type LiveDelivery interface {
	Send(userId uuid.UUID, frame []byte)
}

type ILiveUpdateService interface {
	Start(ctx context.Context) error
	Handle(ctx context.Context, event events.Event) error
}

// liveUpdateService forwards conversation events to the owner's open tabs so
// the course selector and conversation list follow changes made elsewhere.
type liveUpdateService struct {
	subscriber EventSubscriber
	delivery   LiveDelivery
	log        *zap.Logger
}

func NewLiveUpdateService(subscriber EventSubscriber, delivery LiveDelivery, log *zap.Logger) ILiveUpdateService {
	if log == nil {
		log = zap.NewNop()
	}
	return &liveUpdateService{
		subscriber: subscriber,
		delivery:   delivery,
		log:        log,
	}
}

func (s *liveUpdateService) Start(ctx context.Context) error {
	for _, eventType := range constant.LiveEventTypes {
		if err := s.subscriber.Subscribe(ctx, eventType, "", s.Handle); err != nil {
			return err
		}
	}
	s.log.Info("live updates started", zap.Strings("events", constant.LiveEventTypes))
	return nil
}

func (s *liveUpdateService) Handle(ctx context.Context, event events.Event) error {
	userId, err := uuid.Parse(events.String(event, "user_id"))
	if err != nil {
		s.log.Warn("event without user id", zap.String("type", event.EventType()))
		return nil
	}

	frame, err := events.Marshal(event)
	if err != nil {
		s.log.Error("failed to encode live frame", zap.String("type", event.EventType()), zap.Error(err))
		return nil
	}
	s.delivery.Send(userId, frame)
	return nil
}

package nats

import (
	"context"
	"testing"

	"jurisperform-be/pkg/events"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.TUTOR_TURN_COMPLETED", Subject("TUTOR_TURN_COMPLETED"))
}

func TestNilPublisherIsNoop(t *testing.T) {
	var p *Publisher
	assert.NoError(t, p.Publish(context.Background(), events.New("X", nil)))
	assert.NotPanics(t, p.Close)
}

func TestNilSubscriberCloseIsNoop(t *testing.T) {
	var s *Subscriber
	assert.NotPanics(t, s.Close)
}

package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"spacelink/pkg/kafka"
	"spacelink/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_CountsOutcomes(t *testing.T) {
	m := NewMetrics()
	consume := m.ConsumerMiddleware()
	publish := m.ProducerMiddleware()

	ok := func(ctx context.Context, msg kafka.Message) error { return nil }
	fail := func(ctx context.Context, msg kafka.Message) error { return errors.New("boom") }

	_ = consume(context.Background(), kafka.Message{}, ok)
	_ = consume(context.Background(), kafka.Message{}, ok)
	_ = consume(context.Background(), kafka.Message{}, fail)
	_ = publish(context.Background(), kafka.Message{}, fail)

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.Consumed)
	assert.Equal(t, int64(1), s.ConsumeFailed)
	assert.Equal(t, int64(0), s.Published)
	assert.Equal(t, int64(1), s.PublishFailed)
}

func TestLoggingMiddleware_PassesErrorThrough(t *testing.T) {
	want := errors.New("boom")
	mw := LoggingConsumerMiddleware(logger.Discard())

	err := mw(context.Background(), kafka.Message{Headers: map[string]string{}}, func(ctx context.Context, msg kafka.Message) error {
		return want
	})
	assert.ErrorIs(t, err, want)
}

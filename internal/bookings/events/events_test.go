package events

import (
	"context"
	"testing"
	"time"

	"spacelink/pkg/kafka"
	"spacelink/pkg/logger"
	"spacelink/pkg/middleware"
	"spacelink/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureProducer struct {
	messages []kafka.Message
}

func (c *captureProducer) Publish(_ context.Context, msg kafka.Message) error {
	c.messages = append(c.messages, msg)
	return nil
}

func sampleBooking() *model.Booking {
	return &model.Booking{
		ID:          "b1",
		UserID:      "u1",
		PropertyID:  "p1",
		Status:      model.BookingStatusActive,
		BookingType: model.RentTypeMonthly,
		FromDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ToDate:      time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		TotalPrice:  1000,
	}
}

func TestKafkaPublisher_RoundTrip(t *testing.T) {
	producer := &captureProducer{}
	publisher := NewKafkaPublisher(producer, "bookings")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	event := NewBookingEvent(TypeBookingCreated, sampleBooking(), time.Now())
	require.NoError(t, publisher.Publish(ctx, event))

	require.Len(t, producer.messages, 1)
	msg := producer.messages[0]
	assert.Equal(t, "p1", msg.Key)
	assert.Equal(t, TypeBookingCreated, msg.GetEventType())
	assert.Equal(t, "req-42", msg.GetCorrelationID())
	assert.Equal(t, "bookings", msg.Headers[kafka.HeaderSource])

	decoded, err := Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, "b1", decoded.BookingID)
	assert.Equal(t, 1000.0, decoded.TotalPrice)
	assert.True(t, decoded.FromDate.Equal(event.FromDate))
}

func TestDecode_MalformedIsPermanent(t *testing.T) {
	for _, value := range []string{`not json`, `{}`, `{"type":"booking.moved","bookingId":"b1"}`} {
		_, err := Decode(kafka.Message{Value: []byte(value)})
		require.Error(t, err, value)
		assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err), value)
	}
}

func TestAuditHandler(t *testing.T) {
	handler := AuditHandler(logger.Discard())

	producer := &captureProducer{}
	require.NoError(t, NewKafkaPublisher(producer, "bookings").Publish(context.Background(),
		NewBookingEvent(TypeBookingExpired, sampleBooking(), time.Now())))

	assert.NoError(t, handler(context.Background(), producer.messages[0]))
	assert.Error(t, handler(context.Background(), kafka.Message{Value: []byte("{")}))
}

func TestDLQTopic(t *testing.T) {
	assert.Equal(t, "booking-events.dlq", DLQTopic("booking-events"))
}

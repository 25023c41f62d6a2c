// Package events publishes booking lifecycle changes and decodes them for
// the audit consumer.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spacelink/pkg/kafka"
	"spacelink/pkg/logger"
	"spacelink/pkg/middleware"
	"spacelink/pkg/model"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingExpired   = "booking.expired"

	SchemaVersion = "1"
)

// DLQTopic names the dead-letter topic paired with topic.
func DLQTopic(topic string) string {
	return topic + ".dlq"
}

type BookingEvent struct {
	Type        string              `json:"type"`
	BookingID   string              `json:"bookingId"`
	UserID      string              `json:"userId"`
	PropertyID  string              `json:"propertyId"`
	Status      model.BookingStatus `json:"status"`
	BookingType model.RentType      `json:"bookingType"`
	FromDate    time.Time           `json:"fromDate"`
	ToDate      time.Time           `json:"toDate"`
	TotalPrice  float64             `json:"totalPrice"`
	OccurredAt  time.Time           `json:"occurredAt"`
}

func NewBookingEvent(eventType string, b *model.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:        eventType,
		BookingID:   b.ID,
		UserID:      b.UserID,
		PropertyID:  b.PropertyID,
		Status:      b.Status,
		BookingType: b.BookingType,
		FromDate:    b.FromDate,
		ToDate:      b.ToDate,
		TotalPrice:  b.TotalPrice,
		OccurredAt:  at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer MessagePublisher
	source   string
}

func NewKafkaPublisher(producer MessagePublisher, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

// Publish keys messages by property so every change to one property lands
// on the same partition in order.
func (p *KafkaPublisher) Publish(ctx context.Context, event BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.PropertyID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, BookingEvent) error { return nil }

// Decode parses a consumed message. Malformed payloads are permanent errors
// so the consumer dead-letters them instead of retrying.
func Decode(msg kafka.Message) (*BookingEvent, error) {
	var event BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return nil, kafka.NewPermanentError("malformed booking event", err)
	}
	if event.BookingID == "" || event.Type == "" {
		return nil, kafka.NewPermanentError("malformed booking event", errors.New("missing type or bookingId"))
	}
	switch event.Type {
	case TypeBookingCreated, TypeBookingCancelled, TypeBookingExpired:
	default:
		return nil, kafka.NewPermanentError("malformed booking event", fmt.Errorf("unknown type %q", event.Type))
	}
	return &event, nil
}

// AuditHandler writes one structured log line per booking event.
func AuditHandler(log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		event, err := Decode(msg)
		if err != nil {
			return err
		}
		log.Info("Booking audit",
			"event_type", event.Type,
			"event_id", msg.GetEventID(),
			"correlation_id", msg.GetCorrelationID(),
			"booking_id", event.BookingID,
			"user_id", event.UserID,
			"property_id", event.PropertyID,
			"status", event.Status,
			"booking_type", event.BookingType,
			"from_date", event.FromDate,
			"to_date", event.ToDate,
			"total_price", event.TotalPrice,
			"occurred_at", event.OccurredAt,
		)
		return nil
	}
}

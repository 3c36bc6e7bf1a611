package sinks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
)

const (
	EventOptionsGenerated = "option.generated"
	EventOptionConfirmed  = "option.confirmed"

	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"

	eventSource = "assistant-workers"
)

var ErrEventPublishFailed = errors.New("EVENT_PUBLISH_FAILED")

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter returns a writer that hashes keys to partitions and waits for all replicas.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
	}
}

type Event struct {
	ID         string      `json:"eventId"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

type OptionsGeneratedPayload struct {
	Location string          `json:"location"`
	Status   string          `json:"status"`
	Options  []models.Option `json:"options"`
}

type OptionConfirmedPayload struct {
	Confirmation *Confirmation `json:"confirmation"`
	Option       models.Option `json:"option"`
}

// EventPublisher emits option lifecycle events. Either writer may be nil,
// in which case that event type is skipped.
type EventPublisher struct {
	generated MessageWriter
	confirmed MessageWriter
	logger    logger.Logger
	now       func() time.Time
}

func NewEventPublisher(generated, confirmed MessageWriter, log logger.Logger) *EventPublisher {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &EventPublisher{generated: generated, confirmed: confirmed, logger: log, now: time.Now}
}

// PublishOptionsGenerated is keyed by location so one city's plans stay ordered.
func (p *EventPublisher) PublishOptionsGenerated(ctx context.Context, payload OptionsGeneratedPayload) (string, error) {
	return p.publish(ctx, p.generated, EventOptionsGenerated, models.NormalizeName(payload.Location), payload)
}

func (p *EventPublisher) PublishOptionConfirmed(ctx context.Context, payload OptionConfirmedPayload) (string, error) {
	key := ""
	if payload.Confirmation != nil {
		key = payload.Confirmation.ConfirmationID
	}
	return p.publish(ctx, p.confirmed, EventOptionConfirmed, key, payload)
}

func (p *EventPublisher) publish(ctx context.Context, w MessageWriter, eventType, key string, payload interface{}) (string, error) {
	if w == nil {
		return "", nil
	}

	event := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: p.now().UTC(),
		Payload:    payload,
	}
	value, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("%w: marshal: %v", ErrEventPublishFailed, err)
	}
	if key == "" {
		key = event.ID
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(event.ID)},
			{Key: HeaderEventType, Value: []byte(eventType)},
			{Key: HeaderSource, Value: []byte(eventSource)},
		},
	}
	if err := w.WriteMessages(ctx, msg); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEventPublishFailed, err)
	}

	p.logger.Debug("Event published", map[string]interface{}{
		"eventId":   event.ID,
		"eventType": eventType,
	})
	return event.ID, nil
}

// Close closes both writers and joins their errors.
func (p *EventPublisher) Close() error {
	var errs []error
	for _, w := range []MessageWriter{p.generated, p.confirmed} {
		if w == nil {
			continue
		}
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

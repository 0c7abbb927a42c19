package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Svg70/crypto-booking/internal/domain"
	"github.com/Svg70/crypto-booking/pkg/kafka"
	"github.com/google/uuid"
)

// EventPublisher defines the interface for publishing engine events
type EventPublisher interface {
	// PublishEventCreated publishes an event created message
	PublishEventCreated(ctx context.Context, event *domain.Event) error

	// PublishEventUpdated publishes an event updated message
	PublishEventUpdated(ctx context.Context, event *domain.Event) error

	// PublishEventDeclined publishes an event declined message
	PublishEventDeclined(ctx context.Context, event *domain.Event) error

	// PublishPaymentSettled publishes a settlement message
	PublishPaymentSettled(ctx context.Context, settlement *domain.Settlement) error

	// Close closes the event publisher
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "booking.engine.events"
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "crypto-booking"
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "crypto-booking-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishEventCreated publishes an event created message
func (p *KafkaEventPublisher) PublishEventCreated(ctx context.Context, event *domain.Event) error {
	return p.publish(ctx, domain.EngineEventCreated, event, nil)
}

// PublishEventUpdated publishes an event updated message
func (p *KafkaEventPublisher) PublishEventUpdated(ctx context.Context, event *domain.Event) error {
	return p.publish(ctx, domain.EngineEventUpdated, event, nil)
}

// PublishEventDeclined publishes an event declined message
func (p *KafkaEventPublisher) PublishEventDeclined(ctx context.Context, event *domain.Event) error {
	return p.publish(ctx, domain.EngineEventDeclined, event, nil)
}

// PublishPaymentSettled publishes a settlement message
func (p *KafkaEventPublisher) PublishPaymentSettled(ctx context.Context, settlement *domain.Settlement) error {
	return p.publish(ctx, domain.EngineEventSettled, nil, settlement)
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

func (p *KafkaEventPublisher) publish(ctx context.Context, eventType domain.EngineEventType, event *domain.Event, settlement *domain.Settlement) error {
	messageID := uuid.New().String()
	msg := domain.NewEngineEvent(eventType, messageID, event, settlement)

	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal engine event: %w", err)
	}

	headers := map[string]string{
		"event_type":   string(eventType),
		"event_id":     messageID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	record := &kafka.Message{
		Topic:     p.topic,
		Key:       []byte(msg.Key()),
		Value:     value,
		Headers:   headers,
		Timestamp: time.Now(),
	}

	if err := p.producer.Produce(ctx, record); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// NoOpEventPublisher is a no-op implementation of EventPublisher
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

func (p *NoOpEventPublisher) PublishEventCreated(ctx context.Context, event *domain.Event) error {
	return nil
}

func (p *NoOpEventPublisher) PublishEventUpdated(ctx context.Context, event *domain.Event) error {
	return nil
}

func (p *NoOpEventPublisher) PublishEventDeclined(ctx context.Context, event *domain.Event) error {
	return nil
}

func (p *NoOpEventPublisher) PublishPaymentSettled(ctx context.Context, settlement *domain.Settlement) error {
	return nil
}

func (p *NoOpEventPublisher) Close() error {
	return nil
}

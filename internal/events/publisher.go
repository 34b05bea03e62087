package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const TopicQuestionsChanged = "questions.changed"

// QuestionEvent is published after question mutations and completed imports.
type QuestionEvent struct {
	Type       string    `json:"type"` // created, updated, deleted, imported
	QuestionID uint      `json:"question_id,omitempty"`
	Count      int       `json:"count,omitempty"`
	ActorID    uint      `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher publishes domain events. Publishing is fire-and-forget: failures
// are logged by callers and never fail the request.
type Publisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewPublisher builds a Kafka-backed publisher when brokers are configured,
// otherwise an in-process gochannel publisher.
func NewPublisher(brokers []string, logger *slog.Logger) (*Publisher, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if len(brokers) > 0 {
		pub, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		return &Publisher{publisher: pub, logger: logger}, nil
	}

	return &Publisher{
		publisher: gochannel.NewGoChannel(gochannel.Config{}, wmLogger),
		logger:    logger,
	}, nil
}

// PublishQuestionEvent publishes one event on the questions.changed topic.
func (p *Publisher) PublishQuestionEvent(event QuestionEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal question event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.publisher.Publish(TopicQuestionsChanged, msg); err != nil {
		return fmt.Errorf("failed to publish question event: %w", err)
	}

	return nil
}

// Close shuts the underlying publisher down.
func (p *Publisher) Close() error {
	return p.publisher.Close()
}

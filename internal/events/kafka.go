package events

import (
	"context"
	"errors"
	"fleet/config"
	"fleet/infras/kafka"
	waitlist "fleet/internal/domains/waitlist/service"
	"fleet/shared/failure"
	"fleet/shared/timezone"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

var errMissingCarID = errors.New("car availability event without car id")

type kafkaPublisher struct {
	client kafka.Client
	topic  string
}

func NewKafkaPublisher(client kafka.Client, topic string) Publisher {
	return &kafkaPublisher{
		client: client,
		topic:  topic,
	}
}

func (p *kafkaPublisher) CarAvailable(ctx context.Context, carID string) {
	event := CarAvailable{
		EventID:    uuid.NewString(),
		CarID:      carID,
		OccurredAt: timezone.Now(),
	}

	go func() {
		c := context.WithoutCancel(ctx)

		err := p.client.Publish(c, p.topic, kafka.Event{
			Key:   carID,
			Value: event,
			Headers: map[string]string{
				HeaderEventID:   event.EventID,
				HeaderEventType: EventTypeCarAvailable,
			},
		})
		if err != nil {
			log.Error().Err(err).Str("car_id", carID).Str("event_id", event.EventID).Msg("failed to publish car availability")

			return
		}

		log.Info().Str("car_id", carID).Str("event_id", event.EventID).Msg("published car availability")
	}()
}

// Consumer feeds availability events from Kafka into the waitlist cascade.
type Consumer struct {
	client   kafka.Client
	notifier waitlist.Notifier
	cfg      *config.Config
}

func NewConsumer(cfg *config.Config, client kafka.Client, notifier waitlist.Notifier) *Consumer {
	return &Consumer{
		client:   client,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Start blocks until ctx is done.
func (c *Consumer) Start(ctx context.Context) {
	log.Info().Str("topic", c.cfg.Kafka.Topics.CarAvailable).Str("group", c.cfg.Kafka.ConsumerGroup).Msg("starting availability consumer")

	c.client.Subscribe(ctx, c.cfg.Kafka.Topics.CarAvailable, c.Handle)
}

// Handle runs the cascade for one event. Malformed events and unknown cars are dropped so
// they do not block the partition.
func (c *Consumer) Handle(ctx context.Context, message kafkaGo.Message) error {
	if eventType := kafka.Header(message, HeaderEventType); eventType != "" && eventType != EventTypeCarAvailable {
		log.Warn().Str("event_type", eventType).Msg("ignoring unexpected event type")

		return nil
	}

	event, err := kafka.Decode[CarAvailable](message)
	if err != nil {
		log.Error().Err(err).Str("key", string(message.Key)).Msg("dropping malformed availability event")

		return nil
	}

	if event.CarID == "" {
		log.Error().Err(errMissingCarID).Str("event_id", event.EventID).Msg("dropping availability event")

		return nil
	}

	if _, err := c.notifier.NotifyWaiting(ctx, event.CarID); err != nil {
		if failure.Is(err, http.StatusNotFound) {
			log.Warn().Str("car_id", event.CarID).Msg("availability event for unknown car")

			return nil
		}

		return fmt.Errorf("failed to run waitlist cascade: %w", err)
	}

	return nil
}

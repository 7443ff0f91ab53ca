// Package events carries car availability transitions from the lifecycle and the
// reclaimer to the waitlist cascade without making either wait on it.
package events

//go:generate go run go.uber.org/mock/mockgen -source=./events.go -destination=./mocks/events_mock.go -package=mocks

import (
	"context"
	"fleet/config"
	"fleet/infras/kafka"
	waitlist "fleet/internal/domains/waitlist/service"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	EventTypeCarAvailable = "car.available"

	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
)

type CarAvailable struct {
	EventID    string    `json:"event_id"`
	CarID      string    `json:"car_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher announces that a car has become available. Publishing never fails the caller;
// delivery problems are logged.
type Publisher interface {
	CarAvailable(ctx context.Context, carID string)
}

// NewPublisher publishes through Kafka when it is enabled and runs the cascade in-process otherwise.
func NewPublisher(cfg *config.Config, client kafka.Client, notifier waitlist.Notifier) Publisher {
	if cfg.Kafka.Enable {
		log.Info().Str("topic", cfg.Kafka.Topics.CarAvailable).Msg("availability events go through Kafka")

		return NewKafkaPublisher(client, cfg.Kafka.Topics.CarAvailable)
	}

	log.Info().Msg("availability events run the waitlist cascade in-process")

	return NewLocalPublisher(notifier)
}

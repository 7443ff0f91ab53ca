package kafka

//go:generate go run go.uber.org/mock/mockgen -source=./kafka.go -destination=./mocks/kafka_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fleet/config"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// Event is an outgoing record. Value is encoded as JSON; events sharing a Key land on
// the same partition.
type Event struct {
	Key     string
	Value   any
	Headers map[string]string
}

func (e Event) encode() (kafkaGo.Message, error) {
	value, err := json.Marshal(e.Value)
	if err != nil {
		return kafkaGo.Message{}, fmt.Errorf("failed to encode event %q: %w", e.Key, err)
	}

	msg := kafkaGo.Message{Key: []byte(e.Key), Value: value}
	for key, header := range e.Headers {
		msg.Headers = append(msg.Headers, kafkaGo.Header{Key: key, Value: []byte(header)})
	}

	return msg, nil
}

// Decode unmarshals the JSON value of msg into T.
func Decode[T any](msg kafkaGo.Message) (T, error) {
	var value T

	if err := json.Unmarshal(msg.Value, &value); err != nil {
		return value, fmt.Errorf("failed to decode message %q: %w", msg.Key, err)
	}

	return value, nil
}

// Header returns the value of the named header, or an empty string.
func Header(msg kafkaGo.Message, key string) string {
	for _, header := range msg.Headers {
		if header.Key == key {
			return string(header.Value)
		}
	}

	return ""
}

type Handler func(ctx context.Context, message kafkaGo.Message) error

type Client interface {
	Publish(ctx context.Context, topic string, events ...Event) error
	Subscribe(ctx context.Context, topic string, handler Handler)
	Close() error
}

type kafkaClientImpl struct {
	brokers   []string
	group     string
	dialer    *kafkaGo.Dialer
	writers   map[string]*kafkaGo.Writer
	mu        sync.Mutex
	transport *kafkaGo.Transport
}

func New(cfg *config.Config) Client {
	client := &kafkaClientImpl{
		brokers:   cfg.Kafka.Brokers,
		group:     cfg.Kafka.ConsumerGroup,
		dialer:    &kafkaGo.Dialer{DualStack: true, Timeout: 10 * time.Second},
		writers:   map[string]*kafkaGo.Writer{},
		transport: &kafkaGo.Transport{},
	}

	if cfg.Kafka.SASL.Username != "" {
		mechanism := plain.Mechanism{Username: cfg.Kafka.SASL.Username, Password: cfg.Kafka.SASL.Password}
		client.dialer.SASLMechanism = mechanism
		client.transport.SASL = mechanism
	}

	log.Info().Strs("brokers", client.brokers).Bool("sasl", client.dialer.SASLMechanism != nil).Msg("Kafka client initialized")

	return client
}

// writer hands out one long-lived writer per topic.
func (k *kafkaClientImpl) writer(topic string) *kafkaGo.Writer {
	k.mu.Lock()
	defer k.mu.Unlock()

	if w, ok := k.writers[topic]; ok {
		return w
	}

	w := &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(k.brokers...),
		Topic:                  topic,
		Transport:              k.transport,
		Balancer:               &kafkaGo.Hash{},
		RequiredAcks:           kafkaGo.RequireAll,
		AllowAutoTopicCreation: true,
	}
	k.writers[topic] = w

	return w
}

func (k *kafkaClientImpl) Publish(ctx context.Context, topic string, events ...Event) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafkaGo.Message, 0, len(events))

	for _, event := range events {
		msg, err := event.encode()
		if err != nil {
			return err
		}

		msgs = append(msgs, msg)
	}

	if err := k.writer(topic).WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	log.Debug().Str("topic", topic).Int("count", len(msgs)).Msg("Published events")

	return nil
}

// Subscribe reads topic in the configured group until ctx is done. Messages are handled one
// at a time so events sharing a key keep their order, and an offset is committed only after
// its handler succeeded. Broker errors back off exponentially up to maxBackoff.
func (k *kafkaClientImpl) Subscribe(ctx context.Context, topic string, handler Handler) {
	if topic == "" {
		log.Error().Msg("Refusing to subscribe without a topic")

		return
	}

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:     k.brokers,
		Topic:       topic,
		GroupID:     k.group,
		Dialer:      k.dialer,
		StartOffset: kafkaGo.FirstOffset,
	})

	defer func() {
		if err := reader.Close(); err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("Failed to close Kafka reader")
		}
	}()

	logger := log.With().Str("topic", topic).Str("group", k.group).Logger()
	backoff := minBackoff

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				logger.Info().Msg("Subscription stopped")

				return
			}

			logger.Error().Err(err).Dur("backoff", backoff).Msg("Failed to fetch message")

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}

			backoff = min(backoff*2, maxBackoff)

			continue
		}

		backoff = minBackoff

		if err := handler(ctx, msg); err != nil {
			logger.Error().Err(err).Str("key", string(msg.Key)).Int64("offset", msg.Offset).Msg("Failed to handle message")

			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to commit offset")
		}
	}
}

// Close flushes and closes every writer opened by Publish.
func (k *kafkaClientImpl) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var errs []error

	for topic, w := range k.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close writer for %s: %w", topic, err))
		}

		delete(k.writers, topic)
	}

	return errors.Join(errs...)
}

package messaging

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Message is the envelope published for every outbox event.
type Message struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Consume subscribes to channel and feeds every message to handler until ctx
// is done. Handler errors are logged and do not stop consumption.
func Consume(ctx context.Context, broker Broker, channel string, logger *zerolog.Logger, handler func(context.Context, []byte) error) error {
	msgs, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			if err := handler(ctx, msg); err != nil {
				logger.Error().Err(err).Str("channel", channel).Msg("message handler failed")
			}
		}
	}()

	return nil
}

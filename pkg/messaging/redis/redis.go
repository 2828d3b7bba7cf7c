package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mzansicare/booking-api/pkg/circuitbreaker"
	"github.com/mzansicare/booking-api/pkg/messaging"
)

// subscribeBuffer bounds how far a slow consumer may fall behind before
// messages are dropped.
const subscribeBuffer = 100

type Config struct {
	URL          string
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
}

// RedisBroker implements messaging.Broker over Redis pub/sub. Publishes go
// through a circuit breaker so a dead Redis fails fast instead of stalling
// every booking request behind connection timeouts.
type RedisBroker struct {
	client *redis.Client
	cb     *circuitbreaker.CircuitBreaker
	logger *zerolog.Logger
}

func NewRedisBroker(config Config, logger *zerolog.Logger) (messaging.Broker, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.MaxRetries = config.MaxRetries
	opts.MinRetryBackoff = config.RetryBackoff
	opts.PoolSize = config.PoolSize
	opts.MinIdleConns = config.MinIdleConns

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisBroker{
		client: client,
		cb: circuitbreaker.New(circuitbreaker.Settings{
			Name:             "redis-broker",
			FailureThreshold: 5,
			Cooldown:         5 * time.Second,
		}),
		logger: logger,
	}, nil
}

func (b *RedisBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return b.cb.Execute(func() error {
		return b.client.Publish(ctx, channel, payload).Err()
	})
}

// Subscribe returns a channel of raw payloads for the given pub/sub channel.
// The channel closes when ctx is cancelled. Messages arriving while the
// buffer is full are dropped and logged; pub/sub gives no replay anyway.
func (b *RedisBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	pubsub := b.client.Subscribe(ctx, channel)

	// Fail now if the subscription itself is broken rather than on first read.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	out := make(chan []byte, subscribeBuffer)

	go func() {
		defer func() {
			pubsub.Close()
			close(out)
		}()

		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, redis.ErrClosed) {
					return
				}
				b.logger.Warn().Err(err).Str("channel", channel).Msg("pubsub receive failed")
				continue
			}

			select {
			case out <- []byte(msg.Payload):
			default:
				b.logger.Warn().Str("channel", channel).Msg("subscriber buffer full, dropping message")
			}
		}
	}()

	return out, nil
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}

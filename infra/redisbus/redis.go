package redisbus

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CrestNiraj12/fedtimeline/infra/logger"
)

// Connect opens a Redis client and pings it once.
func Connect(ctx context.Context, addr string, log logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	log.Info("connected to redis", logger.String("addr", addr))
	return client, nil
}

// RedisTransport implements Transport with Redis PUBLISH / SUBSCRIBE.
type RedisTransport struct {
	client *redis.Client
}

func NewRedisTransport(client *redis.Client) *RedisTransport {
	return &RedisTransport{client: client}
}

func (t *RedisTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := t.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", channel, err)
	}
	return nil
}

func (t *RedisTransport) Subscribe(ctx context.Context, channel string) (<-chan []byte, func() error, error) {
	ps := t.client.Subscribe(ctx, channel)
	// Wait for the subscription confirmation so no message published after
	// Subscribe returns is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("subscribing to %s: %w", channel, err)
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, ps.Close, nil
}

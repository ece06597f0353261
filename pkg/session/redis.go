package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type redisObserver struct {
	client  *redis.Client
	channel string
}

// NewRedisObserver publishes events on a redis channel so every replica of
// the service sees them.
func NewRedisObserver(client *redis.Client, channel string) Observer {
	return &redisObserver{client: client, channel: channel}
}

func (o *redisObserver) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal session event: %w", err)
	}
	if err = o.client.Publish(ctx, o.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish session event: %w", err)
	}
	return nil
}

func (o *redisObserver) Subscribe(ctx context.Context, fn func(Event)) (Subscription, error) {
	pubsub := o.client.Subscribe(ctx, o.channel)
	// Receive blocks until the subscription is confirmed, so no event
	// published after Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", o.channel, err)
	}

	var once sync.Once
	done := make(chan struct{})
	unsubscribe := func() {
		once.Do(func() {
			close(done)
			if err := pubsub.Close(); err != nil {
				logger.Warnf("session: close pubsub: %s", err.Error())
			}
		})
	}

	messages := pubsub.Channel()
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					logger.Warnf("session: discard malformed event: %s", err.Error())
					continue
				}
				fn(event)
			}
		}
	}()

	return subscriptionFunc(unsubscribe), nil
}

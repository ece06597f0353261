package session

import (
	"context"
	"fmt"
)

// SharedObserver holds a single subscription on an upstream observer and
// fans its events out to any number of in-process subscribers. Publish goes
// upstream only, so local subscribers see each event once.
type SharedObserver struct {
	upstream     Observer
	local        Observer
	subscription Subscription
}

func NewSharedObserver(ctx context.Context, upstream Observer) (*SharedObserver, error) {
	local := NewLocalObserver()
	subscription, err := upstream.Subscribe(ctx, func(event Event) {
		_ = local.Publish(ctx, event)
	})
	if err != nil {
		return nil, fmt.Errorf("shared observer: %w", err)
	}
	return &SharedObserver{upstream: upstream, local: local, subscription: subscription}, nil
}

func (o *SharedObserver) Publish(ctx context.Context, event Event) error {
	return o.upstream.Publish(ctx, event)
}

func (o *SharedObserver) Subscribe(ctx context.Context, fn func(Event)) (Subscription, error) {
	return o.local.Subscribe(ctx, fn)
}

// Close releases the upstream subscription. Local subscribers stay
// registered but receive nothing further.
func (o *SharedObserver) Close() {
	o.subscription.Unsubscribe()
}

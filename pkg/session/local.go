package session

import (
	"context"
	"sync"
)

type localObserver struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[int]func(Event)
}

// NewLocalObserver fans events out to subscribers of this process only.
func NewLocalObserver() Observer {
	return &localObserver{subscribers: make(map[int]func(Event))}
}

func (o *localObserver) Publish(_ context.Context, event Event) error {
	o.mu.RLock()
	fns := make([]func(Event), 0, len(o.subscribers))
	for _, fn := range o.subscribers {
		fns = append(fns, fn)
	}
	o.mu.RUnlock()

	for _, fn := range fns {
		fn(event)
	}
	return nil
}

func (o *localObserver) Subscribe(ctx context.Context, fn func(Event)) (Subscription, error) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subscribers[id] = fn
	o.mu.Unlock()

	var once sync.Once
	stop := make(chan struct{})
	unsubscribe := func() {
		once.Do(func() {
			close(stop)
			o.mu.Lock()
			delete(o.subscribers, id)
			o.mu.Unlock()
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-stop:
		}
	}()

	return subscriptionFunc(unsubscribe), nil
}

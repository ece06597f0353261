// Package session broadcasts sign-in and sign-out transitions so that
// long-lived connections can react to a user leaving.
package session

import (
	"context"
	"time"
)

type State string

const (
	SignedIn  State = "signed_in"
	SignedOut State = "signed_out"
)

type Event struct {
	UserID string    `json:"userId"`
	State  State     `json:"state"`
	At     time.Time `json:"at"`
}

type Subscription interface {
	// Unsubscribe stops delivery. It is safe to call more than once.
	Unsubscribe()
}

type Observer interface {
	Publish(ctx context.Context, event Event) error
	// Subscribe calls fn for every event published after it returns, until
	// ctx is done or the subscription is released.
	Subscribe(ctx context.Context, fn func(Event)) (Subscription, error)
}

type subscriptionFunc func()

func (f subscriptionFunc) Unsubscribe() {
	f()
}

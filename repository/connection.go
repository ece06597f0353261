package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
)

const (
	connectionCollection = "test"
	connectionDocument   = "connection-test"
)

// Connection round-trips a throwaway document to prove the store accepts
// writes with the configured credentials.
type Connection interface {
	Check(ctx context.Context) error
}

type connection struct {
	client *firestore.Client
}

func NewConnectionRepository(client *firestore.Client) Connection {
	return &connection{client: client}
}

func (r *connection) Check(ctx context.Context) error {
	ref := r.client.Collection(connectionCollection).Doc(connectionDocument)
	if _, err := ref.Set(ctx, map[string]any{"timestamp": firestore.ServerTimestamp}); err != nil {
		return fmt.Errorf("write %s: %w", ref.Path, err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", ref.Path, err)
	}
	return nil
}

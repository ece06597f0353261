package storage

import (
	"context"
	"errors"
)

var ErrObjectNotExist = errors.New("storage: object doesn't exist")

// Storage is a key-addressed blob store that hands back a durable download
// URL for each stored object.
type Storage interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) (downloadURL string, err error)
	Remove(ctx context.Context, objectName string) error
	Shutdown()
}

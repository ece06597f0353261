package service

import (
	"context"
	"fmt"

	"github.com/kinkando/photo-feed-service/model"
	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/kinkando/photo-feed-service/pkg/storage"
	"github.com/kinkando/photo-feed-service/repository"
	"github.com/sourcegraph/conc/pool"
)

const connectionTestObject = "test/connection-test.txt"

type Connectivity interface {
	CheckFirebase(ctx context.Context) error
}

type connectivity struct {
	connectionRepository repository.Connection
	storage              storage.Storage
}

func NewConnectivityService(connectionRepository repository.Connection, storage storage.Storage) Connectivity {
	return &connectivity{
		connectionRepository: connectionRepository,
		storage:              storage,
	}
}

// CheckFirebase round-trips a throwaway document and a throwaway blob.
func (s *connectivity) CheckFirebase(ctx context.Context) error {
	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		return s.connectionRepository.Check(ctx)
	})
	p.Go(func(ctx context.Context) error {
		return s.checkStorage(ctx)
	})

	if err := p.Wait(); err != nil {
		logger.Context(ctx).Error(err)
		return model.NewOperationError("connect to Firebase", err)
	}
	return nil
}

func (s *connectivity) checkStorage(ctx context.Context) error {
	if _, err := s.storage.Upload(ctx, connectionTestObject, []byte("connection test"), "text/plain"); err != nil {
		return fmt.Errorf("upload %s: %w", connectionTestObject, err)
	}
	if err := s.storage.Remove(ctx, connectionTestObject); err != nil {
		return fmt.Errorf("remove %s: %w", connectionTestObject, err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/kinkando/photo-feed-service/model"
	"github.com/kinkando/photo-feed-service/pkg/logger"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

const (
	fieldDisplayName     = "displayName"
	fieldEmail           = "email"
	fieldProfileImageURL = "profileImageURL"
	fieldCreatedAt       = "createdAt"
	fieldUpdatedAt       = "updatedAt"
)

type User interface {
	GetUser(ctx context.Context, userID string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	MergeUser(ctx context.Context, userID string, update model.UserUpdate) error
}

type user struct {
	client *firestore.Client
}

func NewUserRepository(client *firestore.Client) User {
	return &user{
		client: client,
	}
}

func (r *user) GetUser(ctx context.Context, userID string) (model.User, error) {
	doc, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		logger.Context(ctx).Error(err)
		return model.User{}, err
	}
	return toUser(doc.Ref.ID, doc.Data()), nil
}

// ListUsers reads the whole collection. There is no server-side text index,
// so name matching happens on the returned slice.
func (r *user) ListUsers(ctx context.Context) ([]model.User, error) {
	iter := r.client.Collection(usersCollection).Documents(ctx)
	defer iter.Stop()

	var users []model.User
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			logger.Context(ctx).Error(err)
			return nil, err
		}
		users = append(users, toUser(doc.Ref.ID, doc.Data()))
	}
	return users, nil
}

func (r *user) MergeUser(ctx context.Context, userID string, update model.UserUpdate) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Set(ctx, userUpdateFields(update), firestore.MergeAll)
	if err != nil {
		logger.Context(ctx).Error(err)
		return err
	}
	return nil
}

func toUser(id string, data map[string]any) model.User {
	u := model.User{ID: id}
	u.DisplayName, _ = data[fieldDisplayName].(string)
	u.Email, _ = data[fieldEmail].(string)
	if url, ok := data[fieldProfileImageURL].(string); ok {
		u.ProfileImageURL = &url
	}
	if t, ok := data[fieldCreatedAt].(time.Time); ok {
		u.CreatedAt = &t
	}
	if t, ok := data[fieldUpdatedAt].(time.Time); ok {
		u.UpdatedAt = &t
	}
	return u
}

func userUpdateFields(update model.UserUpdate) map[string]any {
	fields := map[string]any{
		fieldUpdatedAt: update.UpdatedAt,
	}
	if update.DisplayName != nil {
		fields[fieldDisplayName] = *update.DisplayName
	}
	if update.Email != nil {
		fields[fieldEmail] = *update.Email
	}
	if update.ClearProfileImage {
		fields[fieldProfileImageURL] = nil
	} else if update.ProfileImageURL != nil {
		fields[fieldProfileImageURL] = *update.ProfileImageURL
	}
	if update.CreatedAt != nil {
		fields[fieldCreatedAt] = *update.CreatedAt
	}
	return fields
}

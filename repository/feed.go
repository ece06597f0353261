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

const (
	feedCollection = "feed"
	fieldUserID    = "userId"
	fieldTimestamp = "timestamp"
)

type Feed interface {
	CreatePost(ctx context.Context, post model.FeedPost) (postID string, err error)
	GetPost(ctx context.Context, postID string) (model.FeedPost, error)
	DeletePost(ctx context.Context, postID string) error
	GetPosts(ctx context.Context, userID string) ([]model.FeedPost, error)
	GetAllPosts(ctx context.Context, paging model.Pagination) ([]model.FeedPost, error)
}

type feedDocument struct {
	UserID      string    `firestore:"userId"`
	ImageURL    string    `firestore:"imageURL"`
	Caption     string    `firestore:"caption"`
	Timestamp   time.Time `firestore:"timestamp,serverTimestamp"`
	StoragePath string    `firestore:"storagePath"`
}

type feed struct {
	client *firestore.Client
}

func NewFeedRepository(client *firestore.Client) Feed {
	return &feed{
		client: client,
	}
}

// CreatePost ignores post.Timestamp; the store stamps its own commit time.
func (r *feed) CreatePost(ctx context.Context, post model.FeedPost) (string, error) {
	ref, _, err := r.client.Collection(feedCollection).Add(ctx, feedDocument{
		UserID:      post.UserID,
		ImageURL:    post.ImageURL,
		Caption:     post.Caption,
		StoragePath: post.StoragePath,
	})
	if err != nil {
		logger.Context(ctx).Error(err)
		return "", err
	}
	return ref.ID, nil
}

func (r *feed) GetPost(ctx context.Context, postID string) (model.FeedPost, error) {
	doc, err := r.client.Collection(feedCollection).Doc(postID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return model.FeedPost{}, model.ErrPostNotFound
	}
	if err != nil {
		logger.Context(ctx).Error(err)
		return model.FeedPost{}, err
	}

	var data feedDocument
	if err = doc.DataTo(&data); err != nil {
		logger.Context(ctx).Error(err)
		return model.FeedPost{}, err
	}
	return toFeedPost(doc.Ref.ID, data), nil
}

func (r *feed) DeletePost(ctx context.Context, postID string) error {
	if _, err := r.client.Collection(feedCollection).Doc(postID).Delete(ctx); err != nil {
		logger.Context(ctx).Error(err)
		return err
	}
	return nil
}

func (r *feed) GetPosts(ctx context.Context, userID string) ([]model.FeedPost, error) {
	query := r.client.Collection(feedCollection).Where(fieldUserID, "==", userID)
	return r.getPosts(ctx, query)
}

func (r *feed) GetAllPosts(ctx context.Context, paging model.Pagination) ([]model.FeedPost, error) {
	query := r.client.Collection(feedCollection).
		OrderBy(fieldTimestamp, firestore.Desc).
		Offset(int(paging.Offset)).
		Limit(int(paging.Limit) + 1)
	return r.getPosts(ctx, query)
}

func (r *feed) getPosts(ctx context.Context, query firestore.Query) ([]model.FeedPost, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	posts := make([]model.FeedPost, 0)
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			logger.Context(ctx).Error(err)
			return nil, err
		}

		var data feedDocument
		if err = doc.DataTo(&data); err != nil {
			logger.Context(ctx).Error(err)
			return nil, err
		}
		posts = append(posts, toFeedPost(doc.Ref.ID, data))
	}
	return posts, nil
}

func toFeedPost(id string, data feedDocument) model.FeedPost {
	return model.FeedPost{
		ID:          id,
		UserID:      data.UserID,
		ImageURL:    data.ImageURL,
		Caption:     data.Caption,
		Timestamp:   data.Timestamp,
		StoragePath: data.StoragePath,
	}
}

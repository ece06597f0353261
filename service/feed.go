package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kinkando/photo-feed-service/config"
	"github.com/kinkando/photo-feed-service/model"
	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/kinkando/photo-feed-service/pkg/photo"
	"github.com/kinkando/photo-feed-service/pkg/profile"
	"github.com/kinkando/photo-feed-service/pkg/storage"
	"github.com/kinkando/photo-feed-service/repository"
)

type Feed interface {
	Upload(ctx context.Context, req model.UploadFeedImage) (model.UploadFeedImageResult, error)
	Delete(ctx context.Context, postID, storagePath string) error
	ListForUser(ctx context.Context, userID string) ([]model.Post, error)
	GetAllFeed(ctx context.Context, paging model.Pagination) (model.PagingWithMetadata[model.Post], error)
}

type feed struct {
	feedRepository repository.Feed
	storage        storage.Storage
	image          config.ImageConfig
	location       *time.Location
	now            func() time.Time
}

func NewFeedService(
	feedRepository repository.Feed,
	storage storage.Storage,
	image config.ImageConfig,
	location *time.Location,
) Feed {
	return &feed{
		feedRepository: feedRepository,
		storage:        storage,
		image:          image,
		location:       location,
		now:            time.Now,
	}
}

// Upload stores the normalised image and then records the post. The two
// writes are not atomic: a failed record leaves the blob behind.
func (s *feed) Upload(ctx context.Context, req model.UploadFeedImage) (model.UploadFeedImageResult, error) {
	if req.UserID == "" {
		return model.UploadFeedImageResult{}, model.NewUnauthenticatedError("No authenticated user", "Please sign in first")
	}

	data, err := photo.FitJPEG(req.Image, s.image.MaxEdge, s.image.Quality)
	if err != nil {
		logger.Context(ctx).Warn(err)
		return model.UploadFeedImageResult{}, model.NewValidationError("Please select a valid image")
	}

	storagePath := feedImageKey(req.UserID, s.now())
	imageURL, err := s.storage.Upload(ctx, storagePath, data, model.ContentTypeJPEG)
	if err != nil {
		logger.Context(ctx).Error(err)
		return model.UploadFeedImageResult{}, model.NewOperationError("publish image", err)
	}

	postID, err := s.feedRepository.CreatePost(ctx, model.FeedPost{
		UserID:      req.UserID,
		ImageURL:    imageURL,
		Caption:     req.Caption,
		StoragePath: storagePath,
	})
	if err != nil {
		logger.Context(ctx).Warnf("orphaned blob %s: %s", storagePath, err.Error())
		return model.UploadFeedImageResult{}, model.NewOperationError("publish image", err)
	}

	return model.UploadFeedImageResult{
		ImageURL:    imageURL,
		PostID:      postID,
		StoragePath: storagePath,
	}, nil
}

// Delete removes the blob first. If that fails the post is left in place and
// the error is returned without retrying. Only the owner may delete a post,
// and storagePath must be the one recorded on it.
func (s *feed) Delete(ctx context.Context, postID, storagePath string) error {
	userProfile, err := profile.UseProfile(ctx)
	if err != nil {
		return model.NewUnauthenticatedError("No authenticated user", "Please sign in first")
	}

	if !strings.HasPrefix(storagePath, feedImagePrefix(userProfile.UserID)) {
		logger.Context(ctx).Warnf("delete %s: %s", storagePath, model.ErrResourceNotAllowed.Error())
		return model.NewForbiddenError(model.ErrResourceNotAllowed)
	}

	post, err := s.feedRepository.GetPost(ctx, postID)
	if errors.Is(err, model.ErrPostNotFound) {
		return model.NewNotFoundError(err, "Post not found")
	}
	if err != nil {
		logger.Context(ctx).Error(err)
		return model.NewOperationError("delete image", err)
	}
	if post.UserID != userProfile.UserID || post.StoragePath != storagePath {
		logger.Context(ctx).Warnf("delete post %s: %s", postID, model.ErrResourceNotAllowed.Error())
		return model.NewForbiddenError(model.ErrResourceNotAllowed)
	}

	if err = s.storage.Remove(ctx, storagePath); err != nil {
		logger.Context(ctx).Error(err)
		return model.NewOperationError("delete image", err)
	}

	if err = s.feedRepository.DeletePost(ctx, postID); err != nil {
		logger.Context(ctx).Error(err)
		return model.NewOperationError("delete image", err)
	}
	return nil
}

func (s *feed) ListForUser(ctx context.Context, userID string) ([]model.Post, error) {
	feedPosts, err := s.feedRepository.GetPosts(ctx, userID)
	if err != nil {
		logger.Context(ctx).Error(err)
		return nil, model.NewOperationError("load feed", err)
	}

	posts := make([]model.Post, 0, len(feedPosts))
	for _, feedPost := range feedPosts {
		posts = append(posts, toPost(feedPost, s.location))
	}
	sortByDisplayTime(posts, s.location)
	return posts, nil
}

func (s *feed) GetAllFeed(ctx context.Context, paging model.Pagination) (model.PagingWithMetadata[model.Post], error) {
	paging.AssignDefault()

	feedPosts, err := s.feedRepository.GetAllPosts(ctx, paging)
	if err != nil {
		logger.Context(ctx).Error(err)
		return model.PagingWithMetadata[model.Post]{}, model.NewOperationError("load feed", err)
	}

	posts := make([]model.Post, 0, len(feedPosts))
	for _, feedPost := range feedPosts {
		posts = append(posts, toPost(feedPost, s.location))
	}
	return model.PaginationResponse(posts, paging), nil
}

func toPost(post model.FeedPost, location *time.Location) model.Post {
	return model.Post{
		ID:          post.ID,
		UserID:      post.UserID,
		ImageURL:    post.ImageURL,
		Caption:     post.Caption,
		Timestamp:   post.Timestamp.In(location).Format(model.DisplayTimeLayout),
		StoragePath: post.StoragePath,
	}
}

// sortByDisplayTime orders posts newest first by re-parsing the display
// string, so posts within the same second keep their store order.
// TODO: sort on FeedPost.Timestamp; the display string drops sub-second precision.
func sortByDisplayTime(posts []model.Post, location *time.Location) {
	parsed := make(map[string]time.Time, len(posts))
	for _, post := range posts {
		t, err := time.ParseInLocation(model.DisplayTimeLayout, post.Timestamp, location)
		if err != nil {
			t = time.Time{}
		}
		parsed[post.Timestamp] = t
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return parsed[posts[i].Timestamp].After(parsed[posts[j].Timestamp])
	})
}

func feedImagePrefix(userID string) string {
	return fmt.Sprintf("%s/%s/", model.FeedImageDirectory, userID)
}

func feedImageKey(userID string, at time.Time) string {
	return fmt.Sprintf("%s%d%s", feedImagePrefix(userID), at.UnixMilli(), model.ImageExtension)
}

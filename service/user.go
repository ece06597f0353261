package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kinkando/photo-feed-service/config"
	"github.com/kinkando/photo-feed-service/model"
	"github.com/kinkando/photo-feed-service/pkg/google"
	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/kinkando/photo-feed-service/pkg/photo"
	"github.com/kinkando/photo-feed-service/pkg/profile"
	"github.com/kinkando/photo-feed-service/pkg/storage"
	"github.com/kinkando/photo-feed-service/pkg/util"
	"github.com/kinkando/photo-feed-service/repository"
	"github.com/sourcegraph/conc/pool"
)

const syncUsersConcurrency = 10

type User interface {
	SyncCurrentUser(ctx context.Context) (model.User, error)
	SyncIdentity(ctx context.Context, identity model.Identity) error
	SyncAllUsers(ctx context.Context) (model.SyncUsersResult, error)
	GetProfile(ctx context.Context, userID string) (model.User, error)
	UploadProfileImage(ctx context.Context, image []byte) (string, error)
	DeleteProfileImage(ctx context.Context) error
}

type user struct {
	userRepository repository.User
	identity       google.Identity
	storage        storage.Storage
	image          config.ImageConfig
	now            func() time.Time
}

func NewUserService(
	userRepository repository.User,
	identity google.Identity,
	storage storage.Storage,
	image config.ImageConfig,
) User {
	return &user{
		userRepository: userRepository,
		identity:       identity,
		storage:        storage,
		image:          image,
		now:            time.Now,
	}
}

func (s *user) SyncCurrentUser(ctx context.Context) (model.User, error) {
	userProfile, err := profile.UseProfile(ctx)
	if err != nil {
		return model.User{}, model.NewUnauthenticatedError("No authenticated user", "Please sign in first")
	}

	identity, err := s.identity.GetUser(ctx, userProfile.UserID)
	if err != nil {
		logger.Context(ctx).Error(err)
		return model.User{}, model.NewOperationError("sync user", err)
	}

	if err = s.SyncIdentity(ctx, identity); err != nil {
		return model.User{}, err
	}

	return s.GetProfile(ctx, userProfile.UserID)
}

// SyncIdentity merges the provider's view of an account into users/{id}.
// createdAt is only stamped for a first session and never overwritten, so
// repeated calls only move updatedAt forward.
func (s *user) SyncIdentity(ctx context.Context, identity model.Identity) error {
	if identity.UID == "" {
		return model.NewUnauthenticatedError("No authenticated user", "Please sign in first")
	}

	displayName := identity.DisplayName
	if displayName == "" {
		displayName = model.UnknownDisplayName
	}

	now := s.now()
	update := model.UserUpdate{
		DisplayName: &displayName,
		Email:       &identity.Email,
		UpdatedAt:   now,
	}

	if identity.IsFirstSession() {
		existing, err := s.userRepository.GetUser(ctx, identity.UID)
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			update.CreatedAt = &now
		case err != nil:
			logger.Context(ctx).Error(err)
			return model.NewOperationError("sync user", err)
		case existing.CreatedAt == nil:
			update.CreatedAt = &now
		}
	}

	if err := s.userRepository.MergeUser(ctx, identity.UID, update); err != nil {
		logger.Context(ctx).Error(err)
		return model.NewOperationError("sync user", err)
	}
	return nil
}

func (s *user) SyncAllUsers(ctx context.Context) (model.SyncUsersResult, error) {
	if _, err := profile.UseAdminProfile(ctx); err != nil {
		return model.SyncUsersResult{}, model.NewForbiddenError(err)
	}

	identities, err := s.identity.ListUsers(ctx)
	if err != nil {
		logger.Context(ctx).Error(err)
		return model.SyncUsersResult{}, model.NewOperationError("list users", err)
	}

	var synced, failed atomic.Uint64
	p := pool.New().WithMaxGoroutines(syncUsersConcurrency)
	for _, identity := range identities {
		identity := identity
		p.Go(func() {
			if err := s.SyncIdentity(ctx, identity); err != nil {
				logger.Context(ctx).Warnf("sync user %s: %s", identity.UID, err.Error())
				failed.Add(1)
				return
			}
			synced.Add(1)
		})
	}
	p.Wait()

	result := model.SyncUsersResult{
		TotalUser:   uint64(len(identities)),
		TotalSynced: synced.Load(),
		TotalFailed: failed.Load(),
	}
	logger.Context(ctx).Infof("sync users: %+v", result)
	return result, nil
}

func (s *user) GetProfile(ctx context.Context, userID string) (model.User, error) {
	if _, err := profile.UseProfile(ctx); err != nil {
		return model.User{}, model.NewUnauthenticatedError("No authenticated user", "Please sign in first")
	}

	user, err := s.userRepository.GetUser(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, model.NewNotFoundError(err, "User profile not found")
	}
	if err != nil {
		logger.Context(ctx).Error(err)
		return model.User{}, model.NewOperationError("get user profile", err)
	}
	return user, nil
}

func (s *user) UploadProfileImage(ctx context.Context, image []byte) (string, error) {
	userProfile, err := profile.UseProfile(ctx)
	if err != nil {
		return "", model.NewUnauthenticatedError("No authenticated user", "Please sign in first")
	}

	data, err := photo.SquareJPEG(image, s.image.ProfileEdge, s.image.Quality)
	if err != nil {
		logger.Context(ctx).Warn(err)
		return "", model.NewValidationError("Please select a valid image")
	}

	key := profileImageKey(userProfile.UserID)
	imageURL, err := s.storage.Upload(ctx, key, data, model.ContentTypeJPEG)
	if err != nil {
		logger.Context(ctx).Error(err)
		return "", model.NewOperationError("upload profile image", err)
	}

	err = s.userRepository.MergeUser(ctx, userProfile.UserID, model.UserUpdate{
		ProfileImageURL: util.Pointer(imageURL),
		UpdatedAt:       s.now(),
	})
	if err != nil {
		logger.Context(ctx).Error(err)
		return "", model.NewOperationError("upload profile image", err)
	}

	return imageURL, nil
}

func (s *user) DeleteProfileImage(ctx context.Context) error {
	userProfile, err := profile.UseProfile(ctx)
	if err != nil {
		return model.NewUnauthenticatedError("No authenticated user", "Please sign in first")
	}

	err = s.storage.Remove(ctx, profileImageKey(userProfile.UserID))
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		logger.Context(ctx).Error(err)
		return model.NewOperationError("delete profile image", err)
	}

	err = s.userRepository.MergeUser(ctx, userProfile.UserID, model.UserUpdate{
		ClearProfileImage: true,
		UpdatedAt:         s.now(),
	})
	if err != nil {
		logger.Context(ctx).Error(err)
		return model.NewOperationError("delete profile image", err)
	}
	return nil
}

func profileImageKey(userID string) string {
	return fmt.Sprintf("%s/%s/%s", model.ProfileImageDirectory, userID, model.ProfileImageName)
}

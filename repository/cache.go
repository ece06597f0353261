package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/kinkando/photo-feed-service/pkg/profile"
	goredis "github.com/redis/go-redis/v9"
)

type Cache interface {
	CreateAccessToken(ctx context.Context, accessToken profile.AccessToken) error
	CreateRefreshToken(ctx context.Context, refreshToken profile.RefreshToken) error
	ExistsToken(ctx context.Context, tokenType profile.TokenType, role profile.Role, userID, sessionID string) (bool, error)
	DeleteToken(ctx context.Context, tokenType profile.TokenType, role profile.Role, userID, sessionID string) error
	Ping(ctx context.Context) error
}

type cache struct {
	db                     *goredis.Client
	accessTokenExpireTime  time.Duration
	refreshTokenExpireTime time.Duration
}

func NewCacheRepository(client *goredis.Client, accessTokenExpireTime, refreshTokenExpireTime time.Duration) Cache {
	return &cache{
		db:                     client,
		accessTokenExpireTime:  accessTokenExpireTime,
		refreshTokenExpireTime: refreshTokenExpireTime,
	}
}

func (r *cache) CreateAccessToken(ctx context.Context, accessToken profile.AccessToken) error {
	key := profile.TokenKey(profile.Access, accessToken.Role, accessToken.UserID, accessToken.SessionID)
	value := fmt.Sprintf("%d:%d", accessToken.IssuedAt, accessToken.ExpiresAt)
	if err := r.db.Set(ctx, key, value, r.accessTokenExpireTime).Err(); err != nil {
		logger.Context(ctx).Error(err)
		return err
	}
	return nil
}

func (r *cache) CreateRefreshToken(ctx context.Context, refreshToken profile.RefreshToken) error {
	key := profile.TokenKey(profile.Refresh, refreshToken.Role, refreshToken.UserID, refreshToken.SessionID)
	value := fmt.Sprintf("%d:%d", refreshToken.IssuedAt, refreshToken.ExpiresAt)
	if err := r.db.Set(ctx, key, value, r.refreshTokenExpireTime).Err(); err != nil {
		logger.Context(ctx).Error(err)
		return err
	}
	return nil
}

func (r *cache) ExistsToken(ctx context.Context, tokenType profile.TokenType, role profile.Role, userID, sessionID string) (bool, error) {
	n, err := r.db.Exists(ctx, profile.TokenKey(tokenType, role, userID, sessionID)).Result()
	if err != nil {
		logger.Context(ctx).Error(err)
		return false, err
	}
	return n > 0, nil
}

func (r *cache) DeleteToken(ctx context.Context, tokenType profile.TokenType, role profile.Role, userID, sessionID string) error {
	if err := r.db.Del(ctx, profile.TokenKey(tokenType, role, userID, sessionID)).Err(); err != nil {
		logger.Context(ctx).Error(err)
		return err
	}
	return nil
}

func (r *cache) Ping(ctx context.Context) error {
	return r.db.Ping(ctx).Err()
}

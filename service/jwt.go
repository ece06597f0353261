package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/kinkando/photo-feed-service/pkg/generator"
	"github.com/kinkando/photo-feed-service/pkg/profile"
	"github.com/mitchellh/mapstructure"
)

type JWTService interface {
	EncodeJWT(ctx context.Context, user profile.Profile) (profile.AccessToken, profile.RefreshToken)
	SignedJWT(ctx context.Context, claims jwt.Claims) (string, error)
	DecodeAccessToken(ctx context.Context, token string) (profile.AccessToken, error)
	DecodeRefreshToken(ctx context.Context, token string) (profile.RefreshToken, error)
}

type jwtService struct {
	jwtSecretKey           string
	accessTokenExpireTime  time.Duration
	refreshTokenExpireTime time.Duration
	now                    func() time.Time
}

func NewJWTService(jwtSecretKey string, accessTokenExpireTime, refreshTokenExpireTime time.Duration) JWTService {
	return &jwtService{
		jwtSecretKey:           jwtSecretKey,
		accessTokenExpireTime:  accessTokenExpireTime,
		refreshTokenExpireTime: refreshTokenExpireTime,
		now:                    time.Now,
	}
}

// EncodeJWT builds an access/refresh pair sharing one fresh session id.
func (s *jwtService) EncodeJWT(_ context.Context, user profile.Profile) (profile.AccessToken, profile.RefreshToken) {
	now := s.now()
	sessionID := generator.UUID()

	accessToken := profile.AccessToken{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(s.accessTokenExpireTime).Unix(),
			IssuedAt:  now.Unix(),
		},
		UserID:    user.UserID,
		Email:     user.Email,
		SessionID: sessionID,
		Role:      user.Role,
		Type:      profile.Access,
	}

	refreshToken := profile.RefreshToken{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(s.refreshTokenExpireTime).Unix(),
			IssuedAt:  now.Unix(),
		},
		UserID:    user.UserID,
		Email:     user.Email,
		SessionID: sessionID,
		Role:      user.Role,
		Type:      profile.Refresh,
	}
	return accessToken, refreshToken
}

func (s *jwtService) SignedJWT(_ context.Context, claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecretKey))
}

func (s *jwtService) DecodeAccessToken(_ context.Context, token string) (accessToken profile.AccessToken, err error) {
	claims, err := s.decodeJWT(token)
	if err != nil {
		return
	}

	if err = mapstructure.Decode(claims, &accessToken); err != nil {
		return profile.AccessToken{}, fmt.Errorf("invalid token structure: %w", err)
	}
	if accessToken.Type != profile.Access {
		return profile.AccessToken{}, errors.New("token is not an access token")
	}
	return accessToken, nil
}

func (s *jwtService) DecodeRefreshToken(_ context.Context, token string) (refreshToken profile.RefreshToken, err error) {
	claims, err := s.decodeJWT(token)
	if err != nil {
		return
	}

	if err = mapstructure.Decode(claims, &refreshToken); err != nil {
		return profile.RefreshToken{}, fmt.Errorf("invalid token structure: %w", err)
	}
	if refreshToken.Type != profile.Refresh {
		return profile.RefreshToken{}, errors.New("token is not a refresh token")
	}
	return refreshToken, nil
}

func (s *jwtService) decodeJWT(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse jwt: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("invalid jwt")
	}
	return claims, nil
}

package httpmiddleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/kinkando/photo-feed-service/pkg/profile"
	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/redis/go-redis/v9"
)

const (
	bearerPrefix       = "Bearer "
	unauthorizedReason = "Please sign in first"
)

// NewProfileProvider resolves the bearer access token into a profile on the
// request context. A token is only accepted while its session key is still
// present in redis, so sign-out takes effect immediately. Requests matching
// one of skipMethodURLs ("METHOD /path") pass through untouched.
func NewProfileProvider(jwtSecret string, client *redis.Client, skipMethodURLs ...string) echo.MiddlewareFunc {
	skip := make(map[string]struct{}, len(skipMethodURLs))
	for _, methodURL := range skipMethodURLs {
		skip[methodURL] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := req.Context()

			if _, ok := skip[req.Method+" "+req.URL.Path]; ok {
				return next(c)
			}

			tokenString := strings.TrimPrefix(req.Header.Get(echo.HeaderAuthorization), bearerPrefix)
			accessToken, err := extractAccessToken(tokenString, jwtSecret)
			if err != nil {
				return reject(c, http.StatusUnauthorized, err, unauthorizedReason)
			}

			if client != nil {
				key := profile.TokenKey(profile.Access, accessToken.Role, accessToken.UserID, accessToken.SessionID)
				n, err := client.Exists(ctx, key).Result()
				if err != nil {
					logger.Context(ctx).Error(err)
					return reject(c, http.StatusUnauthorized, err, unauthorizedReason)
				}
				if n == 0 {
					return reject(c, http.StatusUnauthorized, errors.New("access token is not found"), unauthorizedReason)
				}
			}

			ctx = profile.WithProfile(ctx, accessToken.Profile())
			ctx = logger.WithUserID(ctx, accessToken.UserID)
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}

func extractAccessToken(tokenString string, jwtSecret string) (profile.AccessToken, error) {
	if tokenString == "" {
		return profile.AccessToken{}, errors.New("missing bearer token")
	}

	token, err := new(jwt.Parser).Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return profile.AccessToken{}, fmt.Errorf("invalid JWT token: %w", err)
	}
	if !token.Valid {
		return profile.AccessToken{}, errors.New("invalid JWT token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return profile.AccessToken{}, errors.New("unable to map token to map claims")
	}

	var accessToken profile.AccessToken
	if err = mapstructure.Decode(claims, &accessToken); err != nil {
		return profile.AccessToken{}, fmt.Errorf("invalid token structure: %w", err)
	}
	if accessToken.Type != profile.Access {
		return profile.AccessToken{}, errors.New("unable to use refresh token")
	}
	if accessToken.UserID == "" {
		return profile.AccessToken{}, errors.New("token has no subject")
	}

	return accessToken, nil
}

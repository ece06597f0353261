package httpmiddleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/labstack/echo/v4"
)

const apiKeyHeader = "X-API-Key"

var errInvalidAPIKey = errors.New("api key is not found")

// ApiKey guards routes that run before a user has a session. An empty
// apiKey disables the check.
func ApiKey(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if apiKey == "" {
				return next(c)
			}

			given := c.Request().Header.Get(apiKeyHeader)
			if subtle.ConstantTimeCompare([]byte(given), []byte(apiKey)) != 1 {
				logger.Context(c.Request().Context()).Warn(errInvalidAPIKey)
				return reject(c, http.StatusUnauthorized, errInvalidAPIKey, "Invalid API key")
			}

			return next(c)
		}
	}
}

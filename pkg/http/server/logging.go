package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	responseLogKey = "httpserver.response"
	redactedValue  = "[REDACTED]"
)

// requestLogger writes one line when a request arrives and one when it
// completes. Probes and websocket upgrades are not logged.
func (hs *httpServer) requestLogger() echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return HealthCheckSkipper(c) || WebSocketSkipper(c)
		},
		BeforeNextFunc: func(c echo.Context) {
			req := c.Request()
			request := map[string]any{"headers": hs.redactor.headers(req.Header)}
			if query := req.URL.Query(); len(query) != 0 {
				request["query"] = query
			}
			if payload, ok := hs.readJSONBody(req); ok {
				request["payload"] = payload
			}
			logger.Context(req.Context()).With(zap.Any("request", request)).Infof("handling %s %s", req.Method, req.URL.Path)
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []any{
				zap.String("method", v.Method),
				zap.String("url", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("userAgent", v.UserAgent),
			}
			if response := c.Get(responseLogKey); response != nil {
				fields = append(fields, zap.Any("response", response))
			}
			if v.Error != nil && !errors.Is(v.Error, http.ErrBodyNotAllowed) {
				fields = append(fields, zap.Error(v.Error))
			}

			logger.Context(c.Request().Context()).With(fields...).Infof("handled %s %s %d %s", v.Method, c.Request().URL.Path, v.Status, v.Latency)
			return nil
		},
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogError:     true,
		LogUserAgent: true,
	})
}

// responseRecorder keeps a redacted copy of JSON responses to non-GET
// requests for requestLogger. Feed listings and image bodies are left out.
func (hs *httpServer) responseRecorder() echo.MiddlewareFunc {
	return echomiddleware.BodyDumpWithConfig(echomiddleware.BodyDumpConfig{
		Skipper: func(c echo.Context) bool {
			return WebSocketSkipper(c) || c.Request().Method == http.MethodGet
		},
		Handler: func(c echo.Context, _, resBody []byte) {
			response := map[string]any{"headers": hs.redactor.headers(c.Response().Header())}
			if strings.HasPrefix(c.Response().Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
				var data any
				if err := json.Unmarshal(resBody, &data); err == nil && data != nil {
					response["data"] = hs.redactor.value(data)
				}
			}
			c.Set(responseLogKey, response)
		},
	})
}

func (hs *httpServer) readJSONBody(req *http.Request) (any, bool) {
	if req.Body == nil || !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return nil, false
	}
	body, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return nil, false
	}

	var payload any
	if err = json.Unmarshal(body, &payload); err != nil || payload == nil {
		return nil, false
	}
	return hs.redactor.value(payload), true
}

// redactor holds lower-cased keys whose values never reach the logs.
type redactor map[string]struct{}

func newRedactor(keys ...string) redactor {
	r := make(redactor, len(keys))
	for _, key := range keys {
		r.add(key)
	}
	return r
}

func (r redactor) add(key string) {
	r[strings.ToLower(key)] = struct{}{}
}

func (r redactor) masked(key string) bool {
	_, ok := r[strings.ToLower(key)]
	return ok
}

func (r redactor) headers(header http.Header) map[string]any {
	out := make(map[string]any, len(header))
	for key, values := range header {
		switch {
		case r.masked(key):
			out[key] = redactedValue
		case len(values) == 1:
			out[key] = values[0]
		default:
			out[key] = values
		}
	}
	return out
}

// value walks decoded JSON and masks matching object keys at any depth.
func (r redactor) value(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for key, inner := range v {
			if r.masked(key) {
				v[key] = redactedValue
				continue
			}
			v[key] = r.value(inner)
		}
		return v
	case []any:
		for i := range v {
			v[i] = r.value(v[i])
		}
		return v
	default:
		return v
	}
}

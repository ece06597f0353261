package httpserver

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// HTTPServer owns the echo instance and its lifecycle.
type HTTPServer interface {
	ListenAndServe()
	GracefulShutdown()
	Routers() *echo.Echo
}

type Option interface {
	apply(*httpServer)
}

type optionFunc func(*httpServer)

func (o optionFunc) apply(hs *httpServer) {
	o(hs)
}

func WithPort(port int) Option {
	return optionFunc(func(hs *httpServer) {
		hs.port = port
	})
}

// WithMiddlewares appends middlewares after the built-in ones, in order.
func WithMiddlewares(middlewares ...echo.MiddlewareFunc) Option {
	return optionFunc(func(hs *httpServer) {
		hs.middlewares = append(hs.middlewares, middlewares...)
	})
}

// WithRedactedFields masks the given JSON keys wherever they appear in logged
// payloads. Header names are matched case-insensitively.
func WithRedactedFields(fields ...string) Option {
	return optionFunc(func(hs *httpServer) {
		for _, field := range fields {
			hs.redactor.add(field)
		}
	})
}

// WithCORSOrigins restricts cross-origin requests; an empty list allows any origin.
func WithCORSOrigins(origins ...string) Option {
	return optionFunc(func(hs *httpServer) {
		hs.allowOrigins = origins
	})
}

func WithShutdownTimeout(timeout time.Duration) Option {
	return optionFunc(func(hs *httpServer) {
		hs.shutdownTimeout = timeout
	})
}

type httpServer struct {
	port            int
	router          *echo.Echo
	middlewares     []echo.MiddlewareFunc
	redactor        redactor
	allowOrigins    []string
	shutdownTimeout time.Duration
}

func New(options ...Option) HTTPServer {
	hs := &httpServer{
		port:            3000,
		redactor:        newRedactor(echo.HeaderAuthorization, "X-Api-Key", echo.HeaderCookie),
		shutdownTimeout: 10 * time.Second,
	}
	for _, o := range options {
		o.apply(hs)
	}
	if len(hs.allowOrigins) == 0 {
		hs.allowOrigins = []string{"*"}
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: hs.allowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-API-Key"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete},
	}))
	e.Use(echomiddleware.GzipWithConfig(echomiddleware.GzipConfig{Level: 6, Skipper: WebSocketSkipper}))
	e.Use(echomiddleware.RemoveTrailingSlash())
	e.Use(hs.requestLogger())
	e.Use(hs.responseRecorder())
	e.Use(hs.middlewares...)

	hs.router = e
	return hs
}

func (hs *httpServer) ListenAndServe() {
	go func() {
		err := hs.router.Start(":" + strconv.Itoa(hs.port))
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("httpserver: listen at port %d: %s", hs.port, err.Error())
		}
	}()
}

// GracefulShutdown blocks until SIGINT or SIGTERM, then drains in-flight
// requests for at most the shutdown timeout.
func (hs *httpServer) GracefulShutdown() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("httpserver: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), hs.shutdownTimeout)
	defer cancel()
	if err := hs.router.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("httpserver: shutdown: %s", err.Error())
		return
	}
	logger.Info("httpserver: stopped")
}

func (hs *httpServer) Routers() *echo.Echo {
	return hs.router
}

// HealthCheckSkipper matches liveness and readiness probes.
func HealthCheckSkipper(c echo.Context) bool {
	req := c.Request()
	return req.Method == http.MethodGet && (req.URL.Path == "/livez" || strings.HasPrefix(req.URL.Path, "/readyz"))
}

// WebSocketSkipper matches upgrade requests, whose response writer must not
// be wrapped.
func WebSocketSkipper(c echo.Context) bool {
	return strings.EqualFold(c.Request().Header.Get(echo.HeaderUpgrade), "websocket")
}

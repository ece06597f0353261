package http

import (
	"context"
	"net/http"
	"time"

	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/kinkando/photo-feed-service/repository"
	"github.com/kinkando/photo-feed-service/service"
	"github.com/labstack/echo/v4"
)

const readinessTimeout = 10 * time.Second

type HealthzHandler struct {
	cacheRepository     repository.Cache
	connectivityService service.Connectivity
}

func NewHealthzHandler(e *echo.Echo, cacheRepository repository.Cache, connectivityService service.Connectivity) {
	handler := HealthzHandler{cacheRepository: cacheRepository, connectivityService: connectivityService}

	e.GET("/livez", handler.Livez)
	e.GET("/readyz", handler.Readyz)
	e.GET("/readyz/firebase", handler.ReadyzFirebase)
}

func (h *HealthzHandler) Livez(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *HealthzHandler) Readyz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	if err := h.cacheRepository.Ping(ctx); err != nil {
		logger.Context(ctx).Error(err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"success": false, "error": err.Error()})
	}

	return c.NoContent(http.StatusOK)
}

// ReadyzFirebase writes and removes a probe document and blob, so it is kept
// off the default readiness route.
func (h *HealthzHandler) ReadyzFirebase(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	if err := h.connectivityService.CheckFirebase(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"success": false, "error": err.Error()})
	}

	return success(c, http.StatusOK, echo.Map{"message": "Firebase connection successful"})
}

package http

import (
	"context"
	"net/http"

	httpmiddleware "github.com/kinkando/photo-feed-service/pkg/http/middleware"
	"github.com/kinkando/photo-feed-service/service"
	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	userService service.User
}

func NewAdminHandler(e *echo.Echo, userService service.User) {
	handler := &AdminHandler{
		userService: userService,
	}

	route := e.Group("/admin", httpmiddleware.AdminProfile)
	route.POST("/users/sync", handler.syncUsers)
}

// syncUsers backfills users/{id} for every identity, e.g. accounts created
// before profile sync ran on sign-in.
func (h *AdminHandler) syncUsers(c echo.Context) error {
	result, err := h.userService.SyncAllUsers(context.WithoutCancel(c.Request().Context()))
	if err != nil {
		return failure(c, err)
	}

	return success(c, http.StatusOK, echo.Map{"result": result})
}

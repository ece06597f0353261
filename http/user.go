package http

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/kinkando/photo-feed-service/model"
	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/kinkando/photo-feed-service/pkg/profile"
	"github.com/kinkando/photo-feed-service/service"
	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	userService   service.User
	feedService   service.Feed
	validate      *validator.Validate
	maxUploadSize int64
}

func NewUserHandler(e *echo.Echo, validate *validator.Validate, maxUploadSize int64, userService service.User, feedService service.Feed) {
	handler := &UserHandler{
		userService:   userService,
		feedService:   feedService,
		validate:      validate,
		maxUploadSize: maxUploadSize,
	}

	me := e.Group("/user")
	me.GET("", handler.getMe)
	me.POST("/sync", handler.syncMe)
	me.PUT("/profile-image", handler.uploadProfileImage)
	me.DELETE("/profile-image", handler.deleteProfileImage)

	users := e.Group("/users")
	users.GET("/:userID", handler.getUser)
	users.GET("/:userID/feed", handler.getUserFeed)
}

func (h *UserHandler) getMe(c echo.Context) error {
	ctx := c.Request().Context()

	userProfile, err := profile.UseProfile(ctx)
	if err != nil {
		return failure(c, model.NewUnauthenticatedError(err.Error(), "Please sign in first"))
	}

	user, err := h.userService.GetProfile(ctx, userProfile.UserID)
	if err != nil {
		return failure(c, err)
	}

	return success(c, http.StatusOK, echo.Map{"user": user})
}

func (h *UserHandler) syncMe(c echo.Context) error {
	user, err := h.userService.SyncCurrentUser(c.Request().Context())
	if err != nil {
		return failure(c, err)
	}

	return success(c, http.StatusOK, echo.Map{"user": user})
}

func (h *UserHandler) uploadProfileImage(c echo.Context) error {
	ctx := c.Request().Context()

	image, err := readImage(c, "image", h.maxUploadSize)
	if err != nil {
		logger.Context(ctx).Warn(err)
		return failure(c, err)
	}

	imageURL, err := h.userService.UploadProfileImage(context.WithoutCancel(ctx), image)
	if err != nil {
		return failure(c, err)
	}

	return success(c, http.StatusOK, echo.Map{"profileImageURL": imageURL, "message": model.MessageProfileImageUploaded})
}

func (h *UserHandler) deleteProfileImage(c echo.Context) error {
	if err := h.userService.DeleteProfileImage(context.WithoutCancel(c.Request().Context())); err != nil {
		return failure(c, err)
	}

	return success(c, http.StatusOK, echo.Map{"message": model.MessageProfileImageDeleted})
}

func (h *UserHandler) getUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req model.UserRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		logger.Context(ctx).Warn(err)
		return failure(c, model.NewValidationError(err.Error()))
	}

	user, err := h.userService.GetProfile(ctx, req.UserID)
	if err != nil {
		return failure(c, err)
	}

	return success(c, http.StatusOK, echo.Map{"user": user})
}

func (h *UserHandler) getUserFeed(c echo.Context) error {
	ctx := c.Request().Context()

	var req model.UserRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		logger.Context(ctx).Warn(err)
		return failure(c, model.NewValidationError(err.Error()))
	}

	posts, err := h.feedService.ListForUser(ctx, req.UserID)
	if err != nil {
		return failure(c, err)
	}

	return success(c, http.StatusOK, echo.Map{"posts": posts})
}

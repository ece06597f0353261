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

type FeedHandler struct {
	feedService   service.Feed
	validate      *validator.Validate
	maxUploadSize int64
}

func NewFeedHandler(e *echo.Echo, validate *validator.Validate, maxUploadSize int64, feedService service.Feed) {
	handler := &FeedHandler{
		feedService:   feedService,
		validate:      validate,
		maxUploadSize: maxUploadSize,
	}

	route := e.Group("/feed")
	route.GET("", handler.getMyFeed)
	route.GET("/all", handler.getAllFeed)
	route.POST("", handler.uploadImage)
	route.DELETE("/:postID", handler.deleteImage)
}

func (h *FeedHandler) getMyFeed(c echo.Context) error {
	ctx := c.Request().Context()

	userProfile, err := profile.UseProfile(ctx)
	if err != nil {
		return failure(c, model.NewUnauthenticatedError(err.Error(), "Please sign in first"))
	}

	posts, err := h.feedService.ListForUser(ctx, userProfile.UserID)
	if err != nil {
		return failure(c, err)
	}

	return success(c, http.StatusOK, echo.Map{"posts": posts})
}

func (h *FeedHandler) getAllFeed(c echo.Context) error {
	var paging model.Pagination
	if err := c.Bind(&paging); err != nil {
		return bindError(c, err)
	}

	page, err := h.feedService.GetAllFeed(c.Request().Context(), paging)
	if err != nil {
		return failure(c, err)
	}

	return success(c, http.StatusOK, echo.Map{"posts": page.Data, "metadata": page.Metadata})
}

// uploadImage runs to completion even if the client goes away.
func (h *FeedHandler) uploadImage(c echo.Context) error {
	ctx := c.Request().Context()

	userProfile, err := profile.UseProfile(ctx)
	if err != nil {
		return failure(c, model.NewUnauthenticatedError(err.Error(), "Please sign in first"))
	}

	var req model.UploadFeedImageRequest
	if err = c.Bind(&req); err != nil {
		return bindError(c, err)
	}
	if err = h.validate.Struct(req); err != nil {
		logger.Context(ctx).Warn(err)
		return failure(c, model.NewValidationError("Caption is too long"))
	}

	image, err := readImage(c, "image", h.maxUploadSize)
	if err != nil {
		logger.Context(ctx).Warn(err)
		return failure(c, err)
	}

	result, err := h.feedService.Upload(context.WithoutCancel(ctx), model.UploadFeedImage{
		UserID:  userProfile.UserID,
		Image:   image,
		Caption: req.Caption,
	})
	if err != nil {
		return failure(c, err)
	}

	return success(c, http.StatusCreated, echo.Map{
		"imageURL":    result.ImageURL,
		"postId":      result.PostID,
		"storagePath": result.StoragePath,
		"message":     model.MessageImagePublished,
	})
}

func (h *FeedHandler) deleteImage(c echo.Context) error {
	ctx := c.Request().Context()

	var req model.DeleteFeedImageRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		logger.Context(ctx).Warn(err)
		return failure(c, model.NewValidationError("storagePath is required"))
	}

	if err := h.feedService.Delete(context.WithoutCancel(ctx), req.PostID, req.StoragePath); err != nil {
		return failure(c, err)
	}

	return success(c, http.StatusOK, echo.Map{"message": model.MessageImageDeleted})
}

package http

import (
	"errors"
	"net/http"

	"github.com/kinkando/photo-feed-service/model"
	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/kinkando/photo-feed-service/pkg/photo"
	"github.com/labstack/echo/v4"
)

var errorStatus = map[model.ErrorKind]int{
	model.ValidationError:      http.StatusBadRequest,
	model.AuthenticationError:  http.StatusBadRequest,
	model.UnauthenticatedError: http.StatusUnauthorized,
	model.ForbiddenError:       http.StatusForbidden,
	model.NotFoundError:        http.StatusNotFound,
	model.OperationError:       http.StatusInternalServerError,
}

func success(c echo.Context, status int, payload echo.Map) error {
	body := echo.Map{"success": true}
	for key, value := range payload {
		body[key] = value
	}
	return c.JSON(status, body)
}

func failure(c echo.Context, err error) error {
	e := model.AsError(err)
	status, ok := errorStatus[e.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, echo.Map{"success": false, "error": errorCode(e), "message": e.Message})
}

// errorCode is the provider code for identity failures and the error kind
// for everything else.
func errorCode(e *model.Error) string {
	var identityErr *model.IdentityError
	if errors.As(e, &identityErr) {
		return identityErr.Code
	}
	return string(e.Kind)
}

func bindError(c echo.Context, err error) error {
	logger.Context(c.Request().Context()).Warn(err)
	return failure(c, model.NewValidationError("Invalid request"))
}

func readImage(c echo.Context, field string, maxSize int64) ([]byte, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, model.NewValidationError("Please select an image")
	}
	if fileHeader.Size > maxSize {
		return nil, model.NewValidationError("Image is too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, model.NewOperationError("read image", err)
	}
	defer file.Close()

	data, err := photo.ReadAll(file, maxSize)
	switch {
	case errors.Is(err, photo.ErrImageTooLarge):
		return nil, model.NewValidationError("Image is too large")
	case errors.Is(err, photo.ErrEmptyImage):
		return nil, model.NewValidationError("Please select an image")
	case err != nil:
		return nil, model.NewOperationError("read image", err)
	}
	return data, nil
}

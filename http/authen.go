package http

import (
	"net/http"
	"strings"

	"github.com/kinkando/photo-feed-service/model"
	httpmiddleware "github.com/kinkando/photo-feed-service/pkg/http/middleware"
	"github.com/kinkando/photo-feed-service/service"
	"github.com/labstack/echo/v4"
)

type AuthenHandler struct {
	authenService service.Authen
}

// NewAuthenHandler registers the account routes. Credential forms are
// validated by the service so the client gets the form-level wording.
func NewAuthenHandler(e *echo.Echo, apiKey string, authenService service.Authen) {
	handler := &AuthenHandler{
		authenService: authenService,
	}

	route := e.Group("/auth")
	route.POST("/signup", handler.signUp, httpmiddleware.ApiKey(apiKey))
	route.POST("/signin", handler.signIn, httpmiddleware.ApiKey(apiKey))
	route.POST("/password/reset", handler.resetPassword, httpmiddleware.ApiKey(apiKey))
	route.POST("/token/refresh", handler.refreshToken, httpmiddleware.ApiKey(apiKey))
	route.POST("/signout", handler.signOut)
}

func (h *AuthenHandler) signUp(c echo.Context) error {
	var req model.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	result, err := h.authenService.SignUp(c.Request().Context(), req)
	if err != nil {
		return failure(c, err)
	}

	return success(c, http.StatusCreated, echo.Map{"user": result.User, "token": result.Token, "message": result.Message})
}

func (h *AuthenHandler) signIn(c echo.Context) error {
	var req model.SignInRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	result, err := h.authenService.SignIn(c.Request().Context(), req)
	if err != nil {
		return failure(c, err)
	}

	return success(c, http.StatusOK, echo.Map{"user": result.User, "token": result.Token, "message": result.Message})
}

func (h *AuthenHandler) resetPassword(c echo.Context) error {
	var req model.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	if err := h.authenService.ResetPassword(c.Request().Context(), req); err != nil {
		return failure(c, err)
	}

	return success(c, http.StatusOK, echo.Map{"message": model.MessagePasswordResetSent})
}

func (h *AuthenHandler) refreshToken(c echo.Context) error {
	var req model.RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	token, err := h.authenService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return failure(c, err)
	}

	return success(c, http.StatusOK, echo.Map{"token": token})
}

func (h *AuthenHandler) signOut(c echo.Context) error {
	accessToken := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")

	if err := h.authenService.SignOut(c.Request().Context(), accessToken); err != nil {
		return failure(c, err)
	}

	return success(c, http.StatusOK, echo.Map{"message": model.MessageSignedOut})
}

package httpmiddleware

import (
	"errors"
	"net/http"
	"slices"

	"github.com/kinkando/photo-feed-service/pkg/profile"
	"github.com/labstack/echo/v4"
)

var errRoleNotAllowed = errors.New("role not allowed")

// RequireRole lets a request through only when the signed-in profile holds
// one of roles. A missing profile is 401, a wrong role is 403.
func RequireRole(roles ...profile.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := profile.UseProfile(c.Request().Context())
			if err != nil {
				return reject(c, http.StatusUnauthorized, err, unauthorizedReason)
			}
			if !slices.Contains(roles, p.Role) {
				return reject(c, http.StatusForbidden, errRoleNotAllowed, "You are not allowed to access this resource.")
			}
			return next(c)
		}
	}
}

var AdminProfile = RequireRole(profile.Admin)

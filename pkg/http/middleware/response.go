package httpmiddleware

import "github.com/labstack/echo/v4"

func reject(c echo.Context, status int, err error, message string) error {
	return c.JSON(status, echo.Map{"success": false, "error": err.Error(), "message": message})
}

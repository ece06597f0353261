package httpmiddleware

import (
	"github.com/kinkando/photo-feed-service/pkg/generator"
	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/labstack/echo/v4"
)

const requestIDHeader = echo.HeaderXRequestID

func RequestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, res := c.Request(), c.Response()
		requestID := req.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = generator.UUID()
		}
		res.Header().Set(requestIDHeader, requestID)
		c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), requestID)))
		return next(c)
	}
}

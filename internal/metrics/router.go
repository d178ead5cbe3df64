package metrics

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
)

func ConfigureRouter(handler *echo.Echo) {
	handler.GET("/metrics", echoprometheus.NewHandler())
}

// RequestMiddleware records request count and latency for the API server.
func RequestMiddleware(subsystem string) echo.MiddlewareFunc {
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem: subsystem,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/stream" && c.Request().Method == "GET"
		},
	})
}

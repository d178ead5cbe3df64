package httpv1

import (
	"github.com/Egor213/LogiStream/internal/metrics"
	"github.com/Egor213/LogiStream/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type RouterOptions struct {
	// Debug adds error causes to 500 responses.
	Debug bool
	// MetricsSubsystem enables request metrics when not empty.
	MetricsSubsystem string
}

func ConfigureRouter(handler *echo.Echo, services *service.Services, opts RouterOptions) {
	handler.Use(middleware.Recover())
	if opts.MetricsSubsystem != "" {
		handler.Use(metrics.RequestMiddleware(opts.MetricsSubsystem))
	}

	api := handler.Group("/api")
	newStreamRoutes(api.Group("/stream"), services.Stream, services.Log)
	newLogRoutes(api.Group("/logs"), services.Log, services.Takeout, opts.Debug)
	newExportRoutes(api.Group("/export"), services.Takeout, opts.Debug)
	newNotificationRoutes(api.Group("/notifications"), services.Notification, opts.Debug)
}

package httpv1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Egor213/LogiStream/internal/activity"
	"github.com/Egor213/LogiStream/internal/controller/http/validators"
	"github.com/Egor213/LogiStream/internal/service"
	"github.com/labstack/echo/v4"
)

const actionCleanup = "cleanup"

type exportRoutes struct {
	takeout *service.TakeoutService
	debug   bool
}

func newExportRoutes(g *echo.Group, takeout *service.TakeoutService, debug bool) {
	r := &exportRoutes{takeout: takeout, debug: debug}

	g.GET("", r.export)
	g.POST("", r.action)
}

type actionRequest struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type cleanupResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Result  service.CleanupResult `json:"result"`
}

func (r *exportRoutes) export(c echo.Context) error {
	raw := c.QueryParam("format")
	if raw == "" {
		raw = string(service.FormatJSON)
	}
	format, err := service.ParseFormat(raw)
	if err != nil {
		return badRequest(c, err)
	}

	doc, err := r.takeout.ExportSnapshot(c.Request().Context(), format, true)
	if err != nil {
		message := "Failed to generate takeout data"
		if errors.Is(err, activity.ErrNotConfigured) {
			message = "Activity source is not configured"
		}
		return internalError(c, message, err, r.debug)
	}

	if c.QueryParam("compress") == "gzip" {
		if doc, err = service.Compress(doc); err != nil {
			return internalError(c, "Failed to generate takeout data", err, r.debug)
		}
	}

	return attachment(c, doc)
}

func (r *exportRoutes) action(c echo.Context) error {
	var req actionRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return badRequest(c, validators.ErrMalformedBody)
	}

	switch req.Action {
	case actionCleanup:
		res, err := r.takeout.Cleanup(c.Request().Context())
		if err != nil {
			return internalError(c, "Failed to process request", err, r.debug)
		}
		return c.JSON(http.StatusOK, cleanupResponse{Success: true, Message: "Cleanup completed", Result: res})
	default:
		return badRequest(c, fmt.Errorf("%w: %q", service.ErrUnknownAction, req.Action))
	}
}

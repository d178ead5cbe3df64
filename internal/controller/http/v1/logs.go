package httpv1

import (
	"encoding/json"
	"net/http"

	logginghelper "github.com/Egor213/LogiStream/internal/controller/common/logging"
	"github.com/Egor213/LogiStream/internal/controller/http/validators"
	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/Egor213/LogiStream/internal/repo/repotypes"
	"github.com/Egor213/LogiStream/internal/service"
	"github.com/labstack/echo/v4"
)

type logRoutes struct {
	logs    *service.LogService
	takeout *service.TakeoutService
	debug   bool
}

func newLogRoutes(g *echo.Group, logs *service.LogService, takeout *service.TakeoutService, debug bool) {
	r := &logRoutes{logs: logs, takeout: takeout, debug: debug}

	g.GET("", r.list)
	g.POST("", r.ingest)
	g.DELETE("", r.clear)
}

type logsResponse struct {
	Logs  []domain.LogEntry `json:"logs"`
	Stats domain.LogStats   `json:"stats"`
}

type clientLogRequest struct {
	Level    domain.Level        `json:"level"`
	Message  string              `json:"message"`
	Data     json.RawMessage     `json:"data,omitempty"`
	Metadata *domain.LogMetadata `json:"metadata,omitempty"`
}

type clientLogResponse struct {
	Success bool            `json:"success"`
	Log     domain.LogEntry `json:"log"`
}

func (r *logRoutes) list(c echo.Context) error {
	if raw := c.QueryParam("format"); raw != "" {
		format, err := service.ParseFormat(raw)
		if err != nil {
			return badRequest(c, err)
		}
		doc, err := r.takeout.ExportSnapshot(c.Request().Context(), format, false)
		if err != nil {
			return internalError(c, "Failed to export logs", err, r.debug)
		}
		return attachment(c, doc)
	}

	filter, err := parseLogFilter(c)
	if err != nil {
		return badRequest(c, err)
	}

	return c.JSON(http.StatusOK, logsResponse{
		Logs:  r.logs.GetLogs(filter),
		Stats: r.logs.GetStats(),
	})
}

func (r *logRoutes) ingest(c echo.Context) error {
	var req clientLogRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return badRequest(c, validators.ErrMalformedBody)
	}
	if err := validators.ValidateClientLog(req.Level, req.Message); err != nil {
		return badRequest(c, err)
	}
	logginghelper.LogReceived(c, "client log")

	md := req.Metadata
	if md == nil {
		md = &domain.LogMetadata{}
	}
	if md.UserAgent == "" {
		md.UserAgent = c.Request().UserAgent()
	}
	if md.IP == "" {
		md.IP = c.RealIP()
	}

	var data any
	if len(req.Data) > 0 {
		data = req.Data
	}
	entry := r.logs.IngestClientLog(req.Level, req.Message, data, md)

	return c.JSON(http.StatusCreated, clientLogResponse{Success: true, Log: entry})
}

func (r *logRoutes) clear(c echo.Context) error {
	if c.QueryParam("confirm") != "true" {
		return badRequest(c, validators.ErrConfirmationRequired)
	}

	r.logs.Clear()

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Logs cleared"})
}

func parseLogFilter(c echo.Context) (repotypes.LogFilter, error) {
	var (
		f   repotypes.LogFilter
		err error
	)

	if f.Limit, err = validators.ParseLimit(c.QueryParam("limit")); err != nil {
		return f, err
	}
	if f.Levels, err = validators.ParseLevels(c.QueryParam("level")); err != nil {
		return f, err
	}
	if f.Source, err = validators.ParseSource(c.QueryParam("source")); err != nil {
		return f, err
	}
	if f.Since, err = validators.ParseSince(c.QueryParam("since")); err != nil {
		return f, err
	}
	f.Endpoint = c.QueryParam("endpoint")

	return f, nil
}

package httpv1

import (
	"encoding/json"
	"fmt"
	"net/http"

	logginghelper "github.com/Egor213/LogiStream/internal/controller/common/logging"
	"github.com/Egor213/LogiStream/internal/controller/http/validators"
	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/Egor213/LogiStream/internal/service"
	"github.com/labstack/echo/v4"
)

type streamRoutes struct {
	stream *service.StreamService
	logs   *service.LogService
}

func newStreamRoutes(g *echo.Group, stream *service.StreamService, logs *service.LogService) {
	r := &streamRoutes{stream: stream, logs: logs}

	g.GET("", r.open)
	g.POST("", r.broadcast)
	g.DELETE("", r.close)
}

type broadcastRequest struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type broadcastResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	BroadcastCount int    `json:"broadcastCount"`
}

func (r *streamRoutes) open(c echo.Context) error {
	req := c.Request()
	userAgent := req.UserAgent()
	if userAgent == "" {
		userAgent = "unknown"
	}

	conn := r.stream.Open(req.Context(), service.ClientInfo{
		Endpoint:  req.URL.Path,
		UserAgent: userAgent,
		IP:        c.RealIP(),
	})

	resp := c.Response()
	h := resp.Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set("X-Connection-Id", conn.ID)
	h.Set(echo.HeaderAccessControlAllowOrigin, "*")
	h.Set(echo.HeaderAccessControlAllowHeaders, "Cache-Control")
	resp.WriteHeader(http.StatusOK)

	if err := r.stream.Serve(conn, resp); err != nil {
		logginghelper.LogError(c, err)
	}
	return nil
}

func (r *streamRoutes) broadcast(c echo.Context) error {
	var req broadcastRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return badRequest(c, validators.ErrInvalidBroadcast)
	}
	logginghelper.LogReceived(c, "broadcast request")

	r.logs.AddLog(domain.LevelInfo, "Received SSE broadcast request", req, &domain.LogMetadata{
		Endpoint: c.Request().URL.Path,
	})

	var n *domain.Notification
	if len(req.Data) > 0 {
		if err := json.Unmarshal(req.Data, &n); err != nil {
			return badRequest(c, validators.ErrInvalidBroadcast)
		}
	}
	if err := validators.ValidateBroadcast(req.Type, n); err != nil {
		return badRequest(c, err)
	}

	count := r.stream.Broadcast(req.Data)

	return c.JSON(http.StatusOK, broadcastResponse{
		Success:        true,
		Message:        fmt.Sprintf("Broadcasted to %d connections", count),
		BroadcastCount: count,
	})
}

func (r *streamRoutes) close(c echo.Context) error {
	id := c.QueryParam("connectionId")
	if id == "" {
		return badRequest(c, validators.ErrConnectionIDRequired)
	}

	msg := fmt.Sprintf("Connection %s closed", id)
	if !r.stream.Close(id) {
		msg = fmt.Sprintf("Connection %s is not open", id)
	}

	return c.JSON(http.StatusOK, messageResponse{
		Success: true,
		Message: msg,
	})
}

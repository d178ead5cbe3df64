package httpv1

import (
	"fmt"
	"net/http"

	logginghelper "github.com/Egor213/LogiStream/internal/controller/common/logging"
	"github.com/Egor213/LogiStream/internal/service"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func badRequest(c echo.Context, err error) error {
	logginghelper.LogRejected(c, err)
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func notFound(c echo.Context, err error) error {
	logginghelper.LogRejected(c, err)
	return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
}

// internalError hides the cause from clients unless debug is on.
func internalError(c echo.Context, message string, err error, debug bool) error {
	logginghelper.LogError(c, err)
	resp := errorResponse{Error: message}
	if debug {
		resp.Details = err.Error()
	}
	return c.JSON(http.StatusInternalServerError, resp)
}

func attachment(c echo.Context, doc service.Document) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.Filename))
	return c.Blob(http.StatusOK, doc.ContentType, doc.Body)
}

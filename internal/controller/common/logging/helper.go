package logginghelper

import (
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

func fields(c echo.Context) log.Fields {
	return log.Fields{
		"method": c.Request().Method,
		"path":   c.Path(),
		"ip":     c.RealIP(),
	}
}

func LogReceived(c echo.Context, what string) {
	log.WithFields(fields(c)).Debugf("Received %s", what)
}

func LogRejected(c echo.Context, err error) {
	log.WithFields(fields(c)).WithError(err).Warn("Request rejected")
}

func LogError(c echo.Context, err error) {
	log.WithFields(fields(c)).WithError(err).Error("Request failed")
}

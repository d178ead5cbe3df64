package logger

import (
	"fmt"
	"path"
	"runtime"

	"github.com/Egor213/LogiStream/internal/domain"
	log "github.com/sirupsen/logrus"
)

func SetupLogger(level string) {
	loggerLevel, err := log.ParseLevel(level)
	log.SetReportCaller(true)

	log.SetFormatter(&log.JSONFormatter{
		CallerPrettyfier: func(frame *runtime.Frame) (function string, file string) {
			return "", fmt.Sprintf("%s:%d", path.Base(frame.File), frame.Line)
		},
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err != nil {
		log.Infof("Level setup default INFO, err: %v", err)
		log.SetLevel(log.InfoLevel)
	} else {
		log.SetLevel(loggerLevel)
	}
}

// MirrorEntry writes a stored log entry to the process log sink.
func MirrorEntry(entry domain.LogEntry) {
	fields := log.Fields{
		"log_id":    entry.ID,
		"source":    entry.Source,
		"log_level": entry.Level,
	}
	if md := entry.Metadata; md != nil {
		if md.ConnectionID != "" {
			fields["connection_id"] = md.ConnectionID
		}
		if md.Endpoint != "" {
			fields["endpoint"] = md.Endpoint
		}
		if md.EventID != "" {
			fields["event_id"] = md.EventID
		}
	}
	if len(entry.Data) > 0 {
		fields["data"] = string(entry.Data)
	}

	log.WithFields(fields).Log(LevelFor(entry.Level), entry.Message)
}

func LevelFor(level domain.Level) log.Level {
	switch level {
	case domain.LevelError:
		return log.ErrorLevel
	case domain.LevelWarn:
		return log.WarnLevel
	case domain.LevelDebug:
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}

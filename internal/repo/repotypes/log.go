package repotypes

import (
	"time"

	"github.com/Egor213/LogiStream/internal/domain"
)

// LogFilter predicates are AND-combined; zero values disable a predicate.
type LogFilter struct {
	Levels   []domain.Level
	Source   domain.Source
	Since    time.Time
	Endpoint string
	Limit    int
}

func (f LogFilter) Match(e domain.LogEntry) bool {
	if len(f.Levels) > 0 && !containsLevel(f.Levels, e.Level) {
		return false
	}
	if f.Source != "" && e.Source != f.Source {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	if f.Endpoint != "" && e.Endpoint() != f.Endpoint {
		return false
	}
	return true
}

func containsLevel(levels []domain.Level, l domain.Level) bool {
	for _, v := range levels {
		if v == l {
			return true
		}
	}
	return false
}

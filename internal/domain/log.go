package domain

import (
	"encoding/json"
	"slices"
	"time"
)

type Level string

const (
	LevelInfo       Level = "info"
	LevelWarn       Level = "warn"
	LevelError      Level = "error"
	LevelSuccess    Level = "success"
	LevelDebug      Level = "debug"
	LevelConnection Level = "connection"
)

var Levels = []Level{LevelInfo, LevelWarn, LevelError, LevelSuccess, LevelDebug, LevelConnection}

func (l Level) Valid() bool {
	for _, v := range Levels {
		if v == l {
			return true
		}
	}
	return false
}

type Source string

const (
	SourceClient Source = "client"
	SourceServer Source = "server"
)

func (s Source) Valid() bool {
	return s == SourceClient || s == SourceServer
}

type LogMetadata struct {
	ConnectionID string `json:"connectionId,omitempty"`
	EventID      string `json:"eventId,omitempty"`
	RetryCount   *int   `json:"retryCount,omitempty"`
	Latency      *int64 `json:"latency,omitempty"`
	Endpoint     string `json:"endpoint,omitempty"`
	UserAgent    string `json:"userAgent,omitempty"`
	IP           string `json:"ip,omitempty"`
	Internal     bool   `json:"internal,omitempty"`
}

// LogEntry is immutable once stored. Data is kept as raw JSON so the store
// never has to know its shape.
type LogEntry struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Level     Level           `json:"level"`
	Source    Source          `json:"source"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Metadata  *LogMetadata    `json:"metadata,omitempty"`
}

// Clone returns a copy that shares no memory with e.
func (e LogEntry) Clone() LogEntry {
	e.Data = slices.Clone(e.Data)
	if e.Metadata != nil {
		md := *e.Metadata
		if md.RetryCount != nil {
			n := *md.RetryCount
			md.RetryCount = &n
		}
		if md.Latency != nil {
			n := *md.Latency
			md.Latency = &n
		}
		e.Metadata = &md
	}
	return e
}

func (e LogEntry) Endpoint() string {
	if e.Metadata == nil {
		return ""
	}
	return e.Metadata.Endpoint
}

type LogStats struct {
	TotalLogs    int            `json:"totalLogs"`
	LevelCounts  map[Level]int  `json:"levelCounts"`
	SourceCounts map[Source]int `json:"sourceCounts"`
	Connections  int            `json:"connections"`
	OldestLog    *time.Time     `json:"oldestLog,omitempty"`
	NewestLog    *time.Time     `json:"newestLog,omitempty"`
}

package domain

import "time"

type ConnectionMetrics struct {
	ConnectedAt         time.Time  `json:"connectedAt"`
	DisconnectedAt      *time.Time `json:"disconnectedAt,omitempty"`
	RetryCount          int        `json:"retryCount"`
	TotalEventsReceived int        `json:"totalEventsReceived"`
	LastEventTime       *time.Time `json:"lastEventTime,omitempty"`
	ErrorCount          int        `json:"errorCount"`
	LastActivity        time.Time  `json:"lastActivity"`
}

// MetricsUpdate is a partial update: nil fields are left untouched.
type MetricsUpdate struct {
	ConnectedAt         *time.Time
	DisconnectedAt      *time.Time
	RetryCount          *int
	TotalEventsReceived *int
	LastEventTime       *time.Time
	ErrorCount          *int
	LastActivity        *time.Time
}

func (m ConnectionMetrics) Merge(u MetricsUpdate) ConnectionMetrics {
	if u.ConnectedAt != nil {
		m.ConnectedAt = *u.ConnectedAt
	}
	if u.DisconnectedAt != nil {
		t := *u.DisconnectedAt
		m.DisconnectedAt = &t
	}
	if u.RetryCount != nil {
		m.RetryCount = *u.RetryCount
	}
	if u.TotalEventsReceived != nil {
		m.TotalEventsReceived = *u.TotalEventsReceived
	}
	if u.LastEventTime != nil {
		t := *u.LastEventTime
		m.LastEventTime = &t
	}
	if u.ErrorCount != nil {
		m.ErrorCount = *u.ErrorCount
	}
	if u.LastActivity != nil {
		m.LastActivity = *u.LastActivity
	}
	return m
}

// IdleSince reports the last moment the connection was seen alive.
func (m ConnectionMetrics) IdleSince() time.Time {
	if m.LastActivity.After(m.ConnectedAt) {
		return m.LastActivity
	}
	return m.ConnectedAt
}

type StreamEvent struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Source    Source    `json:"source"`
	Broadcast bool      `json:"broadcast,omitempty"`
}

const (
	EventTypeMessage   = "message"
	EventTypeBroadcast = "broadcast"
)

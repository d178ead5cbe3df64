package domain

import (
	"encoding/json"
	"time"
)

type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

type PushSubscription struct {
	ID             string    `json:"id" db:"id"`
	Endpoint       string    `json:"endpoint" db:"endpoint"`
	ExpirationTime *int64    `json:"expirationTime" db:"expiration_time"`
	Keys           PushKeys  `json:"keys" db:"-"`
	UserAgent      string    `json:"userAgent,omitempty" db:"user_agent"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

func (s PushSubscription) Expired(now time.Time) bool {
	return s.ExpirationTime != nil && *s.ExpirationTime < now.UnixMilli()
}

type Notification struct {
	Title string          `json:"title"`
	Body  string          `json:"body"`
	Icon  string          `json:"icon,omitempty"`
	Badge string          `json:"badge,omitempty"`
	URL   string          `json:"url,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type PushError struct {
	Endpoint string `json:"endpoint"`
	Error    string `json:"error"`
}

type BroadcastResult struct {
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Errors     []PushError `json:"errors"`
}

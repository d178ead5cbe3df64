package validators

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Egor213/LogiStream/internal/domain"
)

const BroadcastType = "broadcast"

var (
	ErrInvalidLogLevel      = errors.New("invalid log level")
	ErrMalformedBody        = errors.New("malformed JSON body")
	ErrInvalidSource        = errors.New("invalid log source")
	ErrEmptyMessage         = errors.New("message must be specified")
	ErrInvalidBroadcast     = errors.New("invalid broadcast request format")
	ErrInvalidSubscription  = errors.New("invalid subscription object")
	ErrMissingEndpoint      = errors.New("endpoint is required")
	ErrInvalidNotification  = errors.New("notification must have title and body")
	ErrSubscriptionRequired = errors.New("subscription and notification are required")
	ErrConnectionIDRequired = errors.New("connection ID required")
	ErrConfirmationRequired = errors.New("add ?confirm=true to clear all logs")
	ErrInvalidLimit         = errors.New("limit must be a positive integer")
	ErrInvalidSince         = errors.New("since must be an RFC 3339 timestamp or unix milliseconds")
)

func ValidateClientLog(level domain.Level, message string) error {
	if !level.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, level)
	}
	if strings.TrimSpace(message) == "" {
		return ErrEmptyMessage
	}
	return nil
}

// ParseLevels reads a comma separated level list. Empty input means no filter.
func ParseLevels(raw string) ([]domain.Level, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	levels := make([]domain.Level, 0, len(parts))
	for _, p := range parts {
		l := domain.Level(strings.ToLower(strings.TrimSpace(p)))
		if !l.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLogLevel, p)
		}
		levels = append(levels, l)
	}
	return levels, nil
}

func ParseSource(raw string) (domain.Source, error) {
	if raw == "" {
		return "", nil
	}
	s := domain.Source(strings.ToLower(raw))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSource, raw)
	}
	return s, nil
}

func ValidateBroadcast(kind string, n *domain.Notification) error {
	if kind != BroadcastType || n == nil {
		return ErrInvalidBroadcast
	}
	if n.Title == "" || n.Body == "" {
		return fmt.Errorf("%w: %v", ErrInvalidBroadcast, ErrInvalidNotification)
	}
	return nil
}

func ValidateNotification(n *domain.Notification) error {
	if n == nil || n.Title == "" || n.Body == "" {
		return ErrInvalidNotification
	}
	return nil
}

func ValidateSubscription(sub *domain.PushSubscription) error {
	if sub == nil || sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return ErrInvalidSubscription
	}
	return nil
}

func ParseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, ErrInvalidLimit
	}
	return n, nil
}

func ParseSince(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, ErrInvalidSince
	}
	return t, nil
}

// Package activity reads the tracked activities that takeouts embed.
package activity

import (
	"context"
	"errors"

	"github.com/Egor213/LogiStream/internal/domain"
)

var (
	ErrNotConfigured = errors.New("activity source is not configured")
	ErrUpstream      = errors.New("activity source request failed")
)

type Source interface {
	Activities(ctx context.Context) ([]string, error)
	CurrentActivity(ctx context.Context) (*domain.Activity, error)
}

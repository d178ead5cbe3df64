package broker

import "context"

type Producer interface {
	SendMessage(ctx context.Context, key, value []byte) error
	Close() error
}

// Nop drops every message. Used when no broker is configured.
type Nop struct{}

func (Nop) SendMessage(context.Context, []byte, []byte) error { return nil }

func (Nop) Close() error { return nil }

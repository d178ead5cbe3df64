// Package sse writes server-sent events frames.
package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

type Flusher interface {
	io.Writer
	Flush()
}

// WriteData writes v as a single `data:` frame.
func WriteData(w Flusher, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	w.Flush()
	return nil
}

// WriteComment writes a comment frame. Clients ignore it; proxies see traffic.
func WriteComment(w Flusher, comment string) error {
	comment = strings.ReplaceAll(comment, "\n", " ")
	if _, err := fmt.Fprintf(w, ": %s\n\n", comment); err != nil {
		return err
	}
	w.Flush()
	return nil
}

// WriteRetry advises the client how long to wait before reconnecting.
func WriteRetry(w Flusher, d time.Duration) error {
	if _, err := fmt.Fprintf(w, "retry: %d\n\n", d.Milliseconds()); err != nil {
		return err
	}
	w.Flush()
	return nil
}

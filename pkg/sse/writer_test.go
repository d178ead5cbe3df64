package sse_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/Egor213/LogiStream/pkg/sse"
	"github.com/stretchr/testify/assert"
)

type bufFlusher struct {
	bytes.Buffer
	flushes int
}

func (b *bufFlusher) Flush() { b.flushes++ }

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) { return 0, errors.New("broken pipe") }
func (brokenWriter) Flush()                      {}

func TestWriteData(t *testing.T) {
	w := &bufFlusher{}

	err := sse.WriteData(w, map[string]any{"id": 1, "type": "message"})

	assert.NoError(t, err)
	assert.Equal(t, "data: {\"id\":1,\"type\":\"message\"}\n\n", w.String())
	assert.Equal(t, 1, w.flushes)
}

func TestWriteComment(t *testing.T) {
	w := &bufFlusher{}

	assert.NoError(t, sse.WriteComment(w, "heart\nbeat"))
	assert.Equal(t, ": heart beat\n\n", w.String())
}

func TestWriteRetry(t *testing.T) {
	w := &bufFlusher{}

	assert.NoError(t, sse.WriteRetry(w, 5*time.Second))
	assert.Equal(t, "retry: 5000\n\n", w.String())
}

func TestWriteErrors(t *testing.T) {
	assert.Error(t, sse.WriteData(brokenWriter{}, "x"))
	assert.Error(t, sse.WriteComment(brokenWriter{}, "x"))
	assert.Error(t, sse.WriteData(&bufFlusher{}, func() {}))
}

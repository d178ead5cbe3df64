package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/Egor213/LogiStream/pkg/logger"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFor(t *testing.T) {
	tcs := []struct {
		in   domain.Level
		want log.Level
	}{
		{domain.LevelError, log.ErrorLevel},
		{domain.LevelWarn, log.WarnLevel},
		{domain.LevelDebug, log.DebugLevel},
		{domain.LevelInfo, log.InfoLevel},
		{domain.LevelSuccess, log.InfoLevel},
		{domain.LevelConnection, log.InfoLevel},
	}

	for _, tc := range tcs {
		t.Run(string(tc.in), func(t *testing.T) {
			assert.Equal(t, tc.want, logger.LevelFor(tc.in))
		})
	}
}

func TestMirrorEntry(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)
	defer log.SetOutput(os.Stderr)

	logger.MirrorEntry(domain.LogEntry{
		ID:       "1-abc",
		Level:    domain.LevelWarn,
		Source:   domain.SourceServer,
		Message:  "slow consumer",
		Metadata: &domain.LogMetadata{ConnectionID: "sse_1"},
	})

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "slow consumer", got["msg"])
	assert.Equal(t, "warning", got["level"])
	assert.Equal(t, "warn", got["log_level"])
	assert.NotContains(t, got, "fields.level")
	assert.Equal(t, "sse_1", got["connection_id"])
}

package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/Egor213/LogiStream/internal/metrics"
	brokermocks "github.com/Egor213/LogiStream/internal/mocks/broker"
	"github.com/Egor213/LogiStream/internal/repo/memdb"
	"github.com/Egor213/LogiStream/internal/repo/repotypes"
	"github.com/Egor213/LogiStream/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newLogService(maxEntries int) *service.LogService {
	return service.NewLogService(memdb.NewLogRepo(maxEntries), memdb.NewConnectionRepo(), metrics.NewTestCounters(), nil)
}

func TestLogService_AddLog(t *testing.T) {
	s := newLogService(10)

	got := s.AddLog(domain.LevelWarn, "slow request", map[string]int{"ms": 1200}, &domain.LogMetadata{Endpoint: "/api/logs"})

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, domain.SourceServer, got.Source)
	assert.Equal(t, domain.LevelWarn, got.Level)
	assert.JSONEq(t, `{"ms":1200}`, string(got.Data))

	logs := s.GetLogs(repotypes.LogFilter{})
	require.Len(t, logs, 1)
	assert.Equal(t, got, logs[0])
}

func TestLogService_IngestClientLog(t *testing.T) {
	s := newLogService(10)

	got := s.IngestClientLog(domain.LevelError, "render failed", nil, nil)

	assert.Equal(t, domain.SourceClient, got.Source)
	assert.Nil(t, got.Data)
	assert.Len(t, s.GetLogs(repotypes.LogFilter{Source: domain.SourceClient}), 1)
}

func TestLogService_FilterByLevelFindsEntry(t *testing.T) {
	s := newLogService(100)
	s.AddLog(domain.LevelInfo, "boot", nil, nil)
	want := s.AddLog(domain.LevelError, "disk full", nil, nil)
	s.AddLog(domain.LevelWarn, "low memory", nil, nil)

	got := s.GetLogs(repotypes.LogFilter{Levels: []domain.Level{domain.LevelError}})

	require.Len(t, got, 1)
	assert.Equal(t, want, got[0])
}

func TestLogService_DataEncoding(t *testing.T) {
	tcs := []struct {
		name string
		data any
		want string
	}{
		{
			name: "error is rendered by message",
			data: errors.New("connection reset"),
			want: `{"error":"connection reset"}`,
		},
		{
			name: "raw json is compacted",
			data: json.RawMessage("{ \"a\" : [1, 2] }"),
			want: `{"a":[1,2]}`,
		},
		{
			name: "invalid raw json becomes a string",
			data: json.RawMessage("not json"),
			want: `"not json"`,
		},
		{
			name: "unserializable payload",
			data: func() {},
			want: "",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			s := newLogService(10)
			got := s.AddLog(domain.LevelDebug, "payload", tc.data, nil)

			if tc.want == "" {
				var v map[string]string
				require.NoError(t, json.Unmarshal(got.Data, &v))
				assert.Contains(t, v["error"], "unserializable payload")
				return
			}
			assert.JSONEq(t, tc.want, string(got.Data))
		})
	}
}

func TestLogService_Clear(t *testing.T) {
	s := newLogService(10)
	s.AddLog(domain.LevelInfo, "one", nil, nil)
	s.UpdateConnectionMetrics("sse_1", domain.MetricsUpdate{})

	for i := 0; i < 2; i++ {
		s.Clear()

		logs := s.GetLogs(repotypes.LogFilter{})
		require.Len(t, logs, 1)
		assert.Equal(t, "Logs cleared", logs[0].Message)
		require.NotNil(t, logs[0].Metadata)
		assert.True(t, logs[0].Metadata.Internal)
		assert.Empty(t, s.AllConnectionMetrics())
	}
}

func TestLogService_GetStats(t *testing.T) {
	s := newLogService(10)
	s.AddLog(domain.LevelInfo, "a", nil, nil)
	s.AddLog(domain.LevelError, "b", nil, nil)
	s.IngestClientLog(domain.LevelInfo, "c", nil, nil)
	s.UpdateConnectionMetrics("sse_1", domain.MetricsUpdate{})
	s.UpdateConnectionMetrics("sse_2", domain.MetricsUpdate{})

	stats := s.GetStats()

	assert.Equal(t, 3, stats.TotalLogs)
	assert.Equal(t, 2, stats.LevelCounts[domain.LevelInfo])
	assert.Equal(t, 1, stats.LevelCounts[domain.LevelError])
	assert.Equal(t, 1, stats.SourceCounts[domain.SourceClient])
	assert.Equal(t, 2, stats.Connections)
}

func TestLogService_Subscribe(t *testing.T) {
	s := newLogService(10)

	var received []string
	unsubscribe := s.Subscribe(func(e domain.LogEntry) {
		received = append(received, e.Message)
	})

	s.AddLog(domain.LevelInfo, "first", nil, nil)
	unsubscribe()
	s.AddLog(domain.LevelInfo, "second", nil, nil)

	assert.Equal(t, []string{"first"}, received)
}

func TestLogService_StoredEntryIsIsolated(t *testing.T) {
	s := newLogService(10)
	s.Subscribe(func(e domain.LogEntry) {
		e.Metadata.Endpoint = "/subscriber"
		e.Data[2] = 'Z'
	})

	md := &domain.LogMetadata{Endpoint: "/api/stream"}
	s.AddLog(domain.LevelInfo, "shared", map[string]int{"a": 1}, md)
	md.Endpoint = "/caller"

	stored := s.GetLogs(repotypes.LogFilter{})[0]
	assert.Equal(t, "/api/stream", stored.Metadata.Endpoint)
	assert.JSONEq(t, `{"a":1}`, string(stored.Data))
}

func TestLogService_MirrorsToBroker(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	producer := brokermocks.NewMockProducer(ctrl)
	s := service.NewLogService(memdb.NewLogRepo(10), memdb.NewConnectionRepo(), metrics.NewTestCounters(), producer)

	tcs := []struct {
		name    string
		sendErr error
	}{
		{name: "success"},
		{name: "broker error does not fail the write", sendErr: errors.New("broker down")},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			var key, value []byte
			producer.EXPECT().
				SendMessage(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, k, v []byte) error {
					key, value = k, v
					return tc.sendErr
				})

			entry := s.AddLog(domain.LevelSuccess, "deployed", map[string]string{"version": "1.2.0"}, nil)

			assert.Equal(t, entry.ID, string(key))
			var mirrored domain.LogEntry
			require.NoError(t, json.Unmarshal(value, &mirrored))
			assert.Equal(t, entry, mirrored)
		})
	}

	assert.Len(t, s.GetLogs(repotypes.LogFilter{}), 2)
}

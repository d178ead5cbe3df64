package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Egor213/LogiStream/internal/activity"
	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/Egor213/LogiStream/internal/metrics"
	activitymocks "github.com/Egor213/LogiStream/internal/mocks/activity"
	pushmocks "github.com/Egor213/LogiStream/internal/mocks/push"
	repomocks "github.com/Egor213/LogiStream/internal/mocks/repository"
	"github.com/Egor213/LogiStream/internal/repo/memdb"
	"github.com/Egor213/LogiStream/internal/repo/repotypes"
	"github.com/Egor213/LogiStream/internal/service"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type takeoutFixture struct {
	logs     *service.LogService
	stream   *service.StreamService
	takeout  *service.TakeoutService
	source   *activitymocks.MockSource
	subs     *repomocks.MockSubscription
	capacity int
}

func newTakeoutFixture(t *testing.T, capacity int) *takeoutFixture {
	ctrl := gomock.NewController(t)

	cr := memdb.NewConnectionRepo()
	cnt := metrics.NewTestCounters()
	logs := service.NewLogService(memdb.NewLogRepo(capacity), cr, cnt, nil)
	stream := service.NewStreamService(service.StreamConfig{}, logs, cr, cnt)

	subs := repomocks.NewMockSubscription(ctrl)
	ns := service.NewNotificationService(subs, pushmocks.NewMockSender(ctrl), cnt)
	src := activitymocks.NewMockSource(ctrl)

	return &takeoutFixture{
		logs:     logs,
		stream:   stream,
		takeout:  service.NewTakeoutService(service.TakeoutConfig{Version: "2.0.0"}, logs, stream, ns, src),
		source:   src,
		subs:     subs,
		capacity: capacity,
	}
}

func TestParseFormat(t *testing.T) {
	tcs := []struct {
		in      string
		want    service.Format
		wantErr bool
	}{
		{in: "json", want: service.FormatJSON},
		{in: " CSV ", want: service.FormatCSV},
		{in: "xml", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tcs {
		t.Run(tc.in, func(t *testing.T) {
			got, err := service.ParseFormat(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, service.ErrInvalidFormat)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTakeoutService_JSONRoundTrip(t *testing.T) {
	f := newTakeoutFixture(t, 5)

	retries := 2
	latency := int64(35)
	for i := 0; i < 8; i++ {
		f.logs.AddLog(domain.LevelInfo, "tick", map[string]int{"n": i}, &domain.LogMetadata{
			ConnectionID: "sse_1",
			RetryCount:   &retries,
			Latency:      &latency,
			Endpoint:     "/api/stream",
		})
	}
	f.logs.IngestClientLog(domain.LevelError, "client crash", errors.New("boom"), nil)
	f.logs.UpdateConnectionMetrics("sse_1", domain.MetricsUpdate{})

	doc, err := f.takeout.ExportSnapshot(context.Background(), service.FormatJSON, false)
	require.NoError(t, err)

	assert.Equal(t, "application/json", doc.ContentType)
	assert.True(t, strings.HasPrefix(doc.Filename, "sse-logs-"))
	assert.True(t, strings.HasSuffix(doc.Filename, ".json"))

	var snap service.Snapshot
	require.NoError(t, json.Unmarshal(doc.Body, &snap))

	assert.Equal(t, f.logs.GetLogs(repotypes.LogFilter{Limit: f.capacity}), snap.Logs)
	assert.Len(t, snap.Logs, f.capacity)
	assert.Equal(t, "client crash", snap.Logs[0].Message)
	assert.Equal(t, service.FormatJSON, snap.Metadata.Format)
	assert.Equal(t, "2.0.0", snap.Metadata.Version)
	assert.Equal(t, f.capacity, snap.Stats.TotalLogs)
	assert.Contains(t, snap.ConnectionMetrics, "sse_1")
	assert.Nil(t, snap.CurrentActivity)
	assert.Empty(t, snap.Activities)
}

func TestTakeoutService_WithActivities(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newTakeoutFixture(t, 10)
		current := &domain.Activity{ID: "page-1", Name: "Coding", StartTime: "2024-05-01T10:00:00.000Z"}
		f.source.EXPECT().Activities(ctx).Return([]string{"Coding", "Sleep"}, nil)
		f.source.EXPECT().CurrentActivity(ctx).Return(current, nil)

		doc, err := f.takeout.ExportSnapshot(ctx, service.FormatJSON, true)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(doc.Filename, "takeout-"))

		var snap service.Snapshot
		require.NoError(t, json.Unmarshal(doc.Body, &snap))
		assert.Equal(t, []string{"Coding", "Sleep"}, snap.Activities)
		assert.Equal(t, current, snap.CurrentActivity)
	})

	t.Run("upstream failure", func(t *testing.T) {
		f := newTakeoutFixture(t, 10)
		f.source.EXPECT().Activities(ctx).Return(nil, activity.ErrUpstream)

		_, err := f.takeout.ExportSnapshot(ctx, service.FormatJSON, true)
		assert.ErrorIs(t, err, activity.ErrUpstream)
	})

	t.Run("csv skips the activity source", func(t *testing.T) {
		f := newTakeoutFixture(t, 10)

		doc, err := f.takeout.ExportSnapshot(ctx, service.FormatCSV, true)
		require.NoError(t, err)
		assert.Equal(t, "text/csv", doc.ContentType)
	})
}

func TestTakeoutService_InvalidFormat(t *testing.T) {
	f := newTakeoutFixture(t, 10)

	_, err := f.takeout.ExportSnapshot(context.Background(), service.Format("xml"), false)
	assert.ErrorIs(t, err, service.ErrInvalidFormat)
}

func TestEncodeCSV_Quoting(t *testing.T) {
	retries := 3
	latency := int64(120)
	entries := []domain.LogEntry{
		{ID: "1-a", Level: domain.LevelInfo, Source: domain.SourceServer, Message: `He said "hi"`},
		{ID: "2-b", Level: domain.LevelWarn, Source: domain.SourceClient, Message: "a,b\nc", Metadata: &domain.LogMetadata{
			Endpoint:     "/api/stream",
			ConnectionID: "sse_1",
			RetryCount:   &retries,
			Latency:      &latency,
			EventID:      "ev-9",
		}},
	}

	body, err := service.EncodeCSV(entries)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(body), "id,timestamp,level,source,message,endpoint,connectionId,retryCount,latency,eventId\n"))
	assert.Contains(t, string(body), `"He said ""hi"""`)

	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, `He said "hi"`, records[1][4])
	assert.Equal(t, "a,b\nc", records[2][4])
	assert.Equal(t, []string{"/api/stream", "sse_1", "3", "120", "ev-9"}, records[2][5:])
	assert.Equal(t, []string{"", "", "", "", ""}, records[1][5:])
}

func TestCompress(t *testing.T) {
	doc := service.Document{ContentType: "text/csv", Filename: "sse-logs-1.csv", Body: []byte("id,timestamp\n")}

	got, err := service.Compress(doc)
	require.NoError(t, err)
	assert.Equal(t, "application/gzip", got.ContentType)
	assert.Equal(t, "sse-logs-1.csv.gz", got.Filename)

	zr, err := gzip.NewReader(bytes.NewReader(got.Body))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, doc.Body, plain)
}

func TestTakeoutService_Cleanup(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newTakeoutFixture(t, 10)
		f.subs.EXPECT().DeleteExpired(ctx, gomock.Any()).Return(2, nil)

		res, err := f.takeout.Cleanup(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, res.ExpiredSubscriptions)
		assert.Empty(t, res.ClosedConnections)
		assert.NotNil(t, res.ClosedConnections)

		logs := f.logs.GetLogs(repotypes.LogFilter{Limit: 1})
		assert.Equal(t, "Cleanup completed", logs[0].Message)
	})

	t.Run("flushes cached activities", func(t *testing.T) {
		f := newTakeoutFixture(t, 10)
		cached := activity.NewCached(f.source, time.Hour)
		takeout := service.NewTakeoutService(service.TakeoutConfig{}, f.logs, f.stream, nil, cached)
		f.source.EXPECT().Activities(ctx).Return([]string{"Coding"}, nil).Times(2)

		_, err := cached.Activities(ctx)
		require.NoError(t, err)
		_, err = cached.Activities(ctx)
		require.NoError(t, err)

		_, err = takeout.Cleanup(ctx)
		require.NoError(t, err)

		_, err = cached.Activities(ctx)
		require.NoError(t, err)
	})

	t.Run("repository error", func(t *testing.T) {
		f := newTakeoutFixture(t, 10)
		f.subs.EXPECT().DeleteExpired(ctx, gomock.Any()).Return(0, errors.New("db error"))

		_, err := f.takeout.Cleanup(ctx)
		assert.Error(t, err)
	})
}

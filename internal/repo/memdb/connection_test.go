package memdb_test

import (
	"testing"
	"time"

	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/Egor213/LogiStream/internal/repo/memdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionRepo_UpdateCreatesAndMerges(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := memdb.NewConnectionRepo().WithClock(func() time.Time { return now })

	retries := 2
	m := r.Update("c1", domain.MetricsUpdate{RetryCount: &retries})
	assert.Equal(t, now, m.ConnectedAt)
	assert.Equal(t, 2, m.RetryCount)
	assert.Equal(t, 0, m.TotalEventsReceived)

	disconnected := now.Add(time.Minute)
	events := 7
	m = r.Update("c1", domain.MetricsUpdate{DisconnectedAt: &disconnected, TotalEventsReceived: &events})
	assert.Equal(t, 2, m.RetryCount)
	assert.Equal(t, 7, m.TotalEventsReceived)
	require.NotNil(t, m.DisconnectedAt)
	assert.Equal(t, disconnected, *m.DisconnectedAt)

	got, ok := r.Get("c1")
	assert.True(t, ok)
	assert.Equal(t, m, got)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestConnectionRepo_Counters(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := memdb.NewConnectionRepo().WithClock(func() time.Time { return now })

	r.RecordEvent("c1", now.Add(time.Second))
	r.RecordEvent("c1", now.Add(2*time.Second))
	r.RecordError("c1")
	r.Touch("c1", now.Add(3*time.Second))

	m, ok := r.Get("c1")
	require.True(t, ok)
	assert.Equal(t, 2, m.TotalEventsReceived)
	assert.Equal(t, 1, m.ErrorCount)
	require.NotNil(t, m.LastEventTime)
	assert.Equal(t, now.Add(2*time.Second), *m.LastEventTime)
	assert.Equal(t, now.Add(3*time.Second), m.LastActivity)
}

func TestConnectionRepo_SweepIdle(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := memdb.NewConnectionRepo().WithClock(func() time.Time { return start })
	timeout := 5 * time.Minute

	r.Update("stale", domain.MetricsUpdate{})
	r.Update("fresh", domain.MetricsUpdate{})
	r.Touch("fresh", start.Add(4*time.Minute))

	removed := r.SweepIdle(start.Add(6*time.Minute), timeout)

	assert.Equal(t, []string{"stale"}, removed)
	_, ok := r.Get("stale")
	assert.False(t, ok)
	_, ok = r.Get("fresh")
	assert.True(t, ok)
	assert.NotContains(t, r.All(), "stale")
	assert.Equal(t, 1, r.Count())
}

func TestConnectionRepo_AllReturnsCopy(t *testing.T) {
	r := memdb.NewConnectionRepo()
	r.Update("c1", domain.MetricsUpdate{})

	all := r.All()
	delete(all, "c1")

	assert.Equal(t, 1, r.Count())

	r.Update("c2", domain.MetricsUpdate{})
	r.Clear()
	assert.Equal(t, 0, r.Count())
}

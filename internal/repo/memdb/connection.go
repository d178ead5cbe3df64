package memdb

import (
	"maps"
	"sync"
	"time"

	"github.com/Egor213/LogiStream/internal/domain"
)

type ConnectionRepo struct {
	mu      sync.RWMutex
	metrics map[string]domain.ConnectionMetrics
	now     func() time.Time
}

func NewConnectionRepo() *ConnectionRepo {
	return &ConnectionRepo{
		metrics: make(map[string]domain.ConnectionMetrics),
		now:     time.Now,
	}
}

// WithClock replaces the time source used for default records.
func (r *ConnectionRepo) WithClock(now func() time.Time) *ConnectionRepo {
	r.now = now
	return r
}

func (r *ConnectionRepo) Update(connectionID string, upd domain.MetricsUpdate) domain.ConnectionMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.getOrDefault(connectionID).Merge(upd)
	r.metrics[connectionID] = m
	return m
}

func (r *ConnectionRepo) RecordEvent(connectionID string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.getOrDefault(connectionID)
	m.TotalEventsReceived++
	m.LastEventTime = &at
	m.LastActivity = at
	r.metrics[connectionID] = m
}

func (r *ConnectionRepo) RecordError(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.getOrDefault(connectionID)
	m.ErrorCount++
	r.metrics[connectionID] = m
}

func (r *ConnectionRepo) Touch(connectionID string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.getOrDefault(connectionID)
	m.LastActivity = at
	r.metrics[connectionID] = m
}

func (r *ConnectionRepo) Get(connectionID string) (domain.ConnectionMetrics, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.metrics[connectionID]
	return m, ok
}

func (r *ConnectionRepo) All() map[string]domain.ConnectionMetrics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Clone(r.metrics)
}

func (r *ConnectionRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.metrics)
}

// SweepIdle removes connections idle for longer than timeout and returns their ids.
func (r *ConnectionRepo) SweepIdle(now time.Time, timeout time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for id, m := range r.metrics {
		if now.Sub(m.IdleSince()) > timeout {
			removed = append(removed, id)
			delete(r.metrics, id)
		}
	}
	return removed
}

func (r *ConnectionRepo) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.metrics)
}

// getOrDefault must be called with the write lock held.
func (r *ConnectionRepo) getOrDefault(connectionID string) domain.ConnectionMetrics {
	if m, ok := r.metrics[connectionID]; ok {
		return m
	}
	now := r.now()
	return domain.ConnectionMetrics{
		ConnectedAt:  now,
		LastActivity: now,
	}
}

package memdb

import (
	"sync"

	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/Egor213/LogiStream/internal/repo/repotypes"
)

const DefaultMaxEntries = 1000

// LogRepo is a fixed-capacity ring of log entries. Reads walk it newest-first.
type LogRepo struct {
	mu   sync.RWMutex
	buf  []domain.LogEntry
	head int
	size int
}

func NewLogRepo(maxEntries int) *LogRepo {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &LogRepo{
		buf: make([]domain.LogEntry, maxEntries),
	}
}

func (r *LogRepo) Add(entry domain.LogEntry) {
	entry = entry.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.head] = entry
	r.head = (r.head + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

func (r *LogRepo) GetLogs(filter repotypes.LogFilter) []domain.LogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.LogEntry, 0, min(r.size, limitOr(filter.Limit, r.size)))
	r.each(func(e domain.LogEntry) bool {
		if !filter.Match(e) {
			return true
		}
		out = append(out, e.Clone())
		return filter.Limit <= 0 || len(out) < filter.Limit
	})
	return out
}

func (r *LogRepo) Cap() int {
	return len(r.buf)
}

func (r *LogRepo) Stats() domain.LogStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := domain.LogStats{
		TotalLogs:    r.size,
		LevelCounts:  make(map[domain.Level]int),
		SourceCounts: make(map[domain.Source]int),
	}

	r.each(func(e domain.LogEntry) bool {
		stats.LevelCounts[e.Level]++
		stats.SourceCounts[e.Source]++
		if stats.NewestLog == nil {
			ts := e.Timestamp
			stats.NewestLog = &ts
		}
		ts := e.Timestamp
		stats.OldestLog = &ts
		return true
	})

	return stats
}

func (r *LogRepo) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.buf)
	r.head = 0
	r.size = 0
}

// each must be called with the lock held. Iteration stops when fn returns false.
func (r *LogRepo) each(fn func(domain.LogEntry) bool) {
	n := len(r.buf)
	for i := 0; i < r.size; i++ {
		idx := (r.head - 1 - i + n) % n
		if !fn(r.buf[idx]) {
			return
		}
	}
}

func limitOr(limit, fallback int) int {
	if limit > 0 {
		return limit
	}
	return fallback
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Egor213/LogiStream/internal/broker"
	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/Egor213/LogiStream/internal/metrics"
	"github.com/Egor213/LogiStream/internal/repo"
	"github.com/Egor213/LogiStream/internal/repo/repotypes"
	"github.com/Egor213/LogiStream/pkg/logger"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type LogService struct {
	logRepo  repo.Log
	connRepo repo.Connection
	counters *metrics.Counters
	producer broker.Producer
	now      func() time.Time

	mu          sync.RWMutex
	nextSubID   int
	subscribers map[int]func(domain.LogEntry)
}

func NewLogService(lr repo.Log, cr repo.Connection, cnt *metrics.Counters, p broker.Producer) *LogService {
	if p == nil {
		p = broker.Nop{}
	}
	return &LogService{
		logRepo:     lr,
		connRepo:    cr,
		counters:    cnt,
		producer:    p,
		now:         time.Now,
		subscribers: make(map[int]func(domain.LogEntry)),
	}
}

// AddLog records a server-side entry. It never fails.
func (s *LogService) AddLog(level domain.Level, message string, data any, md *domain.LogMetadata) domain.LogEntry {
	return s.add(domain.SourceServer, level, message, data, md)
}

// IngestClientLog records an entry reported by a browser client.
func (s *LogService) IngestClientLog(level domain.Level, message string, data any, md *domain.LogMetadata) domain.LogEntry {
	return s.add(domain.SourceClient, level, message, data, md)
}

func (s *LogService) add(source domain.Source, level domain.Level, message string, data any, md *domain.LogMetadata) domain.LogEntry {
	now := s.now().UTC().Round(0)
	entry := domain.LogEntry{
		ID:        newLogID(now),
		Timestamp: now,
		Level:     level,
		Source:    source,
		Message:   message,
		Data:      encodeData(data),
		Metadata:  md,
	}.Clone()

	s.logRepo.Add(entry)
	s.counters.LogsAdded.Inc(string(level), string(source))
	logger.MirrorEntry(entry)
	s.mirrorToBroker(entry)
	s.notify(entry)

	return entry
}

func (s *LogService) GetLogs(filter repotypes.LogFilter) []domain.LogEntry {
	return s.logRepo.GetLogs(filter)
}

func (s *LogService) GetStats() domain.LogStats {
	stats := s.logRepo.Stats()
	stats.Connections = s.connRepo.Count()
	return stats
}

// Capacity is the maximum number of entries the store retains.
func (s *LogService) Capacity() int {
	return s.logRepo.Cap()
}

func (s *LogService) Clear() {
	s.logRepo.Clear()
	s.connRepo.Clear()
	s.AddLog(domain.LevelInfo, "Logs cleared", nil, &domain.LogMetadata{Internal: true})
}

func (s *LogService) UpdateConnectionMetrics(connectionID string, upd domain.MetricsUpdate) domain.ConnectionMetrics {
	return s.connRepo.Update(connectionID, upd)
}

func (s *LogService) GetConnectionMetrics(connectionID string) (domain.ConnectionMetrics, bool) {
	return s.connRepo.Get(connectionID)
}

func (s *LogService) AllConnectionMetrics() map[string]domain.ConnectionMetrics {
	return s.connRepo.All()
}

// Subscribe registers fn to receive every new entry after it is stored.
// fn runs on the producer's goroutine and must not block.
func (s *LogService) Subscribe(fn func(domain.LogEntry)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *LogService) notify(entry domain.LogEntry) {
	s.mu.RLock()
	subs := make([]func(domain.LogEntry), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(entry.Clone())
	}
}

func (s *LogService) mirrorToBroker(entry domain.LogEntry) {
	value, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("Failed to encode log entry for broker: %v", err)
		return
	}
	if err := s.producer.SendMessage(context.Background(), []byte(entry.ID), value); err != nil {
		log.WithField("log_id", entry.ID).Warnf("Log entry not mirrored to broker: %v", err)
	}
}

func newLogID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}

// encodeData turns an arbitrary payload into raw JSON. Errors are rendered
// by message since they usually marshal to an empty object.
func encodeData(data any) json.RawMessage {
	switch v := data.(type) {
	case nil:
		return nil
	case json.RawMessage:
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err == nil {
			return buf.Bytes()
		}
		data = string(v)
	case error:
		data = map[string]string{"error": v.Error()}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		raw, _ = json.Marshal(map[string]string{"error": "unserializable payload: " + err.Error()})
	}
	return raw
}

package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/Egor213/LogiStream/internal/metrics"
	"github.com/Egor213/LogiStream/internal/repo"
	"github.com/Egor213/LogiStream/pkg/sse"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultIdleTimeout       = 5 * time.Minute
	DefaultSweepInterval     = time.Minute
	DefaultRetryAdvice       = 5 * time.Second
	DefaultStreamBuffer      = 64
)

type StreamConfig struct {
	HeartbeatInterval time.Duration
	IdleTimeout       time.Duration
	SweepInterval     time.Duration
	RetryAdvice       time.Duration
	BufferSize        int
}

func (c StreamConfig) withDefaults() StreamConfig {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.RetryAdvice <= 0 {
		c.RetryAdvice = DefaultRetryAdvice
	}
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultStreamBuffer
	}
	return c
}

type ClientInfo struct {
	Endpoint  string
	UserAgent string
	IP        string
}

// Connection is one open push channel. Only its Serve loop writes to the client.
type Connection struct {
	ID     string
	Client ClientInfo

	ctx       context.Context
	cancel    context.CancelFunc
	events    chan domain.StreamEvent
	closeOnce sync.Once
}

func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// enqueue never blocks: a closed or full connection rejects the event.
func (c *Connection) enqueue(ev domain.StreamEvent) bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}

	select {
	case c.events <- ev:
		return true
	default:
		return false
	}
}

type StreamService struct {
	cfg      StreamConfig
	logs     *LogService
	connRepo repo.Connection
	counters *metrics.Counters
	now      func() time.Time

	mu          sync.RWMutex
	active      map[string]*Connection
	unsubscribe func()
}

func NewStreamService(cfg StreamConfig, logs *LogService, cr repo.Connection, cnt *metrics.Counters) *StreamService {
	s := &StreamService{
		cfg:      cfg.withDefaults(),
		logs:     logs,
		connRepo: cr,
		counters: cnt,
		now:      time.Now,
		active:   make(map[string]*Connection),
	}
	s.unsubscribe = logs.Subscribe(s.publish)
	return s
}

// Open registers a new connection. Its lifetime is bound to ctx.
func (s *StreamService) Open(ctx context.Context, client ClientInfo) *Connection {
	now := s.now()
	id := newConnectionID(now)
	cctx, cancel := context.WithCancel(ctx)

	conn := &Connection{
		ID:     id,
		Client: client,
		ctx:    cctx,
		cancel: cancel,
		events: make(chan domain.StreamEvent, s.cfg.BufferSize),
	}

	s.connRepo.Update(id, domain.MetricsUpdate{ConnectedAt: &now, LastActivity: &now})
	s.logs.AddLog(domain.LevelConnection, "New SSE connection established", nil, &domain.LogMetadata{
		ConnectionID: id,
		Endpoint:     client.Endpoint,
		UserAgent:    client.UserAgent,
		IP:           client.IP,
	})

	s.mu.Lock()
	s.active[id] = conn
	s.mu.Unlock()
	s.counters.ActiveStreams.Inc()

	retries := 0
	s.logs.AddLog(domain.LevelInfo, "Connected to SSE endpoint: "+client.Endpoint, nil, &domain.LogMetadata{
		ConnectionID: id,
		RetryCount:   &retries,
		Endpoint:     client.Endpoint,
	})

	return conn
}

// Serve pumps queued events and heartbeats to w until the connection closes
// or a write fails. Cleanup runs before it returns.
func (s *StreamService) Serve(conn *Connection, w sse.Flusher) error {
	reason := "client disconnected"
	defer func() { s.closeConnection(conn, reason) }()

	if err := sse.WriteRetry(w, s.cfg.RetryAdvice); err != nil {
		reason = "transport error"
		return s.transportError(conn, "Failed to open SSE stream", err)
	}

	heartbeat := time.NewTicker(s.cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	var seq int64
	for {
		select {
		case <-conn.ctx.Done():
			return nil

		case ev := <-conn.events:
			seq++
			ev.ID = seq
			if err := sse.WriteData(w, ev); err != nil {
				s.counters.StreamEvents.Inc(ev.Type, "failed")
				reason = "transport error"
				return s.transportError(conn, "Failed to send SSE event", err)
			}
			s.counters.StreamEvents.Inc(ev.Type, "ok")
			if s.IsActive(conn.ID) {
				s.connRepo.RecordEvent(conn.ID, s.now())
			}

		case <-heartbeat.C:
			if err := sse.WriteComment(w, "heartbeat"); err != nil {
				reason = "transport error"
				return s.transportError(conn, "Failed to send heartbeat", err)
			}
			// A swept connection keeps streaming but is no longer tracked.
			if s.IsActive(conn.ID) {
				s.connRepo.Touch(conn.ID, s.now())
			}
		}
	}
}

// Close force-closes one connection. It reports whether the id was active.
// A registry record left without a live stream is marked disconnected.
func (s *StreamService) Close(connectionID string) bool {
	s.mu.RLock()
	conn, ok := s.active[connectionID]
	s.mu.RUnlock()
	if !ok {
		if m, known := s.connRepo.Get(connectionID); known && m.DisconnectedAt == nil {
			now := s.now()
			s.connRepo.Update(connectionID, domain.MetricsUpdate{DisconnectedAt: &now})
		}
		return false
	}
	s.closeConnection(conn, "closed by request")
	return true
}

// Broadcast attempts to enqueue data on every active connection and returns
// how many accepted it. Delivery is best effort and unordered across connections.
func (s *StreamService) Broadcast(data any) int {
	conns := s.snapshot()
	now := s.now().UTC()

	failed := make([]*Connection, 0)
	delivered := make([]*Connection, 0, len(conns))
	for _, conn := range conns {
		ev := domain.StreamEvent{
			Timestamp: now,
			Type:      domain.EventTypeBroadcast,
			Data:      data,
			Source:    domain.SourceServer,
			Broadcast: true,
		}
		if conn.enqueue(ev) {
			delivered = append(delivered, conn)
		} else {
			failed = append(failed, conn)
		}
	}

	for _, conn := range delivered {
		s.logs.AddLog(domain.LevelInfo, "Broadcast message sent to connection "+conn.ID, data, &domain.LogMetadata{
			ConnectionID: conn.ID,
			Endpoint:     conn.Client.Endpoint,
		})
	}
	for _, conn := range failed {
		s.connRepo.RecordError(conn.ID)
		s.counters.StreamEvents.Inc(domain.EventTypeBroadcast, "dropped")
		s.logs.AddLog(domain.LevelError, "Failed to broadcast to connection "+conn.ID, nil, &domain.LogMetadata{
			ConnectionID: conn.ID,
			Endpoint:     conn.Client.Endpoint,
		})
	}

	return len(delivered)
}

func (s *StreamService) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active)
}

func (s *StreamService) IsActive(connectionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.active[connectionID]
	return ok
}

// SweepIdle drops bookkeeping for connections idle past the timeout.
// Transports are left alone; their Serve loops end on their own.
func (s *StreamService) SweepIdle() []string {
	now := s.now()
	removed := s.connRepo.SweepIdle(now, s.cfg.IdleTimeout)

	for _, id := range removed {
		s.mu.Lock()
		conn, ok := s.active[id]
		delete(s.active, id)
		s.mu.Unlock()

		endpoint := "unknown"
		if ok {
			endpoint = conn.Client.Endpoint
			s.counters.ActiveStreams.Dec()
		}
		s.logs.AddLog(domain.LevelWarn, "Closing inactive connection: "+id, map[string]any{
			"idleTimeout": s.cfg.IdleTimeout.String(),
		}, &domain.LogMetadata{
			ConnectionID: id,
			Endpoint:     endpoint,
		})
	}

	return removed
}

// RunSweeper runs SweepIdle every SweepInterval until ctx is done.
func (s *StreamService) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	log.Debugf("[StreamService] idle sweeper started, interval %s", s.cfg.SweepInterval)
	for {
		select {
		case <-ctx.Done():
			log.Info("[StreamService] idle sweeper stops")
			return
		case <-ticker.C:
			if removed := s.SweepIdle(); len(removed) > 0 {
				log.Infof("[StreamService] swept %d idle connections", len(removed))
			}
		}
	}
}

// Shutdown closes every connection and detaches from the log service.
func (s *StreamService) Shutdown() {
	s.unsubscribe()
	for _, conn := range s.snapshot() {
		s.closeConnection(conn, "server shutdown")
	}
}

func (s *StreamService) publish(entry domain.LogEntry) {
	for _, conn := range s.snapshot() {
		ev := domain.StreamEvent{
			Timestamp: entry.Timestamp,
			Type:      domain.EventTypeMessage,
			Data:      entry,
			Source:    domain.SourceServer,
		}
		if !conn.enqueue(ev) {
			s.connRepo.RecordError(conn.ID)
			s.counters.StreamEvents.Inc(domain.EventTypeMessage, "dropped")
			log.WithField("connection_id", conn.ID).Warn("Stream queue full, log event dropped")
		}
	}
}

func (s *StreamService) transportError(conn *Connection, message string, err error) error {
	s.connRepo.RecordError(conn.ID)
	s.logs.AddLog(domain.LevelError, message, err, &domain.LogMetadata{
		ConnectionID: conn.ID,
		Endpoint:     conn.Client.Endpoint,
	})

	m, _ := s.connRepo.Get(conn.ID)
	retries := m.ErrorCount
	s.logs.AddLog(domain.LevelWarn, fmt.Sprintf("Retrying SSE connection (%d) to %s in %dms",
		retries, conn.Client.Endpoint, s.cfg.RetryAdvice.Milliseconds()), nil, &domain.LogMetadata{
		ConnectionID: conn.ID,
		RetryCount:   &retries,
		Endpoint:     conn.Client.Endpoint,
	})
	return err
}

func (s *StreamService) closeConnection(conn *Connection, reason string) {
	conn.closeOnce.Do(func() {
		conn.cancel()

		s.mu.Lock()
		_, wasActive := s.active[conn.ID]
		delete(s.active, conn.ID)
		s.mu.Unlock()

		if !wasActive {
			return
		}
		s.counters.ActiveStreams.Dec()

		now := s.now()
		s.connRepo.Update(conn.ID, domain.MetricsUpdate{DisconnectedAt: &now})
		retries := 0
		s.logs.AddLog(domain.LevelInfo, "Disconnected from SSE endpoint: "+conn.Client.Endpoint, map[string]string{
			"reason": reason,
		}, &domain.LogMetadata{
			ConnectionID: conn.ID,
			RetryCount:   &retries,
			Endpoint:     conn.Client.Endpoint,
		})
	})
}

func (s *StreamService) snapshot() []*Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conns := make([]*Connection, 0, len(s.active))
	for _, c := range s.active {
		conns = append(conns, c)
	}
	return conns
}

func newConnectionID(now time.Time) string {
	return fmt.Sprintf("sse_%d_%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
}

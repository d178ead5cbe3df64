package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Egor213/LogiStream/internal/activity"
	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/Egor213/LogiStream/internal/repo/repotypes"
	errorsUtils "github.com/Egor213/LogiStream/pkg/errors"
	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
}

var csvHeader = []string{
	"id", "timestamp", "level", "source", "message", "endpoint",
	"connectionId", "retryCount", "latency", "eventId",
}

type TakeoutConfig struct {
	MaxLogs int
	Version string
}

type SnapshotMetadata struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Format      Format    `json:"format"`
	Version     string    `json:"version"`
}

type Snapshot struct {
	Metadata          SnapshotMetadata                    `json:"metadata"`
	Logs              []domain.LogEntry                   `json:"logs"`
	ConnectionMetrics map[string]domain.ConnectionMetrics `json:"connectionMetrics"`
	Stats             domain.LogStats                     `json:"stats"`
	Activities        []string                            `json:"activities,omitempty"`
	CurrentActivity   *domain.Activity                    `json:"currentActivity,omitempty"`
}

type Document struct {
	ContentType string
	Filename    string
	Body        []byte
}

type CleanupResult struct {
	ClosedConnections    []string `json:"closedConnections"`
	ExpiredSubscriptions int      `json:"expiredSubscriptions"`
}

type TakeoutService struct {
	cfg           TakeoutConfig
	logs          *LogService
	stream        *StreamService
	notifications *NotificationService
	source        activity.Source
	now           func() time.Time
}

func NewTakeoutService(cfg TakeoutConfig, logs *LogService, stream *StreamService, ns *NotificationService, src activity.Source) *TakeoutService {
	if cfg.MaxLogs <= 0 {
		cfg.MaxLogs = logs.Capacity()
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	return &TakeoutService{
		cfg:           cfg,
		logs:          logs,
		stream:        stream,
		notifications: ns,
		source:        src,
		now:           time.Now,
	}
}

// Snapshot reads current state. Writers are not held off, so entries added
// while it runs may or may not be included.
func (s *TakeoutService) Snapshot(ctx context.Context, format Format, withActivities bool) (Snapshot, error) {
	snap := Snapshot{
		Metadata: SnapshotMetadata{
			GeneratedAt: s.now().UTC(),
			Format:      format,
			Version:     s.cfg.Version,
		},
		Logs:              s.logs.GetLogs(repotypes.LogFilter{Limit: s.cfg.MaxLogs}),
		ConnectionMetrics: s.logs.AllConnectionMetrics(),
		Stats:             s.logs.GetStats(),
	}

	if !withActivities {
		return snap, nil
	}

	activities, err := s.source.Activities(ctx)
	if err != nil {
		return Snapshot{}, errorsUtils.WrapPathErr(err)
	}
	current, err := s.source.CurrentActivity(ctx)
	if err != nil {
		return Snapshot{}, errorsUtils.WrapPathErr(err)
	}
	snap.Activities = activities
	snap.CurrentActivity = current

	return snap, nil
}

// ExportSnapshot serializes a snapshot as an attachment. withActivities adds
// the activity data (JSON only: CSV has a fixed log column set).
func (s *TakeoutService) ExportSnapshot(ctx context.Context, format Format, withActivities bool) (Document, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return Document{}, err
	}

	snap, err := s.Snapshot(ctx, format, withActivities && format == FormatJSON)
	if err != nil {
		log.WithField("format", format).Errorf("Takeout request failed: %v", err)
		return Document{}, err
	}

	prefix := "sse-logs"
	if withActivities {
		prefix = "takeout"
	}
	doc := Document{
		Filename: fmt.Sprintf("%s-%d.%s", prefix, snap.Metadata.GeneratedAt.UnixMilli(), format),
	}

	switch format {
	case FormatJSON:
		doc.ContentType = "application/json"
		doc.Body, err = json.Marshal(snap)
	case FormatCSV:
		doc.ContentType = "text/csv"
		doc.Body, err = EncodeCSV(snap.Logs)
	}
	if err != nil {
		return Document{}, errorsUtils.WrapPathErr(fmt.Errorf("%w: %v", ErrCannotExport, err))
	}

	return doc, nil
}

// Cleanup sweeps idle connections now and removes expired push subscriptions.
func (s *TakeoutService) Cleanup(ctx context.Context) (CleanupResult, error) {
	res := CleanupResult{ClosedConnections: s.stream.SweepIdle()}
	if res.ClosedConnections == nil {
		res.ClosedConnections = []string{}
	}

	if s.notifications != nil {
		n, err := s.notifications.CleanupExpired(ctx)
		if err != nil {
			return res, err
		}
		res.ExpiredSubscriptions = n
	}

	if c, ok := s.source.(interface{ Invalidate() }); ok {
		c.Invalidate()
	}

	s.logs.AddLog(domain.LevelInfo, "Cleanup completed", res, nil)
	return res, nil
}

// EncodeCSV renders entries with RFC 4180 quoting, header first.
func EncodeCSV(entries []domain.LogEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, e := range entries {
		row := []string{
			e.ID,
			e.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			string(e.Level),
			string(e.Source),
			e.Message,
			"", "", "", "", "",
		}
		if md := e.Metadata; md != nil {
			row[5] = md.Endpoint
			row[6] = md.ConnectionID
			if md.RetryCount != nil {
				row[7] = strconv.Itoa(*md.RetryCount)
			}
			if md.Latency != nil {
				row[8] = strconv.FormatInt(*md.Latency, 10)
			}
			row[9] = md.EventID
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// Compress gzips a document body for download.
func Compress(doc Document) (Document, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(doc.Body); err != nil {
		return Document{}, errorsUtils.WrapPathErr(err)
	}
	if err := zw.Close(); err != nil {
		return Document{}, errorsUtils.WrapPathErr(err)
	}

	return Document{
		ContentType: "application/gzip",
		Filename:    doc.Filename + ".gz",
		Body:        buf.Bytes(),
	}, nil
}

package repo

import (
	"context"
	"time"

	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/Egor213/LogiStream/internal/repo/memdb"
	"github.com/Egor213/LogiStream/internal/repo/pgdb"
	"github.com/Egor213/LogiStream/internal/repo/repotypes"
	"github.com/Egor213/LogiStream/pkg/postgres"
)

type Log interface {
	Add(entry domain.LogEntry)
	GetLogs(filter repotypes.LogFilter) []domain.LogEntry
	Stats() domain.LogStats
	Cap() int
	Clear()
}

type Connection interface {
	Update(connectionID string, upd domain.MetricsUpdate) domain.ConnectionMetrics
	RecordEvent(connectionID string, at time.Time)
	RecordError(connectionID string)
	Touch(connectionID string, at time.Time)
	Get(connectionID string) (domain.ConnectionMetrics, bool)
	All() map[string]domain.ConnectionMetrics
	Count() int
	SweepIdle(now time.Time, timeout time.Duration) []string
	Clear()
}

type Subscription interface {
	Save(ctx context.Context, sub domain.PushSubscription) (domain.PushSubscription, error)
	Remove(ctx context.Context, endpoint string) (bool, error)
	List(ctx context.Context) ([]domain.PushSubscription, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type Repositories struct {
	Log
	Connection
	Subscription
}

func NewRepositories(pg *postgres.Postgres, maxLogEntries int) *Repositories {
	return &Repositories{
		Log:          memdb.NewLogRepo(maxLogEntries),
		Connection:   memdb.NewConnectionRepo(),
		Subscription: pgdb.NewSubscriptionRepo(pg),
	}
}

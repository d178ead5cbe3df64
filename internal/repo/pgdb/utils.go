package pgdb

import (
	"time"

	"github.com/Egor213/LogiStream/internal/domain"
	sq "github.com/Masterminds/squirrel"
)

func BuildExpiredFilter(now time.Time) sq.Sqlizer {
	return sq.And{
		sq.NotEq{"expiration_time": nil},
		sq.Lt{"expiration_time": now.UnixMilli()},
	}
}

// BuildUpsertSubscription inserts sub or refreshes the keys of the row with the
// same endpoint. The stored id and created_at are returned.
func BuildUpsertSubscription(b sq.StatementBuilderType, sub domain.PushSubscription) sq.InsertBuilder {
	return b.
		Insert(subscriptionsTable).
		Columns(subscriptionColumns...).
		Values(sub.ID, sub.Endpoint, sub.ExpirationTime, sub.Keys.P256dh, sub.Keys.Auth,
			sub.UserAgent, sub.CreatedAt, sub.UpdatedAt).
		Suffix("ON CONFLICT (endpoint) DO UPDATE SET " +
			"expiration_time = EXCLUDED.expiration_time, p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth, " +
			"user_agent = EXCLUDED.user_agent, updated_at = EXCLUDED.updated_at").
		Suffix("RETURNING id, created_at")
}

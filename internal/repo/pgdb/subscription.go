package pgdb

import (
	"context"
	"time"

	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/Egor213/LogiStream/internal/repo/repoerrs"
	errorsUtils "github.com/Egor213/LogiStream/pkg/errors"
	"github.com/Egor213/LogiStream/pkg/postgres"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

const subscriptionsTable = "push_subscriptions"

var subscriptionColumns = []string{
	"id", "endpoint", "expiration_time", "p256dh", "auth", "user_agent", "created_at", "updated_at",
}

type SubscriptionRepo struct {
	*postgres.Postgres
}

func NewSubscriptionRepo(pg *postgres.Postgres) *SubscriptionRepo {
	return &SubscriptionRepo{pg}
}

// Save upserts by endpoint. An existing row keeps its id and created_at.
func (r *SubscriptionRepo) Save(ctx context.Context, sub domain.PushSubscription) (domain.PushSubscription, error) {
	sql, args, _ := BuildUpsertSubscription(r.Builder, sub).ToSql()

	stored := sub
	err := r.CtxGetter.DefaultTrOrDB(ctx, r.Pool).
		QueryRow(ctx, sql, args...).
		Scan(&stored.ID, &stored.CreatedAt)
	if err != nil {
		if errorsUtils.IsUniqueViolation(err) {
			return domain.PushSubscription{}, repoerrs.ErrAlreadyExists
		}
		return domain.PushSubscription{}, errorsUtils.WrapPathErr(err)
	}

	return stored, nil
}

func (r *SubscriptionRepo) Remove(ctx context.Context, endpoint string) (bool, error) {
	sql, args, _ := r.Builder.
		Delete(subscriptionsTable).
		Where(sq.Eq{"endpoint": endpoint}).
		ToSql()

	tag, err := r.CtxGetter.DefaultTrOrDB(ctx, r.Pool).Exec(ctx, sql, args...)
	if err != nil {
		return false, errorsUtils.WrapPathErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SubscriptionRepo) List(ctx context.Context) ([]domain.PushSubscription, error) {
	sql, args, _ := r.Builder.
		Select(subscriptionColumns...).
		From(subscriptionsTable).
		OrderBy("created_at").
		ToSql()

	rows, err := r.CtxGetter.DefaultTrOrDB(ctx, r.Pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, errorsUtils.WrapPathErr(err)
	}
	defer rows.Close()

	var subs []domain.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, errorsUtils.WrapPathErr(err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, errorsUtils.WrapPathErr(err)
	}

	return subs, nil
}

func (r *SubscriptionRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	sql, args, _ := r.Builder.
		Delete(subscriptionsTable).
		Where(BuildExpiredFilter(now)).
		ToSql()

	tag, err := r.CtxGetter.DefaultTrOrDB(ctx, r.Pool).Exec(ctx, sql, args...)
	if err != nil {
		return 0, errorsUtils.WrapPathErr(err)
	}
	return int(tag.RowsAffected()), nil
}

func scanSubscription(row pgx.Row) (domain.PushSubscription, error) {
	var sub domain.PushSubscription
	err := row.Scan(
		&sub.ID, &sub.Endpoint, &sub.ExpirationTime, &sub.Keys.P256dh, &sub.Keys.Auth,
		&sub.UserAgent, &sub.CreatedAt, &sub.UpdatedAt,
	)
	return sub, err
}

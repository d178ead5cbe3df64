package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/Egor213/LogiStream/internal/metrics"
	"github.com/Egor213/LogiStream/internal/push"
	"github.com/Egor213/LogiStream/internal/repo"
	errorsUtils "github.com/Egor213/LogiStream/pkg/errors"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type NotificationService struct {
	subRepo  repo.Subscription
	sender   push.Sender
	counters *metrics.Counters
	now      func() time.Time
}

func NewNotificationService(sr repo.Subscription, sender push.Sender, cnt *metrics.Counters) *NotificationService {
	return &NotificationService{
		subRepo:  sr,
		sender:   sender,
		counters: cnt,
		now:      time.Now,
	}
}

// Subscribe stores sub, replacing any subscription with the same endpoint.
func (s *NotificationService) Subscribe(ctx context.Context, sub domain.PushSubscription, userAgent string) (domain.PushSubscription, error) {
	now := s.now().UTC()
	sub.ID = "sub_" + uuid.NewString()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	sub.UserAgent = userAgent

	stored, err := s.subRepo.Save(ctx, sub)
	if err != nil {
		log.WithField("endpoint", sub.Endpoint).Errorf("Error saving subscription: %v", err)
		return domain.PushSubscription{}, errorsUtils.WrapPathErr(ErrCannotSaveSubscription)
	}
	return stored, nil
}

func (s *NotificationService) Unsubscribe(ctx context.Context, endpoint string) error {
	removed, err := s.subRepo.Remove(ctx, endpoint)
	if err != nil {
		log.WithField("endpoint", endpoint).Errorf("Error removing subscription: %v", err)
		return errorsUtils.WrapPathErr(err)
	}
	if !removed {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context) ([]domain.PushSubscription, error) {
	subs, err := s.subRepo.List(ctx)
	if err != nil {
		return nil, errorsUtils.WrapPathErr(err)
	}
	return subs, nil
}

func (s *NotificationService) CleanupExpired(ctx context.Context) (int, error) {
	n, err := s.subRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		log.Errorf("Error cleaning up subscriptions: %v", err)
		return 0, errorsUtils.WrapPathErr(err)
	}
	return n, nil
}

func (s *NotificationService) Configured() bool {
	return s.sender.Configured()
}

func (s *NotificationService) Send(ctx context.Context, sub domain.PushSubscription, n domain.Notification) error {
	if !s.sender.Configured() {
		return ErrPushNotConfigured
	}
	if err := s.sender.Send(ctx, sub, n); err != nil {
		s.counters.PushDeliveries.Inc("failed")
		log.WithField("endpoint", sub.Endpoint).Errorf("Error sending push notification: %v", err)
		return fmt.Errorf("%w: %v", ErrPushFailed, err)
	}
	s.counters.PushDeliveries.Inc("ok")
	return nil
}

// Broadcast sends n to every stored subscription concurrently and reports
// per-endpoint failures without stopping at the first one.
func (s *NotificationService) Broadcast(ctx context.Context, n domain.Notification) (domain.BroadcastResult, error) {
	if !s.sender.Configured() {
		return domain.BroadcastResult{}, ErrPushNotConfigured
	}

	subs, err := s.List(ctx)
	if err != nil {
		return domain.BroadcastResult{}, err
	}

	now := s.now()
	errs := make([]error, len(subs))
	wg := &sync.WaitGroup{}
	for i, sub := range subs {
		if sub.Expired(now) {
			errs[i] = ErrSubscriptionExpired
			continue
		}
		wg.Add(1)
		go func(i int, sub domain.PushSubscription) {
			defer wg.Done()
			errs[i] = s.Send(ctx, sub, n)
		}(i, sub)
	}
	wg.Wait()

	res := domain.BroadcastResult{Total: len(subs), Errors: []domain.PushError{}}
	for i, err := range errs {
		if err == nil {
			res.Successful++
			continue
		}
		res.Failed++
		res.Errors = append(res.Errors, domain.PushError{Endpoint: subs[i].Endpoint, Error: err.Error()})
	}

	return res, nil
}

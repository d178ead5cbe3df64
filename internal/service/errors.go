package service

import "errors"

var (
	ErrInvalidFormat          = errors.New("unsupported export format")
	ErrCannotExport           = errors.New("cannot build export")
	ErrUnknownAction          = errors.New("unknown action")
	ErrSubscriptionNotFound   = errors.New("subscription not found")
	ErrSubscriptionExpired    = errors.New("subscription expired")
	ErrCannotSaveSubscription = errors.New("cannot save subscription")
	ErrPushNotConfigured      = errors.New("VAPID keys are not configured")
	ErrPushFailed             = errors.New("failed to send notification")
)

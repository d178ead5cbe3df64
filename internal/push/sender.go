// Package push delivers notifications through the Web Push protocol.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Egor213/LogiStream/internal/domain"
	webpush "github.com/SherClockHolmes/webpush-go"
	log "github.com/sirupsen/logrus"
)

const defaultIcon = "/icons/icon-192.png"

var ErrVAPIDNotConfigured = errors.New("VAPID keys are not configured")

type Sender interface {
	Configured() bool
	Send(ctx context.Context, sub domain.PushSubscription, n domain.Notification) error
}

type Config struct {
	PublicKey  string
	PrivateKey string
	Subscriber string
	TTL        int
}

type WebPushSender struct {
	cfg    Config
	client *http.Client
}

func NewWebPushSender(cfg Config) *WebPushSender {
	if cfg.PublicKey == "" || cfg.PrivateKey == "" {
		log.Warn("VAPID keys are not configured. Push notifications will not work.")
	}
	return &WebPushSender{cfg: cfg, client: http.DefaultClient}
}

func (s *WebPushSender) Configured() bool {
	return s.cfg.PublicKey != "" && s.cfg.PrivateKey != ""
}

func (s *WebPushSender) Send(ctx context.Context, sub domain.PushSubscription, n domain.Notification) error {
	if !s.Configured() {
		return ErrVAPIDNotConfigured
	}

	payload, err := json.Marshal(Payload(n))
	if err != nil {
		return err
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.cfg.Subscriber,
		VAPIDPublicKey:  s.cfg.PublicKey,
		VAPIDPrivateKey: s.cfg.PrivateKey,
		TTL:             s.cfg.TTL,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push service responded %d: %s", resp.StatusCode, body)
	}
	return nil
}

// Payload fills the display defaults the service worker expects.
func Payload(n domain.Notification) domain.Notification {
	if n.Icon == "" {
		n.Icon = defaultIcon
	}
	if n.Badge == "" {
		n.Badge = defaultIcon
	}
	if n.URL == "" {
		n.URL = "/"
	}
	return n
}

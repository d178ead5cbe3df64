package httpv1

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	logginghelper "github.com/Egor213/LogiStream/internal/controller/common/logging"
	"github.com/Egor213/LogiStream/internal/controller/http/validators"
	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/Egor213/LogiStream/internal/service"
	"github.com/labstack/echo/v4"
)

type notificationRoutes struct {
	notifications *service.NotificationService
	debug         bool
}

func newNotificationRoutes(g *echo.Group, ns *service.NotificationService, debug bool) {
	r := &notificationRoutes{notifications: ns, debug: debug}

	g.POST("/subscribe", r.subscribe)
	g.DELETE("/subscribe", r.unsubscribe)
	g.POST("/send", r.send)
	g.GET("/broadcast", r.stats)
	g.POST("/broadcast", r.broadcast)
}

type subscribeResponse struct {
	Success      bool                    `json:"success"`
	Subscription domain.PushSubscription `json:"subscription"`
	Message      string                  `json:"message"`
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

type sendRequest struct {
	Subscription *domain.PushSubscription `json:"subscription"`
	Notification *domain.Notification     `json:"notification"`
}

type broadcastResultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	domain.BroadcastResult
}

type subscriptionSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	UserAgent string    `json:"userAgent,omitempty"`
}

type subscriptionStatsResponse struct {
	Total         int                   `json:"total"`
	Subscriptions []subscriptionSummary `json:"subscriptions"`
}

func (r *notificationRoutes) subscribe(c echo.Context) error {
	var sub *domain.PushSubscription
	if err := json.NewDecoder(c.Request().Body).Decode(&sub); err != nil {
		return badRequest(c, validators.ErrInvalidSubscription)
	}
	if err := validators.ValidateSubscription(sub); err != nil {
		return badRequest(c, err)
	}
	logginghelper.LogReceived(c, "push subscription")

	stored, err := r.notifications.Subscribe(c.Request().Context(), *sub, c.Request().UserAgent())
	if err != nil {
		return internalError(c, "Failed to save subscription", err, r.debug)
	}

	return c.JSON(http.StatusOK, subscribeResponse{
		Success:      true,
		Subscription: stored,
		Message:      "Subscription saved successfully",
	})
}

func (r *notificationRoutes) unsubscribe(c echo.Context) error {
	var req unsubscribeRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil || req.Endpoint == "" {
		return badRequest(c, validators.ErrMissingEndpoint)
	}

	err := r.notifications.Unsubscribe(c.Request().Context(), req.Endpoint)
	switch {
	case errors.Is(err, service.ErrSubscriptionNotFound):
		return notFound(c, err)
	case err != nil:
		return internalError(c, "Failed to remove subscription", err, r.debug)
	}

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Subscription removed successfully"})
}

func (r *notificationRoutes) send(c echo.Context) error {
	if !r.notifications.Configured() {
		return internalError(c, service.ErrPushNotConfigured.Error(), service.ErrPushNotConfigured, r.debug)
	}

	var req sendRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return badRequest(c, validators.ErrMalformedBody)
	}
	if req.Subscription == nil || req.Notification == nil {
		return badRequest(c, validators.ErrSubscriptionRequired)
	}
	if err := validators.ValidateNotification(req.Notification); err != nil {
		return badRequest(c, err)
	}

	if err := r.notifications.Send(c.Request().Context(), *req.Subscription, *req.Notification); err != nil {
		return internalError(c, service.ErrPushFailed.Error(), err, r.debug)
	}

	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Notification sent successfully"})
}

func (r *notificationRoutes) broadcast(c echo.Context) error {
	if !r.notifications.Configured() {
		return internalError(c, service.ErrPushNotConfigured.Error(), service.ErrPushNotConfigured, r.debug)
	}

	var n *domain.Notification
	if err := json.NewDecoder(c.Request().Body).Decode(&n); err != nil {
		return badRequest(c, validators.ErrMalformedBody)
	}
	if err := validators.ValidateNotification(n); err != nil {
		return badRequest(c, err)
	}

	res, err := r.notifications.Broadcast(c.Request().Context(), *n)
	if err != nil {
		return internalError(c, "Failed to broadcast notification", err, r.debug)
	}

	message := "Notification broadcast completed"
	if res.Total == 0 {
		message = "No subscriptions found"
	}
	return c.JSON(http.StatusOK, broadcastResultResponse{Success: true, Message: message, BroadcastResult: res})
}

func (r *notificationRoutes) stats(c echo.Context) error {
	subs, err := r.notifications.List(c.Request().Context())
	if err != nil {
		return internalError(c, "Failed to get subscriptions", err, r.debug)
	}

	resp := subscriptionStatsResponse{Total: len(subs), Subscriptions: make([]subscriptionSummary, 0, len(subs))}
	for _, sub := range subs {
		resp.Subscriptions = append(resp.Subscriptions, subscriptionSummary{
			ID:        sub.ID,
			CreatedAt: sub.CreatedAt,
			UpdatedAt: sub.UpdatedAt,
			UserAgent: sub.UserAgent,
		})
	}

	return c.JSON(http.StatusOK, resp)
}

package service

import (
	"github.com/Egor213/LogiStream/internal/activity"
	"github.com/Egor213/LogiStream/internal/broker"
	"github.com/Egor213/LogiStream/internal/metrics"
	"github.com/Egor213/LogiStream/internal/push"
	"github.com/Egor213/LogiStream/internal/repo"
)

type Services struct {
	Log          *LogService
	Stream       *StreamService
	Takeout      *TakeoutService
	Notification *NotificationService
}

type ServicesDependencies struct {
	Repos          *repo.Repositories
	Counters       *metrics.Counters
	BrokerProducer broker.Producer
	Activities     activity.Source
	PushSender     push.Sender

	Stream  StreamConfig
	Takeout TakeoutConfig
}

func NewServices(deps ServicesDependencies) *Services {
	logs := NewLogService(deps.Repos.Log, deps.Repos.Connection, deps.Counters, deps.BrokerProducer)
	stream := NewStreamService(deps.Stream, logs, deps.Repos.Connection, deps.Counters)
	notifications := NewNotificationService(deps.Repos.Subscription, deps.PushSender, deps.Counters)

	return &Services{
		Log:          logs,
		Stream:       stream,
		Takeout:      NewTakeoutService(deps.Takeout, logs, stream, notifications, deps.Activities),
		Notification: notifications,
	}
}

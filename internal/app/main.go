package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Egor213/LogiStream/internal/activity"
	"github.com/Egor213/LogiStream/internal/activity/notion"
	"github.com/Egor213/LogiStream/internal/broker"
	kafkabroker "github.com/Egor213/LogiStream/internal/broker/kafka"
	"github.com/Egor213/LogiStream/internal/config"
	httpv1 "github.com/Egor213/LogiStream/internal/controller/http/v1"
	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/Egor213/LogiStream/internal/metrics"
	"github.com/Egor213/LogiStream/internal/push"
	"github.com/Egor213/LogiStream/internal/repo"
	"github.com/Egor213/LogiStream/internal/service"
	errorsUtils "github.com/Egor213/LogiStream/pkg/errors"
	"github.com/Egor213/LogiStream/pkg/httpserver"
	"github.com/Egor213/LogiStream/pkg/logger"
	"github.com/Egor213/LogiStream/pkg/postgres"
	"github.com/labstack/echo/v4"

	log "github.com/sirupsen/logrus"
)

const readHeaderTimeout = 5 * time.Second

func Run() {
	// Config
	cfg, err := config.New()
	if err != nil {
		log.Fatal(errorsUtils.WrapPathErr(err))
	}

	// Logger
	logger.SetupLogger(cfg.Log.Level)
	log.Info("Logger has been set up")

	// Migrations
	Migrate(cfg.PG.URL)

	// DB connecting
	log.Info("Connecting to DB")
	pg, err := postgres.New(cfg.PG.URL,
		postgres.MaxPoolSize(cfg.PG.MaxPoolSize),
		postgres.ConnAttempts(cfg.PG.ConnAttempts),
		postgres.ConnTimeout(cfg.PG.ConnTimeout),
	)
	if err != nil {
		log.Fatal(errorsUtils.WrapPathErr(err))
	}
	defer pg.Close()
	log.Info("Connected to DB")

	// Repos
	repositories := repo.NewRepositories(pg, cfg.LogStore.MaxEntries)

	// Producer
	brokerProducer := newBrokerProducer(cfg.Kafka)
	defer func() {
		if err := brokerProducer.Close(); err != nil {
			log.Error(errorsUtils.WrapPathErr(err))
		}
	}()

	// External collaborators
	activities := activity.NewCached(notion.New(notion.Config{
		APIKey:     cfg.Notion.APIKey,
		DatabaseID: cfg.Notion.ActivitiesDatabaseID,
		BaseURL:    cfg.Notion.BaseURL,
		Timeout:    cfg.Notion.Timeout,
	}), cfg.Notion.CacheTTL)

	pushSender := push.NewWebPushSender(push.Config{
		PublicKey:  cfg.Push.VAPIDPublicKey,
		PrivateKey: cfg.Push.VAPIDPrivateKey,
		Subscriber: cfg.Push.Subscriber,
		TTL:        cfg.Push.TTL,
	})

	// Services
	metricsCnt := metrics.New()
	deps := service.ServicesDependencies{
		Repos:          repositories,
		Counters:       metricsCnt,
		BrokerProducer: brokerProducer,
		Activities:     activities,
		PushSender:     pushSender,
		Stream: service.StreamConfig{
			HeartbeatInterval: cfg.Stream.HeartbeatInterval,
			IdleTimeout:       cfg.Stream.IdleTimeout,
			SweepInterval:     cfg.Stream.SweepInterval,
			RetryAdvice:       cfg.Stream.RetryAdvice,
			BufferSize:        cfg.Stream.BufferSize,
		},
		Takeout: service.TakeoutConfig{
			MaxLogs: cfg.Takeout.MaxLogs,
			Version: cfg.Takeout.Version,
		},
	}
	services := service.NewServices(deps)

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go services.Stream.RunSweeper(sweeperCtx)

	// API server
	log.Infof("Starting API server...")
	log.Debugf("API server port: %s", cfg.HTTP.Port)
	apiHandler := echo.New()
	httpv1.ConfigureRouter(apiHandler, services, httpv1.RouterOptions{
		Debug:            cfg.App.Debug,
		MetricsSubsystem: "api",
	})
	apiServer := httpserver.New(apiHandler,
		httpserver.Port(cfg.HTTP.Port),
		httpserver.ReadTimeout(0),
		httpserver.ReadHeaderTimeout(readHeaderTimeout),
		httpserver.WriteTimeout(0),
		httpserver.OnShutdown(services.Stream.Shutdown),
	)

	// Prometheus server
	log.Infof("Starting metrics server...")
	log.Debugf("Metrics server port: %s", cfg.Prometheus.Port)
	metricsHandler := echo.New()
	metrics.ConfigureRouter(metricsHandler)
	metricsServer := httpserver.New(metricsHandler, httpserver.Port(cfg.Prometheus.Port))

	services.Log.AddLog(domain.LevelInfo, "Server started", map[string]string{
		"name":    cfg.App.Name,
		"version": cfg.App.Version,
	}, nil)

	log.Info("Configuring graceful shutdown...")

	// Waiting signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info(errorsUtils.WrapPathErr(errors.New(s.String())))
	case err := <-metricsServer.Notify():
		log.Info(errorsUtils.WrapPathErr(err))
	case err := <-apiServer.Notify():
		log.Info(errorsUtils.WrapPathErr(err))
	}

	// Graceful shutdown
	stopSweeper()
	shutdownApp(apiServer, metricsServer)
}

func newBrokerProducer(cfg config.Kafka) broker.Producer {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info("Kafka mirroring disabled")
		return broker.Nop{}
	}
	log.WithField("topic", cfg.Topic).Infof("Mirroring log entries to Kafka at %v", cfg.Brokers)
	return kafkabroker.NewProducer(kafkabroker.ProducerConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
	})
}

func shutdownApp(apiServer, metricsServer *httpserver.Server) {
	log.Info("Shutting down...")
	if err := apiServer.Shutdown(); err != nil {
		log.Error(errorsUtils.WrapPathErr(err))
	}
	if err := metricsServer.Shutdown(); err != nil {
		log.Error(errorsUtils.WrapPathErr(err))
	}
}

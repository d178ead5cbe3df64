package config

import (
	"os"
	"time"

	errorsUtils "github.com/Egor213/LogiStream/pkg/errors"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type (
	Config struct {
		App        `yaml:"app"`
		Log        `yaml:"log"`
		HTTP       `yaml:"http"`
		Prometheus `yaml:"prometheus"`
		PG         `yaml:"postgres"`
		Kafka      `yaml:"kafka"`
		LogStore   `yaml:"log_store"`
		Stream     `yaml:"stream"`
		Takeout    `yaml:"takeout"`
		Notion     `yaml:"notion"`
		Push       `yaml:"push"`
	}

	App struct {
		Name    string `yaml:"name" env-required:"true"`
		Version string `yaml:"version" env-required:"true"`
		Debug   bool   `yaml:"debug" env:"APP_DEBUG" env-default:"false"`
	}

	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	}

	HTTP struct {
		Port string `env-required:"true" yaml:"port" env:"HTTP_PORT"`
	}

	Prometheus struct {
		Port string `env-required:"true" yaml:"port" env:"PROMETHEUS_PORT"`
	}

	PG struct {
		MaxPoolSize  int           `env-required:"true" env:"MAX_POOL_SIZE" yaml:"max_pool_size"`
		URL          string        `env-required:"true" env:"PG_URL"`
		ConnAttempts int           `env:"PG_CONN_ATTEMPTS" yaml:"conn_attempts" env-default:"10"`
		ConnTimeout  time.Duration `env:"PG_CONN_TIMEOUT" yaml:"conn_timeout" env-default:"1s"`
	}

	Kafka struct {
		Enabled bool     `yaml:"enabled" env:"KAFKA_ENABLED" env-default:"false"`
		Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
		Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"sse-logs"`
	}

	LogStore struct {
		MaxEntries int `yaml:"max_entries" env:"LOG_STORE_MAX_ENTRIES" env-default:"1000"`
	}

	Stream struct {
		HeartbeatInterval time.Duration `yaml:"heartbeat_interval" env:"STREAM_HEARTBEAT_INTERVAL" env-default:"30s"`
		IdleTimeout       time.Duration `yaml:"idle_timeout" env:"STREAM_IDLE_TIMEOUT" env-default:"5m"`
		SweepInterval     time.Duration `yaml:"sweep_interval" env:"STREAM_SWEEP_INTERVAL" env-default:"1m"`
		RetryAdvice       time.Duration `yaml:"retry_advice" env:"STREAM_RETRY_ADVICE" env-default:"5s"`
		BufferSize        int           `yaml:"buffer_size" env:"STREAM_BUFFER_SIZE" env-default:"64"`
	}

	Takeout struct {
		MaxLogs int    `yaml:"max_logs" env:"TAKEOUT_MAX_LOGS" env-default:"1000"`
		Version string `yaml:"version" env:"TAKEOUT_VERSION" env-default:"1.0.0"`
	}

	Notion struct {
		APIKey               string        `env:"NOTION_API_KEY"`
		ActivitiesDatabaseID string        `env:"NOTION_ACTIVITIES_DATABASE_ID"`
		BaseURL              string        `yaml:"base_url" env:"NOTION_BASE_URL" env-default:"https://api.notion.com"`
		Timeout              time.Duration `yaml:"timeout" env:"NOTION_TIMEOUT" env-default:"10s"`
		CacheTTL             time.Duration `yaml:"cache_ttl" env:"NOTION_CACHE_TTL" env-default:"1m"`
	}

	Push struct {
		VAPIDPublicKey  string `env:"NEXT_PUBLIC_VAPID_PUBLIC_KEY"`
		VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY"`
		Subscriber      string `yaml:"subscriber" env:"VAPID_EMAIL" env-default:"mailto:noreply@notionmanager.app"`
		TTL             int    `yaml:"ttl" env:"PUSH_TTL" env-default:"60"`
	}
)

const ENV_PATH = "infra/.env.dev"

func init() {
	if err := godotenv.Load(ENV_PATH); err != nil {
		log.WithField("path", ENV_PATH).Debugf("No .env file loaded: %v", err)
	}
}

func New() (*Config, error) {
	cfg := &Config{}

	pathToConfig, ok := os.LookupEnv("APP_CONFIG_PATH")
	if !ok || pathToConfig == "" {
		log.WithField("env_var", "APP_CONFIG_PATH").
			Info("Config path is not set, using default")
		pathToConfig = "infra/config.yaml"
	}

	if err := cleanenv.ReadConfig(pathToConfig, cfg); err != nil {
		return nil, errorsUtils.WrapPathErr(err)
	}

	if err := cleanenv.UpdateEnv(cfg); err != nil {
		return nil, errorsUtils.WrapPathErr(err)
	}

	return cfg, nil
}

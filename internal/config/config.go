package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

const envPrefix = "TOURVISTA_"

type Config struct {
	Primary  Primary        `koanf:"primary"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Gateway  GatewayConfig  `koanf:"gateway"`
	Retry    RetryConfig    `koanf:"retry"`
	Logger   LoggerConfig   `koanf:"logger"`
	Worker   WorkerConfig   `koanf:"worker"`
	Mail     MailConfig     `koanf:"mail"`
	Kafka    KafkaConfig    `koanf:"kafka"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port           string        `koanf:"port" validate:"required"`
	ReadTimeout    time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout   time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout    time.Duration `koanf:"idle_timeout" validate:"required"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"required"`
	WebhookTimeout time.Duration `koanf:"webhook_timeout" validate:"required"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
	MigrateOnStart  bool          `koanf:"migrate_on_start"`
}

// GatewayConfig holds the Razorpay credentials and endpoint.
type GatewayConfig struct {
	BaseURL       string        `koanf:"base_url" validate:"required,url"`
	KeyID         string        `koanf:"key_id" validate:"required"`
	KeySecret     string        `koanf:"key_secret" validate:"required"`
	WebhookSecret string        `koanf:"webhook_secret" validate:"required"`
	Currency      string        `koanf:"currency" validate:"required,len=3"`
	Timeout       time.Duration `koanf:"timeout" validate:"required"`
}

type RetryConfig struct {
	BaseDelay  int32 `koanf:"base_delay"`
	MaxRetries int32 `koanf:"max_retries"`
}

type WorkerConfig struct {
	Interval          time.Duration `koanf:"interval" validate:"required"`
	BatchSize         int           `koanf:"batch_size" validate:"required"`
	MaxAttempts       int           `koanf:"max_attempts" validate:"required"`
	RetryBackoff      time.Duration `koanf:"retry_backoff" validate:"required"`
	IntegrityInterval time.Duration `koanf:"integrity_interval" validate:"required"`
}

type MailConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Host        string `koanf:"host"`
	Port        int    `koanf:"port"`
	Username    string `koanf:"username"`
	Password    string `koanf:"password"`
	From        string `koanf:"from" validate:"omitempty,email"`
	CompanyName string `koanf:"company_name"`
}

type KafkaConfig struct {
	Enabled bool   `koanf:"enabled"`
	Brokers string `koanf:"brokers"`
	Topic   string `koanf:"topic"`
}

type MetricsConfig struct {
	Path string `koanf:"path" validate:"required"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"primary.env":                 "development",
		"server.port":                 "8080",
		"server.read_timeout":         "10s",
		"server.write_timeout":        "30s",
		"server.idle_timeout":         "60s",
		"server.request_timeout":      "25s",
		"server.webhook_timeout":      "20s",
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     10,
		"database.max_idle_conns":     2,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "10m",
		"gateway.base_url":            "https://api.razorpay.com",
		"gateway.currency":            "INR",
		"gateway.timeout":             "10s",
		"retry.base_delay":            200,
		"retry.max_retries":           3,
		"logger.level":                "info",
		"logger.format":               "text",
		"worker.interval":             "5s",
		"worker.batch_size":           20,
		"worker.max_attempts":         8,
		"worker.retry_backoff":        "30s",
		"worker.integrity_interval":   "5m",
		"mail.port":                   587,
		"mail.company_name":           "TourVista",
		"kafka.topic":                 "tourvista.booking-confirmed",
		"metrics.path":                "/metrics",
	}
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		logger.Error("failed to load config defaults", "error", err)
		return nil, err
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

// Package config loads service configuration from the environment, with an
// optional .env file for local development. Defaults keep a bare
// `go run ./cmd/server` working against the in-memory stores.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	strutil "origo/pkg/platform/strings"
)

// Config holds all the configuration variables for the origination service.
// These values are loaded from environment variables.
type Config struct {
	ServerAddr      string        `mapstructure:"SERVER_ADDR"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	JWTSigningKey string        `mapstructure:"JWT_SIGNING_KEY"`
	JWTIssuer     string        `mapstructure:"JWT_ISSUER"`
	JWTAudience   string        `mapstructure:"JWT_AUDIENCE"`
	TokenTTL      time.Duration `mapstructure:"TOKEN_TTL"`
	AdminToken    string        `mapstructure:"ADMIN_TOKEN"`

	// DatabaseURL switches persistence from the in-memory stores to
	// Postgres when set.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	RedisURL          string        `mapstructure:"REDIS_URL"`
	RedisPoolSize     int           `mapstructure:"REDIS_POOL_SIZE"`
	RedisMinIdleConns int           `mapstructure:"REDIS_MIN_IDLE_CONNS"`
	RedisDialTimeout  time.Duration `mapstructure:"REDIS_DIAL_TIMEOUT"`
	RedisReadTimeout  time.Duration `mapstructure:"REDIS_READ_TIMEOUT"`
	RedisWriteTimeout time.Duration `mapstructure:"REDIS_WRITE_TIMEOUT"`
	// RedisLockTTL bounds how long a crashed writer can hold a
	// per-application transition lock.
	RedisLockTTL time.Duration `mapstructure:"REDIS_LOCK_TTL"`

	// KafkaBrokers enables the audit event stream when set. Comma-separated.
	// KafkaTopicPrefix names the three category topics: <prefix>.compliance,
	// <prefix>.security, <prefix>.ops.
	KafkaBrokers     string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopicPrefix string `mapstructure:"KAFKA_TOPIC_PREFIX"`

	// AuditBufferSize enables the async audit pipeline when positive;
	// zero keeps audit writes synchronous with the operation.
	AuditBufferSize int `mapstructure:"AUDIT_BUFFER_SIZE"`

	// AuditPollInterval sets how often the outbox relay looks for
	// unpublished events.
	AuditPollInterval time.Duration `mapstructure:"AUDIT_POLL_INTERVAL"`

	// CounterOfferTransitions moves applications into counter_offered as
	// part of issuing an offer instead of leaving the status untouched.
	CounterOfferTransitions bool `mapstructure:"COUNTER_OFFER_TRANSITIONS"`
}

// RedisConfig tunes the shared Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Redis bundles the Redis settings for the platform client.
func (c Config) Redis() RedisConfig {
	return RedisConfig{
		URL:          c.RedisURL,
		PoolSize:     c.RedisPoolSize,
		MinIdleConns: c.RedisMinIdleConns,
		DialTimeout:  c.RedisDialTimeout,
		ReadTimeout:  c.RedisReadTimeout,
		WriteTimeout: c.RedisWriteTimeout,
	}
}

// Brokers splits the broker list for the Kafka client. Repeated entries
// collapse to one so a sloppy env value cannot double a broker connection.
func (c Config) Brokers() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	return strutil.DedupeAndTrim(strings.Split(c.KafkaBrokers, ","))
}

// Load reads configuration from environment variables, with an optional .env
// file at the given path. Environment variables win over file values.
func Load(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_ADDR", ":8080")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	// Development fallback only; deployments must override.
	viper.SetDefault("JWT_SIGNING_KEY", "dev-secret-key-change-in-production")
	viper.SetDefault("JWT_ISSUER", "origo")
	viper.SetDefault("JWT_AUDIENCE", "origo-backoffice")
	viper.SetDefault("TOKEN_TTL", "1h")
	viper.SetDefault("KAFKA_TOPIC_PREFIX", "origo.audit")
	viper.SetDefault("AUDIT_BUFFER_SIZE", 0)
	viper.SetDefault("AUDIT_POLL_INTERVAL", "1s")
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	viper.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	viper.SetDefault("REDIS_READ_TIMEOUT", "3s")
	viper.SetDefault("REDIS_WRITE_TIMEOUT", "3s")
	viper.SetDefault("REDIS_LOCK_TTL", "30s")
	viper.SetDefault("COUNTER_OFFER_TRANSITIONS", false)

	for _, key := range []string{
		"SERVER_ADDR", "SHUTDOWN_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
		"JWT_SIGNING_KEY", "JWT_ISSUER", "JWT_AUDIENCE", "TOKEN_TTL", "ADMIN_TOKEN",
		"DATABASE_URL",
		"REDIS_URL", "REDIS_POOL_SIZE", "REDIS_MIN_IDLE_CONNS",
		"REDIS_DIAL_TIMEOUT", "REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT", "REDIS_LOCK_TTL",
		"KAFKA_BROKERS", "KAFKA_TOPIC_PREFIX", "AUDIT_BUFFER_SIZE", "AUDIT_POLL_INTERVAL",
		"COUNTER_OFFER_TRANSITIONS",
	} {
		_ = viper.BindEnv(key)
	}

	// The .env file is optional; only real read failures matter.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
		err = nil
	}

	if err = viper.Unmarshal(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}

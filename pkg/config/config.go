package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Cleanup      CleanupConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"TILLPOINT_APP_ENV" default:"dev"`
	Port         string   `envconfig:"TILLPOINT_APP_PORT" default:"3000"`
	LogLevel     string   `envconfig:"TILLPOINT_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"TILLPOINT_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"TILLPOINT_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"TILLPOINT_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"TILLPOINT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TILLPOINT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TILLPOINT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TILLPOINT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TILLPOINT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TILLPOINT_REDIS_ADDR"`
	Password     string        `envconfig:"TILLPOINT_REDIS_PASSWORD"`
	DB           int           `envconfig:"TILLPOINT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TILLPOINT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TILLPOINT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TILLPOINT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TILLPOINT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TILLPOINT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CleanupConfig governs the idempotency retention sweep.
type CleanupConfig struct {
	Interval      time.Duration `envconfig:"TILLPOINT_CLEANUP_INTERVAL" default:"6h"`
	RetentionDays int           `envconfig:"TILLPOINT_CLEANUP_RETENTION_DAYS" default:"2"`
	PendingMaxAge time.Duration `envconfig:"TILLPOINT_CLEANUP_PENDING_MAX_AGE" default:"1h"`
	LockTTL       time.Duration `envconfig:"TILLPOINT_CLEANUP_LOCK_TTL" default:"30m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TILLPOINT_AUTO_MIGRATE" default:"false"`
}

// Package config loads the service configuration from the environment, an
// optional .env file and an optional config.yaml, in that order of priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend names accepted in STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendBolt     = "bolt"
)

type Config struct {
	Port      int             `mapstructure:"port"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Bolt      BoltConfig      `mapstructure:"bolt"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Compat    CompatConfig    `mapstructure:"compat"`
	Shutdown  ShutdownConfig  `mapstructure:"shutdown"`
	SeedDemo  bool            `mapstructure:"seed"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

type BoltConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// RateLimitConfig limits requests per client IP. RPS <= 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// CompatConfig toggles behaviour kept for older clients.
type CompatConfig struct {
	// TruthyUpdates makes updates ignore empty strings and zero numbers.
	TruthyUpdates bool `mapstructure:"truthy_updates"`
}

type ShutdownConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

var envBindings = map[string]string{
	"port":                  "PORT",
	"store.backend":         "STORE_BACKEND",
	"redis.host":            "REDIS_HOST",
	"redis.port":            "REDIS_PORT",
	"redis.username":        "REDIS_USERNAME",
	"redis.password":        "REDIS_PASSWORD",
	"redis.db":              "REDIS_DB",
	"mongo.uri":             "MONGODB_URI",
	"mongo.database":        "MONGODB_DATABASE",
	"postgres.url":          "DATABASE_URL",
	"bolt.path":             "BOLT_PATH",
	"log.level":             "LOG_LEVEL",
	"ratelimit.rps":         "RATE_LIMIT_RPS",
	"ratelimit.burst":       "RATE_LIMIT_BURST",
	"compat.truthy_updates": "TRUTHY_UPDATES",
	"shutdown.timeout":      "SHUTDOWN_TIMEOUT",
	"seed":                  "SEED_DEMO",
}

// Load reads the configuration and validates it.
// Connection settings of the selected backend have no defaults: a missing
// value is an error rather than a silent fallback.
func Load() (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	v := viper.New()
	v.SetDefault("port", 3000)
	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("redis.port", 6379)
	v.SetDefault("mongo.database", "inventory")
	v.SetDefault("log.level", "info")
	v.SetDefault("ratelimit.burst", 10)
	v.SetDefault("shutdown.timeout", 10*time.Second)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("error loading config file: %w", err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return cfg, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Shutdown.Timeout <= 0 {
		return errors.New("shutdown timeout is not configured")
	}

	switch c.Store.Backend {
	case BackendMemory:
		return nil
	case BackendRedis:
		if c.Redis.Host == "" {
			return errors.New("REDIS_HOST is required for the redis backend")
		}
		if c.Redis.Port <= 0 {
			return fmt.Errorf("invalid REDIS_PORT %d", c.Redis.Port)
		}
		return nil
	case BackendMongo:
		if c.Mongo.URI == "" {
			return errors.New("MONGODB_URI is required for the mongo backend")
		}
		if c.Mongo.Database == "" {
			return errors.New("MONGODB_DATABASE is required for the mongo backend")
		}
		return nil
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
		return nil
	case BackendBolt:
		if c.Bolt.Path == "" {
			return errors.New("BOLT_PATH is required for the bolt backend")
		}
		return nil
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
}

// String returns a representation safe to log; secrets are masked.
func (c Config) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("port=%d backend=%s log=%s", c.Port, c.Store.Backend, c.Log.Level))
	switch c.Store.Backend {
	case BackendRedis:
		b.WriteString(fmt.Sprintf(" redis=%s user=%s password=%s", c.Redis.Addr(), c.Redis.Username, mask(c.Redis.Password)))
	case BackendMongo:
		b.WriteString(fmt.Sprintf(" mongo.database=%s", c.Mongo.Database))
	case BackendBolt:
		b.WriteString(fmt.Sprintf(" bolt=%s", c.Bolt.Path))
	}
	if c.RateLimit.RPS > 0 {
		b.WriteString(fmt.Sprintf(" ratelimit=%.1f/%d", c.RateLimit.RPS, c.RateLimit.Burst))
	}
	if c.Compat.TruthyUpdates {
		b.WriteString(" truthy_updates=true")
	}
	return b.String()
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

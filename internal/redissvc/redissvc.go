package redissvc

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/inventory-app/internal/config"
)

// Retry policy of the client's own connection handling: up to 10 retries with
// a backoff growing from 100ms and capped at 3s per attempt.
const (
	maxRetries      = 10
	minRetryBackoff = 100 * time.Millisecond
	maxRetryBackoff = 3 * time.Second
)

type RedisService struct {
	rdb      *redis.Client
	endpoint string
}

func NewRedisService(cfg config.RedisConfig) *RedisService {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr(),
		Username:        cfg.Username,
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      maxRetries,
		MinRetryBackoff: minRetryBackoff,
		MaxRetryBackoff: maxRetryBackoff,
	})
	return &RedisService{
		rdb:      rdb,
		endpoint: cfg.Addr(),
	}
}

// Connect creates the service and checks that the server answers.
func Connect(ctx context.Context, cfg config.RedisConfig) (*RedisService, error) {
	rs := NewRedisService(cfg)
	if err := rs.rdb.Ping(ctx).Err(); err != nil {
		rs.Close()
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", rs.endpoint, err)
	}
	return rs, nil
}

func (a *RedisService) Rdb() *redis.Client {
	return a.rdb
}

func (a *RedisService) Endpoint() string {
	return a.endpoint
}

func (a *RedisService) Close() error {
	return a.rdb.Close()
}

package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/inventory-app/internal/models"
	"github.com/rogerio-castellano/inventory-app/internal/redissvc"
)

const (
	redisProductsKey = "products"
	redisCounterKey  = "product:id:counter"

	redisUpdateRetries = 1000
)

// RedisProductRepository keeps every product as a JSON value in one hash,
// keyed by "product:<id>". Ids come from an INCR counter.
type RedisProductRepository struct {
	rdb      *redis.Client
	endpoint string
}

func NewRedisProductRepository(rs *redissvc.RedisService) *RedisProductRepository {
	return &RedisProductRepository{rdb: rs.Rdb(), endpoint: rs.Endpoint()}
}

func redisField(id models.ID) string {
	return "product:" + id.String()
}

func (r *RedisProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	values, err := r.rdb.HGetAll(ctx, redisProductsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	products := make([]models.Product, 0, len(values))
	for field, raw := range values {
		var p models.Product
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", field, err)
		}
		products = append(products, p)
	}
	sortNewestFirst(products)
	return products, nil
}

// Create takes the id from the atomic counter before writing the record.
// If the write fails the id is simply skipped.
func (r *RedisProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	id, err := r.rdb.Incr(ctx, redisCounterKey).Result()
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to allocate product id: %w", err)
	}

	p.ID = models.IntID(id)
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	if err := r.put(ctx, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Update runs as a WATCH/MULTI transaction on the products hash, so a
// concurrent write to the hash (another update, a delete) makes it retry
// from a fresh read instead of overwriting that write.
func (r *RedisProductRepository) Update(ctx context.Context, id models.ID, patch models.ProductPatch) (models.Product, error) {
	field := redisField(id)

	var updated models.Product
	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, redisProductsKey, field).Result()
		if errors.Is(err, redis.Nil) {
			return ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read product %s: %w", id, err)
		}

		var p models.Product
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return fmt.Errorf("failed to decode product %s: %w", id, err)
		}
		p = patch.Apply(p, now())

		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to encode product %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, redisProductsKey, field, data)
			return nil
		})
		if err == nil {
			updated = p
		}
		return err
	}

	for range redisUpdateRetries {
		err := r.rdb.Watch(ctx, txf, redisProductsKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				return models.Product{}, err
			}
			return models.Product{}, fmt.Errorf("failed to update product %s: %w", id, err)
		}
		return updated, nil
	}
	return models.Product{}, fmt.Errorf("failed to update product %s: gave up after %d conflicting writes", id, redisUpdateRetries)
}

func (r *RedisProductRepository) Delete(ctx context.Context, id models.ID) error {
	if err := r.rdb.HDel(ctx, redisProductsKey, redisField(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

func (r *RedisProductRepository) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	products, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterByKeyword(products, keyword), nil
}

func (r *RedisProductRepository) Health(ctx context.Context) HealthStatus {
	return healthStatus("Redis", r.endpoint, r.rdb.Ping(ctx).Err())
}

func (r *RedisProductRepository) put(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode product %s: %w", p.ID, err)
	}
	if err := r.rdb.HSet(ctx, redisProductsKey, redisField(p.ID), data).Err(); err != nil {
		return fmt.Errorf("failed to write product %s: %w", p.ID, err)
	}
	return nil
}

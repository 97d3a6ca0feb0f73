package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rogerio-castellano/inventory-app/internal/config"
	"github.com/rogerio-castellano/inventory-app/internal/db"
	"github.com/rogerio-castellano/inventory-app/internal/redissvc"
	"github.com/rogerio-castellano/inventory-app/internal/repo"
)

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if backendFlag != "" {
		cfg.Store.Backend = strings.ToLower(strings.TrimSpace(backendFlag))
		if err := cfg.Validate(); err != nil {
			return cfg, fmt.Errorf("config validation failed: %w", err)
		}
	}
	return cfg, nil
}

// openStore connects the configured backend. The returned func releases it.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repo.ProductRepository, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return repo.NewInMemoryProductRepository(), func() {}, nil

	case config.BackendRedis:
		rs, err := redissvc.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("✅ Connected to Redis", "endpoint", rs.Endpoint())
		return repo.NewRedisProductRepository(rs), func() { _ = rs.Close() }, nil

	case config.BackendMongo:
		client, err := db.ConnectMongo(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("✅ Connected to MongoDB", "database", cfg.Mongo.Database)
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		return repo.NewMongoProductRepository(client, cfg.Mongo.Database), closeFn, nil

	case config.BackendPostgres:
		database, err := db.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		r := repo.NewPostgresProductRepository(database, db.Endpoint(cfg.Postgres.URL))
		if err := r.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		logger.Info("✅ Connected to PostgreSQL", "endpoint", db.Endpoint(cfg.Postgres.URL))
		return r, func() { _ = database.Close() }, nil

	case config.BackendBolt:
		r, err := repo.NewBoltProductRepository(cfg.Bolt.Path, 0o600)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("✅ Opened bbolt store", "path", cfg.Bolt.Path)
		return r, func() { _ = r.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/rogerio-castellano/inventory-app/internal/config"
	"github.com/rogerio-castellano/inventory-app/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestOpenStore_Memory(t *testing.T) {
	cfg := config.Config{Store: config.StoreConfig{Backend: config.BackendMemory}}

	store, closeStore, err := openStore(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer closeStore()

	assert.Equal(t, "Memory", store.Health(context.Background()).Database)
}

func TestOpenStore_Bolt(t *testing.T) {
	cfg := config.Config{
		Store: config.StoreConfig{Backend: config.BackendBolt},
		Bolt:  config.BoltConfig{Path: filepath.Join(t.TempDir(), "inventory.db")},
	}

	store, closeStore, err := openStore(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer closeStore()

	p, err := store.Create(context.Background(), models.Product{Name: "Laptop", Price: 50000, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, models.ID("1"), p.ID)
}

func TestOpenStore_Unknown(t *testing.T) {
	cfg := config.Config{Store: config.StoreConfig{Backend: "cassandra"}}

	_, _, err := openStore(context.Background(), cfg, discardLogger())
	assert.Error(t, err)
}

func TestLoadConfig_BackendFlag(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("BOLT_PATH", "")

	backendFlag = " BOLT "
	t.Cleanup(func() { backendFlag = "" })

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOLT_PATH")

	t.Setenv("BOLT_PATH", filepath.Join(t.TempDir(), "inventory.db"))
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.BackendBolt, cfg.Store.Backend)
}

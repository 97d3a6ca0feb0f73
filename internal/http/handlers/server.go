package handlers

import (
	"log/slog"

	repo "github.com/rogerio-castellano/inventory-app/internal/repo"
)

var (
	productRepo repo.ProductRepository
	metricsRepo repo.MetricsRepository

	logger = slog.Default()

	// truthyUpdates keeps the stored value when an update sends an empty
	// string or a zero number.
	truthyUpdates bool
)

// SetProductRepo selects the store used by every product route and derives
// the metrics repository from it.
func SetProductRepo(r repo.ProductRepository) {
	productRepo = r
	metricsRepo = repo.NewProductMetricsRepository(r)
}

func SetLogger(l *slog.Logger) {
	logger = l
}

func SetTruthyUpdates(enabled bool) {
	truthyUpdates = enabled
}

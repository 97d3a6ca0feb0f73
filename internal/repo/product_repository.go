package repo

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rogerio-castellano/inventory-app/internal/models"
)

// ProductRepository defines the interface for product data operations.
// Every backend implements the same contract, so handlers never need to know
// which one is active.
type ProductRepository interface {
	// GetAll returns every product, newest first where the backend orders them.
	GetAll(ctx context.Context) ([]models.Product, error)
	// Create assigns an id and timestamps and persists the product.
	Create(ctx context.Context, product models.Product) (models.Product, error)
	// Update merges patch over the stored product.
	// Returns ErrProductNotFound if no product has the given id.
	Update(ctx context.Context, id models.ID, patch models.ProductPatch) (models.Product, error)
	// Delete removes the product. Deleting a missing id is not an error.
	Delete(ctx context.Context, id models.ID) error
	// Search returns products whose name (and category, where supported)
	// contains keyword, ignoring case.
	Search(ctx context.Context, keyword string) ([]models.Product, error)
	// Health pings the backend and describes it.
	Health(ctx context.Context) HealthStatus
}

// HealthStatus is reported by GET /api/health.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Endpoint string `json:"endpoint"`
	Error    string `json:"error,omitempty"`
}

// OK reports whether the backend answered.
func (h HealthStatus) OK() bool {
	return h.Status == "ok"
}

func healthStatus(database, endpoint string, err error) HealthStatus {
	h := HealthStatus{Status: "ok", Database: database, Endpoint: endpoint}
	if err != nil {
		h.Status = "error"
		h.Error = err.Error()
	}
	return h
}

// ErrProductNotFound is returned when a product is not found in the repository.
var ErrProductNotFound = errors.New("product not found")

func matchesKeyword(p models.Product, keyword string, withCategory bool) bool {
	k := strings.ToLower(keyword)
	if strings.Contains(strings.ToLower(p.Name), k) {
		return true
	}
	return withCategory && strings.Contains(strings.ToLower(p.Category), k)
}

func filterByKeyword(products []models.Product, keyword string) []models.Product {
	filtered := []models.Product{}
	for _, p := range products {
		if matchesKeyword(p, keyword, true) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func sortNewestFirst(products []models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		// same instant: higher counter id was created later
		ai, aok := a.ID.Int()
		bi, bok := b.ID.Int()
		if aok && bok {
			return ai > bi
		}
		return a.ID > b.ID
	})
}

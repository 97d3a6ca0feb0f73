package repo

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rogerio-castellano/inventory-app/internal/models"
)

// now is the clock used to stamp createdAt/updatedAt.
var now = func() time.Time {
	return time.Now().UTC()
}

// InMemoryProductRepository is an in-memory implementation of ProductRepository.
// Products are kept in insertion order and lost on restart.
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products []models.Product
	nextID   int64
}

// NewInMemoryProductRepository creates a new instance of InMemoryProductRepository.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: []models.Product{},
		nextID:   1,
	}
}

// GetAll retrieves all products from the repository.
func (r *InMemoryProductRepository) GetAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.products), nil
}

// Create adds a new product to the repository.
func (r *InMemoryProductRepository) Create(_ context.Context, product models.Product) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = models.IntID(r.nextID)
	r.nextID++
	product.CreatedAt = now()
	product.UpdatedAt = product.CreatedAt
	r.products = append(r.products, product)
	return product, nil
}

// Update modifies an existing product in the repository.
func (r *InMemoryProductRepository) Update(_ context.Context, id models.ID, patch models.ProductPatch) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ID == id {
			r.products[i] = patch.Apply(p, now())
			return r.products[i], nil
		}
	}
	return models.Product{}, ErrProductNotFound
}

// Delete removes a product from the repository by its ID.
func (r *InMemoryProductRepository) Delete(_ context.Context, id models.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = slices.DeleteFunc(r.products, func(p models.Product) bool {
		return p.ID == id
	})
	return nil
}

// Search matches keyword against name and category.
func (r *InMemoryProductRepository) Search(_ context.Context, keyword string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return filterByKeyword(r.products, keyword), nil
}

func (r *InMemoryProductRepository) Health(_ context.Context) HealthStatus {
	return healthStatus("Memory", "in-process", nil)
}

// Clear drops every product. Ids keep counting from where they were.
func (r *InMemoryProductRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = []models.Product{}
}

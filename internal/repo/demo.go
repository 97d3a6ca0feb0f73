package repo

import (
	"context"
	"fmt"

	"github.com/rogerio-castellano/inventory-app/internal/models"
)

// DemoProducts is the starter catalog loaded by `inventory seed` and SEED_DEMO.
func DemoProducts() []models.Product {
	return []models.Product{
		{Name: "Laptop", Category: "Electronics", Price: 50000, Quantity: 3},
		{Name: "Mouse", Category: "Electronics", Price: 500, Quantity: 15},
		{Name: "Keyboard", Category: "Electronics", Price: 2000, Quantity: 8},
		{Name: "Monitor", Category: "Electronics", Price: 15000, Quantity: 2},
		{Name: "USB Cable", Category: "Accessories", Price: 200, Quantity: 50},
	}
}

// Seed creates each product in order and returns how many were stored.
func Seed(ctx context.Context, r ProductRepository, products []models.Product) (int, error) {
	for i, p := range products {
		if _, err := r.Create(ctx, p); err != nil {
			return i, fmt.Errorf("seeding %q: %w", p.Name, err)
		}
	}
	return len(products), nil
}

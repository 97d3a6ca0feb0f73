package repo

import (
	"context"

	"github.com/rogerio-castellano/inventory-app/internal/models"
)

type Metrics struct {
	TotalProducts  int     `json:"totalProducts"`
	LowStockCount  int     `json:"lowStockCount"`
	TotalQuantity  int     `json:"totalQuantity"`
	InventoryValue float64 `json:"inventoryValue"`
}

type MetricsRepository interface {
	GetDashboardMetrics(ctx context.Context) (Metrics, error)
}

// ProductMetricsRepository derives the dashboard figures from the product list,
// so it works on top of any backend.
type ProductMetricsRepository struct {
	productRepo ProductRepository
}

func NewProductMetricsRepository(productRepo ProductRepository) *ProductMetricsRepository {
	return &ProductMetricsRepository{productRepo: productRepo}
}

// GetDashboardMetrics implements MetricsRepository.
func (m *ProductMetricsRepository) GetDashboardMetrics(ctx context.Context) (Metrics, error) {
	products, err := m.productRepo.GetAll(ctx)
	if err != nil {
		return Metrics{}, err
	}
	return summarize(products), nil
}

func summarize(products []models.Product) Metrics {
	m := Metrics{TotalProducts: len(products)}
	for _, p := range products {
		if p.LowStock() {
			m.LowStockCount++
		}
		m.TotalQuantity += p.Quantity
		m.InventoryValue += p.Price * float64(p.Quantity)
	}
	return m
}

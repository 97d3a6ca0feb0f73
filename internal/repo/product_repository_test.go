package repo

import (
	"errors"
	"testing"
	"time"

	"github.com/rogerio-castellano/inventory-app/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSortNewestFirst(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	products := []models.Product{
		{ID: "2", Name: "b", CreatedAt: t0},
		{ID: "10", Name: "c", CreatedAt: t0},
		{ID: "1", Name: "a", CreatedAt: t0.Add(-time.Hour)},
		{ID: "3", Name: "d", CreatedAt: t0.Add(time.Hour)},
	}

	sortNewestFirst(products)

	assert.Equal(t, []string{"d", "c", "b", "a"}, names(products))
}

func TestFilterByKeyword(t *testing.T) {
	products := []models.Product{
		{Name: "Laptop", Category: "Electronics"},
		{Name: "USB Cable", Category: "Accessories"},
	}

	assert.Equal(t, []string{"Laptop"}, names(filterByKeyword(products, "LAP")))
	assert.Equal(t, []string{"USB Cable"}, names(filterByKeyword(products, "access")))
	assert.Equal(t, []string{"Laptop", "USB Cable"}, names(filterByKeyword(products, "")))

	none := filterByKeyword(products, "phone")
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%`, escapeLike("50%"))
	assert.Equal(t, `usb\_c`, escapeLike("usb_c"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
	assert.Equal(t, "laptop", escapeLike("laptop"))
}

func TestUpdateAssignments(t *testing.T) {
	name := "Gaming Laptop"
	qty := 0

	sets, args := updateAssignments(models.ProductPatch{Name: &name, Quantity: &qty})

	assert.Equal(t, []string{"updated_at = $1", "name = $2", "quantity = $3"}, sets)
	assert.Len(t, args, 3)
	assert.Equal(t, "Gaming Laptop", args[1])
	assert.Equal(t, 0, args[2])
}

func TestHealthStatus(t *testing.T) {
	ok := healthStatus("Redis", "localhost:6379", nil)
	assert.True(t, ok.OK())
	assert.Empty(t, ok.Error)

	down := healthStatus("Redis", "localhost:6379", errors.New("connection refused"))
	assert.False(t, down.OK())
	assert.Equal(t, "error", down.Status)
	assert.Equal(t, "connection refused", down.Error)
}

func TestSummarize(t *testing.T) {
	m := summarize([]models.Product{
		{Price: 50000, Quantity: 3},
		{Price: 500, Quantity: 15},
		{Price: 200, Quantity: 5},
	})

	assert.Equal(t, 3, m.TotalProducts)
	assert.Equal(t, 1, m.LowStockCount)
	assert.Equal(t, 23, m.TotalQuantity)
	assert.Equal(t, 158500.0, m.InventoryValue)
}

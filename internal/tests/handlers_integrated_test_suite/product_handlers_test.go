package handlers_integrated_test_suite

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"

	api "github.com/rogerio-castellano/inventory-app/internal/http"
	handler "github.com/rogerio-castellano/inventory-app/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-app/internal/repo"
)

func stores(t *testing.T) []store {
	t.Helper()
	if os.Getenv(skipIntegrationTests) != "" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}

	bolt, err := openBoltStore(t.TempDir())
	if err != nil {
		t.Fatalf("could not open bolt store: %v", err)
	}
	t.Cleanup(func() { bolt.close() })
	out := []store{bolt}

	pg, ok, err := openPostgresStore(t.Context())
	if err != nil {
		t.Fatalf("postgres: %v", err)
	}
	if ok {
		t.Cleanup(func() { pg.close() })
		out = append(out, pg)
	}
	return out
}

func TestProductLifecycle(t *testing.T) {
	for _, s := range stores(t) {
		t.Run(s.name, func(t *testing.T) {
			use(s)
			t.Cleanup(func() {
				if err := s.clear(); err != nil {
					t.Errorf("clearing %s: %v", s.name, err)
				}
			})
			r := api.NewRouter()

			created, err := createProduct(r, map[string]any{"name": "Laptop", "category": "Electronics", "price": 50000, "quantity": 3})
			if err != nil {
				t.Fatal(err)
			}
			if !created.LowStock {
				t.Error("expected lowStock for quantity 3")
			}

			w := sendJSON(r, http.MethodPut, "/api/products/"+created.ID.String(), map[string]any{"price": "45000.50"})
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
			}
			var updated handler.ProductResponse
			json.NewDecoder(w.Body).Decode(&updated)
			if updated.ID != created.ID || updated.Name != "Laptop" || updated.Quantity != 3 || updated.Price != 45000.50 {
				t.Errorf("unexpected update result %+v", updated.Product)
			}

			w = get(r, "/api/products/search/LAP")
			var found []handler.ProductResponse
			json.NewDecoder(w.Body).Decode(&found)
			if len(found) != 1 || found[0].ID != created.ID {
				t.Errorf("expected search to find the laptop, got %+v", found)
			}

			for range 2 {
				req := sendJSON(r, http.MethodDelete, "/api/products/"+created.ID.String(), nil)
				if req.Code != http.StatusOK {
					t.Fatalf("expected 200 OK on delete, got %d", req.Code)
				}
			}

			w = sendJSON(r, http.MethodPut, "/api/products/"+created.ID.String(), map[string]any{"name": "Ghost"})
			if w.Code != http.StatusNotFound {
				t.Errorf("expected 404 after delete, got %d", w.Code)
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	for _, s := range stores(t) {
		t.Run(s.name, func(t *testing.T) {
			use(s)
			t.Cleanup(func() { s.clear() })
			r := api.NewRouter()

			if _, err := repo.Seed(t.Context(), s.repo, repo.DemoProducts()); err != nil {
				t.Fatalf("seeding failed: %v", err)
			}

			w := get(r, "/api/health")
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
			}

			var m repo.Metrics
			json.NewDecoder(get(r, "/api/metrics").Body).Decode(&m)
			if m.TotalProducts != 5 || m.LowStockCount != 2 {
				t.Errorf("unexpected metrics %+v", m)
			}
		})
	}
}

func TestBoltStoreSurvivesRestart(t *testing.T) {
	if os.Getenv(skipIntegrationTests) != "" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	dir := t.TempDir()

	first, err := openBoltStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	use(first)
	created, err := createProduct(api.NewRouter(), map[string]any{"name": "Monitor", "price": 15000, "quantity": 2})
	if err != nil {
		t.Fatal(err)
	}
	first.close()

	second, err := openBoltStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { second.close() })
	use(second)

	var products []handler.ProductResponse
	json.NewDecoder(get(api.NewRouter(), "/api/products").Body).Decode(&products)
	if len(products) != 1 || products[0].ID != created.ID {
		t.Errorf("expected the product to survive reopening, got %+v", products)
	}
}

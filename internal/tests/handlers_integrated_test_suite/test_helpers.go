package handlers_integrated_test_suite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/rogerio-castellano/inventory-app/internal/db"
	handler "github.com/rogerio-castellano/inventory-app/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-app/internal/repo"
)

const skipIntegrationTests = "INVENTORY_SKIP_INTEGRATION_TESTS"

// store is one backend the suite runs against, plus a way to empty it.
type store struct {
	name  string
	repo  repo.ProductRepository
	clear func() error
	close func() error
}

func openBoltStore(dir string) (store, error) {
	path := filepath.Join(dir, "inventory.db")
	r, err := repo.NewBoltProductRepository(path, 0o600)
	if err != nil {
		return store{}, err
	}
	return store{
		name: "bolt",
		repo: r,
		clear: func() error {
			products, err := r.GetAll(context.Background())
			if err != nil {
				return err
			}
			for _, p := range products {
				if err := r.Delete(context.Background(), p.ID); err != nil {
					return err
				}
			}
			return nil
		},
		close: r.Close,
	}, nil
}

// openPostgresStore uses DATABASE_URL; it returns ok=false when it is unset.
func openPostgresStore(ctx context.Context) (store, bool, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return store{}, false, nil
	}

	database, err := db.Connect(ctx, dbURL)
	if err != nil {
		return store{}, true, fmt.Errorf("could not connect to database: %w", err)
	}
	r := repo.NewPostgresProductRepository(database, db.Endpoint(dbURL))
	if err := r.EnsureSchema(ctx); err != nil {
		database.Close()
		return store{}, true, err
	}
	return store{
		name:  "postgres",
		repo:  r,
		clear: func() error { return truncate(database) },
		close: database.Close,
	}, true, nil
}

func truncate(database *sql.DB) error {
	_, err := database.Exec("TRUNCATE TABLE products")
	return err
}

func use(s store) {
	handler.SetProductRepo(s.repo)
}

func sendJSON(r http.Handler, method, target string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createProduct(r http.Handler, p map[string]any) (handler.ProductResponse, error) {
	w := sendJSON(r, http.MethodPost, "/api/products", p)
	if w.Code != http.StatusCreated {
		return handler.ProductResponse{}, fmt.Errorf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}
	var resp handler.ProductResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		return handler.ProductResponse{}, fmt.Errorf("error decoding response: %v", err)
	}
	return resp, nil
}

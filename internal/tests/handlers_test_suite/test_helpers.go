package handlers_test_suite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	handler "github.com/rogerio-castellano/inventory-app/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-app/internal/models"
	"github.com/rogerio-castellano/inventory-app/internal/repo"
)

var productRepo *repo.InMemoryProductRepository

func init() {
	setupTestRepos()
}

func setupTestRepos() {
	productRepo = repo.NewInMemoryProductRepository()
	handler.SetProductRepo(productRepo)
	handler.SetTruthyUpdates(false)
}

func clearAllProducts() {
	productRepo.Clear()
}

func sendJSON(r http.Handler, method, target string, payload any) *httptest.ResponseRecorder {
	var body []byte
	switch p := payload.(type) {
	case string:
		body = []byte(p)
	default:
		body, _ = json.Marshal(p)
	}

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

func createProduct(r http.Handler, p map[string]any) *httptest.ResponseRecorder {
	return sendJSON(r, http.MethodPost, "/api/products", p)
}

func updateProduct(r http.Handler, id models.ID, p any) *httptest.ResponseRecorder {
	return sendJSON(r, http.MethodPut, "/api/products/"+id.String(), p)
}

func deleteProduct(r http.Handler, id models.ID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+id.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// mustCreateProduct creates the product and returns the decoded response.
func mustCreateProduct(r http.Handler, p map[string]any) (handler.ProductResponse, error) {
	w := createProduct(r, p)
	if w.Code != http.StatusCreated {
		return handler.ProductResponse{}, fmt.Errorf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}
	var resp handler.ProductResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		return handler.ProductResponse{}, fmt.Errorf("error decoding response: %v", err)
	}
	return resp, nil
}

func multipartCSV(csvContent string, filename string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, _ := writer.CreateFormFile("file", filename)
	part.Write([]byte(csvContent))

	writer.Close()
	return &buf, writer.FormDataContentType()
}

// brokenRepo fails every call, as a store whose connection dropped would.
type brokenRepo struct{}

var errConnRefused = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")

func (brokenRepo) GetAll(context.Context) ([]models.Product, error) {
	return nil, errConnRefused
}

func (brokenRepo) Create(context.Context, models.Product) (models.Product, error) {
	return models.Product{}, errConnRefused
}

func (brokenRepo) Update(context.Context, models.ID, models.ProductPatch) (models.Product, error) {
	return models.Product{}, errConnRefused
}

func (brokenRepo) Delete(context.Context, models.ID) error {
	return errConnRefused
}

func (brokenRepo) Search(context.Context, string) ([]models.Product, error) {
	return nil, errConnRefused
}

func (brokenRepo) Health(context.Context) repo.HealthStatus {
	return repo.HealthStatus{Status: "error", Database: "Redis", Endpoint: "127.0.0.1:6379", Error: errConnRefused.Error()}
}

func useBrokenRepo() func() {
	handler.SetProductRepo(brokenRepo{})
	return func() { handler.SetProductRepo(productRepo) }
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	repo "github.com/rogerio-castellano/inventory-app/internal/repo"
)

const productNotFoundMessage = "Product not found"

// GetProductsHandler godoc
// @Summary List all products
// @Description Newest first on backends that order by creation time
// @Tags products
// @Produce json
// @Success 200 {array} ProductResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/products [get]
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := productRepo.GetAll(r.Context())
	if err != nil {
		writeStoreError(w, r, "list", err)
		return
	}
	respond(w, r, http.StatusOK, newProductsResponse(products))
}

// CreateProductHandler godoc
// @Summary Create a new product
// @Description Adds a product to the inventory. Price and quantity may be sent as numbers or numeric strings.
// @Tags products
// @Accept json
// @Produce json
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/products [post]
func CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid input: %v", err))
		return
	}

	if validationErrors := validateCreate(req); len(validationErrors) > 0 {
		respond(w, r, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: validationErrors})
		return
	}

	created, err := productRepo.Create(r.Context(), req.product())
	if err != nil {
		writeStoreError(w, r, "create", err)
		return
	}

	logger.InfoContext(r.Context(), "Product created", "id", created.ID, "name", created.Name)
	respond(w, r, http.StatusCreated, newProductResponse(created))
}

// UpdateProductHandler godoc
// @Summary Update a product
// @Description Partial update: fields left out of the body keep their values
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body ProductRequest true "Fields to change"
// @Success 200 {object} ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/products/{id} [put]
func UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id := productID(r)

	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid input: %v", err))
		return
	}

	if validationErrors := validateUpdate(req, truthyUpdates); len(validationErrors) > 0 {
		respond(w, r, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: validationErrors})
		return
	}

	patch := req.patch()
	if truthyUpdates {
		patch = patch.Truthy()
	}

	updated, err := productRepo.Update(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			writeError(w, r, http.StatusNotFound, productNotFoundMessage)
			return
		}
		writeStoreError(w, r, "update", err)
		return
	}

	respond(w, r, http.StatusOK, newProductResponse(updated))
}

// DeleteProductHandler godoc
// @Summary Delete a product
// @Description Succeeds whether or not the product exists
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} MessageResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/products/{id} [delete]
func DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id := productID(r)
	if err := productRepo.Delete(r.Context(), id); err != nil {
		writeStoreError(w, r, "delete", err)
		return
	}
	respond(w, r, http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
}

// SearchProductsHandler godoc
// @Summary Search products
// @Description Case-insensitive substring match on name (and category on most backends)
// @Tags products
// @Produce json
// @Param keyword path string true "Keyword"
// @Success 200 {array} ProductResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/products/search/{keyword} [get]
func SearchProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := productRepo.Search(r.Context(), pathParam(r, "keyword"))
	if err != nil {
		writeStoreError(w, r, "search", err)
		return
	}
	respond(w, r, http.StatusOK, newProductsResponse(products))
}

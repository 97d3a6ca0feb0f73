package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

var requiredColumns = []string{"name", "price", "quantity"}

type csvRow struct {
	line int
	req  ProductRequest
}

func parseCSV(file io.Reader) ([]csvRow, []ProductValidationError, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid CSV header")
	}

	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, nil, fmt.Errorf("CSV header is missing the %q column", col)
		}
	}

	var (
		rows    []csvRow
		errList []ProductValidationError
	)
	for line := 2; ; line++ { // header is line 1
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("CSV read error: %v", err)
		}

		req, err := rowRequest(record, index)
		if err != nil {
			errList = append(errList, ProductValidationError{Description: fmt.Sprintf("row %d: %v", line, err)})
			continue
		}
		rows = append(rows, csvRow{line: line, req: req})
	}
	return rows, errList, nil
}

func rowRequest(record []string, index map[string]int) (ProductRequest, error) {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	price, err := strconv.ParseFloat(cell("price"), 64)
	if err != nil {
		return ProductRequest{}, errors.New("invalid price")
	}
	qty, err := strconv.Atoi(cell("quantity"))
	if err != nil {
		return ProductRequest{}, errors.New("invalid quantity")
	}

	name, category := cell("name"), cell("category")
	fp, fq := FlexFloat(price), FlexInt(qty)
	return ProductRequest{Name: &name, Category: &category, Price: &fp, Quantity: &fq}, nil
}

// ImportProductsHandler godoc
// @Summary Import products via CSV
// @Description Header row must contain name, price and quantity; category is optional. Every valid row is created as a new product.
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} ImportProductsResult
// @Failure 400 {object} ErrorResponse
// @Router /api/products/import [post]
func ImportProductsHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10*maxBodyBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	rows, errorsList, err := parseCSV(file)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if errorsList == nil {
		errorsList = []ProductValidationError{}
	}

	var imported int
	for _, row := range rows {
		if verrs := validateCreate(row.req); len(verrs) > 0 {
			for _, ve := range verrs {
				errorsList = append(errorsList, ProductValidationError{
					Field:       ve.Field,
					Description: fmt.Sprintf("row %d: %s", row.line, ve.Description),
				})
			}
			continue
		}

		if _, err := productRepo.Create(r.Context(), row.req.product()); err != nil {
			errorsList = append(errorsList, ProductValidationError{Description: fmt.Sprintf("row %d: %v", row.line, err)})
			continue
		}
		imported++
	}

	logger.InfoContext(r.Context(), "Products imported", "imported", imported, "rejected", len(errorsList))
	respond(w, r, http.StatusOK, ImportProductsResult{
		ImportedProductsCount: imported,
		Errors:                errorsList,
	})
}

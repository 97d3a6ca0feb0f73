package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rogerio-castellano/inventory-app/internal/models"
)

// ProductRequest is the body of create and update requests. Fields left out
// of the JSON stay nil.
type ProductRequest struct {
	Name     *string    `json:"name,omitempty" validate:"omitnil,max=200"`
	Category *string    `json:"category,omitempty" validate:"omitnil,max=100"`
	Price    *FlexFloat `json:"price,omitempty" validate:"omitnil,gte=0,lte=1000000000"`
	Quantity *FlexInt   `json:"quantity,omitempty" validate:"omitnil,gte=0,lte=2147483647"`
}

func (req ProductRequest) patch() models.ProductPatch {
	var pp models.ProductPatch
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		pp.Name = &name
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		pp.Category = &category
	}
	if req.Price != nil {
		price := float64(*req.Price)
		pp.Price = &price
	}
	if req.Quantity != nil {
		qty := int(*req.Quantity)
		pp.Quantity = &qty
	}
	return pp
}

func (req ProductRequest) product() models.Product {
	return req.patch().Apply(models.Product{}, time.Time{})
}

type ProductResponse struct {
	models.Product
	LowStock bool `json:"lowStock"`
}

func newProductResponse(p models.Product) ProductResponse {
	return ProductResponse{Product: p, LowStock: p.LowStock()}
}

func newProductsResponse(products []models.Product) []ProductResponse {
	resp := make([]ProductResponse, len(products))
	for i, p := range products {
		resp[i] = newProductResponse(p)
	}
	return resp
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error  string                   `json:"error"`
	Fields []ProductValidationError `json:"fields,omitempty"`
}

type ImportProductsResult struct {
	ImportedProductsCount int                      `json:"imported"`
	Errors                []ProductValidationError `json:"errors"`
}

// FlexFloat accepts a JSON number or a string holding one, as sent by HTML
// form inputs.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s, err := numericText(data)
	if err != nil {
		return err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%q is not a number", s)
	}
	*f = FlexFloat(v)
	return nil
}

// FlexInt accepts a JSON integer or a string holding one. Values must fit
// in 32 bits, the width of the relational quantity column.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	s, err := numericText(data)
	if err != nil {
		return err
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
			return fmt.Errorf("%q is not a 32-bit integer", s)
		}
		v = int64(f)
	}
	*n = FlexInt(v)
	return nil
}

func numericText(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	if len(data) == 0 || data[0] == '{' || data[0] == '[' || data[0] == 't' || data[0] == 'f' {
		return "", fmt.Errorf("%s is not a number", data)
	}
	return string(data), nil
}

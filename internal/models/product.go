package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// LowStockThreshold is the quantity under which a product counts as low stock.
const LowStockThreshold = 5

// Product represents a product entity in the inventory system.
type Product struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LowStock reports whether the product is below LowStockThreshold.
func (p Product) LowStock() bool {
	return p.Quantity < LowStockThreshold
}

// ProductPatch carries the fields of a partial update. A nil field is left untouched.
type ProductPatch struct {
	Name     *string
	Category *string
	Price    *float64
	Quantity *int
}

// Apply merges the present fields over p and stamps UpdatedAt.
func (pp ProductPatch) Apply(p Product, now time.Time) Product {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Quantity != nil {
		p.Quantity = *pp.Quantity
	}
	p.UpdatedAt = now
	return p
}

// Truthy drops empty strings and zero numbers from the patch, so that they keep
// the stored value instead of overwriting it.
func (pp ProductPatch) Truthy() ProductPatch {
	if pp.Name != nil && *pp.Name == "" {
		pp.Name = nil
	}
	if pp.Category != nil && *pp.Category == "" {
		pp.Category = nil
	}
	if pp.Price != nil && *pp.Price == 0 {
		pp.Price = nil
	}
	if pp.Quantity != nil && *pp.Quantity == 0 {
		pp.Quantity = nil
	}
	return pp
}

// IsEmpty reports whether no field is set.
func (pp ProductPatch) IsEmpty() bool {
	return pp.Name == nil && pp.Category == nil && pp.Price == nil && pp.Quantity == nil
}

// ID identifies a product within one store. Counter-based stores produce
// decimal integers, which are encoded as JSON numbers; ids generated by an
// external service are opaque and encoded as JSON strings.
type ID string

// IntID converts a counter value into an ID.
func IntID(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// Int returns the numeric value of a counter-based id.
func (id ID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (id ID) String() string {
	return string(id)
}

func (id ID) MarshalJSON() ([]byte, error) {
	if n, ok := id.Int(); ok {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ProductValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateCreate(p ProductRequest) []ProductValidationError {
	errs := structErrors(p)
	if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
		errs = append(errs, ProductValidationError{Field: "name", Description: "name is required"})
	}
	if p.Price == nil {
		errs = append(errs, ProductValidationError{Field: "price", Description: "price is required"})
	}
	if p.Quantity == nil {
		errs = append(errs, ProductValidationError{Field: "quantity", Description: "quantity is required"})
	}
	return errs
}

// validateUpdate checks the fields present in a partial update. With truthy
// updates an empty name means "unchanged" and is not an error.
func validateUpdate(p ProductRequest, truthy bool) []ProductValidationError {
	errs := structErrors(p)
	if !truthy && p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		errs = append(errs, ProductValidationError{Field: "name", Description: "name cannot be empty"})
	}
	return errs
}

func structErrors(p ProductRequest) []ProductValidationError {
	errs := []ProductValidationError{}
	err := validate.Struct(p)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return append(errs, ProductValidationError{Description: err.Error()})
	}
	for _, fe := range verrs {
		errs = append(errs, ProductValidationError{Field: fe.Field(), Description: describe(fe)})
	}
	return errs
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s cannot be negative", fe.Field())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

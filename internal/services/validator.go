package services

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"inventory/internal/models"
)

// InvalidRowMessage is the rejection reason surfaced verbatim in import
// results and API responses. It must not change.
const InvalidRowMessage = "Missing required fields or invalid data types"

// ErrInvalidRow is returned when a raw field set cannot be normalized into a
// product.
var ErrInvalidRow = errors.New("missing required fields or invalid data types")

// ValidateRow maps a raw field set (column name in lower case, textual value)
// to a normalized product, or rejects it with ErrInvalidRow. Checks run in a
// fixed order and stop at the first failure: name, then price, then quantity.
// The function is pure; identical input always yields the identical result.
func ValidateRow(fields map[string]string) (*models.Product, error) {
	name := strings.TrimSpace(fields["name"])
	if name == "" {
		return nil, ErrInvalidRow
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(fields["price"]), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return nil, ErrInvalidRow
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(fields["quantity"]))
	if err != nil || quantity < 0 {
		return nil, ErrInvalidRow
	}

	return &models.Product{
		Name:        name,
		Description: strings.TrimSpace(fields["description"]),
		Category:    strings.TrimSpace(fields["category"]),
		Price:       price,
		Quantity:    quantity,
	}, nil
}

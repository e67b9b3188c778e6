package repositories

import (
	"errors"

	"inventory/internal/models"
)

// ErrNotFound is returned when the requested product does not exist.
var ErrNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// Find returns one page of products matching the query together with
	// the total number of matches across all pages.
	Find(query models.ProductQuery) ([]models.Product, int64, error)
	GetByID(id uint) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id uint) error
	// Categories returns the distinct non-empty category values.
	Categories() ([]string, error)
	// EachRecord streams every product ordered by ID without loading the
	// whole table into memory. Iteration stops on the first error.
	EachRecord(fn func(models.Product) error) error
}

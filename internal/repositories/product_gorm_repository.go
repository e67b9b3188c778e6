package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"inventory/internal/models"
)

// sortColumns is the allow-list of sortable columns. Client-supplied sort
// keys are resolved through this map and never interpolated into SQL.
var sortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"quantity":   "quantity",
	"category":   "category",
	"created_at": "created_at",
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Find returns one page of matching products plus the total match count.
// Every filter value is passed as a bound parameter.
func (r *GORMProductRepository) Find(query models.ProductQuery) ([]models.Product, int64, error) {
	tx := r.db.Model(&models.Product{})

	if query.Name != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query.Name)+"%")
	}
	if query.Category != "" {
		tx = tx.Where("category = ?", query.Category)
	}
	if query.MinQuantity != nil {
		tx = tx.Where("quantity >= ?", *query.MinQuantity)
	}
	if query.MaxQuantity != nil {
		tx = tx.Where("quantity <= ?", *query.MaxQuantity)
	}
	if query.MinPrice != nil {
		tx = tx.Where("price >= ?", *query.MinPrice)
	}
	if query.MaxPrice != nil {
		tx = tx.Where("price <= ?", *query.MaxPrice)
	}
	if query.FromDate != nil {
		tx = tx.Where("created_at >= ?", *query.FromDate)
	}
	if query.ToDate != nil {
		tx = tx.Where("created_at <= ?", *query.ToDate)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	column, ok := sortColumns[query.SortBy]
	if !ok {
		column = "name"
	}
	direction := "asc"
	if query.SortOrder == models.SortDesc {
		direction = "desc"
	}

	var products []models.Product
	err := tx.Order(column + " " + direction).
		Limit(query.Limit).
		Offset(query.Offset()).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	return products, total, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database. The store assigns the ID.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Save(product) // Save updates all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// GORM's Save does not return ErrRecordNotFound when the row is
		// missing, so we check RowsAffected instead.
		return fmt.Errorf("product with ID %d: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a product by its ID. The model has no DeletedAt column, so
// this is a hard delete.
func (r *GORMProductRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
	}
	return nil
}

// Categories returns the distinct non-empty category values, ordered.
func (r *GORMProductRepository) Categories() ([]string, error) {
	var categories []string
	err := r.db.Model(&models.Product{}).
		Where("category <> ''").
		Distinct("category").
		Order("category asc").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// EachRecord streams every product ordered by ID, one row at a time.
func (r *GORMProductRepository) EachRecord(fn func(models.Product) error) error {
	rows, err := r.db.Model(&models.Product{}).Order("id asc").Rows()
	if err != nil {
		return fmt.Errorf("failed to open product scan: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var product models.Product
		if err := r.db.ScanRows(rows, &product); err != nil {
			return fmt.Errorf("failed to scan product row: %w", err)
		}
		if err := fn(product); err != nil {
			return err
		}
	}
	return rows.Err()
}

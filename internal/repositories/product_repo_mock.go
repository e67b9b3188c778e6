package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"inventory/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// It mirrors the filter, sort, and pagination semantics of the GORM
// implementation so services can be exercised without a database.
type MockProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[uint]models.Product),
		nextID:   1,
	}
}

// Find returns one page of matching products plus the total match count.
func (r *MockProductRepository) Find(query models.ProductQuery) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if matches(p, query) {
			matched = append(matched, p)
		}
	}
	sortProducts(matched, query.SortBy, query.SortOrder)

	total := int64(len(matched))
	start := query.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + query.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func matches(p models.Product, q models.ProductQuery) bool {
	if q.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Name)) {
		return false
	}
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.MinQuantity != nil && p.Quantity < *q.MinQuantity {
		return false
	}
	if q.MaxQuantity != nil && p.Quantity > *q.MaxQuantity {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	if q.FromDate != nil && p.CreatedAt.Before(*q.FromDate) {
		return false
	}
	if q.ToDate != nil && p.CreatedAt.After(*q.ToDate) {
		return false
	}
	return true
}

func sortProducts(products []models.Product, sortBy, sortOrder string) {
	less := func(a, b models.Product) bool { return a.Name < b.Name }
	switch sortBy {
	case "price":
		less = func(a, b models.Product) bool { return a.Price < b.Price }
	case "quantity":
		less = func(a, b models.Product) bool { return a.Quantity < b.Quantity }
	case "category":
		less = func(a, b models.Product) bool { return a.Category < b.Category }
	case "created_at":
		less = func(a, b models.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	sort.SliceStable(products, func(i, j int) bool {
		if sortOrder == models.SortDesc {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
	}
	return &product, nil
}

// Create adds a new product, assigning the next free ID.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == 0 {
		product.ID = r.nextID
		r.nextID++
	} else if product.ID >= r.nextID {
		r.nextID = product.ID + 1
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("product with ID %d: %w", product.ID, ErrNotFound)
	}
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

// Categories returns the distinct non-empty categories, ordered.
func (r *MockProductRepository) Categories() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, p := range r.products {
		if p.Category != "" {
			seen[p.Category] = true
		}
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

// EachRecord visits every product ordered by ID.
func (r *MockProductRepository) EachRecord(fn func(models.Product) error) error {
	r.mu.RLock()
	ids := make([]uint, 0, len(r.products))
	for id := range r.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	snapshot := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		snapshot = append(snapshot, r.products[id])
	}
	r.mu.RUnlock()

	for _, p := range snapshot {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

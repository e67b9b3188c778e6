package repositories_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inventory/internal/models"
	"inventory/internal/repositories"
)

// setupRepo opens a uniquely named shared in-memory SQLite database so every
// pooled connection sees the same data, and migrates the product table.
func setupRepo(t *testing.T) *repositories.GORMProductRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return repositories.NewGORMProductRepository(db)
}

func seed(t *testing.T, repo *repositories.GORMProductRepository, products []models.Product) {
	t.Helper()
	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			t.Fatalf("failed to seed product %s: %v", products[i].Name, err)
		}
	}
}

func catalogFixture() []models.Product {
	return []models.Product{
		{Name: "Gaming Laptop", Category: "Electronics", Price: 1500, Quantity: 4},
		{Name: "Office Laptop", Category: "Electronics", Price: 800, Quantity: 12},
		{Name: "Mouse", Category: "Electronics", Price: 15, Quantity: 200},
		{Name: "Desk", Category: "Furniture", Price: 120, Quantity: 8},
		{Name: "Chair", Category: "Furniture", Price: 90, Quantity: 30},
		{Name: "Notebook", Category: "Stationery", Price: 3.5, Quantity: 500},
		{Name: "Pen", Category: "Stationery", Price: 1.2, Quantity: 1000},
	}
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	repo := setupRepo(t)

	product := &models.Product{Name: "Widget", Price: 10, Quantity: 1}
	assert.NoError(t, repo.Create(product))
	assert.NotZero(t, product.ID)
	assert.False(t, product.CreatedAt.IsZero())
	assert.False(t, product.UpdatedAt.Before(product.CreatedAt))
}

func TestGetByIDNotFound(t *testing.T) {
	repo := setupRepo(t)

	product, err := repo.GetByID(42)
	assert.Nil(t, product)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestFind_NameIsCaseInsensitiveSubstring(t *testing.T) {
	repo := setupRepo(t)
	seed(t, repo, catalogFixture())

	query := models.DefaultQuery()
	query.Name = "lapTOP"

	products, total, err := repo.Find(query)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, products, 2)
	for _, p := range products {
		assert.Contains(t, p.Name, "Laptop")
	}
}

func TestFind_FiltersCombineWithAND(t *testing.T) {
	repo := setupRepo(t)
	seed(t, repo, catalogFixture())

	minPrice, maxPrice := 50.0, 1000.0
	minQty := 10
	query := models.DefaultQuery()
	query.Category = "Electronics"
	query.MinPrice = &minPrice
	query.MaxPrice = &maxPrice
	query.MinQuantity = &minQty

	products, total, err := repo.Find(query)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Office Laptop", products[0].Name)
}

func TestFind_RangeBoundsAreInclusive(t *testing.T) {
	repo := setupRepo(t)
	seed(t, repo, catalogFixture())

	minPrice, maxPrice := 90.0, 120.0
	query := models.DefaultQuery()
	query.MinPrice = &minPrice
	query.MaxPrice = &maxPrice

	products, total, err := repo.Find(query)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	names := []string{products[0].Name, products[1].Name}
	assert.ElementsMatch(t, []string{"Desk", "Chair"}, names)
}

func TestFind_DateRangeBoundsAreInclusive(t *testing.T) {
	repo := setupRepo(t)
	day := func(d, hour int) time.Time {
		return time.Date(2026, 8, d, hour, 0, 0, 0, time.UTC)
	}
	seed(t, repo, []models.Product{
		{Name: "First", Price: 1, Quantity: 1, CreatedAt: day(1, 9)},
		{Name: "Second", Price: 1, Quantity: 1, CreatedAt: day(2, 15)},
		{Name: "Third", Price: 1, Quantity: 1, CreatedAt: day(3, 9)},
	})

	// Records created exactly on a bound must match.
	from, to := day(1, 9), day(3, 9)
	query := models.DefaultQuery()
	query.FromDate = &from
	query.ToDate = &to

	_, total, err := repo.Find(query)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)

	from = day(2, 0)
	query = models.DefaultQuery()
	query.FromDate = &from

	products, total, err := repo.Find(query)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, p := range products {
		assert.False(t, p.CreatedAt.Before(from))
	}

	to = day(2, 15)
	query = models.DefaultQuery()
	query.ToDate = &to

	products, total, err = repo.Find(query)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	names := []string{products[0].Name, products[1].Name}
	assert.ElementsMatch(t, []string{"First", "Second"}, names)
}

func TestFind_SortDescReversesAsc(t *testing.T) {
	repo := setupRepo(t)
	seed(t, repo, catalogFixture())

	query := models.DefaultQuery()
	query.SortBy = "price"
	query.Limit = models.MaxLimit

	asc, _, err := repo.Find(query)
	assert.NoError(t, err)

	query.SortOrder = models.SortDesc
	desc, _, err := repo.Find(query)
	assert.NoError(t, err)

	assert.Len(t, desc, len(asc))
	for i := range asc {
		assert.Equal(t, asc[i].ID, desc[len(desc)-1-i].ID)
	}
}

func TestFind_UnknownSortKeyFallsBackToName(t *testing.T) {
	repo := setupRepo(t)
	seed(t, repo, catalogFixture())

	query := models.DefaultQuery()
	query.SortBy = "price; DROP TABLE products--"
	query.Limit = models.MaxLimit

	products, _, err := repo.Find(query)
	assert.NoError(t, err)
	for i := 1; i < len(products); i++ {
		assert.LessOrEqual(t, products[i-1].Name, products[i].Name)
	}

	// The table must still be intact.
	_, total, err := repo.Find(models.DefaultQuery())
	assert.NoError(t, err)
	assert.Equal(t, int64(len(catalogFixture())), total)
}

func TestFind_FilterValuesAreBoundNotInterpolated(t *testing.T) {
	repo := setupRepo(t)
	seed(t, repo, catalogFixture())

	query := models.DefaultQuery()
	query.Name = "'; DROP TABLE products--"

	_, total, err := repo.Find(query)
	assert.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = repo.Find(models.DefaultQuery())
	assert.NoError(t, err)
	assert.Equal(t, int64(len(catalogFixture())), total)
}

// Concatenating every page must yield exactly the filtered total with no
// duplicates and no omissions, in the requested order.
func TestFind_PaginationInvariant(t *testing.T) {
	repo := setupRepo(t)
	seed(t, repo, catalogFixture())

	query := models.DefaultQuery()
	query.SortBy = "price"
	query.Limit = 3

	_, total, err := repo.Find(query)
	assert.NoError(t, err)

	totalPages := int((total + int64(query.Limit) - 1) / int64(query.Limit))
	seen := make(map[uint]bool)
	var lastPrice float64
	for page := 1; page <= totalPages; page++ {
		query.Page = page
		products, pageTotal, err := repo.Find(query)
		assert.NoError(t, err)
		assert.Equal(t, total, pageTotal, "total must not drift between pages")
		for _, p := range products {
			assert.False(t, seen[p.ID], "product %d returned twice", p.ID)
			seen[p.ID] = true
			assert.GreaterOrEqual(t, p.Price, lastPrice)
			lastPrice = p.Price
		}
	}
	assert.Equal(t, int(total), len(seen))
}

func TestFind_PageBeyondEndIsEmpty(t *testing.T) {
	repo := setupRepo(t)
	seed(t, repo, catalogFixture())

	query := models.DefaultQuery()
	query.Page = 50

	products, total, err := repo.Find(query)
	assert.NoError(t, err)
	assert.Equal(t, int64(len(catalogFixture())), total)
	assert.Empty(t, products)
}

func TestUpdatePersistsChanges(t *testing.T) {
	repo := setupRepo(t)

	product := &models.Product{Name: "Widget", Price: 10, Quantity: 1}
	assert.NoError(t, repo.Create(product))

	product.Price = 12.5
	product.Quantity = 0
	assert.NoError(t, repo.Update(product))

	reloaded, err := repo.GetByID(product.ID)
	assert.NoError(t, err)
	assert.Equal(t, 12.5, reloaded.Price)
	assert.Equal(t, 0, reloaded.Quantity)
	assert.Equal(t, product.CreatedAt.Unix(), reloaded.CreatedAt.Unix())
}

func TestDeleteIsHardDelete(t *testing.T) {
	repo := setupRepo(t)

	product := &models.Product{Name: "Widget", Price: 10, Quantity: 1}
	assert.NoError(t, repo.Create(product))
	assert.NoError(t, repo.Delete(product.ID))

	_, err := repo.GetByID(product.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(product.ID), repositories.ErrNotFound)
}

func TestCategoriesAreDistinctAndNonEmpty(t *testing.T) {
	repo := setupRepo(t)
	seed(t, repo, catalogFixture())
	seed(t, repo, []models.Product{{Name: "Uncategorized", Price: 1, Quantity: 1}})

	categories, err := repo.Categories()
	assert.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Furniture", "Stationery"}, categories)
}

func TestEachRecordStreamsInIDOrder(t *testing.T) {
	repo := setupRepo(t)
	seed(t, repo, catalogFixture())

	var ids []uint
	err := repo.EachRecord(func(p models.Product) error {
		ids = append(ids, p.ID)
		return nil
	})
	assert.NoError(t, err)
	assert.Len(t, ids, len(catalogFixture()))
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}
}

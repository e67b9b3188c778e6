package models

import "time"

// Sort directions accepted by product listings.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Pagination limits for product listings.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ProductQuery describes a filtered, sorted, paginated read over the product
// table. Nil filter fields impose no constraint; all present filters are
// combined with AND. Range bounds are inclusive.
type ProductQuery struct {
	Name        string // case-insensitive substring match
	Category    string // exact match
	MinQuantity *int
	MaxQuantity *int
	MinPrice    *float64
	MaxPrice    *float64
	FromDate    *time.Time // on created_at
	ToDate      *time.Time
	SortBy      string
	SortOrder   string
	Page        int
	Limit       int
}

// DefaultQuery returns a ProductQuery with the listing defaults applied:
// sorted by name ascending, first page, ten records.
func DefaultQuery() ProductQuery {
	return ProductQuery{
		SortBy:    "name",
		SortOrder: SortAsc,
		Page:      1,
		Limit:     DefaultLimit,
	}
}

// Offset returns the record offset for the query's page and limit.
func (q ProductQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Pagination describes the position of a page within the full filtered set.
// Total comes from a filtered count query, not from the returned slice, so
// it stays accurate when the limit is smaller than the match count.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// ProductPage is the response envelope for product listings.
type ProductPage struct {
	Data       []Product  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPagination computes the page metadata for a filtered total.
func NewPagination(total int64, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

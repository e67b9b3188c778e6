package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"inventory/internal/models"
	"inventory/internal/repositories"
)

// ExportHeader is the fixed column order of CSV exports. It matches the
// columns the importer understands, so an export is valid import input.
var ExportHeader = []string{"id", "name", "description", "category", "price", "quantity", "created_at", "updated_at"}

// ExportService streams the full product table as CSV.
type ExportService struct {
	repo repositories.ProductRepository
}

// NewExportService creates a new ExportService.
func NewExportService(repo repositories.ProductRepository) *ExportService {
	return &ExportService{
		repo: repo,
	}
}

// Export writes every product to w as CSV, ordered by ID. Records are
// streamed one at a time, so the full table is never held in memory. The
// csv writer applies RFC 4180 quoting, doubling embedded quote characters.
func (s *ExportService) Export(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	err := s.repo.EachRecord(func(p models.Product) error {
		return cw.Write([]string{
			strconv.FormatUint(uint64(p.ID), 10),
			p.Name,
			p.Description,
			p.Category,
			strconv.FormatFloat(p.Price, 'f', -1, 64),
			strconv.Itoa(p.Quantity),
			p.CreatedAt.UTC().Format(time.RFC3339),
			p.UpdatedAt.UTC().Format(time.RFC3339),
		})
	})
	if err != nil {
		return fmt.Errorf("failed to export products: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

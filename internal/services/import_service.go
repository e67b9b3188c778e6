package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"

	"inventory/internal/models"
	"inventory/internal/repositories"
)

// ImportService ingests uploaded CSV files row by row. Valid rows are
// inserted immediately; invalid rows are collected and reported without
// aborting the batch.
type ImportService struct {
	repo   repositories.ProductRepository
	events EventPublisher
}

// NewImportService creates a new ImportService. The event publisher may be
// nil when no broker is configured.
func NewImportService(repo repositories.ProductRepository, events EventPublisher) *ImportService {
	return &ImportService{
		repo:   repo,
		events: events,
	}
}

// ImportFile streams the CSV file at path and persists every valid data row.
// The file is read in a single pass so memory stays bounded regardless of
// file size, and it is deleted on every exit path, including parse failures.
//
// Per-row outcomes never abort the stream: validation rejections are recorded
// with their 1-indexed row number, insert failures with the product name.
// Rows already committed stay committed when a later row fails.
func (s *ImportService) ImportFile(path string) (*models.ImportSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		removeUpload(path)
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() {
		file.Close()
		removeUpload(path)
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		// An empty file has no rows to report on.
		return &models.ImportSummary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := headerIndex(header)

	summary := &models.ImportSummary{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		if isEmptyRecord(record) {
			continue
		}
		summary.TotalRows++

		product, err := ValidateRow(rowFields(columns, record))
		if err != nil {
			summary.Errors = append(summary.Errors, models.ImportRowError{
				Row:   summary.TotalRows,
				Error: InvalidRowMessage,
			})
			continue
		}

		if err := s.repo.Create(product); err != nil {
			log.Printf("Failed to insert imported product %q: %v", product.Name, err)
			summary.Errors = append(summary.Errors, models.ImportRowError{
				Product: product.Name,
				Error:   "Failed to insert product",
			})
			continue
		}
		summary.SuccessfulImports++
	}

	s.publishCompleted(summary)
	return summary, nil
}

func (s *ImportService) publishCompleted(summary *models.ImportSummary) {
	if s.events == nil {
		return
	}
	err := s.events.PublishInventoryEvent("inventory.import.completed", map[string]interface{}{
		"totalRows":         summary.TotalRows,
		"successfulImports": summary.SuccessfulImports,
		"failedRows":        len(summary.Errors),
	})
	if err != nil {
		log.Printf("Failed to publish import completion event: %v", err)
	}
}

// headerIndex maps lower-cased column names to their position. A UTF-8 BOM
// on the first cell is stripped, as Windows tools commonly prepend one.
func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

// rowFields projects a record onto the header's column names. Exported
// system columns (id, created_at, updated_at) are dropped so export output
// can be re-imported unchanged.
func rowFields(columns map[string]int, record []string) map[string]string {
	fields := make(map[string]string, len(columns))
	for name, idx := range columns {
		switch name {
		case "id", "created_at", "updated_at":
			continue
		}
		if idx < len(record) {
			fields[name] = record[idx]
		}
	}
	return fields
}

func isEmptyRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func removeUpload(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Failed to remove uploaded file %s: %v", path, err)
	}
}

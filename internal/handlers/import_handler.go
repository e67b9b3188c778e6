package handlers

import (
	"bufio"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"inventory/internal/services"
)

// ImportHandler handles bulk CSV import and export of the product table.
type ImportHandler struct {
	importer *services.ImportService
	exporter *services.ExportService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importer *services.ImportService, exporter *services.ExportService) *ImportHandler {
	return &ImportHandler{
		importer: importer,
		exporter: exporter,
	}
}

// RegisterRoutes registers the import/export routes with the Fiber app.
// These must be registered before the product ":id" routes.
func (h *ImportHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/export", h.HandleExport)
	productRoutes.Post("/bulk-import", h.HandleBulkImport)
}

// HandleBulkImport accepts a multipart CSV upload and imports it row by row.
// Pre-checks (file present, .csv extension) fail fast with no side effects.
// Per-row failures are a normal 200 response carrying the error list.
func (h *ImportHandler) HandleBulkImport(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "No file uploaded",
		})
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Only CSV files are allowed",
		})
	}

	// Spool the upload to a temp file; the importer removes it on every
	// exit path.
	tmpPath := filepath.Join(os.TempDir(), "import-"+uuid.New().String()+".csv")
	if err := c.SaveFile(fileHeader, tmpPath); err != nil {
		log.Printf("Error saving uploaded CSV: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to store uploaded file",
		})
	}

	summary, err := h.importer.ImportFile(tmpPath)
	if err != nil {
		log.Printf("Error processing CSV import: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to process CSV file",
		})
	}

	var rowErrors interface{}
	if len(summary.Errors) > 0 {
		rowErrors = summary.Errors
	}
	return c.JSON(fiber.Map{
		"success":           true,
		"message":           "Bulk import completed",
		"totalRows":         summary.TotalRows,
		"successfulImports": summary.SuccessfulImports,
		"errors":            rowErrors,
	})
}

// HandleExport streams the full product table as a CSV attachment.
func (h *ImportHandler) HandleExport(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="products.csv"`)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		if err := h.exporter.Export(w); err != nil {
			// Headers are already gone; all we can do is log and stop.
			log.Printf("Error streaming product export: %v", err)
		}
	})
	return nil
}

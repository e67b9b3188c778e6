package handlers

import (
	"errors"
	"log"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app. The static
// paths must be registered before the ":id" routes so they are matched first.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/categories/all", h.HandleGetCategories)
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts returns one page of products matching the query string.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	query, err := parseProductQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid query parameters",
		})
	}

	page, err := h.service.List(query)
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Server error",
		})
	}
	return c.JSON(page)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		// A non-numeric ID can never match a record.
		return notFound(c)
	}

	product, err := h.service.Get(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound(c)
		}
		log.Printf("Error getting product %d: %v", id, err)
		return serverError(c)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a product from a multipart form with an
// optional image attachment.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	fields, image, err := parseProductForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, price, and quantity are required",
		})
	}

	product, err := h.service.Create(fields, image)
	if err != nil {
		return h.mutationError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial update to an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return notFound(c)
	}

	fields, image, err := parseProductForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid form data",
		})
	}

	product, err := h.service.Update(id, fields, image)
	if err != nil {
		return h.mutationError(c, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product and its image attachment.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return notFound(c)
	}

	if err := h.service.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound(c)
		}
		log.Printf("Error deleting product %d: %v", id, err)
		return serverError(c)
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}

// HandleGetCategories returns the distinct category values in use.
func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories()
	if err != nil {
		log.Printf("Error listing categories: %v", err)
		return serverError(c)
	}
	return c.JSON(categories)
}

// mutationError maps create/update failures onto the HTTP error taxonomy.
func (h *ProductHandler) mutationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return notFound(c)
	case errors.Is(err, services.ErrInvalidRow):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, price, and quantity are required",
		})
	case errors.Is(err, services.ErrFileTooLarge), errors.Is(err, services.ErrUnsupportedImage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		log.Printf("Error mutating product: %v", err)
		return serverError(c)
	}
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Product not found",
	})
}

func serverError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Server error",
	})
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// parseProductForm extracts the multipart field values (first value per key,
// keys lower-cased) and the optional image attachment.
func parseProductForm(c *fiber.Ctx) (map[string]string, *multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, err
	}

	fields := make(map[string]string, len(form.Value))
	for key, values := range form.Value {
		if len(values) > 0 {
			fields[strings.ToLower(key)] = values[0]
		}
	}

	var image *multipart.FileHeader
	if files := form.File["image"]; len(files) > 0 {
		image = files[0]
	}
	return fields, image, nil
}

// parseProductQuery builds a ProductQuery from the query string. Malformed
// numeric or date filters are a 400; unknown sort keys and out-of-range
// page/limit values fall back to the defaults.
func parseProductQuery(c *fiber.Ctx) (models.ProductQuery, error) {
	query := models.DefaultQuery()
	query.Name = c.Query("name")
	query.Category = c.Query("category")

	var err error
	if query.MinQuantity, err = parseIntParam(c.Query("minQuantity")); err != nil {
		return query, err
	}
	if query.MaxQuantity, err = parseIntParam(c.Query("maxQuantity")); err != nil {
		return query, err
	}
	if query.MinPrice, err = parseFloatParam(c.Query("minPrice")); err != nil {
		return query, err
	}
	if query.MaxPrice, err = parseFloatParam(c.Query("maxPrice")); err != nil {
		return query, err
	}
	if query.FromDate, err = parseDateParam(c.Query("fromDate"), false); err != nil {
		return query, err
	}
	if query.ToDate, err = parseDateParam(c.Query("toDate"), true); err != nil {
		return query, err
	}

	if v := c.Query("sortBy"); v != "" {
		query.SortBy = v // validated against the column allow-list downstream
	}
	if strings.EqualFold(c.Query("sortOrder"), models.SortDesc) {
		query.SortOrder = models.SortDesc
	}
	if v := c.QueryInt("page"); v >= 1 {
		query.Page = v
	}
	if v := c.QueryInt("limit"); v >= 1 {
		query.Limit = v
		if query.Limit > models.MaxLimit {
			query.Limit = models.MaxLimit
		}
	}
	return query, nil
}

func parseIntParam(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func parseFloatParam(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// parseDateParam accepts RFC 3339 timestamps or plain dates. A date-only
// upper bound is extended to the end of that day so the range is inclusive.
func parseDateParam(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

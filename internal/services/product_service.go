package services

import (
	"log"
	"math"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"inventory/internal/models"
	"inventory/internal/repositories"
)

// EventPublisher publishes inventory events to the message broker. A nil
// publisher disables events without changing service behavior.
type EventPublisher interface {
	PublishInventoryEvent(eventType string, payload map[string]interface{}) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	assets   *AssetService
	events   EventPublisher
	validate *validator.Validate
}

// NewProductService creates a new ProductService. The event publisher may be
// nil when no broker is configured.
func NewProductService(repo repositories.ProductRepository, assets *AssetService, events EventPublisher) *ProductService {
	return &ProductService{
		repo:     repo,
		assets:   assets,
		events:   events,
		validate: validator.New(),
	}
}

// List returns one page of products matching the query, together with the
// pagination envelope computed from the filtered total.
func (s *ProductService) List(query models.ProductQuery) (*models.ProductPage, error) {
	products, total, err := s.repo.Find(query)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return &models.ProductPage{
		Data:       products,
		Pagination: models.NewPagination(total, query.Page, query.Limit),
	}, nil
}

// Get retrieves a single product by its ID.
func (s *ProductService) Get(id uint) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// Create builds a product from raw form fields, optionally stores an image
// attachment, and persists the record.
func (s *ProductService) Create(fields map[string]string, image *multipart.FileHeader) (*models.Product, error) {
	product, err := ValidateRow(fields)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(product); err != nil {
		return nil, ErrInvalidRow
	}

	if image != nil {
		url, err := s.assets.Save(image)
		if err != nil {
			return nil, err
		}
		product.ImageURL = url
	}

	if err := s.repo.Create(product); err != nil {
		// Do not leak the stored asset when the insert fails.
		if product.ImageURL != "" {
			if rmErr := s.assets.Remove(product.ImageURL); rmErr != nil {
				log.Printf("Failed to clean up asset after create failure: %v", rmErr)
			}
		}
		return nil, err
	}

	s.publish("inventory.product.created", map[string]interface{}{
		"id":   product.ID,
		"name": product.Name,
	})
	return product, nil
}

// Update applies a partial field replace to an existing product. Fields
// absent from the map keep their current value. A new image replaces the old
// attachment, which is released after the record is written.
func (s *ProductService) Update(id uint, fields map[string]string, image *multipart.FileHeader) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := applyFields(product, fields); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(product); err != nil {
		return nil, ErrInvalidRow
	}

	var oldImage string
	if image != nil {
		url, err := s.assets.Save(image)
		if err != nil {
			return nil, err
		}
		oldImage = product.ImageURL
		product.ImageURL = url
	}

	if err := s.repo.Update(product); err != nil {
		if image != nil {
			if rmErr := s.assets.Remove(product.ImageURL); rmErr != nil {
				log.Printf("Failed to clean up asset after update failure: %v", rmErr)
			}
		}
		return nil, err
	}

	if oldImage != "" && oldImage != product.ImageURL {
		if err := s.assets.Remove(oldImage); err != nil {
			log.Printf("Failed to remove replaced asset: %v", err)
		}
	}

	s.publish("inventory.product.updated", map[string]interface{}{
		"id":   product.ID,
		"name": product.Name,
	})
	return product, nil
}

// Delete removes a product and releases its image attachment, if any. Asset
// removal failures are logged but never fail the deletion.
func (s *ProductService) Delete(id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	if product.ImageURL != "" {
		if err := s.assets.Remove(product.ImageURL); err != nil {
			log.Printf("Failed to remove asset for deleted product %d: %v", id, err)
		}
	}

	s.publish("inventory.product.deleted", map[string]interface{}{
		"id":   product.ID,
		"name": product.Name,
	})
	return nil
}

// Categories returns the distinct category values in use.
func (s *ProductService) Categories() ([]string, error) {
	categories, err := s.repo.Categories()
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func (s *ProductService) publish(eventType string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishInventoryEvent(eventType, payload); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}

// applyFields overlays the provided raw values onto an existing product,
// rejecting values that would break the product invariants.
func applyFields(p *models.Product, fields map[string]string) error {
	if v, ok := fields["name"]; ok {
		v = strings.TrimSpace(v)
		if v == "" {
			return ErrInvalidRow
		}
		p.Name = v
	}
	if v, ok := fields["description"]; ok {
		p.Description = strings.TrimSpace(v)
	}
	if v, ok := fields["category"]; ok {
		p.Category = strings.TrimSpace(v)
	}
	if v, ok := fields["price"]; ok {
		price, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			return ErrInvalidRow
		}
		p.Price = price
	}
	if v, ok := fields["quantity"]; ok {
		quantity, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || quantity < 0 {
			return ErrInvalidRow
		}
		p.Quantity = quantity
	}
	return nil
}

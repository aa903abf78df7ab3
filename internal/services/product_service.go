package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fattura-service/internal/models"
	"github.com/sirupsen/logrus"
)

// ProductService handles catalog business rules
type ProductService struct {
	products ProductStore
	clock    Clock
	logger   *logrus.Logger
}

// NewProductService creates the service
func NewProductService(products ProductStore, clock Clock, logger *logrus.Logger) *ProductService {
	return &ProductService{
		products: products,
		clock:    clock,
		logger:   logger,
	}
}

// Create stores a new product, applying unit and VAT defaults
func (s *ProductService) Create(ctx context.Context, req *models.ProductRequest) (*models.Product, error) {
	if err := s.validateProductData(req); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	product := &models.Product{
		ID:        uuid.New(),
		CreatedAt: now,
	}
	applyProductRequest(product, req, now)

	if err := s.products.Create(ctx, product); err != nil {
		return nil, translateStoreError(err, "product not found", "creating product")
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"name":       product.Name,
		"unit_price": product.UnitPrice.StringFixed(2),
	}).Info("Product created successfully")

	return product, nil
}

// GetByID returns an active product
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "product not found", "getting product")
	}
	return product, nil
}

// List returns all active products
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}
	return products, nil
}

// Update replaces the editable fields of a product. Existing invoices keep
// the price and VAT rate they were issued with.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req *models.ProductRequest) (*models.Product, error) {
	if err := s.validateProductData(req); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "product not found", "getting product")
	}
	applyProductRequest(product, req, s.clock.Now().UTC())

	if err := s.products.Update(ctx, product); err != nil {
		return nil, translateStoreError(err, "product not found", "updating product")
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": id,
	}).Info("Product updated successfully")

	return product, nil
}

// Delete deactivates a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return translateStoreError(err, "product not found", "deleting product")
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": id,
	}).Info("Product deleted successfully")

	return nil
}

func applyProductRequest(product *models.Product, req *models.ProductRequest, now time.Time) {
	product.Name = strings.TrimSpace(req.Name)
	product.Description = req.Description
	product.Type = req.Type
	product.UnitPrice = *req.UnitPrice

	product.Unit = req.Unit
	if product.Unit == "" {
		product.Unit = models.UnitPiece
	}

	product.VATRate = models.DefaultVATRate
	if req.VATRate != nil {
		product.VATRate = *req.VATRate
	}

	product.UpdatedAt = now
}

func (s *ProductService) validateProductData(req *models.ProductRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return validationError("name is required")
	}

	if len(req.Name) > 255 {
		return validationError("name too long (max 255 characters)")
	}

	if !req.Type.Valid() {
		return validationError("type must be one of good, service")
	}

	if req.UnitPrice == nil {
		return validationError("unitPrice is required")
	}

	if req.UnitPrice.IsNegative() {
		return validationError("unitPrice must be zero or greater")
	}

	if !fitsScale(*req.UnitPrice, models.PriceScale) {
		return validationError("unitPrice must have at most %d decimal places", models.PriceScale)
	}

	if req.Unit != "" && !req.Unit.Valid() {
		return validationError("unit must be one of piece, hour, kilogram")
	}

	if req.VATRate != nil && (req.VATRate.IsNegative() || req.VATRate.GreaterThan(hundred)) {
		return validationError("vatRate must be between 0 and 100")
	}

	if req.VATRate != nil && !fitsScale(*req.VATRate, models.VATRateScale) {
		return validationError("vatRate must have at most %d decimal places", models.VATRateScale)
	}

	return nil
}

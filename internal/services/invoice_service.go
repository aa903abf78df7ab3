package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fattura-service/internal/database"
	"github.com/hypernova-labs/fattura-service/internal/models"
	"github.com/sirupsen/logrus"
)

// InvoiceService creates invoices and manages their status
type InvoiceService struct {
	invoices  InvoiceStore
	customers CustomerStore
	products  ProductStore
	numbers   *InvoiceNumberGenerator
	clock     Clock
	events    EventPublisher
	logger    *logrus.Logger
}

// NewInvoiceService creates the service
func NewInvoiceService(invoices InvoiceStore, customers CustomerStore, products ProductStore, clock Clock, events EventPublisher, logger *logrus.Logger) *InvoiceService {
	return &InvoiceService{
		invoices:  invoices,
		customers: customers,
		products:  products,
		numbers:   NewInvoiceNumberGenerator(clock),
		clock:     clock,
		events:    events,
		logger:    logger,
	}
}

// Create prices the requested lines from the catalog and stores a new draft
// invoice. Nothing is persisted when any step fails.
func (s *InvoiceService) Create(ctx context.Context, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	if err := s.validateInvoiceData(req); err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, &Error{Kind: ErrValidation, Message: "customer not found", Err: err}
		}
		return nil, fmt.Errorf("error getting customer: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error getting products: %w", err)
	}

	lines := make([]models.InvoiceItem, len(req.Items))
	for i, item := range req.Items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, validationError("product %s not found", item.ProductID)
		}
		lines[i] = models.InvoiceItem{
			ProductID: product.ID,
			Product: &models.ProductSummary{
				ID:          product.ID,
				Name:        product.Name,
				Type:        product.Type,
				Description: product.Description,
			},
			Quantity:  item.Quantity,
			UnitPrice: product.UnitPrice,
			VATRate:   product.VATRate,
		}
	}

	totals := CalculateTotals(lines)
	now := s.clock.Now().UTC()

	invoice := &models.Invoice{
		ID:         uuid.New(),
		Number:     s.numbers.Next(),
		CustomerID: customer.ID,
		Customer:   customer,
		Items:      totals.Items,
		Subtotal:   totals.Subtotal,
		TotalVAT:   totals.TotalVAT,
		Total:      totals.Total,
		Status:     models.InvoiceStatusDraft,
		EmailSent:  false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.invoices.Create(ctx, invoice); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, &Error{Kind: ErrConflict, Message: "invoice number already in use, retry the request", Err: err}
		}
		return nil, fmt.Errorf("error creating invoice: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.Number,
		"customer_id":    customer.ID,
		"items":          len(invoice.Items),
		"total":          invoice.Total.StringFixed(2),
	}).Info("Invoice created successfully")

	if err := s.events.Publish(ctx, EventInvoiceCreated, map[string]any{
		"invoice_id":     invoice.ID.String(),
		"invoice_number": invoice.Number,
	}); err != nil {
		s.logger.WithFields(logrus.Fields{
			"event": EventInvoiceCreated,
			"error": err.Error(),
		}).Warn("Failed to publish event")
	}

	return invoice, nil
}

// Get returns a populated invoice
func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "invoice not found", "getting invoice")
	}
	return invoice, nil
}

// List returns all invoices newest first
func (s *InvoiceService) List(ctx context.Context) ([]models.Invoice, error) {
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing invoices: %w", err)
	}
	return invoices, nil
}

// UpdateStatus moves an invoice to any known status
func (s *InvoiceService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) (*models.Invoice, error) {
	if !status.Valid() {
		return nil, validationError("invalid status %q, must be one of draft, sent, paid", status)
	}

	if err := s.invoices.UpdateStatus(ctx, id, status); err != nil {
		return nil, translateStoreError(err, "invoice not found", "updating invoice status")
	}

	s.logger.WithFields(logrus.Fields{
		"invoice_id": id,
		"status":     status,
	}).Info("Invoice status updated")

	return s.Get(ctx, id)
}

func (s *InvoiceService) validateInvoiceData(req *models.CreateInvoiceRequest) error {
	if req.CustomerID == uuid.Nil {
		return validationError("customerId is required")
	}

	if len(req.Items) == 0 {
		return validationError("at least one item is required")
	}

	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return validationError("items[%d].productId is required", i)
		}
		if !item.Quantity.IsPositive() {
			return validationError("items[%d].quantity must be greater than zero", i)
		}
		if !fitsScale(item.Quantity, models.QuantityScale) {
			return validationError("items[%d].quantity must have at most %d decimal places", i, models.QuantityScale)
		}
	}

	return nil
}

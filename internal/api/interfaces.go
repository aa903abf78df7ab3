package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fattura-service/internal/models"
)

// CustomerService is the customer use case consumed by the handlers
type CustomerService interface {
	Create(ctx context.Context, req *models.CustomerRequest) (*models.Customer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	Update(ctx context.Context, id uuid.UUID, req *models.CustomerRequest) (*models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductService is the catalog use case consumed by the handlers
type ProductService interface {
	Create(ctx context.Context, req *models.ProductRequest) (*models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, id uuid.UUID, req *models.ProductRequest) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoiceService is the invoice lifecycle consumed by the handlers
type InvoiceService interface {
	Create(ctx context.Context, req *models.CreateInvoiceRequest) (*models.Invoice, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context) ([]models.Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) (*models.Invoice, error)
}

// DocumentService returns the rendered PDF of an invoice
type DocumentService interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Invoice, *models.RenderedDocument, error)
}

// DeliveryService emails invoices
type DeliveryService interface {
	Send(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	RequestSend(ctx context.Context, id uuid.UUID) error
}

// HealthChecker is a dependency probed by /health
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

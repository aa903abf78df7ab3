package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fattura-service/internal/email"
	"github.com/hypernova-labs/fattura-service/internal/models"
)

// CustomerStore persists customers
type CustomerStore interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductStore persists catalog products
type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoiceStore persists invoices and their cached document
type InvoiceStore interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context) ([]models.Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) error
	SaveDocument(ctx context.Context, id uuid.UUID, doc *models.RenderedDocument) error
	MarkSent(ctx context.Context, id uuid.UUID) error
}

// DocumentStorage is the object store mirroring rendered documents
type DocumentStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
}

// Renderer turns a populated invoice into document bytes
type Renderer interface {
	Render(invoice *models.Invoice) ([]byte, error)
}

// Mailer delivers an invoice email
type Mailer interface {
	SendInvoice(ctx context.Context, msg email.InvoiceEmail) (string, error)
}

// EventPublisher emits domain events to the workflow engine
type EventPublisher interface {
	Publish(ctx context.Context, name string, data map[string]any) error
}

// Event names
const (
	EventInvoiceCreated           = "invoice/created"
	EventInvoiceSent              = "invoice/sent"
	EventInvoiceDeliveryRequested = "invoice/delivery.requested"
)

// NopPublisher drops every event. Used when Inngest is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, map[string]any) error { return nil }

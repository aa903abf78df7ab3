package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// InvoiceStatus is the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
)

// Valid reports whether s is a known status
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid:
		return true
	}
	return false
}

// ContentTypePDF is the content type of rendered invoice documents
const ContentTypePDF = "application/pdf"

// RenderedDocument is the cached printable form of an invoice.
// Data is kept inline so the document survives without the object store;
// Path is the object storage key when the bytes were mirrored.
type RenderedDocument struct {
	Data        []byte
	ContentType string
	Path        *string
}

// HasData reports whether the document carries usable bytes
func (d *RenderedDocument) HasData() bool {
	return d != nil && len(d.Data) > 0
}

// Invoice is an issued invoice with its priced lines
type Invoice struct {
	ID         uuid.UUID         `json:"id" db:"id"`
	Number     string            `json:"invoiceNumber" db:"invoice_number"`
	CustomerID uuid.UUID         `json:"customerId" db:"customer_id"`
	Customer   *Customer         `json:"customer,omitempty"`
	Items      []InvoiceItem     `json:"items"`
	Subtotal   decimal.Decimal   `json:"subtotal" db:"subtotal"`
	TotalVAT   decimal.Decimal   `json:"totalVat" db:"total_vat"`
	Total      decimal.Decimal   `json:"total" db:"total"`
	Status     InvoiceStatus     `json:"status" db:"status"`
	EmailSent  bool              `json:"emailSent" db:"email_sent"`
	Document   *RenderedDocument `json:"-"`
	CreatedAt  time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time         `json:"updatedAt" db:"updated_at"`
}

// InvoiceItem is one priced line of an invoice.
// UnitPrice and VATRate are copies taken from the product at creation time.
type InvoiceItem struct {
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Product   *ProductSummary `json:"product,omitempty"`
	Quantity  decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	VATRate   decimal.Decimal `json:"vatRate" db:"vat_rate"`
	Subtotal  decimal.Decimal `json:"subtotal" db:"subtotal"`
	VATAmount decimal.Decimal `json:"vatAmount" db:"vat_amount"`
	Total     decimal.Decimal `json:"total" db:"total"`
}

// CreateInvoiceRequest is the body of POST /api/invoices
type CreateInvoiceRequest struct {
	CustomerID uuid.UUID          `json:"customerId"`
	Items      []InvoiceItemInput `json:"items"`
}

// InvoiceItemInput references a product and a quantity
type InvoiceItemInput struct {
	ProductID uuid.UUID       `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// UpdateStatusRequest is the body of PATCH /api/invoices/:id/status
type UpdateStatusRequest struct {
	Status InvoiceStatus `json:"status" binding:"required"`
}

// MessageResponse is a plain acknowledgement body
type MessageResponse struct {
	Message string `json:"message"`
}

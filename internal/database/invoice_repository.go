package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fattura-service/internal/models"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// InvoiceRepository persists invoices, their lines and the cached document
type InvoiceRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewInvoiceRepository creates the repository
func NewInvoiceRepository(db *DB, logger *logrus.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the invoice and its lines atomically.
// A clash on invoice_number returns ErrDuplicate.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO invoices (
				id, invoice_number, customer_id, subtotal, total_vat, total,
				status, email_sent, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
			)
		`

		_, err := tx.ExecContext(ctx, query,
			invoice.ID, invoice.Number, invoice.CustomerID,
			invoice.Subtotal, invoice.TotalVAT, invoice.Total,
			invoice.Status, invoice.EmailSent, invoice.CreatedAt, invoice.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("invoice number %s: %w", invoice.Number, ErrDuplicate)
			}
			return fmt.Errorf("error inserting invoice: %w", err)
		}

		itemQuery := `
			INSERT INTO invoice_items (
				invoice_id, line_no, product_id, quantity, unit_price, vat_rate,
				subtotal, vat_amount, total
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9
			)
		`

		for i, item := range invoice.Items {
			_, err := tx.ExecContext(ctx, itemQuery,
				invoice.ID, i+1, item.ProductID, item.Quantity, item.UnitPrice, item.VATRate,
				item.Subtotal, item.VATAmount, item.Total,
			)
			if err != nil {
				return fmt.Errorf("error inserting invoice item: %w", err)
			}
		}

		return nil
	})
}

// GetByID returns the invoice with its full customer, lines and cached document
func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	query := `
		SELECT
			i.id, i.invoice_number, i.customer_id, i.subtotal, i.total_vat, i.total,
			i.status, i.email_sent, i.document_data, i.document_content_type, i.document_path,
			i.created_at, i.updated_at,
			c.id, c.name, c.email, c.phone, c.address_street, c.address_city, c.address_zip_code,
			c.address_country, c.fiscal_code, c.vat_number, c.created_at, c.updated_at
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.id = $1
	`

	var (
		invoice                    models.Invoice
		customer                   models.Customer
		docData                    []byte
		docContentType, docPath    sql.NullString
		street, city, zip, country sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&invoice.ID, &invoice.Number, &invoice.CustomerID,
		&invoice.Subtotal, &invoice.TotalVAT, &invoice.Total,
		&invoice.Status, &invoice.EmailSent, &docData, &docContentType, &docPath,
		&invoice.CreatedAt, &invoice.UpdatedAt,
		&customer.ID, &customer.Name, &customer.Email, &customer.Phone,
		&street, &city, &zip, &country,
		&customer.FiscalCode, &customer.VATNumber, &customer.CreatedAt, &customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("error querying invoice: %w", err)
	}

	if street.Valid || city.Valid || zip.Valid || country.Valid {
		customer.Address = &models.Address{
			Street:  street.String,
			City:    city.String,
			ZipCode: zip.String,
			Country: country.String,
		}
	}
	invoice.Customer = &customer

	if len(docData) > 0 || docPath.Valid {
		invoice.Document = &models.RenderedDocument{
			Data:        docData,
			ContentType: docContentType.String,
		}
		if docPath.Valid {
			invoice.Document.Path = &docPath.String
		}
	}

	items, err := r.itemsByInvoice(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	invoice.Items = items[id]
	if invoice.Items == nil {
		invoice.Items = []models.InvoiceItem{}
	}

	return &invoice, nil
}

// List returns every invoice newest first, with customer and product summaries
func (r *InvoiceRepository) List(ctx context.Context) ([]models.Invoice, error) {
	query := `
		SELECT
			i.id, i.invoice_number, i.customer_id, i.subtotal, i.total_vat, i.total,
			i.status, i.email_sent, i.created_at, i.updated_at,
			c.name, c.email
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		ORDER BY i.created_at DESC, i.invoice_number DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying invoices: %w", err)
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	ids := []uuid.UUID{}
	for rows.Next() {
		var (
			invoice  models.Invoice
			customer models.Customer
		)
		err := rows.Scan(
			&invoice.ID, &invoice.Number, &invoice.CustomerID,
			&invoice.Subtotal, &invoice.TotalVAT, &invoice.Total,
			&invoice.Status, &invoice.EmailSent, &invoice.CreatedAt, &invoice.UpdatedAt,
			&customer.Name, &customer.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning invoice: %w", err)
		}
		customer.ID = invoice.CustomerID
		invoice.Customer = &customer
		invoices = append(invoices, invoice)
		ids = append(ids, invoice.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	if len(ids) == 0 {
		return invoices, nil
	}

	items, err := r.itemsByInvoice(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		invoices[i].Items = items[invoices[i].ID]
		if invoices[i].Items == nil {
			invoices[i].Items = []models.InvoiceItem{}
		}
	}

	return invoices, nil
}

// UpdateStatus replaces the status of an invoice
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) error {
	query := `
		UPDATE invoices
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error updating invoice status: %w", err)
	}

	return checkAffected(result, "invoice", id)
}

// SaveDocument stores the rendered document on the invoice
func (r *InvoiceRepository) SaveDocument(ctx context.Context, id uuid.UUID, doc *models.RenderedDocument) error {
	query := `
		UPDATE invoices
		SET document_data = $1, document_content_type = $2, document_path = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.ExecContext(ctx, query, doc.Data, doc.ContentType, doc.Path, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error saving invoice document: %w", err)
	}

	return checkAffected(result, "invoice", id)
}

// MarkSent flags the invoice as emailed and moves it to sent in one statement
func (r *InvoiceRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE invoices
		SET email_sent = true, status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, models.InvoiceStatusSent, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error marking invoice sent: %w", err)
	}

	return checkAffected(result, "invoice", id)
}

// itemsByInvoice loads the lines of the given invoices in line order.
// Products are left-joined so a missing product yields a nil summary.
func (r *InvoiceRepository) itemsByInvoice(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]models.InvoiceItem, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	query := `
		SELECT
			ii.invoice_id, ii.product_id, ii.quantity, ii.unit_price, ii.vat_rate,
			ii.subtotal, ii.vat_amount, ii.total,
			p.name, p.type, p.description
		FROM invoice_items ii
		LEFT JOIN products p ON p.id = ii.product_id
		WHERE ii.invoice_id = ANY($1::uuid[])
		ORDER BY ii.invoice_id, ii.line_no
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("error querying invoice items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]models.InvoiceItem, len(ids))
	for rows.Next() {
		var (
			invoiceID   uuid.UUID
			item        models.InvoiceItem
			name, kind  sql.NullString
			description *string
		)
		err := rows.Scan(
			&invoiceID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.VATRate,
			&item.Subtotal, &item.VATAmount, &item.Total,
			&name, &kind, &description,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning invoice item: %w", err)
		}

		if name.Valid {
			item.Product = &models.ProductSummary{
				ID:          item.ProductID,
				Name:        name.String,
				Type:        models.ProductType(kind.String),
				Description: description,
			}
		}

		items[invoiceID] = append(items[invoiceID], item)
	}

	return items, rows.Err()
}

package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fattura-service/internal/models"
	"github.com/sirupsen/logrus"
)

// DocumentService returns the rendered document of an invoice, rendering it
// at most once and reusing the cached bytes afterwards.
type DocumentService struct {
	invoices InvoiceStore
	renderer Renderer
	storage  DocumentStorage
	locker   Locker
	logger   *logrus.Logger
}

// NewDocumentService creates the service. storage may be nil.
func NewDocumentService(invoices InvoiceStore, renderer Renderer, storage DocumentStorage, locker Locker, logger *logrus.Logger) *DocumentService {
	return &DocumentService{
		invoices: invoices,
		renderer: renderer,
		storage:  storage,
		locker:   locker,
		logger:   logger,
	}
}

// Get loads the invoice and ensures its document under the invoice lock
func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (*models.Invoice, *models.RenderedDocument, error) {
	unlock, err := s.locker.Lock(ctx, invoiceLockKey(id))
	if err != nil {
		return nil, nil, fmt.Errorf("error locking invoice: %w", err)
	}
	defer unlock()

	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, nil, translateStoreError(err, "invoice not found", "getting invoice")
	}

	doc, err := s.Ensure(ctx, invoice)
	if err != nil {
		return nil, nil, err
	}

	return invoice, doc, nil
}

// Ensure returns the cached document of invoice, rendering and storing it
// first when none exists. The caller must hold the invoice lock.
func (s *DocumentService) Ensure(ctx context.Context, invoice *models.Invoice) (*models.RenderedDocument, error) {
	if doc := invoice.Document; doc != nil {
		if doc.HasData() {
			return doc, nil
		}
		if doc.Path != nil && s.storage != nil {
			data, err := s.storage.Download(ctx, *doc.Path)
			if err == nil && len(data) > 0 {
				doc.Data = data
				if doc.ContentType == "" {
					doc.ContentType = models.ContentTypePDF
				}
				if err := s.invoices.SaveDocument(ctx, invoice.ID, doc); err != nil {
					return nil, translateStoreError(err, "invoice not found", "saving invoice document")
				}
				return doc, nil
			}
			s.logger.WithFields(logrus.Fields{
				"invoice_id": invoice.ID,
				"path":       *doc.Path,
				"error":      fmt.Sprint(err),
			}).Warn("Stored document unavailable, rendering again")
		}
	}

	data, err := s.renderer.Render(invoice)
	if err != nil {
		return nil, &Error{Kind: ErrRender, Message: "failed to generate invoice document", Err: err}
	}

	doc := &models.RenderedDocument{
		Data:        data,
		ContentType: models.ContentTypePDF,
	}

	if s.storage != nil {
		key := fmt.Sprintf("invoices/%s/fattura-%s.pdf", invoice.ID, invoice.Number)
		path, err := s.storage.Upload(ctx, key, data, models.ContentTypePDF)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"invoice_id": invoice.ID,
				"error":      err.Error(),
			}).Warn("Failed to mirror document to object storage")
		} else {
			doc.Path = &path
		}
	}

	if err := s.invoices.SaveDocument(ctx, invoice.ID, doc); err != nil {
		return nil, translateStoreError(err, "invoice not found", "saving invoice document")
	}
	invoice.Document = doc

	s.logger.WithFields(logrus.Fields{
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.Number,
		"size":           len(data),
	}).Info("Invoice document generated")

	return doc, nil
}

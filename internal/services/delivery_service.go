package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fattura-service/internal/email"
	"github.com/hypernova-labs/fattura-service/internal/models"
	"github.com/sirupsen/logrus"
)

// DeliveryService emails invoices to their customers
type DeliveryService struct {
	invoices  InvoiceStore
	documents *DocumentService
	mailer    Mailer
	locker    Locker
	events    EventPublisher
	logger    *logrus.Logger
}

// NewDeliveryService creates the service
func NewDeliveryService(invoices InvoiceStore, documents *DocumentService, mailer Mailer, locker Locker, events EventPublisher, logger *logrus.Logger) *DeliveryService {
	return &DeliveryService{
		invoices:  invoices,
		documents: documents,
		mailer:    mailer,
		locker:    locker,
		events:    events,
		logger:    logger,
	}
}

// Send renders the invoice if needed, emails it once and marks it sent.
// A failed render or mail leaves emailSent and status untouched.
func (s *DeliveryService) Send(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	unlock, err := s.locker.Lock(ctx, invoiceLockKey(id))
	if err != nil {
		return nil, fmt.Errorf("error locking invoice: %w", err)
	}
	defer unlock()

	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "invoice not found", "getting invoice")
	}

	if invoice.Customer == nil || strings.TrimSpace(invoice.Customer.Email) == "" {
		return nil, validationError("customer has no email address")
	}

	doc, err := s.documents.Ensure(ctx, invoice)
	if err != nil {
		return nil, err
	}

	messageID, err := s.mailer.SendInvoice(ctx, email.InvoiceEmail{
		To:            invoice.Customer.Email,
		CustomerName:  invoice.Customer.Name,
		InvoiceNumber: invoice.Number,
		Total:         invoice.Total,
		PDF:           doc.Data,
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"invoice_id":     invoice.ID,
			"invoice_number": invoice.Number,
			"to":             invoice.Customer.Email,
			"error":          err.Error(),
		}).Error("Invoice email delivery failed")
		return nil, &Error{Kind: ErrDelivery, Message: "failed to send invoice email", Err: err}
	}

	if err := s.invoices.MarkSent(ctx, invoice.ID); err != nil {
		return nil, translateStoreError(err, "invoice not found", "marking invoice sent")
	}
	invoice.EmailSent = true
	invoice.Status = models.InvoiceStatusSent

	s.logger.WithFields(logrus.Fields{
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.Number,
		"message_id":     messageID,
	}).Info("Invoice sent")

	s.publish(ctx, EventInvoiceSent, map[string]any{
		"invoice_id":     invoice.ID.String(),
		"invoice_number": invoice.Number,
		"message_id":     messageID,
	})

	return invoice, nil
}

// RequestSend queues the delivery for the workflow engine. The invoice must exist.
func (s *DeliveryService) RequestSend(ctx context.Context, id uuid.UUID) error {
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return translateStoreError(err, "invoice not found", "getting invoice")
	}

	if invoice.Customer == nil || strings.TrimSpace(invoice.Customer.Email) == "" {
		return validationError("customer has no email address")
	}

	err = s.events.Publish(ctx, EventInvoiceDeliveryRequested, map[string]any{
		"invoice_id": invoice.ID.String(),
	})
	if err != nil {
		return fmt.Errorf("error queueing invoice delivery: %w", err)
	}

	return nil
}

func (s *DeliveryService) publish(ctx context.Context, name string, data map[string]any) {
	if err := s.events.Publish(ctx, name, data); err != nil {
		s.logger.WithFields(logrus.Fields{
			"event": name,
			"error": err.Error(),
		}).Warn("Failed to publish event")
	}
}

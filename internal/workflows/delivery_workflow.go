package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fattura-service/internal/models"
	"github.com/hypernova-labs/fattura-service/internal/services"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
	"github.com/sirupsen/logrus"
)

// DeliveryRequestedEvent triggers an out-of-band invoice delivery
const DeliveryRequestedEvent = services.EventInvoiceDeliveryRequested

// InvoiceSender performs a synchronous invoice delivery
type InvoiceSender interface {
	Send(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
}

// DeliveryRequestedData is the payload of DeliveryRequestedEvent
type DeliveryRequestedData struct {
	InvoiceID string `json:"invoice_id"`
}

// DeliveryResult is the function output recorded by Inngest
type DeliveryResult struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	Status        string `json:"status"`
}

// DeliveryWorkflow emails an invoice in the background
type DeliveryWorkflow struct {
	sender InvoiceSender
	logger *logrus.Logger
}

// NewDeliveryWorkflow creates the workflow
func NewDeliveryWorkflow(sender InvoiceSender, logger *logrus.Logger) *DeliveryWorkflow {
	return &DeliveryWorkflow{
		sender: sender,
		logger: logger,
	}
}

// Deliver runs the send as a single step. Failures the caller has to fix
// (unknown invoice, missing email) are not retried.
func (w *DeliveryWorkflow) Deliver(ctx context.Context, input inngestgo.Input[DeliveryRequestedData]) (any, error) {
	return step.Run(ctx, "send-invoice", func(ctx context.Context) (*DeliveryResult, error) {
		return w.deliver(ctx, input.Event.Data)
	})
}

func (w *DeliveryWorkflow) deliver(ctx context.Context, data DeliveryRequestedData) (*DeliveryResult, error) {
	id, err := uuid.Parse(data.InvoiceID)
	if err != nil {
		return nil, inngestgo.NoRetryError(fmt.Errorf("invalid invoice id %q: %w", data.InvoiceID, err))
	}

	invoice, err := w.sender.Send(ctx, id)
	if err != nil {
		w.logger.WithFields(logrus.Fields{
			"invoice_id": id,
			"error":      err.Error(),
		}).Error("Background invoice delivery failed")

		if !retryable(err) {
			return nil, inngestgo.NoRetryError(err)
		}
		return nil, err
	}

	return &DeliveryResult{
		InvoiceID:     invoice.ID.String(),
		InvoiceNumber: invoice.Number,
		Status:        string(invoice.Status),
	}, nil
}

// retryable reports whether another attempt could succeed without the
// invoice or customer being changed first
func retryable(err error) bool {
	return !errors.Is(err, services.ErrNotFound) && !errors.Is(err, services.ErrValidation)
}

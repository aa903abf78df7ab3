package email

import (
	"context"
	"fmt"
	"html"

	"github.com/hypernova-labs/fattura-service/internal/models"
	"github.com/resend/resend-go/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MailConfig is built once at start-up from the environment
type MailConfig struct {
	APIKey  string
	From    string
	ReplyTo string
	SignOff string
}

// InvoiceEmail is one invoice delivery to a customer
type InvoiceEmail struct {
	To            string
	CustomerName  string
	InvoiceNumber string
	Total         decimal.Decimal
	PDF           []byte
}

// ResendService sends invoice emails through the Resend API
type ResendService struct {
	client *resend.Client
	cfg    MailConfig
	logger *logrus.Logger
}

// NewResendService creates the mailer
func NewResendService(cfg MailConfig, logger *logrus.Logger) *ResendService {
	return &ResendService{
		client: resend.NewClient(cfg.APIKey),
		cfg:    cfg,
		logger: logger,
	}
}

// Subject returns the subject line used for an invoice
func Subject(invoiceNumber string) string {
	return fmt.Sprintf("Fattura N° %s", invoiceNumber)
}

// AttachmentName returns the file name of the attached PDF
func AttachmentName(invoiceNumber string) string {
	return fmt.Sprintf("fattura-%s.pdf", invoiceNumber)
}

// SendInvoice emails the PDF to the customer and returns the provider message id
func (s *ResendService) SendInvoice(ctx context.Context, msg InvoiceEmail) (string, error) {
	request := &resend.SendEmailRequest{
		From:    s.cfg.From,
		To:      []string{msg.To},
		Subject: Subject(msg.InvoiceNumber),
		Html:    s.body(msg),
		ReplyTo: s.cfg.ReplyTo,
		Attachments: []*resend.Attachment{
			{
				Content:     msg.PDF,
				Filename:    AttachmentName(msg.InvoiceNumber),
				ContentType: models.ContentTypePDF,
			},
		},
	}

	result, err := s.client.Emails.SendWithContext(ctx, request)
	if err != nil {
		return "", fmt.Errorf("error sending email via Resend: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"email_id":       result.Id,
		"to":             msg.To,
		"invoice_number": msg.InvoiceNumber,
	}).Info("Invoice email sent via Resend")

	return result.Id, nil
}

func (s *ResendService) body(msg InvoiceEmail) string {
	number := html.EscapeString(msg.InvoiceNumber)

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Fattura N° %s</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h2>Fattura N° %s</h2>
    <p>Gentile %s,</p>
    <p>In allegato troverai la tua fattura.</p>
    <p><strong>Totale: €%s</strong></p>
    <p>Grazie per la tua fiducia!</p>
    <br>
    <p>Cordiali saluti,<br>%s</p>
</body>
</html>`,
		number,
		number,
		html.EscapeString(msg.CustomerName),
		msg.Total.StringFixed(2),
		html.EscapeString(s.cfg.SignOff),
	)
}

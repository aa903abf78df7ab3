package services

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/hypernova-labs/fattura-service/internal/config"
	"github.com/hypernova-labs/fattura-service/internal/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// UnknownProductLabel is printed for lines whose product no longer resolves
const UnknownProductLabel = "Prodotto"

const (
	pageBottom = 265.0
	rowHeight  = 7.0
)

// table layout: x offset and width of each column
var (
	columnX      = []float64{18, 88, 108, 138, 158}
	columnWidths = []float64{70, 20, 30, 20, 34}
	columnTitles = []string{"Descrizione", "Quantità", "Costo Unitario", "IVA%", "Totale"}
	columnAlign  = []string{"L", "R", "R", "R", "R"}
)

// PDFRenderer lays out an invoice as an A4 PDF
type PDFRenderer struct {
	issuer config.IssuerConfig
	clock  Clock
	logger *logrus.Logger
}

// NewPDFRenderer creates a renderer printing issuer as the seller
func NewPDFRenderer(issuer config.IssuerConfig, clock Clock, logger *logrus.Logger) *PDFRenderer {
	return &PDFRenderer{
		issuer: issuer,
		clock:  clock,
		logger: logger,
	}
}

// Render produces the PDF bytes for a populated invoice. The same invoice
// rendered at the same clock reading yields the same bytes.
func (r *PDFRenderer) Render(invoice *models.Invoice) ([]byte, error) {
	if invoice.Customer == nil {
		return nil, errors.New("invoice has no customer loaded")
	}

	now := r.clock.Now()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(now)
	pdf.SetTitle("Fattura "+invoice.Number, true)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetTextColor(33, 37, 41)

	// Title
	pdf.SetFont("Arial", "B", 20)
	pdf.SetXY(10, 15)
	pdf.CellFormat(190, 10, "FATTURA", "", 0, "C", false, 0, "")

	// Issuer (left) and invoice reference (right)
	pdf.SetFont("Arial", "", 11)
	issuerLines := []string{
		r.issuer.Name,
		r.issuer.Street,
		r.issuer.City,
		"P.IVA: " + r.issuer.VATNumber,
	}
	for i, line := range issuerLines {
		pdf.Text(18, 42+float64(i)*5, tr(line))
	}
	pdf.Text(123, 42, tr("Fattura N°: "+invoice.Number))
	pdf.Text(123, 47, tr("Data: "+now.Format("02/01/2006")))

	// Customer
	customer := invoice.Customer
	y := 78.0
	for _, line := range customerLines(customer) {
		pdf.Text(18, y, tr(line))
		y += 5
	}

	// Items table
	y = 116
	r.tableHeader(pdf, tr, y)
	y += 8
	pdf.SetFont("Arial", "", 10)
	for _, item := range invoice.Items {
		if y+rowHeight > pageBottom {
			pdf.AddPage()
			y = 20
			r.tableHeader(pdf, tr, y)
			y += 8
			pdf.SetFont("Arial", "", 10)
		}

		cells := []string{
			itemLabel(item),
			item.Quantity.String(),
			euro(item.UnitPrice),
			item.VATRate.String() + "%",
			euro(item.Total),
		}
		for i, text := range cells {
			pdf.SetXY(columnX[i], y)
			pdf.CellFormat(columnWidths[i], rowHeight, tr(text), "", 0, columnAlign[i], false, 0, "")
		}
		y += rowHeight
	}
	pdf.Line(18, y+1, 192, y+1)

	// Totals
	if y+30 > pageBottom {
		pdf.AddPage()
		y = 20
	}
	pdf.SetFont("Arial", "", 11)
	pdf.Text(123, y+10, tr("Subtotale: "+euro(invoice.Subtotal)))
	pdf.Text(123, y+16, tr("IVA: "+euro(invoice.TotalVAT)))
	pdf.SetFont("Arial", "B", 13)
	pdf.Text(123, y+24, tr("TOTALE: "+euro(invoice.Total)))

	// Footer
	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.Text(18, 285, tr("Generato il: "+now.Format("02/01/2006 15:04:05")))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error generating PDF: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.Number,
		"size":           buf.Len(),
	}).Debug("Invoice PDF rendered")

	return buf.Bytes(), nil
}

func (r *PDFRenderer) tableHeader(pdf *gofpdf.Fpdf, tr func(string) string, y float64) {
	pdf.SetFont("Arial", "B", 10)
	for i, title := range columnTitles {
		pdf.SetXY(columnX[i], y)
		pdf.CellFormat(columnWidths[i], rowHeight, tr(title), "", 0, columnAlign[i], false, 0, "")
	}
	pdf.Line(18, y+rowHeight, 192, y+rowHeight)
}

func customerLines(customer *models.Customer) []string {
	lines := []string{"cliente:", customer.Name, customer.Email}
	if addr := customer.Address; addr != nil {
		lines = append(lines, fmt.Sprintf("%s, %s, %s", addr.Street, addr.City, addr.ZipCode))
	}
	if customer.FiscalCode != nil && *customer.FiscalCode != "" {
		lines = append(lines, "C.F.: "+*customer.FiscalCode)
	}
	return lines
}

func itemLabel(item models.InvoiceItem) string {
	if item.Product == nil || item.Product.Name == "" {
		return UnknownProductLabel
	}
	return item.Product.Name
}

func euro(amount decimal.Decimal) string {
	return "€" + amount.StringFixed(2)
}

package services

import (
	"github.com/hypernova-labs/fattura-service/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals is the result of pricing a set of invoice lines
type Totals struct {
	Items    []models.InvoiceItem
	Subtotal decimal.Decimal
	TotalVAT decimal.Decimal
	Total    decimal.Decimal
}

// fitsScale reports whether d has no more than places decimal digits
func fitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Round(places))
}

// CalculateTotals prices every line and sums the invoice totals.
// Line amounts are rounded to cents before summing, so the invoice
// totals always equal the sum of what is printed on the lines.
// The input slice is not modified.
func CalculateTotals(items []models.InvoiceItem) Totals {
	totals := Totals{
		Items:    make([]models.InvoiceItem, len(items)),
		Subtotal: decimal.Zero,
		TotalVAT: decimal.Zero,
	}

	for i, item := range items {
		item.Subtotal = item.Quantity.Mul(item.UnitPrice).Round(2)
		item.VATAmount = item.Subtotal.Mul(item.VATRate).Div(hundred).Round(2)
		item.Total = item.Subtotal.Add(item.VATAmount)

		totals.Subtotal = totals.Subtotal.Add(item.Subtotal)
		totals.TotalVAT = totals.TotalVAT.Add(item.VATAmount)
		totals.Items[i] = item
	}

	totals.Total = totals.Subtotal.Add(totals.TotalVAT)
	return totals
}

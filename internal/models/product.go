package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductType distinguishes goods from services
type ProductType string

const (
	ProductTypeGood    ProductType = "good"
	ProductTypeService ProductType = "service"
)

// Valid reports whether t is a known product type
func (t ProductType) Valid() bool {
	return t == ProductTypeGood || t == ProductTypeService
}

// Unit is the unit of measure a product is sold in
type Unit string

const (
	UnitPiece    Unit = "piece"
	UnitHour     Unit = "hour"
	UnitKilogram Unit = "kilogram"
)

// Valid reports whether u is a known unit
func (u Unit) Valid() bool {
	switch u {
	case UnitPiece, UnitHour, UnitKilogram:
		return true
	}
	return false
}

// Decimal places kept by the NUMERIC columns. Values with more are rejected
// rather than rounded on insert.
const (
	QuantityScale = 3
	PriceScale    = 2
	VATRateScale  = 2
)

// DefaultVATRate is the Italian standard rate applied when a product has none
var DefaultVATRate = decimal.NewFromInt(22)

// Product is a catalog good or service
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description,omitempty" db:"description"`
	Type        ProductType     `json:"type" db:"type"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Unit        Unit            `json:"unit" db:"unit"`
	VATRate     decimal.Decimal `json:"vatRate" db:"vat_rate"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// ProductSummary is the product view inlined in invoice lines.
// A nil summary on a line means the product row could not be resolved.
type ProductSummary struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Type        ProductType `json:"type"`
	Description *string     `json:"description,omitempty"`
}

// ProductRequest is the body of product create and update calls.
// Pointer fields distinguish "omitted" from zero so defaults can be applied.
type ProductRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description *string          `json:"description,omitempty"`
	Type        ProductType      `json:"type" binding:"required"`
	UnitPrice   *decimal.Decimal `json:"unitPrice"`
	Unit        Unit             `json:"unit,omitempty"`
	VATRate     *decimal.Decimal `json:"vatRate,omitempty"`
}

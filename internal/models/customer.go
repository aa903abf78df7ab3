package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCountry is applied to addresses saved without a country
const DefaultCountry = "Italy"

// Address is a customer's postal address
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Customer is an invoice recipient
type Customer struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Email      string    `json:"email" db:"email"`
	Phone      *string   `json:"phone,omitempty" db:"phone"`
	Address    *Address  `json:"address,omitempty"`
	FiscalCode *string   `json:"fiscalCode,omitempty" db:"fiscal_code"`
	VATNumber  *string   `json:"vatNumber,omitempty" db:"vat_number"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// CustomerRequest is the body of customer create and update calls
type CustomerRequest struct {
	Name       string   `json:"name" binding:"required"`
	Email      string   `json:"email" binding:"required"`
	Phone      *string  `json:"phone,omitempty"`
	Address    *Address `json:"address,omitempty"`
	FiscalCode *string  `json:"fiscalCode,omitempty"`
	VATNumber  *string  `json:"vatNumber,omitempty"`
}

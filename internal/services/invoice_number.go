package services

import (
	"fmt"
	"time"
)

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// InvoiceNumberGenerator produces numbers of the form FAT-<year>-<nnnnnn>
type InvoiceNumberGenerator struct {
	clock Clock
}

// NewInvoiceNumberGenerator creates a generator reading from clock
func NewInvoiceNumberGenerator(clock Clock) *InvoiceNumberGenerator {
	return &InvoiceNumberGenerator{clock: clock}
}

// Next returns a number built from the year and the last six digits of the
// epoch-millisecond reading. Two calls in the same millisecond collide; the
// unique constraint on invoices rejects the second insert.
func (g *InvoiceNumberGenerator) Next() string {
	now := g.clock.Now()
	return fmt.Sprintf("FAT-%d-%06d", now.Year(), now.UnixMilli()%1_000_000)
}

package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fattura-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invoiceFixture struct {
	customers *fakeCustomerStore
	products  *fakeProductStore
	invoices  *fakeInvoiceStore
	events    *fakePublisher
	clock     *fixedClock
	service   *InvoiceService

	customer models.Customer
	consult  models.Product
	laptop   models.Product
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()
	ctx := context.Background()

	f := &invoiceFixture{
		customers: newFakeCustomerStore(),
		products:  newFakeProductStore(),
		events:    &fakePublisher{},
		clock:     newFixedClock(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)),
	}
	f.invoices = newFakeInvoiceStore(f.customers)
	f.service = NewInvoiceService(f.invoices, f.customers, f.products, f.clock, f.events, testLogger())

	f.customer = models.Customer{ID: uuid.New(), Name: "Giulia Bianchi", Email: "giulia@example.it"}
	f.consult = models.Product{
		ID: uuid.New(), Name: "Consulenza", Type: models.ProductTypeService,
		UnitPrice: dec("80.00"), Unit: models.UnitHour, VATRate: dec("22"),
	}
	f.laptop = models.Product{
		ID: uuid.New(), Name: "Notebook", Type: models.ProductTypeGood,
		UnitPrice: dec("999.99"), Unit: models.UnitPiece, VATRate: dec("4"),
	}
	require.NoError(t, f.customers.Create(ctx, &f.customer))
	require.NoError(t, f.products.Create(ctx, &f.consult))
	require.NoError(t, f.products.Create(ctx, &f.laptop))

	return f
}

func (f *invoiceFixture) request(items ...models.InvoiceItemInput) *models.CreateInvoiceRequest {
	return &models.CreateInvoiceRequest{CustomerID: f.customer.ID, Items: items}
}

func item(productID uuid.UUID, qty string) models.InvoiceItemInput {
	return models.InvoiceItemInput{ProductID: productID, Quantity: dec(qty)}
}

func TestInvoiceService_Create(t *testing.T) {
	f := newInvoiceFixture(t)

	invoice, err := f.service.Create(context.Background(), f.request(
		item(f.consult.ID, "2.5"),
		item(f.laptop.ID, "1"),
	))

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^FAT-2025-\d{6}$`), invoice.Number)
	assert.Equal(t, models.InvoiceStatusDraft, invoice.Status)
	assert.False(t, invoice.EmailSent)
	assert.Equal(t, f.customer.ID, invoice.CustomerID)
	require.NotNil(t, invoice.Customer)
	assert.Equal(t, "Giulia Bianchi", invoice.Customer.Name)

	require.Len(t, invoice.Items, 2)
	assert.Equal(t, f.consult.ID, invoice.Items[0].ProductID)
	assert.Equal(t, "200.00", invoice.Items[0].Subtotal.StringFixed(2))
	assert.Equal(t, "44.00", invoice.Items[0].VATAmount.StringFixed(2))
	assert.Equal(t, "999.99", invoice.Items[1].Subtotal.StringFixed(2))
	assert.Equal(t, "40.00", invoice.Items[1].VATAmount.StringFixed(2))

	assert.Equal(t, "1199.99", invoice.Subtotal.StringFixed(2))
	assert.Equal(t, "84.00", invoice.TotalVAT.StringFixed(2))
	assert.Equal(t, "1283.99", invoice.Total.StringFixed(2))

	stored := f.invoices.get(invoice.ID)
	assert.Equal(t, invoice.Number, stored.Number)
	assert.Nil(t, stored.Document)

	assert.Equal(t, []string{EventInvoiceCreated}, f.events.Names())
}

func TestInvoiceService_CreateSnapshotsPrices(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()

	invoice, err := f.service.Create(ctx, f.request(item(f.consult.ID, "1")))
	require.NoError(t, err)

	updated := f.consult
	updated.UnitPrice = dec("120.00")
	updated.VATRate = dec("10")
	require.NoError(t, f.products.Update(ctx, &updated))

	got, err := f.service.Get(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "80.00", got.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "22", got.Items[0].VATRate.String())
	assert.Equal(t, "97.60", got.Total.StringFixed(2))
}

func TestInvoiceService_CreateValidation(t *testing.T) {
	f := newInvoiceFixture(t)

	tests := []struct {
		name    string
		req     *models.CreateInvoiceRequest
		message string
	}{
		{
			name:    "missing customer",
			req:     &models.CreateInvoiceRequest{Items: []models.InvoiceItemInput{item(f.consult.ID, "1")}},
			message: "customerId is required",
		},
		{
			name:    "no items",
			req:     f.request(),
			message: "at least one item is required",
		},
		{
			name:    "missing product",
			req:     f.request(models.InvoiceItemInput{Quantity: dec("1")}),
			message: "items[0].productId is required",
		},
		{
			name:    "zero quantity",
			req:     f.request(item(f.consult.ID, "0")),
			message: "items[0].quantity must be greater than zero",
		},
		{
			name:    "quantity finer than stored precision",
			req:     f.request(item(f.consult.ID, "1.0005")),
			message: "items[0].quantity must have at most 3 decimal places",
		},
		{
			name:    "quantity that would store as zero",
			req:     f.request(item(f.consult.ID, "0.0004")),
			message: "items[0].quantity must have at most 3 decimal places",
		},
		{
			name:    "negative quantity",
			req:     f.request(item(f.consult.ID, "1"), item(f.laptop.ID, "-2")),
			message: "items[1].quantity must be greater than zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(context.Background(), tt.req)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.message, err.Error())
		})
	}

	assert.Empty(t, f.invoices.invoices)
	assert.Empty(t, f.events.Names())
}

func TestInvoiceService_CreateUnknownCustomer(t *testing.T) {
	f := newInvoiceFixture(t)
	req := f.request(item(f.consult.ID, "1"))
	req.CustomerID = uuid.New()

	_, err := f.service.Create(context.Background(), req)

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "customer not found", svcErr.Message)
	assert.Empty(t, f.invoices.invoices)
}

func TestInvoiceService_CreateUnknownProduct(t *testing.T) {
	f := newInvoiceFixture(t)
	missing := uuid.New()

	_, err := f.service.Create(context.Background(), f.request(
		item(f.consult.ID, "1"),
		item(missing, "1"),
	))

	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), missing.String())
	assert.Empty(t, f.invoices.invoices)
}

func TestInvoiceService_CreateDeletedProduct(t *testing.T) {
	f := newInvoiceFixture(t)
	require.NoError(t, f.products.Delete(context.Background(), f.laptop.ID))

	_, err := f.service.Create(context.Background(), f.request(item(f.laptop.ID, "1")))

	assert.ErrorIs(t, err, ErrValidation)
}

func TestInvoiceService_CreateNumberCollision(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, f.request(item(f.consult.ID, "1")))
	require.NoError(t, err)

	// Same millisecond, same number.
	_, err = f.service.Create(ctx, f.request(item(f.consult.ID, "1")))

	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, f.invoices.invoices, 1)
	assert.Equal(t, first.Number, f.invoices.get(first.ID).Number)

	f.clock.Advance(time.Millisecond)
	second, err := f.service.Create(ctx, f.request(item(f.consult.ID, "1")))
	require.NoError(t, err)
	assert.NotEqual(t, first.Number, second.Number)
}

func TestInvoiceService_CreateStoreFailure(t *testing.T) {
	f := newInvoiceFixture(t)
	f.invoices.createErr = errors.New("connection reset")

	_, err := f.service.Create(context.Background(), f.request(item(f.consult.ID, "1")))

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Empty(t, f.events.Names())
}

func TestInvoiceService_PublishFailureDoesNotFailCreate(t *testing.T) {
	f := newInvoiceFixture(t)
	f.events.err = errors.New("inngest down")

	invoice, err := f.service.Create(context.Background(), f.request(item(f.consult.ID, "1")))

	require.NoError(t, err)
	assert.NotEmpty(t, f.invoices.get(invoice.ID).Number)
}

func TestInvoiceService_Get(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, f.request(item(f.laptop.ID, "3")))
	require.NoError(t, err)

	got, err := f.service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Number, got.Number)
	require.NotNil(t, got.Customer)
	assert.Equal(t, f.customer.Email, got.Customer.Email)

	_, err = f.service.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvoiceService_UpdateStatus(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, f.request(item(f.consult.ID, "1")))
	require.NoError(t, err)

	t.Run("any known status is accepted", func(t *testing.T) {
		for _, status := range []models.InvoiceStatus{
			models.InvoiceStatusPaid,
			models.InvoiceStatusDraft,
			models.InvoiceStatusSent,
		} {
			invoice, err := f.service.UpdateStatus(ctx, created.ID, status)
			require.NoError(t, err)
			assert.Equal(t, status, invoice.Status)
			assert.Equal(t, status, f.invoices.get(created.ID).Status)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := f.service.UpdateStatus(ctx, created.ID, "cancelled")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		_, err := f.service.UpdateStatus(ctx, uuid.New(), models.InvoiceStatusPaid)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("email flag untouched", func(t *testing.T) {
		assert.False(t, f.invoices.get(created.ID).EmailSent)
	})
}

func TestInvoiceService_TotalsMatchLines(t *testing.T) {
	f := newInvoiceFixture(t)

	invoice, err := f.service.Create(context.Background(), f.request(
		item(f.consult.ID, "0.333"),
		item(f.laptop.ID, "7"),
		item(f.consult.ID, "1.75"),
	))
	require.NoError(t, err)

	sub, vat := decimal.Zero, decimal.Zero
	for _, l := range invoice.Items {
		assert.True(t, l.Total.Equal(l.Subtotal.Add(l.VATAmount)))
		sub = sub.Add(l.Subtotal)
		vat = vat.Add(l.VATAmount)
	}
	assert.True(t, invoice.Subtotal.Equal(sub))
	assert.True(t, invoice.TotalVAT.Equal(vat))
	assert.True(t, invoice.Total.Equal(sub.Add(vat)))
}

func TestInvoiceFlow_CreatePriceAndSendTwice(t *testing.T) {
	ctx := context.Background()
	clock := newFixedClock(time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC))
	customerStore := newFakeCustomerStore()
	productStore := newFakeProductStore()
	invoiceStore := newFakeInvoiceStore(customerStore)
	events := &fakePublisher{}
	renderer := &fakeRenderer{}
	mailer := &fakeMailer{}
	locker := NewMemoryLocker()

	products := NewProductService(productStore, clock, testLogger())
	customers := NewCustomerService(customerStore, clock, testLogger())
	invoices := NewInvoiceService(invoiceStore, customerStore, productStore, clock, events, testLogger())
	documents := NewDocumentService(invoiceStore, renderer, nil, locker, testLogger())
	delivery := NewDeliveryService(invoiceStore, documents, mailer, locker, events, testLogger())

	product, err := products.Create(ctx, &models.ProductRequest{
		Name:      "Consulting",
		Type:      models.ProductTypeService,
		UnitPrice: decPtr("80.00"),
		VATRate:   decPtr("22"),
	})
	require.NoError(t, err)

	customer, err := customers.Create(ctx, &models.CustomerRequest{Name: "A. Rossi", Email: "a@x.com"})
	require.NoError(t, err)

	invoice, err := invoices.Create(ctx, &models.CreateInvoiceRequest{
		CustomerID: customer.ID,
		Items:      []models.InvoiceItemInput{item(product.ID, "2")},
	})
	require.NoError(t, err)

	require.Len(t, invoice.Items, 1)
	assert.Equal(t, "160.00", invoice.Items[0].Subtotal.StringFixed(2))
	assert.Equal(t, "35.20", invoice.Items[0].VATAmount.StringFixed(2))
	assert.Equal(t, "195.20", invoice.Total.StringFixed(2))
	assert.Equal(t, models.InvoiceStatusDraft, invoice.Status)
	assert.False(t, invoice.EmailSent)

	for i := 0; i < 2; i++ {
		sent, err := delivery.Send(ctx, invoice.ID)
		require.NoError(t, err)
		assert.True(t, sent.EmailSent)
		assert.Equal(t, models.InvoiceStatusSent, sent.Status)
	}

	assert.Equal(t, 1, renderer.Calls())
	require.Len(t, mailer.Sent(), 2)
	assert.Equal(t, mailer.Sent()[0].PDF, mailer.Sent()[1].PDF)
	assert.Equal(t, "a@x.com", mailer.Sent()[0].To)
}

func TestInvoiceService_QuantityPrecisionSurvivesStorage(t *testing.T) {
	f := newInvoiceFixture(t)

	invoice, err := f.service.Create(context.Background(), f.request(
		item(f.consult.ID, "1.125"),
		item(f.laptop.ID, "2.0000"),
	))
	require.NoError(t, err)

	for _, l := range invoice.Items {
		stored := l.Quantity.Round(3)
		assert.True(t, stored.Equal(l.Quantity))
		assert.True(t, l.Subtotal.Equal(stored.Mul(l.UnitPrice).Round(2)))
	}
	assert.Equal(t, "90.00", invoice.Items[0].Subtotal.StringFixed(2))
}

package database

import (
	"context"
	"database/sql"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fattura-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// getTestDB connects to TEST_DATABASE_DSN and applies the migrations.
// Tests are skipped when no database is reachable.
func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5432 user=postgres password=postgres dbname=fattura_test sslmode=disable"
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		t.Skipf("Postgres not available: %v", err)
	}

	db := &DB{conn}
	require.NoError(t, db.Migrate(context.Background(), testLogger()))
	t.Cleanup(func() { db.Close() })
	return db
}

func seedCustomer(t *testing.T, repo *CustomerRepository) *models.Customer {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	customer := &models.Customer{
		ID:        uuid.New(),
		Name:      "Mario Rossi",
		Email:     "mario.rossi@example.it",
		Address:   &models.Address{Street: "Via Po 1", City: "Torino", ZipCode: "10100", Country: "Italy"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(context.Background(), customer))
	return customer
}

func seedProduct(t *testing.T, repo *ProductRepository, price, vat string) *models.Product {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	product := &models.Product{
		ID:        uuid.New(),
		Name:      "Consulenza",
		Type:      models.ProductTypeService,
		UnitPrice: decimal.RequireFromString(price),
		Unit:      models.UnitHour,
		VATRate:   decimal.RequireFromString(vat),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(context.Background(), product))
	return product
}

func TestCustomerRepository_SoftDelete(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	repo := NewCustomerRepository(db, testLogger())

	customer := seedCustomer(t, repo)

	got, err := repo.GetByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.Name, got.Name)
	require.NotNil(t, got.Address)
	assert.Equal(t, "Torino", got.Address.City)

	require.NoError(t, repo.Delete(ctx, customer.ID))

	_, err = repo.GetByID(ctx, customer.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, customer.ID), ErrNotFound)

	customer.Name = "Ghost"
	assert.ErrorIs(t, repo.Update(ctx, customer), ErrNotFound)
}

func TestProductRepository_GetByIDs(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	repo := NewProductRepository(db, testLogger())

	a := seedProduct(t, repo, "10.00", "22")
	b := seedProduct(t, repo, "5.50", "10")
	deleted := seedProduct(t, repo, "1.00", "4")
	require.NoError(t, repo.Delete(ctx, deleted.ID))

	products, err := repo.GetByIDs(ctx, []uuid.UUID{a.ID, b.ID, deleted.ID, uuid.New()})

	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.True(t, products[b.ID].UnitPrice.Equal(decimal.RequireFromString("5.5")))
	assert.NotContains(t, products, deleted.ID)
}

func TestInvoiceRepository_Lifecycle(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	customers := NewCustomerRepository(db, testLogger())
	products := NewProductRepository(db, testLogger())
	invoices := NewInvoiceRepository(db, testLogger())

	customer := seedCustomer(t, customers)
	product := seedProduct(t, products, "49.90", "22")

	now := time.Now().UTC().Truncate(time.Microsecond)
	invoice := &models.Invoice{
		ID:         uuid.New(),
		Number:     "FAT-TEST-" + uuid.NewString()[:8],
		CustomerID: customer.ID,
		Items: []models.InvoiceItem{{
			ProductID: product.ID,
			Quantity:  decimal.NewFromInt(2),
			UnitPrice: product.UnitPrice,
			VATRate:   product.VATRate,
			Subtotal:  decimal.RequireFromString("99.80"),
			VATAmount: decimal.RequireFromString("21.96"),
			Total:     decimal.RequireFromString("121.76"),
		}},
		Subtotal:  decimal.RequireFromString("99.80"),
		TotalVAT:  decimal.RequireFromString("21.96"),
		Total:     decimal.RequireFromString("121.76"),
		Status:    models.InvoiceStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, invoices.Create(ctx, invoice))

	t.Run("duplicate number", func(t *testing.T) {
		dup := *invoice
		dup.ID = uuid.New()
		err := invoices.Create(ctx, &dup)
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("get populates customer and products", func(t *testing.T) {
		got, err := invoices.GetByID(ctx, invoice.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Customer)
		assert.Equal(t, customer.Email, got.Customer.Email)
		require.Len(t, got.Items, 1)
		require.NotNil(t, got.Items[0].Product)
		assert.Equal(t, product.Name, got.Items[0].Product.Name)
		assert.True(t, got.Total.Equal(invoice.Total))
		assert.Nil(t, got.Document)
	})

	t.Run("document is cached", func(t *testing.T) {
		path := "invoices/" + invoice.ID.String() + "/fattura.pdf"
		doc := &models.RenderedDocument{Data: []byte("%PDF-1.3"), ContentType: models.ContentTypePDF, Path: &path}
		require.NoError(t, invoices.SaveDocument(ctx, invoice.ID, doc))

		got, err := invoices.GetByID(ctx, invoice.ID)
		require.NoError(t, err)
		require.True(t, got.Document.HasData())
		assert.Equal(t, doc.Data, got.Document.Data)
		require.NotNil(t, got.Document.Path)
		assert.Equal(t, path, *got.Document.Path)
	})

	t.Run("mark sent", func(t *testing.T) {
		require.NoError(t, invoices.MarkSent(ctx, invoice.ID))

		got, err := invoices.GetByID(ctx, invoice.ID)
		require.NoError(t, err)
		assert.True(t, got.EmailSent)
		assert.Equal(t, models.InvoiceStatusSent, got.Status)
	})

	t.Run("status update", func(t *testing.T) {
		require.NoError(t, invoices.UpdateStatus(ctx, invoice.ID, models.InvoiceStatusPaid))
		assert.ErrorIs(t, invoices.UpdateStatus(ctx, uuid.New(), models.InvoiceStatusPaid), ErrNotFound)
	})

	t.Run("deleted references still resolve", func(t *testing.T) {
		require.NoError(t, customers.Delete(ctx, customer.ID))
		require.NoError(t, products.Delete(ctx, product.ID))

		got, err := invoices.GetByID(ctx, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, customer.Name, got.Customer.Name)
		require.NotNil(t, got.Items[0].Product)
		assert.Equal(t, product.Name, got.Items[0].Product.Name)
	})

	t.Run("listed", func(t *testing.T) {
		all, err := invoices.List(ctx)
		require.NoError(t, err)

		var found bool
		for _, inv := range all {
			if inv.ID == invoice.ID {
				found = true
				assert.Len(t, inv.Items, 1)
				assert.Equal(t, customer.Name, inv.Customer.Name)
			}
		}
		assert.True(t, found)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		_, err := invoices.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

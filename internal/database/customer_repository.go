package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fattura-service/internal/models"
	"github.com/sirupsen/logrus"
)

const customerColumns = `
	id, name, email, phone, address_street, address_city, address_zip_code,
	address_country, fiscal_code, vat_number, created_at, updated_at
`

// CustomerRepository persists customers
type CustomerRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewCustomerRepository creates the repository
func NewCustomerRepository(db *DB, logger *logrus.Logger) *CustomerRepository {
	return &CustomerRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a customer
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	street, city, zip, country := addressColumns(customer.Address)

	query := `
		INSERT INTO customers (
			id, name, email, phone, address_street, address_city, address_zip_code,
			address_country, fiscal_code, vat_number, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true, $11, $12
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		customer.ID, customer.Name, customer.Email, customer.Phone,
		street, city, zip, country,
		customer.FiscalCode, customer.VATNumber, customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating customer: %w", err)
	}

	return nil
}

// GetByID returns an active customer
func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 AND is_active = true`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("error querying customer: %w", err)
	}

	return customer, nil
}

// List returns all active customers ordered by name
func (r *CustomerRepository) List(ctx context.Context) ([]models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE is_active = true ORDER BY name, created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning customer: %w", err)
		}
		customers = append(customers, *customer)
	}

	return customers, rows.Err()
}

// Update overwrites the editable fields of an active customer
func (r *CustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	street, city, zip, country := addressColumns(customer.Address)

	query := `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, address_street = $4, address_city = $5,
		    address_zip_code = $6, address_country = $7, fiscal_code = $8, vat_number = $9,
		    updated_at = $10
		WHERE id = $11 AND is_active = true
	`

	result, err := r.db.ExecContext(ctx, query,
		customer.Name, customer.Email, customer.Phone, street, city, zip, country,
		customer.FiscalCode, customer.VATNumber, customer.UpdatedAt, customer.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating customer: %w", err)
	}

	return checkAffected(result, "customer", customer.ID)
}

// Delete deactivates a customer. Invoices keep resolving the row.
func (r *CustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE customers
		SET is_active = false, updated_at = $1
		WHERE id = $2 AND is_active = true
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error deleting customer: %w", err)
	}

	return checkAffected(result, "customer", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var (
		customer                   models.Customer
		street, city, zip, country sql.NullString
	)

	err := row.Scan(
		&customer.ID, &customer.Name, &customer.Email, &customer.Phone,
		&street, &city, &zip, &country,
		&customer.FiscalCode, &customer.VATNumber, &customer.CreatedAt, &customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if street.Valid || city.Valid || zip.Valid || country.Valid {
		customer.Address = &models.Address{
			Street:  street.String,
			City:    city.String,
			ZipCode: zip.String,
			Country: country.String,
		}
	}

	return &customer, nil
}

func addressColumns(addr *models.Address) (street, city, zip, country *string) {
	if addr == nil {
		return nil, nil, nil, nil
	}
	return &addr.Street, &addr.City, &addr.ZipCode, &addr.Country
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fattura-service/internal/models"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const productColumns = `id, name, description, type, unit_price, unit, vat_rate, created_at, updated_at`

// ProductRepository persists catalog products
type ProductRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewProductRepository creates the repository
func NewProductRepository(db *DB, logger *logrus.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (
			id, name, description, type, unit_price, unit, vat_rate,
			is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, true, $8, $9
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		product.ID, product.Name, product.Description, product.Type,
		product.UnitPrice, product.Unit, product.VATRate,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating product: %w", err)
	}

	return nil
}

// GetByID returns an active product
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND is_active = true`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("error querying product: %w", err)
	}

	return product, nil
}

// GetByIDs returns the active products among ids, keyed by id.
// Missing ids are simply absent from the map.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::uuid[]) AND is_active = true`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("error querying products: %w", err)
	}
	defer rows.Close()

	products := make(map[uuid.UUID]models.Product, len(ids))
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		products[product.ID] = *product
	}

	return products, rows.Err()
}

// List returns all active products ordered by name
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active = true ORDER BY name, created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		products = append(products, *product)
	}

	return products, rows.Err()
}

// Update overwrites the editable fields of an active product
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, type = $3, unit_price = $4, unit = $5,
		    vat_rate = $6, updated_at = $7
		WHERE id = $8 AND is_active = true
	`

	result, err := r.db.ExecContext(ctx, query,
		product.Name, product.Description, product.Type, product.UnitPrice,
		product.Unit, product.VATRate, product.UpdatedAt, product.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating product: %w", err)
	}

	return checkAffected(result, "product", product.ID)
}

// Delete deactivates a product. Existing invoice lines are unaffected.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE products
		SET is_active = false, updated_at = $1
		WHERE id = $2 AND is_active = true
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error deleting product: %w", err)
	}

	return checkAffected(result, "product", id)
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var product models.Product
	err := row.Scan(
		&product.ID, &product.Name, &product.Description, &product.Type,
		&product.UnitPrice, &product.Unit, &product.VATRate,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

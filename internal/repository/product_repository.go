package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"inventory-api/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = fmt.Errorf("product %w", domain.ErrNotFound)
)

// ProductFilter narrows a product listing
type ProductFilter struct {
	ActiveOnly bool
	CategoryID *uuid.UUID
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.stock, p.stock_minimum, p.image_url,
	       p.category_id, p.active, p.created_at, p.updated_at,
	       c.id, c.name, c.description, c.created_at, c.updated_at
	FROM products p
	JOIN categories c ON c.id = p.category_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{Category: &domain.Category{}}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Stock,
		&product.StockMinimum,
		&product.ImageURL,
		&product.CategoryID,
		&product.Active,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.Category.ID,
		&product.Category.Name,
		&product.Category.Description,
		&product.Category.CreatedAt,
		&product.Category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// lockCategory takes a key-share lock on the referenced category so it cannot
// be deleted until the surrounding transaction finishes
func lockCategory(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	var locked uuid.UUID
	err := tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE id = $1 FOR KEY SHARE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to lock category: %w", err)
	}
	return nil
}

func mapProductWriteError(op string, err error) error {
	if code, constraint, ok := pgErrorCode(err); ok {
		switch code {
		case pgForeignKeyViolation:
			return ErrCategoryNotFound
		case pgCheckViolation:
			return checkViolation(constraint)
		case pgNumericOutOfRange:
			// integer columns are range-checked by the driver while encoding,
			// so only the DECIMAL(12,2) price overflows on the server
			return domain.NewValidationError("price", "is out of range")
		}
	}
	return fmt.Errorf("failed to %s product: %w", op, err)
}

// Create inserts a new product after confirming its category exists
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockCategory(ctx, tx, product.CategoryID); err != nil {
			return err
		}

		query := `
			INSERT INTO products (id, name, description, price, stock, stock_minimum, image_url, category_id, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at, updated_at
		`

		err := tx.QueryRowContext(
			ctx,
			query,
			product.ID,
			product.Name,
			product.Description,
			product.Price,
			product.Stock,
			product.StockMinimum,
			product.ImageURL,
			product.CategoryID,
			product.Active,
		).Scan(&product.CreatedAt, &product.UpdatedAt)

		if err != nil {
			return mapProductWriteError("create", err)
		}
		return nil
	})
}

// Update overwrites every mutable field of an existing product
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockCategory(ctx, tx, product.CategoryID); err != nil {
			return err
		}

		query := `
			UPDATE products
			SET name = $2, description = $3, price = $4, stock = $5, stock_minimum = $6,
			    image_url = $7, category_id = $8, active = $9
			WHERE id = $1
			RETURNING created_at, updated_at
		`

		err := tx.QueryRowContext(
			ctx,
			query,
			product.ID,
			product.Name,
			product.Description,
			product.Price,
			product.Stock,
			product.StockMinimum,
			product.ImageURL,
			product.CategoryID,
			product.Active,
		).Scan(&product.CreatedAt, &product.UpdatedAt)

		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProductNotFound
			}
			return mapProductWriteError("update", err)
		}
		return nil
	})
}

// SetActive flips the active flag; products are never physically removed
func (r *productRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE products SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to set product active flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product joined with its category
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := scanProduct(r.db.QueryRowContext(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// List retrieves products joined with their category, ordered by name
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.ActiveOnly {
		conditions = append(conditions, "p.active = TRUE")
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", len(args)))
	}

	query := productSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.name ASC, p.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

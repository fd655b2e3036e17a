package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inventory-api/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNumericOutOfRange   = "22003"
)

// withTx runs fn inside a transaction, committing on success and rolling back otherwise
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// pgErrorCode extracts the SQLSTATE code from a driver error
func pgErrorCode(err error) (string, string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	return "", "", false
}

// checkViolation maps a CHECK constraint failure onto a validation error
func checkViolation(constraint string) error {
	switch constraint {
	case "products_price_positive":
		return domain.NewValidationError("price", "must be greater than 0")
	case "products_stock_non_negative":
		return domain.NewValidationError("stock", "must be greater than or equal to 0")
	case "products_stock_minimum_non_negative":
		return domain.NewValidationError("stock_minimum", "must be greater than or equal to 0")
	case "categories_name_not_blank":
		return domain.NewValidationError("name", "is required")
	default:
		return domain.NewValidationError(constraint, "violated")
	}
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultStockMinimum is applied when a product is created without an explicit threshold
const DefaultStockMinimum = 5

// Product represents an item tracked in the inventory
type Product struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Description  *string         `json:"description,omitempty" db:"description"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Stock        int             `json:"stock" db:"stock"`
	StockMinimum int             `json:"stock_minimum" db:"stock_minimum"`
	ImageURL     *string         `json:"image_url,omitempty" db:"image_url"`
	CategoryID   uuid.UUID       `json:"category_id" db:"category_id"`
	Active       bool            `json:"active" db:"active"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`

	// Category is populated by queries that join the owning category
	Category *Category `json:"category,omitempty"`
}

// IsLowStock reports whether the stock is at or below the configured minimum
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.StockMinimum
}

// StockValue returns price multiplied by the units on hand
func (p *Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CategoryWithCount is a category annotated with the number of products referencing it
type CategoryWithCount struct {
	Category
	ProductCount int `json:"product_count"`
}

// CategoryWithProducts is a category together with its products ordered by name
type CategoryWithProducts struct {
	Category
	Products []*Product `json:"products"`
}

// InventorySummary aggregates the figures shown on the inventory dashboard
type InventorySummary struct {
	TotalActiveProducts int             `json:"total_active_products"`
	TotalCategories     int             `json:"total_categories"`
	TotalValuation      decimal.Decimal `json:"total_valuation"`
	LowStockCount       int             `json:"low_stock_count"`
}

package service

import (
	"context"

	"inventory-api/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// InventoryService answers read-only questions that span products and categories
type InventoryService interface {
	LowStock(ctx context.Context) ([]*domain.Product, error)
	Valuation(ctx context.Context) (decimal.Decimal, error)
	Summary(ctx context.Context) (*domain.InventorySummary, error)
}

type inventoryService struct {
	products   ProductService
	categories CategoryService
}

// NewInventoryService creates a new instance of InventoryService
func NewInventoryService(products ProductService, categories CategoryService) InventoryService {
	return &inventoryService{
		products:   products,
		categories: categories,
	}
}

func lowStock(products []*domain.Product) []*domain.Product {
	out := []*domain.Product{}
	for _, p := range products {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out
}

func valuation(products []*domain.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.StockValue())
	}
	return total
}

// LowStock returns active products at or below their minimum, in name order
func (s *inventoryService) LowStock(ctx context.Context) (result []*domain.Product, err error) {
	ctx, span := tracer.Start(ctx, "inventory.query.low_stock")
	defer func() { endSpan(span, err) }()

	active, err := s.products.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	result = lowStock(active)
	span.SetAttributes(attribute.Int("product.low_stock_count", len(result)))
	return result, nil
}

// Valuation sums price times stock over active products
func (s *inventoryService) Valuation(ctx context.Context) (total decimal.Decimal, err error) {
	ctx, span := tracer.Start(ctx, "inventory.query.valuation")
	defer func() { endSpan(span, err) }()

	active, err := s.products.ListActive(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total = valuation(active)
	span.SetAttributes(attribute.String("inventory.valuation", total.StringFixed(2)))
	return total, nil
}

// Summary collects the dashboard figures
func (s *inventoryService) Summary(ctx context.Context) (summary *domain.InventorySummary, err error) {
	ctx, span := tracer.Start(ctx, "inventory.query.summary")
	defer func() { endSpan(span, err) }()

	active, err := s.products.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	totalCategories, err := s.categories.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.InventorySummary{
		TotalActiveProducts: len(active),
		TotalCategories:     totalCategories,
		TotalValuation:      valuation(active),
		LowStockCount:       len(lowStock(active)),
	}, nil
}

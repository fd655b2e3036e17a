package transport

import (
	"context"

	"inventory-api/internal/domain"
	"inventory-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// fakeCategoryService lets each test script the service outcome
type fakeCategoryService struct {
	list    func(ctx context.Context) ([]*domain.CategoryWithCount, error)
	getByID func(ctx context.Context, id uuid.UUID) (*domain.CategoryWithProducts, error)
	create  func(ctx context.Context, input service.CategoryInput) (*domain.Category, error)
	update  func(ctx context.Context, id uuid.UUID, input service.CategoryInput) (*domain.Category, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeCategoryService) List(ctx context.Context) ([]*domain.CategoryWithCount, error) {
	return f.list(ctx)
}

func (f *fakeCategoryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CategoryWithProducts, error) {
	return f.getByID(ctx, id)
}

func (f *fakeCategoryService) Create(ctx context.Context, input service.CategoryInput) (*domain.Category, error) {
	return f.create(ctx, input)
}

func (f *fakeCategoryService) Update(ctx context.Context, id uuid.UUID, input service.CategoryInput) (*domain.Category, error) {
	return f.update(ctx, id, input)
}

func (f *fakeCategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return f.delete(ctx, id)
}

func (f *fakeCategoryService) Lookup(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return nil, &domain.NotFoundError{Entity: "category", ID: id}
}

func (f *fakeCategoryService) Count(ctx context.Context) (int, error) {
	return 0, nil
}

type fakeProductService struct {
	list       func(ctx context.Context) ([]*domain.Product, error)
	listActive func(ctx context.Context) ([]*domain.Product, error)
	getByID    func(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	create     func(ctx context.Context, input service.ProductInput) (*domain.Product, error)
	update     func(ctx context.Context, id uuid.UUID, input service.ProductInput) (*domain.Product, error)
	delete     func(ctx context.Context, id uuid.UUID) (*domain.Product, error)
}

func (f *fakeProductService) List(ctx context.Context) ([]*domain.Product, error) {
	return f.list(ctx)
}

func (f *fakeProductService) ListActive(ctx context.Context) ([]*domain.Product, error) {
	return f.listActive(ctx)
}

func (f *fakeProductService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return f.getByID(ctx, id)
}

func (f *fakeProductService) Create(ctx context.Context, input service.ProductInput) (*domain.Product, error) {
	return f.create(ctx, input)
}

func (f *fakeProductService) Update(ctx context.Context, id uuid.UUID, input service.ProductInput) (*domain.Product, error) {
	return f.update(ctx, id, input)
}

func (f *fakeProductService) Delete(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return f.delete(ctx, id)
}

type fakeInventoryService struct {
	lowStock  []*domain.Product
	valuation decimal.Decimal
	summary   *domain.InventorySummary
	err       error
}

func (f *fakeInventoryService) LowStock(ctx context.Context) ([]*domain.Product, error) {
	return f.lowStock, f.err
}

func (f *fakeInventoryService) Valuation(ctx context.Context) (decimal.Decimal, error) {
	return f.valuation, f.err
}

func (f *fakeInventoryService) Summary(ctx context.Context) (*domain.InventorySummary, error) {
	return f.summary, f.err
}

// routerFor mounts a handler the same way the server does
func routerFor(h interface{ RegisterRoutes(chi.Router) }) chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}

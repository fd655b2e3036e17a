package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inventory-api/internal/cache"
	"inventory-api/internal/domain"
	"inventory-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// maxPrice is the largest value a DECIMAL(12,2) price column holds
var maxPrice = decimal.RequireFromString("9999999999.99")

// ProductInput carries the writable fields of a product.
// StockMinimum defaults to domain.DefaultStockMinimum on create and is required
// on update, as is Active. An omitted description or image_url keeps the stored
// value on update; a blank one clears it.
type ProductInput struct {
	Name         string          `json:"name" validate:"required,max=255"`
	Description  *string         `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Stock        *int            `json:"stock" validate:"required,gte=0,lte=2147483647"`
	StockMinimum *int            `json:"stock_minimum" validate:"omitempty,gte=0,lte=2147483647"`
	ImageURL     *string         `json:"image_url"`
	CategoryID   string          `json:"category_id" validate:"required"`
	Active       *bool           `json:"active"`
}

func (in *ProductInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	if in.ImageURL != nil {
		trimmed := strings.TrimSpace(*in.ImageURL)
		in.ImageURL = &trimmed
	}
}

func (in ProductInput) validate(update bool) error {
	var extra []domain.FieldError
	switch {
	case !in.Price.IsPositive():
		extra = append(extra, domain.FieldError{Field: "price", Constraint: "must be greater than 0"})
	case in.Price.GreaterThan(maxPrice):
		extra = append(extra, domain.FieldError{Field: "price", Constraint: "must be less than or equal to " + maxPrice.String()})
	case !in.Price.Equal(in.Price.Round(2)):
		extra = append(extra, domain.FieldError{Field: "price", Constraint: "must have at most 2 decimal places"})
	}
	if in.ImageURL != nil && *in.ImageURL != "" {
		extra = append(extra, validateField("image_url", *in.ImageURL, "url,max=500")...)
	}
	if update {
		if in.StockMinimum == nil {
			extra = append(extra, domain.FieldError{Field: "stock_minimum", Constraint: "is required"})
		}
		if in.Active == nil {
			extra = append(extra, domain.FieldError{Field: "active", Constraint: "is required"})
		}
	}
	return validateStruct(in, extra...)
}

// ProductService defines the interface for product business logic
type ProductService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	ListActive(ctx context.Context) ([]*domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	categories  CategoryService
	cache       cache.ProductCache
	logger      *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	categories CategoryService,
	productCache cache.ProductCache,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		categories:  categories,
		cache:       productCache,
		logger:      logger,
	}
}

func productNotFound(id uuid.UUID, err error) error {
	if errors.Is(err, repository.ErrProductNotFound) {
		return &domain.NotFoundError{Entity: "product", ID: id}
	}
	return err
}

// resolveCategory parses and looks up the referenced category.
// An id that is not a UUID cannot reference anything, so it is reported as not found.
func (s *productService) resolveCategory(ctx context.Context, raw string) (*domain.Category, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, &domain.NotFoundError{Entity: "category"}
	}
	return s.categories.Lookup(ctx, id)
}

// List returns every product, active or not, ordered by name
func (s *productService) List(ctx context.Context) (products []*domain.Product, err error) {
	ctx, span := tracer.Start(ctx, "inventory.product.list")
	defer func() { endSpan(span, err) }()

	products, err = s.productRepo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	span.SetAttributes(attribute.Int("product.count", len(products)))
	return products, nil
}

// ListActive returns the active products ordered by name, served from cache when possible
func (s *productService) ListActive(ctx context.Context) (products []*domain.Product, err error) {
	ctx, span := tracer.Start(ctx, "inventory.product.list_active")
	defer func() { endSpan(span, err) }()

	cached, ok, err := s.cache.GetActive(ctx)
	if err != nil {
		s.logger.Warn("Product cache read failed, falling back to database", zap.Error(err))
	} else if ok {
		span.SetAttributes(attribute.Bool("cache.hit", true), attribute.Int("product.count", len(cached)))
		return cached, nil
	}

	// the generation must be read before the database so a write that
	// commits in between invalidates this snapshot
	generation, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		s.logger.Warn("Product cache generation read failed", zap.Error(genErr))
	}

	products, err = s.productRepo.List(ctx, repository.ProductFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list active products: %w", err)
	}

	if genErr == nil {
		switch err := s.cache.SetActive(ctx, generation, products); {
		case errors.Is(err, cache.ErrStaleSnapshot):
			s.logger.Debug("Skipped caching a stale product snapshot", zap.Int64("generation", generation))
		case err != nil:
			s.logger.Warn("Failed to populate product cache", zap.Error(err))
		}
	}

	span.SetAttributes(attribute.Bool("cache.hit", false), attribute.Int("product.count", len(products)))
	return products, nil
}

// GetByID returns a single product joined with its category
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (product *domain.Product, err error) {
	ctx, span := tracer.Start(ctx, "inventory.product.get")
	span.SetAttributes(attribute.String("product.id", id.String()))
	defer func() { endSpan(span, err) }()

	product, err = s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, productNotFound(id, err)
	}
	return product, nil
}

// Create validates and persists a new active product
func (s *productService) Create(ctx context.Context, input ProductInput) (product *domain.Product, err error) {
	ctx, span := tracer.Start(ctx, "inventory.product.create")
	defer func() { endSpan(span, err) }()

	input.normalize()
	if err := input.validate(false); err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	stockMinimum := domain.DefaultStockMinimum
	if input.StockMinimum != nil {
		stockMinimum = *input.StockMinimum
	}

	product = &domain.Product{
		ID:           uuid.New(),
		Name:         input.Name,
		Description:  optionalString(input.Description),
		Price:        input.Price,
		Stock:        *input.Stock,
		StockMinimum: stockMinimum,
		ImageURL:     optionalString(input.ImageURL),
		CategoryID:   category.ID,
		Active:       true,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, categoryNotFound(category.ID, err)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	product.Category = category

	span.SetAttributes(
		attribute.String("product.id", product.ID.String()),
		attribute.Bool("product.low_stock", product.IsLowStock()),
	)
	s.invalidate(ctx)
	return product, nil
}

// Update overwrites a product, including its active flag and category
func (s *productService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (product *domain.Product, err error) {
	ctx, span := tracer.Start(ctx, "inventory.product.update")
	span.SetAttributes(attribute.String("product.id", id.String()))
	defer func() { endSpan(span, err) }()

	input.normalize()
	if err := input.validate(true); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, productNotFound(id, err)
	}

	category, err := s.resolveCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	product = &domain.Product{
		ID:           id,
		Name:         input.Name,
		Description:  mergeOptional(input.Description, existing.Description),
		Price:        input.Price,
		Stock:        *input.Stock,
		StockMinimum: *input.StockMinimum,
		ImageURL:     mergeOptional(input.ImageURL, existing.ImageURL),
		CategoryID:   category.ID,
		Active:       *input.Active,
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, productNotFound(id, err)
		case errors.Is(err, repository.ErrCategoryNotFound):
			return nil, categoryNotFound(category.ID, err)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	product.Category = category

	s.invalidate(ctx)
	return product, nil
}

// Delete soft-deletes a product by clearing its active flag; repeated calls are no-ops
func (s *productService) Delete(ctx context.Context, id uuid.UUID) (product *domain.Product, err error) {
	ctx, span := tracer.Start(ctx, "inventory.product.delete")
	span.SetAttributes(attribute.String("product.id", id.String()))
	defer func() { endSpan(span, err) }()

	if err := s.productRepo.SetActive(ctx, id, false); err != nil {
		return nil, productNotFound(id, err)
	}
	s.invalidate(ctx)

	product, err = s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, productNotFound(id, err)
	}
	return product, nil
}

func (s *productService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate product cache", zap.Error(err))
	}
}

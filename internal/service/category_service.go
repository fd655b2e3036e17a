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
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CategoryInput carries the writable fields of a category.
// An omitted description keeps the stored one on update; a blank one clears it.
type CategoryInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
}

// CategoryService defines the interface for category business logic
type CategoryService interface {
	List(ctx context.Context) ([]*domain.CategoryWithCount, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CategoryWithProducts, error)
	Create(ctx context.Context, input CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, input CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Lookup resolves a category reference without loading its products.
	Lookup(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	// Count returns the number of categories.
	Count(ctx context.Context) (int, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	cache        cache.ProductCache
	logger       *zap.Logger
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	productCache cache.ProductCache,
	logger *zap.Logger,
) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        productCache,
		logger:       logger,
	}
}

func categoryNotFound(id uuid.UUID, err error) error {
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return &domain.NotFoundError{Entity: "category", ID: id}
	}
	return err
}

// List returns all categories ordered by name with their product counts
func (s *categoryService) List(ctx context.Context) (categories []*domain.CategoryWithCount, err error) {
	ctx, span := tracer.Start(ctx, "inventory.category.list")
	defer func() { endSpan(span, err) }()

	categories, err = s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	span.SetAttributes(attribute.Int("category.count", len(categories)))
	return categories, nil
}

// GetByID returns a category with its products ordered by name
func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (result *domain.CategoryWithProducts, err error) {
	ctx, span := tracer.Start(ctx, "inventory.category.get")
	span.SetAttributes(attribute.String("category.id", id.String()))
	defer func() { endSpan(span, err) }()

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, categoryNotFound(id, err)
	}

	products, err := s.productRepo.List(ctx, repository.ProductFilter{CategoryID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to list category products: %w", err)
	}

	return &domain.CategoryWithProducts{Category: *category, Products: products}, nil
}

// Create validates and persists a new category
func (s *categoryService) Create(ctx context.Context, input CategoryInput) (category *domain.Category, err error) {
	ctx, span := tracer.Start(ctx, "inventory.category.create")
	defer func() { endSpan(span, err) }()

	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	category = &domain.Category{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: optionalString(input.Description),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	span.SetAttributes(attribute.String("category.id", category.ID.String()))
	return category, nil
}

// Update renames or re-describes an existing category
func (s *categoryService) Update(ctx context.Context, id uuid.UUID, input CategoryInput) (category *domain.Category, err error) {
	ctx, span := tracer.Start(ctx, "inventory.category.update")
	span.SetAttributes(attribute.String("category.id", id.String()))
	defer func() { endSpan(span, err) }()

	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	existing, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, categoryNotFound(id, err)
	}

	category = &domain.Category{
		ID:          id,
		Name:        input.Name,
		Description: mergeOptional(input.Description, existing.Description),
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, categoryNotFound(id, err)
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	// cached products embed the category they belong to
	s.invalidateProducts(ctx)
	return category, nil
}

// Delete removes a category that no product references
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := tracer.Start(ctx, "inventory.category.delete")
	span.SetAttributes(attribute.String("category.id", id.String()))
	defer func() { endSpan(span, err) }()

	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return categoryNotFound(id, err)
	}

	count, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("category.product_count", count))
	if count > 0 {
		return &domain.ConflictError{Message: "category has dependent products"}
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryInUse):
			return &domain.ConflictError{Message: "category has dependent products"}
		case errors.Is(err, repository.ErrCategoryNotFound):
			return categoryNotFound(id, err)
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}

// Lookup returns the bare category row, or a NotFoundError
func (s *categoryService) Lookup(ctx context.Context, id uuid.UUID) (category *domain.Category, err error) {
	ctx, span := tracer.Start(ctx, "inventory.category.lookup")
	span.SetAttributes(attribute.String("category.id", id.String()))
	defer func() { endSpan(span, err) }()

	category, err = s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, categoryNotFound(id, err)
	}
	return category, nil
}

// Count returns the number of categories, used by the inventory summary
func (s *categoryService) Count(ctx context.Context) (count int, err error) {
	ctx, span := tracer.Start(ctx, "inventory.category.count")
	defer func() { endSpan(span, err) }()

	count, err = s.categoryRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	span.SetAttributes(attribute.Int("category.count", count))
	return count, nil
}

func (s *categoryService) invalidateProducts(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate product cache", zap.Error(err))
	}
}

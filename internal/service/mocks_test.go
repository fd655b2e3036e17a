package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"inventory-api/internal/cache"
	"inventory-api/internal/domain"
	"inventory-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// memoryStore backs both mock repositories so foreign keys can be enforced
type memoryStore struct {
	categories map[uuid.UUID]*domain.Category
	products   map[uuid.UUID]*domain.Product
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		categories: make(map[uuid.UUID]*domain.Category),
		products:   make(map[uuid.UUID]*domain.Product),
	}
}

type mockCategoryRepository struct {
	store *memoryStore
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	now := time.Now()
	category.CreatedAt, category.UpdatedAt = now, now
	c := *category
	m.store.categories[category.ID] = &c
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	existing, ok := m.store.categories[category.ID]
	if !ok {
		return repository.ErrCategoryNotFound
	}
	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = time.Now()
	c := *category
	m.store.categories[category.ID] = &c
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.store.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	for _, p := range m.store.products {
		if p.CategoryID == id {
			return repository.ErrCategoryInUse
		}
	}
	delete(m.store.categories, id)
	return nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	c, ok := m.store.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	out := *c
	return &out, nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.CategoryWithCount, error) {
	out := []*domain.CategoryWithCount{}
	for _, c := range m.store.categories {
		count, _ := m.CountProducts(ctx, c.ID)
		out = append(out, &domain.CategoryWithCount{Category: *c, ProductCount: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (m *mockCategoryRepository) CountProducts(ctx context.Context, id uuid.UUID) (int, error) {
	count := 0
	for _, p := range m.store.products {
		if p.CategoryID == id {
			count++
		}
	}
	return count, nil
}

func (m *mockCategoryRepository) Count(ctx context.Context) (int, error) {
	return len(m.store.categories), nil
}

type mockProductRepository struct {
	store *memoryStore
}

func (m *mockProductRepository) joined(p *domain.Product) *domain.Product {
	out := *p
	if c, ok := m.store.categories[p.CategoryID]; ok {
		category := *c
		out.Category = &category
	}
	return &out
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if _, ok := m.store.categories[product.CategoryID]; !ok {
		return repository.ErrCategoryNotFound
	}
	now := time.Now()
	product.CreatedAt, product.UpdatedAt = now, now
	p := *product
	p.Category = nil
	m.store.products[product.ID] = &p
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := m.store.categories[product.CategoryID]; !ok {
		return repository.ErrCategoryNotFound
	}
	existing, ok := m.store.products[product.ID]
	if !ok {
		return repository.ErrProductNotFound
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	p := *product
	p.Category = nil
	m.store.products[product.ID] = &p
	return nil
}

func (m *mockProductRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	p, ok := m.store.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.Active = active
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.store.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return m.joined(p), nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for _, p := range m.store.products {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		out = append(out, m.joined(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// countingCache records cache traffic and can simulate an outage
type countingCache struct {
	products    []*domain.Product
	stored      bool
	generation  int64
	hits        int
	sets        int
	stale       int
	invalidates int
	fail        bool
}

var errCacheDown = errors.New("cache unavailable")

func (c *countingCache) GetActive(ctx context.Context) ([]*domain.Product, bool, error) {
	if c.fail {
		return nil, false, errCacheDown
	}
	if !c.stored {
		return nil, false, nil
	}
	c.hits++
	return c.products, true, nil
}

func (c *countingCache) Generation(ctx context.Context) (int64, error) {
	if c.fail {
		return 0, errCacheDown
	}
	return c.generation, nil
}

func (c *countingCache) SetActive(ctx context.Context, generation int64, products []*domain.Product) error {
	if c.fail {
		return errCacheDown
	}
	if generation != c.generation {
		c.stale++
		return cache.ErrStaleSnapshot
	}
	c.products, c.stored = products, true
	c.sets++
	return nil
}

func (c *countingCache) Invalidate(ctx context.Context) error {
	c.invalidates++
	if c.fail {
		return errCacheDown
	}
	c.generation++
	c.products, c.stored = nil, false
	return nil
}

type testServices struct {
	store      *memoryStore
	cache      *countingCache
	categories CategoryService
	products   ProductService
	inventory  InventoryService
}

func newTestServices() *testServices {
	return newTestServicesWithCache(&countingCache{})
}

func newTestServicesWithCache(c *countingCache) *testServices {
	return newTestServicesWithRepo(c, nil)
}

// newTestServicesWithRepo lets a test wrap the product repository seen by the services
func newTestServicesWithRepo(c *countingCache, wrap func(repository.ProductRepository) repository.ProductRepository) *testServices {
	store := newMemoryStore()
	categoryRepo := &mockCategoryRepository{store: store}
	var productRepo repository.ProductRepository = &mockProductRepository{store: store}
	if wrap != nil {
		productRepo = wrap(productRepo)
	}
	logger := zap.NewNop()

	var productCache cache.ProductCache = c
	categories := NewCategoryService(categoryRepo, productRepo, productCache, logger)
	products := NewProductService(productRepo, categories, productCache, logger)

	return &testServices{
		store:      store,
		cache:      c,
		categories: categories,
		products:   products,
		inventory:  NewInventoryService(products, categories),
	}
}

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// mustCategory creates a category and panics on failure; only for fixtures
func (ts *testServices) mustCategory(name string) *domain.Category {
	c, err := ts.categories.Create(context.Background(), CategoryInput{Name: name})
	if err != nil {
		panic(err)
	}
	return c
}

func (ts *testServices) mustProduct(input ProductInput) *domain.Product {
	p, err := ts.products.Create(context.Background(), input)
	if err != nil {
		panic(err)
	}
	return p
}

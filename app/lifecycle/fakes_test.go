package lifecycle

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/mytheresa/parts-catalog/app/assets"
	"github.com/mytheresa/parts-catalog/app/events"
	"github.com/mytheresa/parts-catalog/models"
)

// --- In-memory catalog ---

type memCatalog struct {
	mu         sync.Mutex
	nextID     uint
	clock      time.Time
	categories map[uint]models.Category
	products   map[uint]models.Product
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		clock:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		categories: map[uint]models.Category{},
		products:   map[uint]models.Product{},
	}
}

func (c *memCatalog) tick() (uint, time.Time) {
	c.nextID++
	c.clock = c.clock.Add(time.Second)
	return c.nextID, c.clock
}

type memCategories struct {
	*memCatalog
	createErr error
	updateErr error
	deleteErr error
}

func (r *memCategories) List(context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, r.withCount(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memCategories) withCount(c models.Category) models.Category {
	c.ProductCount = 0
	for _, p := range r.products {
		if p.CategoryID != nil && *p.CategoryID == c.ID {
			c.ProductCount++
		}
	}
	return c
}

func (r *memCategories) GetByID(_ context.Context, id uint) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, models.ErrCategoryNotFound
	}
	c = r.withCount(c)
	return &c, nil
}

func (r *memCategories) nameTaken(name string, except uint) bool {
	for id, c := range r.categories {
		if id != except && c.Name == name {
			return true
		}
	}
	return false
}

func (r *memCategories) Create(_ context.Context, in models.CategoryInput) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return nil, r.createErr
	}
	if r.nameTaken(in.Name, 0) {
		return nil, fmt.Errorf("%w: categories_name_key", models.ErrUniqueViolation)
	}
	id, now := r.tick()
	c := models.Category{ID: id, Name: in.Name, Description: in.Description, ImageURL: in.ImageURL, CreatedAt: now}
	r.categories[id] = c
	return &c, nil
}

func (r *memCategories) Update(_ context.Context, id uint, in models.CategoryInput) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateErr != nil {
		return nil, r.updateErr
	}
	c, ok := r.categories[id]
	if !ok {
		return nil, models.ErrCategoryNotFound
	}
	if r.nameTaken(in.Name, id) {
		return nil, fmt.Errorf("%w: categories_name_key", models.ErrUniqueViolation)
	}
	c.Name, c.Description, c.ImageURL = in.Name, in.Description, in.ImageURL
	r.categories[id] = c
	c = r.withCount(c)
	return &c, nil
}

func (r *memCategories) Delete(_ context.Context, id uint) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleteErr != nil {
		return nil, r.deleteErr
	}
	c, ok := r.categories[id]
	if !ok {
		return nil, models.ErrCategoryNotFound
	}
	delete(r.categories, id)
	for pid, p := range r.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			r.products[pid] = p
		}
	}
	return &c, nil
}

type memProducts struct {
	*memCatalog
	createErr error
	updateErr error
	deleteErr error
}

func (r *memProducts) withCategory(p models.Product) models.Product {
	p.CategoryName = nil
	if p.CategoryID != nil {
		if c, ok := r.categories[*p.CategoryID]; ok {
			name := c.Name
			p.CategoryName = &name
		}
	}
	return p
}

func (r *memProducts) List(_ context.Context, filters models.ProductFilters) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Product
	for _, p := range r.products {
		if filters.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filters.CategoryID) {
			continue
		}
		out = append(out, r.withCategory(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memProducts) GetByID(_ context.Context, id uint) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	p = r.withCategory(p)
	return &p, nil
}

func (r *memProducts) check(in models.ProductInput, except uint) error {
	for id, p := range r.products {
		if id != except && (p.Name == in.Name || p.PartNumber == in.PartNumber) {
			return fmt.Errorf("%w: products_name_key", models.ErrUniqueViolation)
		}
	}
	if in.CategoryID != nil {
		if _, ok := r.categories[*in.CategoryID]; !ok {
			return fmt.Errorf("%w: products_category_id_fkey", models.ErrInvalidReference)
		}
	}
	return nil
}

func (r *memProducts) Create(_ context.Context, in models.ProductInput) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return nil, r.createErr
	}
	if err := r.check(in, 0); err != nil {
		return nil, err
	}
	id, now := r.tick()
	p := models.Product{
		ID: id, Name: in.Name, Description: in.Description, PartNumber: in.PartNumber,
		Status: in.Status, CategoryID: in.CategoryID, ImageURL: in.ImageURL, CreatedAt: now,
	}
	r.products[id] = p
	p = r.withCategory(p)
	return &p, nil
}

func (r *memProducts) Update(_ context.Context, id uint, in models.ProductInput) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateErr != nil {
		return nil, r.updateErr
	}
	p, ok := r.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	if err := r.check(in, id); err != nil {
		return nil, err
	}
	p.Name, p.Description, p.PartNumber, p.Status = in.Name, in.Description, in.PartNumber, in.Status
	p.CategoryID, p.ImageURL = in.CategoryID, in.ImageURL
	r.products[id] = p
	p = r.withCategory(p)
	return &p, nil
}

func (r *memProducts) Delete(_ context.Context, id uint) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleteErr != nil {
		return nil, r.deleteErr
	}
	p, ok := r.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	delete(r.products, id)
	return &p, nil
}

type noMaterials struct{}

func (noMaterials) ListForProduct(context.Context, uint) ([]models.ProductMaterial, error) {
	return nil, nil
}

// --- Asset store wrapper ---

type flakyStore struct {
	*assets.DiskStore
	storeErr  error
	deleteErr error
	stored    int
}

func (s *flakyStore) Store(ctx context.Context, field string, body io.Reader, name string) (string, error) {
	if s.storeErr != nil {
		return "", s.storeErr
	}
	s.stored++
	return s.DiskStore.Store(ctx, field, body, name)
}

func (s *flakyStore) Delete(ctx context.Context, ref string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.DiskStore.Delete(ctx, ref)
}

// --- Event recorder ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Entity + "." + e.Action
	}
	return out
}

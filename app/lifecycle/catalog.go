package lifecycle

import (
	"context"

	"github.com/mytheresa/parts-catalog/app/assets"
	"github.com/mytheresa/parts-catalog/models"
)

type CategoryStore interface {
	Repository[models.Category, models.CategoryInput]
	List(ctx context.Context) ([]models.Category, error)
}

type ProductStore interface {
	Repository[models.Product, models.ProductInput]
	List(ctx context.Context, filters models.ProductFilters) ([]models.Product, error)
}

type BillOfMaterials interface {
	ListForProduct(ctx context.Context, productID uint) ([]models.ProductMaterial, error)
}

// Categories is the category service used by the HTTP layer.
type Categories struct {
	*Manager[models.Category, models.CategoryInput]
	categories CategoryStore
	products   ProductStore
}

func NewCategories(categories CategoryStore, products ProductStore, store assets.Store, opts ...Option) *Categories {
	return &Categories{
		Manager:    NewManager[models.Category, models.CategoryInput]("category", categories, store, opts...),
		categories: categories,
		products:   products,
	}
}

func (c *Categories) List(ctx context.Context) ([]models.Category, error) {
	return c.categories.List(ctx)
}

func (c *Categories) Get(ctx context.Context, id uint) (*models.Category, error) {
	return c.categories.GetByID(ctx, id)
}

// Products lists the products filed under the category.
func (c *Categories) Products(ctx context.Context, id uint) ([]models.Product, error) {
	return c.products.List(ctx, models.ProductFilters{CategoryID: &id})
}

// Products is the product service used by the HTTP layer.
type Products struct {
	*Manager[models.Product, models.ProductInput]
	products  ProductStore
	materials BillOfMaterials
}

func NewProducts(products ProductStore, materials BillOfMaterials, store assets.Store, opts ...Option) *Products {
	return &Products{
		Manager:   NewManager[models.Product, models.ProductInput]("product", products, store, opts...),
		products:  products,
		materials: materials,
	}
}

func (p *Products) List(ctx context.Context, filters models.ProductFilters) ([]models.Product, error) {
	return p.products.List(ctx, filters)
}

func (p *Products) Get(ctx context.Context, id uint) (*models.Product, error) {
	return p.products.GetByID(ctx, id)
}

func (p *Products) BillOfMaterials(ctx context.Context, id uint) ([]models.ProductMaterial, error) {
	return p.materials.ListForProduct(ctx, id)
}

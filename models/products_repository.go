package models

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductsRepository struct {
	db *gorm.DB
}

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)

type ProductFilters struct {
	CategoryID *uint
}

// productReturning is appended to writes so the returned row carries the
// category name without a second round trip.
const productReturning = `RETURNING products.*,
	(SELECT categories.name FROM categories WHERE categories.id = products.category_id) AS category_name`

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

func (r *ProductsRepository) withCategory(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&Product{}).
		Select("products.*, categories.name AS category_name").
		Joins("LEFT JOIN categories ON categories.id = products.category_id")
}

// List returns products newest first, optionally restricted to one category.
func (r *ProductsRepository) List(ctx context.Context, filters ProductFilters) ([]Product, error) {
	query := r.withCategory(ctx)
	if filters.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filters.CategoryID)
	}

	var products []Product
	if err := query.Order("products.created_at DESC").Find(&products).Error; err != nil {
		return nil, translateError(err, ErrProductNotFound)
	}
	return products, nil
}

func (r *ProductsRepository) GetByID(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := r.withCategory(ctx).Where("products.id = ?", id).Take(&product).Error; err != nil {
		return nil, translateError(err, ErrProductNotFound)
	}
	return &product, nil
}

func (r *ProductsRepository) Create(ctx context.Context, in ProductInput) (*Product, error) {
	var product Product
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO products (name, description, part_number, status, category_id, image_url)
		VALUES (?, ?, ?, ?, ?, ?) `+productReturning,
		in.Name, in.Description, in.PartNumber, in.Status, in.CategoryID, in.ImageURL,
	).Scan(&product).Error
	if err != nil {
		return nil, translateError(err, ErrProductNotFound)
	}
	return &product, nil
}

// Update replaces every mutable column of the product.
func (r *ProductsRepository) Update(ctx context.Context, id uint, in ProductInput) (*Product, error) {
	var product Product
	res := r.db.WithContext(ctx).Raw(
		`UPDATE products
		SET name = ?, description = ?, part_number = ?, status = ?, category_id = ?, image_url = ?
		WHERE id = ? `+productReturning,
		in.Name, in.Description, in.PartNumber, in.Status, in.CategoryID, in.ImageURL, id,
	).Scan(&product)
	if res.Error != nil {
		return nil, translateError(res.Error, ErrProductNotFound)
	}
	if res.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// Delete removes the product and returns the row as it was. A product that
// still has bill-of-materials lines is not deleted and yields ErrInUse.
func (r *ProductsRepository) Delete(ctx context.Context, id uint) (*Product, error) {
	var product Product
	res := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&product)
	if res.Error != nil {
		return nil, translateDeleteError(res.Error, ErrProductNotFound)
	}
	if res.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

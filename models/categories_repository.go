package models

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoriesRepository struct {
	db *gorm.DB
}

// ErrCategoryNotFound is returned when a category is not found.
var ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

func (r *CategoriesRepository) withProductCount(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&Category{}).
		Select("categories.*, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id").
		Group("categories.id")
}

// List returns every category ordered by name, including categories without products.
func (r *CategoriesRepository) List(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := r.withProductCount(ctx).Order("categories.name ASC").Find(&categories).Error; err != nil {
		return nil, translateError(err, ErrCategoryNotFound)
	}
	return categories, nil
}

func (r *CategoriesRepository) GetByID(ctx context.Context, id uint) (*Category, error) {
	var category Category
	if err := r.withProductCount(ctx).Where("categories.id = ?", id).Take(&category).Error; err != nil {
		return nil, translateError(err, ErrCategoryNotFound)
	}
	return &category, nil
}

func (r *CategoriesRepository) Create(ctx context.Context, in CategoryInput) (*Category, error) {
	category := Category{
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}
	if err := r.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, translateError(err, ErrCategoryNotFound)
	}
	return &category, nil
}

func (r *CategoriesRepository) Update(ctx context.Context, id uint, in CategoryInput) (*Category, error) {
	var category Category
	res := r.db.WithContext(ctx).Raw(
		`UPDATE categories SET name = ?, description = ?, image_url = ?
		WHERE id = ?
		RETURNING categories.*,
			(SELECT COUNT(*) FROM products WHERE products.category_id = categories.id) AS product_count`,
		in.Name, in.Description, in.ImageURL, id,
	).Scan(&category)
	if res.Error != nil {
		return nil, translateError(res.Error, ErrCategoryNotFound)
	}
	if res.RowsAffected == 0 {
		return nil, ErrCategoryNotFound
	}
	return &category, nil
}

// Delete removes the category and returns the row as it was. Products of the
// category keep existing; the schema sets their category_id to NULL.
func (r *CategoriesRepository) Delete(ctx context.Context, id uint) (*Category, error) {
	var category Category
	res := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&category)
	if res.Error != nil {
		return nil, translateDeleteError(res.Error, ErrCategoryNotFound)
	}
	if res.RowsAffected == 0 {
		return nil, ErrCategoryNotFound
	}
	return &category, nil
}

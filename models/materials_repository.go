package models

import (
	"context"

	"gorm.io/gorm"
)

// MaterialsRepository gives read-only access to materials and bills of materials.
type MaterialsRepository struct {
	db *gorm.DB
}

func NewMaterialsRepository(db *gorm.DB) *MaterialsRepository {
	return &MaterialsRepository{db: db}
}

func (r *MaterialsRepository) List(ctx context.Context) ([]Material, error) {
	var materials []Material
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&materials).Error; err != nil {
		return nil, translateError(err, ErrNotFound)
	}
	return materials, nil
}

// ListForProduct returns the bill of materials of a product. A product without
// lines yields an empty slice.
func (r *MaterialsRepository) ListForProduct(ctx context.Context, productID uint) ([]ProductMaterial, error) {
	var lines []ProductMaterial
	err := r.db.WithContext(ctx).
		Model(&ProductMaterial{}).
		Select("product_materials.*, materials.name AS material_name, materials.unit AS unit, materials.unit_cost AS unit_cost").
		Joins("JOIN materials ON materials.id = product_materials.material_id").
		Where("product_materials.product_id = ?", productID).
		Order("materials.name ASC").
		Find(&lines).Error
	if err != nil {
		return nil, translateError(err, ErrNotFound)
	}
	return lines, nil
}

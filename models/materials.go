package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material is a raw material consumed when building products.
type Material struct {
	ID           uint            `gorm:"primaryKey"`
	Name         string          `gorm:"size:255;uniqueIndex;not null"`
	Description  *string         `gorm:"type:text"`
	CurrentStock decimal.Decimal `gorm:"column:current_stock;type:decimal(10,2);not null"`
	Unit         string          `gorm:"size:20;not null"`
	Supplier     *string         `gorm:"size:255"`
	UnitCost     decimal.Decimal `gorm:"column:unit_cost;type:decimal(10,2);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (m *Material) TableName() string {
	return "materials"
}

// ProductMaterial is one bill-of-materials line: how much of a material a
// product requires.
type ProductMaterial struct {
	ID               uint            `gorm:"primaryKey"`
	ProductID        uint            `gorm:"column:product_id;uniqueIndex:idx_product_material"`
	MaterialID       uint            `gorm:"column:material_id;uniqueIndex:idx_product_material"`
	QuantityRequired decimal.Decimal `gorm:"column:quantity_required;type:decimal(10,2);not null"`
	Notes            *string         `gorm:"type:text"`
	MaterialName     string          `gorm:"column:material_name;->"`
	Unit             string          `gorm:"column:unit;->"`
	UnitCost         decimal.Decimal `gorm:"column:unit_cost;->"`
}

func (pm *ProductMaterial) TableName() string {
	return "product_materials"
}

// LineCost is the cost of the line at the material's current unit cost.
func (pm ProductMaterial) LineCost() decimal.Decimal {
	return pm.QuantityRequired.Mul(pm.UnitCost)
}

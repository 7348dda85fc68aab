package models

import "time"

// Known product statuses. The column is free text; these are the values the
// seed data and the forms use.
const (
	StatusInProduction = "IN_PRODUCTION"
	StatusPrototype    = "PROTOTYPE"
)

// Product represents a product in the catalog.
// CategoryName is filled from the owning category on every read.
type Product struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"size:255;uniqueIndex;not null"`
	Description  *string   `gorm:"type:text"`
	PartNumber   string    `gorm:"column:part_number;size:50;uniqueIndex;not null"`
	Status       string    `gorm:"size:20;not null"`
	CategoryID   *uint     `gorm:"column:category_id"`
	ImageURL     *string   `gorm:"column:image_url"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	CategoryName *string   `gorm:"column:category_name;->"`
}

func (p *Product) TableName() string {
	return "products"
}

func (p Product) ImageRef() string {
	if p.ImageURL == nil {
		return ""
	}
	return *p.ImageURL
}

func (p Product) PrimaryKey() uint {
	return p.ID
}

// ProductInput holds the mutable fields of a product.
type ProductInput struct {
	Name        string
	Description *string
	PartNumber  string
	Status      string
	CategoryID  *uint
	ImageURL    *string
}

func (in ProductInput) WithImage(ref *string) ProductInput {
	in.ImageURL = ref
	return in
}

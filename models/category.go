package models

import "time"

// Category represents a product category.
// ProductCount is computed at read time and never written.
type Category struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"size:100;uniqueIndex;not null"`
	Description  *string   `gorm:"type:text"`
	ImageURL     *string   `gorm:"column:image_url"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	ProductCount int64     `gorm:"column:product_count;->"`
}

func (c *Category) TableName() string {
	return "categories"
}

// ImageRef returns the asset reference owned by the category, or "" when it has none.
func (c Category) ImageRef() string {
	if c.ImageURL == nil {
		return ""
	}
	return *c.ImageURL
}

func (c Category) PrimaryKey() uint {
	return c.ID
}

// CategoryInput holds the mutable fields of a category.
type CategoryInput struct {
	Name        string
	Description *string
	ImageURL    *string
}

// WithImage returns a copy of the input referencing ref.
func (in CategoryInput) WithImage(ref *string) CategoryInput {
	in.ImageURL = ref
	return in
}

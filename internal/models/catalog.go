package models

import (
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category is the garment family of a product.
type Category string

const (
	CategoryShirt  Category = "shirt"
	CategorySuit   Category = "suit"
	CategoryDress  Category = "dress"
	CategoryPants  Category = "pants"
	CategoryJacket Category = "jacket"
)

// Valid reports whether c is one of the known garment categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryShirt, CategorySuit, CategoryDress, CategoryPants, CategoryJacket:
		return true
	}
	return false
}

// Product is a tailorable garment. BasePrice is in whole currency units.
type Product struct {
	BaseModel
	Name        string   `json:"name"`
	Slug        string   `gorm:"uniqueIndex" json:"slug"`
	Category    Category `gorm:"type:varchar(16);index" json:"category"`
	BasePrice   int64    `json:"base_price"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	IsActive    bool     `json:"is_active"`
	Fabrics     []Fabric `gorm:"many2many:product_fabrics;" json:"fabrics,omitempty"`
}

// BeforeCreate assigns the id and derives a slug from the name.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	p.EnsureID()
	if p.Slug == "" {
		p.Slug = slug.Make(p.Name)
	}
	return nil
}

// Fabric is a material a product can be tailored from.
type Fabric struct {
	BaseModel
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	PriceMultiplier decimal.Decimal `gorm:"type:numeric(6,3)" json:"price_multiplier"`
	Description     string          `json:"description"`
	ImageURL        string          `json:"image_url"`
	IsActive        bool            `json:"is_active"`
}

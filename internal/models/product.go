package models

import (
	"github.com/shopspring/decimal"
)

// Category groups products, e.g. "Car care and chemicals".
type Category struct {
	Base
	Name string `json:"name" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Slug string `json:"slug" gorm:"uniqueIndex;type:varchar(100);not null" validate:"required,max=100"`
}

// Brand is the manufacturer of a product.
type Brand struct {
	Base
	Name string `json:"name" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Slug string `json:"slug" gorm:"uniqueIndex;type:varchar(100);not null" validate:"required,max=100"`
}

// Product represents a product in the store.
// Stock changes go through StockMovement rows; admins may also edit it directly.
type Product struct {
	Base
	CategoryID        string          `json:"category_id" gorm:"type:varchar(36);not null;index"`
	Category          *Category       `json:"category,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	BrandID           string          `json:"brand_id" gorm:"type:varchar(36);not null;index"`
	Brand             *Brand          `json:"brand,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	Name              string          `json:"name" gorm:"type:varchar(200);not null"`
	Slug              string          `json:"slug" gorm:"uniqueIndex;type:varchar(200);not null"`
	Description       string          `json:"description" gorm:"type:text"`
	Price             decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock             int             `json:"stock" gorm:"not null"`
	LowStockThreshold *int            `json:"low_stock_threshold"`
	IsPublished       bool            `json:"is_published" gorm:"not null;index"`
	Image             string          `json:"image" gorm:"type:varchar(500)"`
	Rating            decimal.Decimal `json:"rating" gorm:"type:decimal(3,2);not null"`
	ReviewsCount      int             `json:"reviews_count" gorm:"not null"`
	Images            []ProductImage  `json:"images,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// IsLowStock reports whether stock is below the product's own threshold,
// falling back to the store-wide one.
func (p *Product) IsLowStock(defaultThreshold int) bool {
	threshold := defaultThreshold
	if p.LowStockThreshold != nil {
		threshold = *p.LowStockThreshold
	}
	return p.Stock < threshold
}

// ProductImage is an additional picture shown in the product gallery.
type ProductImage struct {
	Base
	ProductID string `json:"product_id" gorm:"type:varchar(36);not null;index"`
	URL       string `json:"url" gorm:"type:varchar(500);not null" validate:"required,url,max=500"`
	Alt       string `json:"alt" gorm:"type:varchar(200)" validate:"max=200"`
	Position  int    `json:"position" gorm:"not null"`
}

// Review is a customer's rating of a product.
type Review struct {
	Base
	ProductID string `json:"product_id" gorm:"type:varchar(36);not null;index"`
	UserID    string `json:"user_id" gorm:"type:varchar(36);not null;index"`
	User      *User  `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Rating    int    `json:"rating" gorm:"not null"`
	Text      string `json:"text" gorm:"type:text"`
}

package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountType selects how a discount value is interpreted.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// Valid reports whether t is a known discount type.
func (t DiscountType) Valid() bool {
	return t == DiscountPercent || t == DiscountFixed
}

// PromoCode is a user-entered code unlocking a discount.
// Empty Categories and Products mean the whole order is discounted.
type PromoCode struct {
	Base
	Code           string           `json:"code" gorm:"uniqueIndex;type:varchar(50);not null"`
	DiscountType   DiscountType     `json:"discount_type" gorm:"type:varchar(10);not null"`
	Value          decimal.Decimal  `json:"value" gorm:"type:decimal(10,2);not null"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount" gorm:"type:decimal(10,2)"`
	ValidFrom      *time.Time       `json:"valid_from"`
	ValidUntil     *time.Time       `json:"valid_until"`
	MaxUses        *int             `json:"max_uses"`
	UsedCount      int              `json:"used_count" gorm:"not null"`
	IsActive       bool             `json:"is_active" gorm:"not null"`
	Categories     []Category       `json:"categories" gorm:"many2many:promo_code_categories;"`
	Products       []Product        `json:"products" gorm:"many2many:promo_code_products;"`
}

// BeforeSave stores codes upper-cased so the unique index also holds across case.
func (p *PromoCode) BeforeSave(tx *gorm.DB) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	return nil
}

// IsValidAt reports whether the code is active, inside its window and not used up.
func (p *PromoCode) IsValidAt(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return false
	}
	if p.MaxUses != nil && p.UsedCount >= *p.MaxUses {
		return false
	}
	return true
}

// Campaign is a date-scoped discount applied without a code.
type Campaign struct {
	Base
	Name         string          `json:"name" gorm:"type:varchar(200);not null"`
	StartDate    time.Time       `json:"start_date" gorm:"not null;index"`
	EndDate      time.Time       `json:"end_date" gorm:"not null;index"`
	DiscountType DiscountType    `json:"discount_type" gorm:"type:varchar(10);not null"`
	Value        decimal.Decimal `json:"value" gorm:"type:decimal(10,2);not null"`
	IsActive     bool            `json:"is_active" gorm:"not null"`
	Categories   []Category      `json:"categories" gorm:"many2many:campaign_categories;"`
	Products     []Product       `json:"products" gorm:"many2many:campaign_products;"`
}

// IsRunningAt reports whether the campaign is active and now is within [StartDate, EndDate].
func (c *Campaign) IsRunningAt(now time.Time) bool {
	return c.IsActive && !now.Before(c.StartDate) && !now.After(c.EndDate)
}

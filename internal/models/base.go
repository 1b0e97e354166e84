package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the identity and timestamps shared by every stored entity.
type Base struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// All lists every model for auto-migration, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Brand{},
		&Product{},
		&ProductImage{},
		&Review{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&StockMovement{},
		&PromoCode{},
		&Campaign{},
		&SiteSettings{},
		&EmailTemplate{},
	}
}

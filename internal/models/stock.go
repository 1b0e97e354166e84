package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockMovementKind tells why a product's stock changed.
type StockMovementKind string

const (
	MovementReceipt    StockMovementKind = "receipt"
	MovementWriteOff   StockMovementKind = "write_off"
	MovementAdjustment StockMovementKind = "adjustment"
	MovementOrder      StockMovementKind = "order"
)

// Valid reports whether k is a known movement kind.
func (k StockMovementKind) Valid() bool {
	switch k {
	case MovementReceipt, MovementWriteOff, MovementAdjustment, MovementOrder:
		return true
	}
	return false
}

// StockMovement is an append-only audit row for one change of a product's stock.
// Positive quantity adds stock, negative removes it.
type StockMovement struct {
	ID         string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID  string            `json:"product_id" gorm:"type:varchar(36);not null;index"`
	Product    *Product          `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Quantity   int               `json:"quantity" gorm:"not null"`
	Kind       StockMovementKind `json:"kind" gorm:"type:varchar(20);not null"`
	OrderID    *string           `json:"order_id,omitempty" gorm:"type:varchar(36);index"`
	Order      *Order            `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	Note       string            `json:"note" gorm:"type:varchar(255)"`
	StockAfter int               `json:"stock_after" gorm:"not null"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// AfterCreate applies the movement to the product in a single
// read-modify-write statement: stock = max(0, stock + quantity).
func (m *StockMovement) AfterCreate(tx *gorm.DB) error {
	res := tx.Model(&Product{}).
		Where("id = ?", m.ProductID).
		UpdateColumn("stock", gorm.Expr("CASE WHEN stock + ? < 0 THEN 0 ELSE stock + ? END", m.Quantity, m.Quantity))
	if res.Error != nil {
		return fmt.Errorf("failed to apply stock movement to product %s: %w", m.ProductID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("stock movement for product %s: %w", m.ProductID, ErrProductNotFound)
	}

	var stock int
	if err := tx.Model(&Product{}).Select("stock").Where("id = ?", m.ProductID).Scan(&stock).Error; err != nil {
		return fmt.Errorf("failed to read stock of product %s: %w", m.ProductID, err)
	}
	m.StockAfter = stock
	return tx.Model(m).UpdateColumn("stock_after", stock).Error
}

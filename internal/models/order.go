package models

import (
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is an immutable, priced snapshot of a purchase.
type Order struct {
	Base
	UserID         string          `json:"user_id" gorm:"type:varchar(36);not null;index"`
	User           *User           `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Address        string          `json:"address" gorm:"type:text;not null"`
	Phone          string          `json:"phone" gorm:"type:varchar(20)"`
	DeliveryMethod string          `json:"delivery_method" gorm:"type:varchar(20);not null"`
	PaymentMethod  string          `json:"payment_method" gorm:"type:varchar(20);not null"`
	Comment        string          `json:"comment" gorm:"type:text"`
	Status         OrderStatus     `json:"status" gorm:"type:varchar(50);not null;index"`
	Subtotal       decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:decimal(10,2);not null"`
	PromoCode      *string         `json:"promo_code" gorm:"type:varchar(50)"`
	CampaignID     *string         `json:"campaign_id" gorm:"type:varchar(36)"`
	TotalPrice     decimal.Decimal `json:"total_price" gorm:"type:decimal(10,2);not null"`
	Currency       string          `json:"currency" gorm:"type:varchar(10);not null"`
	Items          []OrderItem     `json:"items" gorm:"constraint:OnDelete:CASCADE"`
}

// OrderItem is a product line of an order at its purchase-time price.
type OrderItem struct {
	Base
	OrderID   string          `json:"order_id" gorm:"type:varchar(36);not null;index"`
	ProductID string          `json:"product_id" gorm:"type:varchar(36);not null;index"`
	Product   *Product        `json:"product,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
}

// Total is quantity × purchase-time price.
func (i *OrderItem) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

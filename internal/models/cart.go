package models

import "github.com/shopspring/decimal"

// Cart is the per-user list of products the user intends to buy.
// A user has at most one cart; it survives order placement with its items removed.
type Cart struct {
	Base
	UserID string     `json:"user_id" gorm:"uniqueIndex;type:varchar(36);not null"`
	User   *User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Items  []CartItem `json:"items" gorm:"constraint:OnDelete:CASCADE"`
}

// Total is the live price of the cart, always using current product prices.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].Total())
	}
	return total
}

// CartItem is one product line in a cart.
type CartItem struct {
	Base
	CartID    string   `json:"cart_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_product"`
	ProductID string   `json:"product_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_product"`
	Product   *Product `json:"product,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Quantity  int      `json:"quantity" gorm:"not null"`
}

// Total is the line price at the product's current price.
func (i *CartItem) Total() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Package pricing decides which discount, if any, applies to an order.
package pricing

import (
	"time"

	"autoshop/internal/models"

	"github.com/shopspring/decimal"
)

// Source tells where an applied discount came from.
type Source string

const (
	SourceNone     Source = "none"
	SourcePromo    Source = "promo"
	SourceCampaign Source = "campaign"
)

var hundred = decimal.NewFromInt(100)

// Line is one priced order line as seen by the resolver.
type Line struct {
	ProductID  string
	CategoryID string
	Subtotal   decimal.Decimal
}

// Input is everything Resolve needs; it performs no I/O.
type Input struct {
	Amount    decimal.Decimal
	Lines     []Line
	Promo     *models.PromoCode
	Campaigns []models.Campaign
	Now       time.Time
}

// AppliedDiscount is the outcome of Resolve.
type AppliedDiscount struct {
	Source      Source              `json:"source"`
	Code        string              `json:"code,omitempty"`
	PromoID     string              `json:"-"`
	CampaignID  string              `json:"campaign_id,omitempty"`
	Type        models.DiscountType `json:"type,omitempty"`
	Value       decimal.Decimal     `json:"value"`
	Discount    decimal.Decimal     `json:"discount"`
	FinalAmount decimal.Decimal     `json:"final_amount"`
}

// Applied reports whether any discount was granted.
func (a AppliedDiscount) Applied() bool {
	return a.Source != SourceNone
}

// Resolve picks the single largest discount among the promo code and the
// running campaigns. Discounts never stack.
func Resolve(in Input) AppliedDiscount {
	best := AppliedDiscount{
		Source:      SourceNone,
		Value:       decimal.Zero,
		Discount:    decimal.Zero,
		FinalAmount: floorZero(in.Amount),
	}

	if in.Promo != nil && PromoApplicable(in.Promo, in.Amount, in.Now) {
		d := compute(in.Promo.DiscountType, in.Promo.Value, scopedSubtotal(in, in.Promo.Products, in.Promo.Categories))
		if d.IsPositive() {
			best = AppliedDiscount{
				Source:   SourcePromo,
				Code:     in.Promo.Code,
				PromoID:  in.Promo.ID,
				Type:     in.Promo.DiscountType,
				Value:    in.Promo.Value,
				Discount: d,
			}
		}
	}

	for i := range in.Campaigns {
		c := &in.Campaigns[i]
		if !c.IsRunningAt(in.Now) {
			continue
		}
		d := compute(c.DiscountType, c.Value, scopedSubtotal(in, c.Products, c.Categories))
		if d.GreaterThan(best.Discount) {
			best = AppliedDiscount{
				Source:     SourceCampaign,
				CampaignID: c.ID,
				Type:       c.DiscountType,
				Value:      c.Value,
				Discount:   d,
			}
		}
	}

	best.FinalAmount = floorZero(in.Amount.Sub(best.Discount))
	return best
}

// PromoApplicable reports whether promo grants a discount on an order of amount at now.
// A missed minimum order amount is not an error; the order just proceeds at full price.
func PromoApplicable(promo *models.PromoCode, amount decimal.Decimal, now time.Time) bool {
	if promo == nil || !promo.IsValidAt(now) {
		return false
	}
	if promo.MinOrderAmount != nil && amount.LessThan(*promo.MinOrderAmount) {
		return false
	}
	return true
}

// Discount computes the discount of the given shape on subtotal.
func Discount(t models.DiscountType, value, subtotal decimal.Decimal) decimal.Decimal {
	return compute(t, value, subtotal)
}

func compute(t models.DiscountType, value, subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() || !value.IsPositive() {
		return decimal.Zero
	}
	var d decimal.Decimal
	switch t {
	case models.DiscountPercent:
		d = subtotal.Mul(value).Div(hundred).Round(2)
	case models.DiscountFixed:
		d = value
	default:
		return decimal.Zero
	}
	return decimal.Min(d, subtotal)
}

// scopedSubtotal sums the lines a rule applies to. A rule without products
// and categories covers the whole order.
func scopedSubtotal(in Input, products []models.Product, categories []models.Category) decimal.Decimal {
	if len(products) == 0 && len(categories) == 0 {
		return in.Amount
	}
	productSet := make(map[string]struct{}, len(products))
	for _, p := range products {
		productSet[p.ID] = struct{}{}
	}
	categorySet := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		categorySet[c.ID] = struct{}{}
	}

	sum := decimal.Zero
	for _, l := range in.Lines {
		_, byProduct := productSet[l.ProductID]
		_, byCategory := categorySet[l.CategoryID]
		if byProduct || byCategory {
			sum = sum.Add(l.Subtotal)
		}
	}
	return sum
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

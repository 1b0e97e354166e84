package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"autoshop/internal/models"
	"autoshop/internal/repositories"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountRule is the discount shape shared by promo codes and campaigns.
type DiscountRule struct {
	DiscountType models.DiscountType `json:"discount_type" validate:"required,oneof=percent fixed"`
	Value        decimal.Decimal     `json:"value"`
	IsActive     *bool               `json:"is_active"`
	Categories   []string            `json:"categories"`
	Products     []string            `json:"products"`
}

func (r DiscountRule) check() error {
	if !r.Value.IsPositive() {
		return models.FieldError("value", "Ensure this value is greater than 0.")
	}
	if r.DiscountType == models.DiscountPercent && r.Value.GreaterThan(hundred) {
		return models.FieldError("value", "A percent discount cannot exceed 100.")
	}
	return nil
}

func (r DiscountRule) active() bool {
	return r.IsActive == nil || *r.IsActive
}

// PromoCodeInput creates a promo code. Categories and Products hold slugs.
type PromoCodeInput struct {
	Code           string           `json:"code" validate:"required,max=50"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount"`
	ValidFrom      *time.Time       `json:"valid_from"`
	ValidUntil     *time.Time       `json:"valid_until"`
	MaxUses        *int             `json:"max_uses" validate:"omitempty,gte=1"`
	DiscountRule
}

// CampaignInput creates a campaign. Categories and Products hold slugs.
type CampaignInput struct {
	Name      string    `json:"name" validate:"required,max=200"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	DiscountRule
}

// PromotionService manages promo codes and campaigns.
type PromotionService struct {
	store  *repositories.Store
	logger zerolog.Logger
}

// NewPromotionService creates a new PromotionService.
func NewPromotionService(store *repositories.Store, logger zerolog.Logger) *PromotionService {
	return &PromotionService{
		store:  store,
		logger: logger.With().Str("service", "promotion").Logger(),
	}
}

// ListCodes returns every promo code.
func (s *PromotionService) ListCodes(ctx context.Context) ([]models.PromoCode, error) {
	return s.store.Promotions.ListCodes(ctx)
}

// CreateCode validates in and stores a new promo code.
func (s *PromotionService) CreateCode(ctx context.Context, in PromoCodeInput) (*models.PromoCode, error) {
	in.Code = strings.TrimSpace(in.Code)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var windowErr, minErr, takenErr error
	if in.ValidFrom != nil && in.ValidUntil != nil && in.ValidUntil.Before(*in.ValidFrom) {
		windowErr = models.FieldError("valid_until", "Must not be earlier than valid_from.")
	}
	if in.MinOrderAmount != nil && in.MinOrderAmount.IsNegative() {
		minErr = models.FieldError("min_order_amount", "Ensure this value is greater than or equal to 0.")
	}
	_, err := s.store.Promotions.FindCode(ctx, in.Code)
	switch {
	case err == nil:
		takenErr = models.FieldError("code", "A promo code with this code already exists.")
	case !errors.Is(err, models.ErrPromoNotFound):
		return nil, err
	}
	if err := mergeFields(in.check(), windowErr, minErr, takenErr); err != nil {
		return nil, err
	}

	categories, products, err := s.resolveScope(ctx, in.DiscountRule)
	if err != nil {
		return nil, err
	}

	promo := &models.PromoCode{
		Code:           in.Code,
		DiscountType:   in.DiscountType,
		Value:          in.Value,
		MinOrderAmount: in.MinOrderAmount,
		ValidFrom:      in.ValidFrom,
		ValidUntil:     in.ValidUntil,
		MaxUses:        in.MaxUses,
		IsActive:       in.active(),
		Categories:     categories,
		Products:       products,
	}
	err = s.store.Promotions.CreateCode(ctx, promo)
	if errors.Is(err, models.ErrDuplicate) {
		return nil, models.FieldError("code", "A promo code with this code already exists.")
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("code", promo.Code).Str("type", string(promo.DiscountType)).Msg("promo code created")
	return promo, nil
}

// DeleteCode removes a promo code.
func (s *PromotionService) DeleteCode(ctx context.Context, id string) error {
	return s.store.Promotions.DeleteCode(ctx, id)
}

// ListCampaigns returns every campaign.
func (s *PromotionService) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	return s.store.Promotions.ListCampaigns(ctx)
}

// CreateCampaign validates in and stores a new campaign.
func (s *PromotionService) CreateCampaign(ctx context.Context, in CampaignInput) (*models.Campaign, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var windowErr error
	if in.EndDate.Before(in.StartDate) {
		windowErr = models.FieldError("end_date", "Must not be earlier than start_date.")
	}
	if err := mergeFields(in.check(), windowErr); err != nil {
		return nil, err
	}

	categories, products, err := s.resolveScope(ctx, in.DiscountRule)
	if err != nil {
		return nil, err
	}

	campaign := &models.Campaign{
		Name:         in.Name,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		DiscountType: in.DiscountType,
		Value:        in.Value,
		IsActive:     in.active(),
		Categories:   categories,
		Products:     products,
	}
	if err := s.store.Promotions.CreateCampaign(ctx, campaign); err != nil {
		return nil, err
	}
	s.logger.Info().Str("campaign_id", campaign.ID).Str("name", campaign.Name).Msg("campaign created")
	return campaign, nil
}

// DeleteCampaign removes a campaign.
func (s *PromotionService) DeleteCampaign(ctx context.Context, id string) error {
	return s.store.Promotions.DeleteCampaign(ctx, id)
}

// resolveScope loads the categories and products named by slug in rule.
func (s *PromotionService) resolveScope(ctx context.Context, rule DiscountRule) ([]models.Category, []models.Product, error) {
	categories := make([]models.Category, 0, len(rule.Categories))
	for _, slug := range rule.Categories {
		c, err := s.store.Categories.GetBySlug(ctx, slug)
		if errors.Is(err, models.ErrCategoryNotFound) {
			return nil, nil, models.FieldError("categories", "Unknown category: "+slug+".")
		}
		if err != nil {
			return nil, nil, err
		}
		categories = append(categories, *c)
	}

	products := make([]models.Product, 0, len(rule.Products))
	for _, slug := range rule.Products {
		p, err := s.store.Products.GetBySlug(ctx, slug)
		if errors.Is(err, models.ErrProductNotFound) {
			return nil, nil, models.FieldError("products", "Unknown product: "+slug+".")
		}
		if err != nil {
			return nil, nil, err
		}
		p.Category, p.Brand, p.Images = nil, nil, nil
		products = append(products, *p)
	}
	return categories, products, nil
}

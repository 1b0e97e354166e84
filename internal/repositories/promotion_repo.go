package repositories

import (
	"context"
	"time"

	"autoshop/internal/models"
)

// PromotionRepository defines data access for promo codes and campaigns.
type PromotionRepository interface {
	// FindCode looks a promo code up case-insensitively.
	FindCode(ctx context.Context, code string) (*models.PromoCode, error)
	// Redeem increments used_count only while the code is under its usage limit.
	Redeem(ctx context.Context, promoID string) error
	ListCodes(ctx context.Context) ([]models.PromoCode, error)
	CreateCode(ctx context.Context, promo *models.PromoCode) error
	DeleteCode(ctx context.Context, id string) error

	RunningCampaigns(ctx context.Context, now time.Time) ([]models.Campaign, error)
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	CreateCampaign(ctx context.Context, campaign *models.Campaign) error
	DeleteCampaign(ctx context.Context, id string) error
}

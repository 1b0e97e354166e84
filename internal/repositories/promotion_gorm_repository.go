package repositories

import (
	"context"
	"time"

	"autoshop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMPromotionRepository is a GORM implementation of PromotionRepository.
type GORMPromotionRepository struct {
	db *gorm.DB
}

// NewGORMPromotionRepository creates a new instance of GORMPromotionRepository.
func NewGORMPromotionRepository(db *gorm.DB) *GORMPromotionRepository {
	return &GORMPromotionRepository{db: db}
}

func withScope(db *gorm.DB) *gorm.DB {
	return db.Preload("Categories").Preload("Products")
}

// FindCode looks a promo code up, ignoring case.
func (r *GORMPromotionRepository) FindCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := r.db.WithContext(ctx).Scopes(withScope).
		Where("LOWER(code) = LOWER(?)", code).
		First(&promo).Error
	if err != nil {
		return nil, translate(err, models.ErrPromoNotFound, "find promo code %q", code)
	}
	return &promo, nil
}

// Redeem atomically consumes one use of the promo code.
func (r *GORMPromotionRepository) Redeem(ctx context.Context, promoID string) error {
	res := r.db.WithContext(ctx).Model(&models.PromoCode{}).
		Where("id = ? AND (max_uses IS NULL OR used_count < max_uses)", promoID).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
	if res.Error != nil {
		return translate(res.Error, nil, "redeem promo code %s", promoID)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, models.ErrPromoExhausted, "redeem promo code %s", promoID)
	}
	return nil
}

// ListCodes returns every promo code with its scope.
func (r *GORMPromotionRepository) ListCodes(ctx context.Context) ([]models.PromoCode, error) {
	var codes []models.PromoCode
	if err := r.db.WithContext(ctx).Scopes(withScope).Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, translate(err, nil, "list promo codes")
	}
	return codes, nil
}

// CreateCode inserts a promo code and links its existing categories and products.
func (r *GORMPromotionRepository) CreateCode(ctx context.Context, promo *models.PromoCode) error {
	if err := r.db.WithContext(ctx).Omit("Categories.*", "Products.*").Create(promo).Error; err != nil {
		return translate(err, nil, "create promo code %s", promo.Code)
	}
	return nil
}

// DeleteCode removes a promo code and its scope links.
func (r *GORMPromotionRepository) DeleteCode(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var promo models.PromoCode
		if err := tx.First(&promo, "id = ?", id).Error; err != nil {
			return translate(err, models.ErrPromoNotFound, "delete promo code %s", id)
		}
		if err := tx.Select(clause.Associations).Delete(&promo).Error; err != nil {
			return translate(err, nil, "delete promo code %s", id)
		}
		return nil
	})
}

// RunningCampaigns returns active campaigns whose window contains now, oldest first.
func (r *GORMPromotionRepository) RunningCampaigns(ctx context.Context, now time.Time) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := r.db.WithContext(ctx).Scopes(withScope).
		Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, now, now).
		Order("created_at, id").
		Find(&campaigns).Error
	if err != nil {
		return nil, translate(err, nil, "list running campaigns")
	}
	return campaigns, nil
}

// ListCampaigns returns every campaign with its scope.
func (r *GORMPromotionRepository) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	if err := r.db.WithContext(ctx).Scopes(withScope).Order("start_date DESC").Find(&campaigns).Error; err != nil {
		return nil, translate(err, nil, "list campaigns")
	}
	return campaigns, nil
}

// CreateCampaign inserts a campaign and links its existing categories and products.
func (r *GORMPromotionRepository) CreateCampaign(ctx context.Context, campaign *models.Campaign) error {
	if err := r.db.WithContext(ctx).Omit("Categories.*", "Products.*").Create(campaign).Error; err != nil {
		return translate(err, nil, "create campaign %s", campaign.Name)
	}
	return nil
}

// DeleteCampaign removes a campaign and its scope links.
func (r *GORMPromotionRepository) DeleteCampaign(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var campaign models.Campaign
		if err := tx.First(&campaign, "id = ?", id).Error; err != nil {
			return translate(err, models.ErrCampaignNotFound, "delete campaign %s", id)
		}
		if err := tx.Select(clause.Associations).Delete(&campaign).Error; err != nil {
			return translate(err, nil, "delete campaign %s", id)
		}
		return nil
	})
}

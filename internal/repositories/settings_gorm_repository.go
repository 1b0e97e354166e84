package repositories

import (
	"context"

	"autoshop/internal/models"

	"gorm.io/gorm"
)

// GORMSettingsRepository is a GORM implementation of SettingsRepository.
type GORMSettingsRepository struct {
	db *gorm.DB
}

// NewGORMSettingsRepository creates a new instance of GORMSettingsRepository.
func NewGORMSettingsRepository(db *gorm.DB) *GORMSettingsRepository {
	return &GORMSettingsRepository{db: db}
}

// Get returns the oldest settings row, or nil.
func (r *GORMSettingsRepository) Get(ctx context.Context) (*models.SiteSettings, error) {
	var rows []models.SiteSettings
	if err := r.db.WithContext(ctx).Order("created_at").Limit(1).Find(&rows).Error; err != nil {
		return nil, translate(err, nil, "get site settings")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Save inserts or updates the settings row.
func (r *GORMSettingsRepository) Save(ctx context.Context, settings *models.SiteSettings) error {
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return translate(err, nil, "save site settings")
	}
	return nil
}

// GetTemplate retrieves an email template by slug.
func (r *GORMSettingsRepository) GetTemplate(ctx context.Context, slug string) (*models.EmailTemplate, error) {
	var tpl models.EmailTemplate
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&tpl).Error; err != nil {
		return nil, translate(err, models.ErrTemplateNotFound, "get email template %s", slug)
	}
	return &tpl, nil
}

// ListTemplates returns all email templates ordered by slug.
func (r *GORMSettingsRepository) ListTemplates(ctx context.Context) ([]models.EmailTemplate, error) {
	var templates []models.EmailTemplate
	if err := r.db.WithContext(ctx).Order("slug").Find(&templates).Error; err != nil {
		return nil, translate(err, nil, "list email templates")
	}
	return templates, nil
}

// SaveTemplate inserts or updates an email template.
func (r *GORMSettingsRepository) SaveTemplate(ctx context.Context, tpl *models.EmailTemplate) error {
	if err := r.db.WithContext(ctx).Save(tpl).Error; err != nil {
		return translate(err, nil, "save email template %s", tpl.Slug)
	}
	return nil
}

package repositories

import (
	"context"

	"autoshop/internal/models"
)

// SettingsRepository stores the site settings row and email templates.
type SettingsRepository interface {
	// Get returns the settings row, or nil when none has been saved.
	Get(ctx context.Context) (*models.SiteSettings, error)
	Save(ctx context.Context, settings *models.SiteSettings) error
	GetTemplate(ctx context.Context, slug string) (*models.EmailTemplate, error)
	ListTemplates(ctx context.Context) ([]models.EmailTemplate, error)
	SaveTemplate(ctx context.Context, tpl *models.EmailTemplate) error
}

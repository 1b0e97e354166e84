package services

import (
	"context"
	"errors"
	"strings"

	"autoshop/internal/models"
	"autoshop/internal/repositories"

	"github.com/rs/zerolog"
)

// SettingsInput replaces the editable site settings.
type SettingsInput struct {
	SiteName          string                `json:"site_name" validate:"required,max=200"`
	ContactPhone      string                `json:"contact_phone" validate:"max=50"`
	ContactEmail      string                `json:"contact_email" validate:"omitempty,email,max=255"`
	ContactAddress    string                `json:"contact_address"`
	Currency          string                `json:"currency" validate:"required,max=10"`
	DeliveryMethods   []models.MethodOption `json:"delivery_methods" validate:"required,min=1,dive"`
	PaymentMethods    []models.MethodOption `json:"payment_methods" validate:"required,min=1,dive"`
	DeliveryInfo      string                `json:"delivery_info"`
	PaymentInfo       string                `json:"payment_info"`
	LowStockThreshold int                   `json:"low_stock_threshold" validate:"gte=0"`
}

// TemplateInput edits an email template.
type TemplateInput struct {
	Name     string `json:"name" validate:"max=100"`
	Subject  string `json:"subject" validate:"required,max=200"`
	Body     string `json:"body" validate:"required"`
	IsActive *bool  `json:"is_active"`
}

// SettingsService manages store-wide settings and email templates.
type SettingsService struct {
	repo   repositories.SettingsRepository
	logger zerolog.Logger
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(repo repositories.SettingsRepository, logger zerolog.Logger) *SettingsService {
	return &SettingsService{
		repo:   repo,
		logger: logger.With().Str("service", "settings").Logger(),
	}
}

// Current returns the effective site configuration, falling back to defaults.
func (s *SettingsService) Current(ctx context.Context) (models.SiteConfig, error) {
	row, err := s.repo.Get(ctx)
	if err != nil {
		return models.SiteConfig{}, err
	}
	return row.Config(), nil
}

// Get returns the stored settings, or an unsaved row populated from defaults.
func (s *SettingsService) Get(ctx context.Context) (*models.SiteSettings, error) {
	row, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if row != nil {
		return row, nil
	}
	cfg := models.DefaultSiteConfig()
	return &models.SiteSettings{
		SiteName:          cfg.SiteName,
		Currency:          cfg.Currency,
		DeliveryMethods:   cfg.DeliveryMethods,
		PaymentMethods:    cfg.PaymentMethods,
		LowStockThreshold: cfg.LowStockThreshold,
	}, nil
}

// Update overwrites the settings row, creating it on first save.
func (s *SettingsService) Update(ctx context.Context, in SettingsInput) (*models.SiteSettings, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := uniqueMethodIDs(in); err != nil {
		return nil, err
	}

	row, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if row == nil {
		row = &models.SiteSettings{}
	}
	row.SiteName = strings.TrimSpace(in.SiteName)
	row.ContactPhone = in.ContactPhone
	row.ContactEmail = in.ContactEmail
	row.ContactAddress = in.ContactAddress
	row.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	row.DeliveryMethods = in.DeliveryMethods
	row.PaymentMethods = in.PaymentMethods
	row.DeliveryInfo = in.DeliveryInfo
	row.PaymentInfo = in.PaymentInfo
	row.LowStockThreshold = in.LowStockThreshold

	if err := s.repo.Save(ctx, row); err != nil {
		return nil, err
	}
	s.logger.Info().Str("currency", row.Currency).Msg("site settings updated")
	return row, nil
}

func uniqueMethodIDs(in SettingsInput) error {
	check := func(field string, options []models.MethodOption) error {
		seen := make(map[string]bool, len(options))
		for _, o := range options {
			if seen[o.ID] {
				return models.FieldError(field, "Method ids must be unique.")
			}
			seen[o.ID] = true
		}
		return nil
	}
	return mergeFields(check("delivery_methods", in.DeliveryMethods), check("payment_methods", in.PaymentMethods))
}

// ListTemplates returns all email templates.
func (s *SettingsService) ListTemplates(ctx context.Context) ([]models.EmailTemplate, error) {
	return s.repo.ListTemplates(ctx)
}

// Template returns the template for slug.
func (s *SettingsService) Template(ctx context.Context, slug string) (*models.EmailTemplate, error) {
	return s.repo.GetTemplate(ctx, slug)
}

// UpdateTemplate edits the template for slug, creating it when it does not exist.
func (s *SettingsService) UpdateTemplate(ctx context.Context, slug string, in TemplateInput) (*models.EmailTemplate, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	tpl, err := s.repo.GetTemplate(ctx, slug)
	switch {
	case errors.Is(err, models.ErrTemplateNotFound):
		tpl = &models.EmailTemplate{Slug: slug, Name: slug, IsActive: true}
	case err != nil:
		return nil, err
	}

	if in.Name != "" {
		tpl.Name = in.Name
	}
	tpl.Subject = in.Subject
	tpl.Body = in.Body
	if in.IsActive != nil {
		tpl.IsActive = *in.IsActive
	}
	if err := s.repo.SaveTemplate(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// DefaultTemplates are installed by EnsureDefaults.
func DefaultTemplates() []models.EmailTemplate {
	return []models.EmailTemplate{
		{
			Slug:     models.TemplateOrderConfirmation,
			Name:     "Order confirmation",
			Subject:  "{{ site_name }}: order {{ order_id }} received",
			Body:     "Hello {{ username }}!\n\nWe received your order {{ order_id }} for {{ total }} {{ currency }}.\nDelivery: {{ delivery_method }}, payment: {{ payment_method }}.\n\n{{ site_name }}",
			IsActive: true,
		},
		{
			Slug:     models.TemplateOrderStatus,
			Name:     "Order status changed",
			Subject:  "{{ site_name }}: order {{ order_id }} is {{ status }}",
			Body:     "Hello {{ username }}!\n\nYour order {{ order_id }} changed status from {{ previous_status }} to {{ status }}.\n\n{{ site_name }}",
			IsActive: true,
		},
		{
			Slug:     models.TemplateWelcome,
			Name:     "Welcome",
			Subject:  "Welcome to {{ site_name }}",
			Body:     "Hello {{ username }}, thank you for registering.",
			IsActive: true,
		},
		{
			Slug:     models.TemplatePasswordReset,
			Name:     "Password reset",
			Subject:  "{{ site_name }}: password reset",
			Body:     "Hello {{ username }}, follow {{ link }} to reset your password.",
			IsActive: true,
		},
	}
}

// EnsureDefaults saves default settings and templates that are missing.
func (s *SettingsService) EnsureDefaults(ctx context.Context) error {
	row, err := s.repo.Get(ctx)
	if err != nil {
		return err
	}
	if row == nil {
		row, err = s.Get(ctx)
		if err != nil {
			return err
		}
		if err := s.repo.Save(ctx, row); err != nil {
			return err
		}
	}

	for _, tpl := range DefaultTemplates() {
		_, err := s.repo.GetTemplate(ctx, tpl.Slug)
		if err == nil {
			continue
		}
		if !errors.Is(err, models.ErrTemplateNotFound) {
			return err
		}
		tpl := tpl
		if err := s.repo.SaveTemplate(ctx, &tpl); err != nil {
			return err
		}
		s.logger.Info().Str("slug", tpl.Slug).Msg("default email template installed")
	}
	return nil
}

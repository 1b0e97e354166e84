package models

import "strings"

// MethodOption is one entry of a delivery or payment vocabulary.
type MethodOption struct {
	ID          string `json:"id" validate:"required,max=20"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// SiteSettings is the single editable row of store-wide settings.
type SiteSettings struct {
	Base
	SiteName          string         `json:"site_name" gorm:"type:varchar(200);not null"`
	ContactPhone      string         `json:"contact_phone" gorm:"type:varchar(50)"`
	ContactEmail      string         `json:"contact_email" gorm:"type:varchar(255)"`
	ContactAddress    string         `json:"contact_address" gorm:"type:text"`
	Currency          string         `json:"currency" gorm:"type:varchar(10);not null"`
	DeliveryMethods   []MethodOption `json:"delivery_methods" gorm:"type:text;serializer:json"`
	PaymentMethods    []MethodOption `json:"payment_methods" gorm:"type:text;serializer:json"`
	DeliveryInfo      string         `json:"delivery_info" gorm:"type:text"`
	PaymentInfo       string         `json:"payment_info" gorm:"type:text"`
	LowStockThreshold int            `json:"low_stock_threshold" gorm:"not null"`
}

// SiteConfig is the read-only view of SiteSettings handed to workflows.
type SiteConfig struct {
	SiteName          string         `json:"site_name"`
	ContactPhone      string         `json:"contact_phone"`
	ContactEmail      string         `json:"contact_email"`
	Currency          string         `json:"currency"`
	DeliveryMethods   []MethodOption `json:"delivery_methods"`
	PaymentMethods    []MethodOption `json:"payment_methods"`
	LowStockThreshold int            `json:"low_stock_threshold"`
}

// DefaultSiteConfig is used until an admin saves settings.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		SiteName: "Avtokraska",
		Currency: "BYN",
		DeliveryMethods: []MethodOption{
			{ID: "courier", Name: "Courier"},
			{ID: "pickup", Name: "Pickup"},
		},
		PaymentMethods: []MethodOption{
			{ID: "cash", Name: "Cash"},
			{ID: "card", Name: "Card on delivery"},
		},
		LowStockThreshold: 5,
	}
}

// Config derives a SiteConfig, filling blanks with defaults.
func (s *SiteSettings) Config() SiteConfig {
	cfg := DefaultSiteConfig()
	if s == nil {
		return cfg
	}
	if s.SiteName != "" {
		cfg.SiteName = s.SiteName
	}
	if c := strings.TrimSpace(s.Currency); c != "" {
		cfg.Currency = c
	}
	if len(s.DeliveryMethods) > 0 {
		cfg.DeliveryMethods = s.DeliveryMethods
	}
	if len(s.PaymentMethods) > 0 {
		cfg.PaymentMethods = s.PaymentMethods
	}
	if s.LowStockThreshold > 0 {
		cfg.LowStockThreshold = s.LowStockThreshold
	}
	cfg.ContactPhone = s.ContactPhone
	cfg.ContactEmail = s.ContactEmail
	return cfg
}

func hasMethod(options []MethodOption, id string) bool {
	for _, o := range options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// HasDeliveryMethod reports whether id is a configured delivery method.
func (c SiteConfig) HasDeliveryMethod(id string) bool { return hasMethod(c.DeliveryMethods, id) }

// HasPaymentMethod reports whether id is a configured payment method.
func (c SiteConfig) HasPaymentMethod(id string) bool { return hasMethod(c.PaymentMethods, id) }

// DefaultDeliveryMethod is the first configured delivery method.
func (c SiteConfig) DefaultDeliveryMethod() string {
	if len(c.DeliveryMethods) == 0 {
		return ""
	}
	return c.DeliveryMethods[0].ID
}

// DefaultPaymentMethod is the first configured payment method.
func (c SiteConfig) DefaultPaymentMethod() string {
	if len(c.PaymentMethods) == 0 {
		return ""
	}
	return c.PaymentMethods[0].ID
}

// Email template slugs.
const (
	TemplateOrderConfirmation = "order_confirmation"
	TemplateOrderStatus       = "order_status"
	TemplatePasswordReset     = "password_reset"
	TemplateWelcome           = "welcome"
)

// EmailTemplate is an admin-editable message body with {{ name }} placeholders.
type EmailTemplate struct {
	Base
	Name     string `json:"name" gorm:"type:varchar(100);not null"`
	Slug     string `json:"slug" gorm:"uniqueIndex;type:varchar(50);not null"`
	Subject  string `json:"subject" gorm:"type:varchar(200);not null"`
	Body     string `json:"body" gorm:"type:text;not null"`
	IsActive bool   `json:"is_active" gorm:"not null"`
}

// Render substitutes {{ key }} placeholders in the subject and body.
func (t *EmailTemplate) Render(vars map[string]string) (subject, body string) {
	if t == nil {
		return "", ""
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{ "+k+" }}", v)
	}
	r := strings.NewReplacer(pairs...)
	return r.Replace(t.Subject), r.Replace(t.Body)
}

package models

import "net/http"

// ErrorKind classifies domain failures; handlers map it onto HTTP status codes.
type ErrorKind string

const (
	KindValidation ErrorKind = "ValidationError"
	KindNotFound   ErrorKind = "NotFoundError"
	KindAuth       ErrorKind = "AuthError"
	KindForbidden  ErrorKind = "ForbiddenError"
	KindConflict   ErrorKind = "ConflictError"
	KindState      ErrorKind = "StateError"
)

// HTTPStatus returns the response status for the kind.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindValidation, KindState:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Error codes for API responses.
const (
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeInvalidPhone       = "INVALID_PHONE"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeCategoryNotFound   = "CATEGORY_NOT_FOUND"
	ErrCodeBrandNotFound      = "BRAND_NOT_FOUND"
	ErrCodeCartItemNotFound   = "CART_ITEM_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodePromoNotFound      = "PROMO_NOT_FOUND"
	ErrCodeCampaignNotFound   = "CAMPAIGN_NOT_FOUND"
	ErrCodeTemplateNotFound   = "TEMPLATE_NOT_FOUND"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInvalidTransition  = "INVALID_STATUS_TRANSITION"
	ErrCodePromoExhausted     = "PROMO_EXHAUSTED"
	ErrCodeDuplicate          = "DUPLICATE"
	ErrCodeInUse              = "IN_USE"
)

// DomainError is a business-rule failure safe to show to API clients.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  map[string][]string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped sentinels work with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error.
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError builds a field-keyed validation failure.
func NewValidationError(fields map[string][]string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    ErrCodeValidation,
		Message: "Validation failed",
		Fields:  fields,
	}
}

// FieldError builds a validation failure for a single field.
func FieldError(field, message string) *DomainError {
	return NewValidationError(map[string][]string{field: {message}})
}

// NewInvalidPhoneError reports a phone rejected by the normalizer under the given field.
func NewInvalidPhoneError(field, message string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    ErrCodeInvalidPhone,
		Message: message,
		Fields:  map[string][]string{field: {message}},
	}
}

// Common domain errors
var (
	ErrValidation         = NewDomainError(KindValidation, ErrCodeValidation, "Validation failed")
	ErrEmptyCart          = NewDomainError(KindState, ErrCodeEmptyCart, "Cart is empty")
	ErrInvalidPhone       = NewDomainError(KindValidation, ErrCodeInvalidPhone, "Invalid phone number")
	ErrProductNotFound    = NewDomainError(KindNotFound, ErrCodeProductNotFound, "Product not found")
	ErrCategoryNotFound   = NewDomainError(KindNotFound, ErrCodeCategoryNotFound, "Category not found")
	ErrBrandNotFound      = NewDomainError(KindNotFound, ErrCodeBrandNotFound, "Brand not found")
	ErrCartItemNotFound   = NewDomainError(KindNotFound, ErrCodeCartItemNotFound, "Cart item not found")
	ErrOrderNotFound      = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrUserNotFound       = NewDomainError(KindNotFound, ErrCodeUserNotFound, "User not found")
	ErrPromoNotFound      = NewDomainError(KindNotFound, ErrCodePromoNotFound, "Promo code not found")
	ErrCampaignNotFound   = NewDomainError(KindNotFound, ErrCodeCampaignNotFound, "Campaign not found")
	ErrTemplateNotFound   = NewDomainError(KindNotFound, ErrCodeTemplateNotFound, "Email template not found")
	ErrInvalidCredentials = NewDomainError(KindAuth, ErrCodeInvalidCredentials, "Invalid username or password")
	ErrInvalidToken       = NewDomainError(KindAuth, ErrCodeInvalidToken, "Invalid or expired token")
	ErrForbidden          = NewDomainError(KindForbidden, ErrCodeForbidden, "Admin privileges required")
	ErrInvalidTransition  = NewDomainError(KindState, ErrCodeInvalidTransition, "Invalid order status transition")
	ErrPromoExhausted     = NewDomainError(KindConflict, ErrCodePromoExhausted, "Promo code usage limit reached")
	ErrDuplicate          = NewDomainError(KindConflict, ErrCodeDuplicate, "Resource already exists")
	ErrInUse              = NewDomainError(KindConflict, ErrCodeInUse, "Resource is referenced by other records")
)

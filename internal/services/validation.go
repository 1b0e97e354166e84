package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"autoshop/internal/models"
	"autoshop/pkg/phone"

	"github.com/go-playground/validator/v10"
)

// validate is shared by all services; validator caches struct metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput runs struct validation and converts failures into a field-keyed ValidationError.
func validateInput(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}
	fields := make(map[string][]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = append(fields[e.Field()], fieldMessage(e))
	}
	return models.NewValidationError(fields)
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", e.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", e.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", e.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", e.Param())
	case "lte":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", e.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", e.Param())
	case "eqfield":
		return "The two password fields didn't match."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", e.Param())
	}
	return fmt.Sprintf("Failed on the '%s' rule.", e.Tag())
}

// normalizePhone wraps phone.Normalize, reporting failures under field.
func normalizePhone(field, raw string) (string, error) {
	normalized, err := phone.Normalize(raw)
	if err != nil {
		return "", models.NewInvalidPhoneError(field, err.Error())
	}
	return normalized, nil
}

// mergeFields folds validation failures from several checks into one error.
func mergeFields(errs ...error) error {
	fields := map[string][]string{}
	for _, err := range errs {
		if err == nil {
			continue
		}
		var derr *models.DomainError
		if !errors.As(err, &derr) || derr.Fields == nil {
			return err
		}
		for k, msgs := range derr.Fields {
			fields[k] = append(fields[k], msgs...)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return models.NewValidationError(fields)
}

// Package phone validates and formats Belarusian mobile numbers.
package phone

import (
	"fmt"
	"strings"
)

const (
	countryCode = "375"
	// trunkPrefix is dialed before the operator code inside the country: 8 029 1234567.
	trunkPrefix = "80"
)

var operatorCodes = []string{"25", "29", "33", "44"}

// Kind classifies a normalization failure.
type Kind string

const (
	InvalidFormat       Kind = "InvalidFormat"
	InvalidLength       Kind = "InvalidLength"
	InvalidCountryCode  Kind = "InvalidCountryCode"
	InvalidOperatorCode Kind = "InvalidOperatorCode"
)

// Error is returned by Normalize for any rejected input.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrInvalidFormat = &Error{
		Kind:    InvalidFormat,
		Message: fmt.Sprintf("invalid format: use +375 (25) 1234567, operator codes %s", strings.Join(operatorCodes, ", ")),
	}
	ErrInvalidLength = &Error{
		Kind:    InvalidLength,
		Message: "number must contain 9 digits after +375 (2-digit operator code and 7-digit number)",
	}
	ErrInvalidCountryCode = &Error{
		Kind:    InvalidCountryCode,
		Message: "country code must be 375",
	}
	ErrInvalidOperatorCode = &Error{
		Kind:    InvalidOperatorCode,
		Message: fmt.Sprintf("invalid operator code, allowed: %s", strings.Join(operatorCodes, ", ")),
	}
)

// OperatorCodes returns the allowed operator codes.
func OperatorCodes() []string {
	out := make([]string, len(operatorCodes))
	copy(out, operatorCodes)
	return out
}

// Normalize validates raw and returns it as "+375 (OO) NNNNNNN".
// Blank input is accepted and yields an empty string.
func Normalize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	digits := onlyDigits(raw)
	switch {
	case strings.HasPrefix(digits, trunkPrefix) && len(digits) == 11:
		digits = countryCode + digits[len(trunkPrefix):]
	case strings.HasPrefix(digits, countryCode):
	case len(digits) == 9:
		digits = countryCode + digits
	default:
		return "", ErrInvalidFormat
	}

	if len(digits) != 12 {
		return "", ErrInvalidLength
	}
	if digits[:3] != countryCode {
		return "", ErrInvalidCountryCode
	}
	operator := digits[3:5]
	if !isOperatorCode(operator) {
		return "", ErrInvalidOperatorCode
	}

	return fmt.Sprintf("+%s (%s) %s", countryCode, operator, digits[5:]), nil
}

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isOperatorCode(code string) bool {
	for _, c := range operatorCodes {
		if c == code {
			return true
		}
	}
	return false
}

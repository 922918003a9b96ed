// Package auth handles phone sign-in with a simulated one-time password and
// keeps the signed-in user across runs.
package auth

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
	otpDigits      = 6
)

// ValidationError describes one rejected form field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidatePhone checks the sign-in form. All problems are reported together.
func ValidatePhone(countryCode, phone string) error {
	var result *multierror.Error
	if strings.TrimSpace(countryCode) == "" {
		result = multierror.Append(result, &ValidationError{Field: "countryCode", Reason: "Please select a country"})
	}
	switch {
	case len(phone) < minPhoneDigits:
		result = multierror.Append(result, &ValidationError{Field: "phone", Reason: fmt.Sprintf("Phone number must be at least %d digits", minPhoneDigits)})
	case len(phone) > maxPhoneDigits:
		result = multierror.Append(result, &ValidationError{Field: "phone", Reason: fmt.Sprintf("Phone number must be at most %d digits", maxPhoneDigits)})
	}
	if !digits(phone) {
		result = multierror.Append(result, &ValidationError{Field: "phone", Reason: "Phone number must contain only digits"})
	}
	return result.ErrorOrNil()
}

// ValidateOTP checks a one-time password is exactly six digits.
func ValidateOTP(code string) error {
	var result *multierror.Error
	if len(code) != otpDigits {
		result = multierror.Append(result, &ValidationError{Field: "otp", Reason: fmt.Sprintf("OTP must be exactly %d digits", otpDigits)})
	}
	if !digits(code) {
		result = multierror.Append(result, &ValidationError{Field: "otp", Reason: "OTP must contain only digits"})
	}
	return result.ErrorOrNil()
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

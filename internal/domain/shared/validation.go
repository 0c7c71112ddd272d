package shared

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the layout of business dates (invoice, purchase, payment)
const DateLayout = "2006-01-02"

var validate = validator.New()

// SanitizeText trims the value, drops control characters and collapses
// internal whitespace runs to a single space.
func SanitizeText(value string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
	return strings.Join(strings.Fields(cleaned), " ")
}

// RequireText returns a REQUIRED_<FIELD> error when value is blank
func RequireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewDomainError(
			"REQUIRED_"+strings.ToUpper(field),
			fmt.Sprintf("%s is required", humanize(field)),
		)
	}
	return nil
}

// RequireMaxLength rejects values longer than max runes
func RequireMaxLength(field, value string, max int) error {
	if len([]rune(value)) > max {
		return NewDomainError(
			"INVALID_"+strings.ToUpper(field),
			fmt.Sprintf("%s cannot exceed %d characters", humanize(field), max),
		)
	}
	return nil
}

// NormalizePhone strips everything but digits. An empty input stays empty;
// anything else must leave exactly 10 digits.
func NormalizePhone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", nil
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) != 10 {
		return "", NewDomainError("INVALID_PHONE", "Phone number must contain exactly 10 digits")
	}
	return digits, nil
}

// ValidateEmail checks an optional email address
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if err := validate.Var(email, "email"); err != nil {
		return NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

// ValidateDate checks that value is a YYYY-MM-DD calendar date
func ValidateDate(field, value string) error {
	if _, err := time.Parse(DateLayout, value); err != nil {
		return NewDomainError(
			"INVALID_"+strings.ToUpper(field),
			fmt.Sprintf("%s must be a date in YYYY-MM-DD format", humanize(field)),
		)
	}
	return nil
}

// ValidateOptionalDate is ValidateDate for nullable dates
func ValidateOptionalDate(field string, value *string) error {
	if value == nil || *value == "" {
		return nil
	}
	return ValidateDate(field, *value)
}

// Today returns the current UTC date in DateLayout
func Today() string {
	return time.Now().UTC().Format(DateLayout)
}

func humanize(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

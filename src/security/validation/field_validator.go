package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/username/extractos/backend/src/canonical"
	"github.com/username/extractos/backend/src/logger"
	"github.com/username/extractos/backend/src/models"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	DefaultMaxStringLength = 255
	MaxAccountNumberLength = 40
	MaxCurrencyTokenLength = 5
)

// --- String Validators ---

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateStringRegex checks if a string matches a given regex pattern.
func ValidateStringRegex(s string, pattern *regexp.Regexp, fieldName, formatDescription string) error {
	if !pattern.MatchString(s) {
		return fmt.Errorf("%w: %s ('%s') is not in the expected format (%s)", ErrValidationFailed, fieldName, s, formatDescription)
	}
	return nil
}

// --- Account Validators ---

var (
	accountNumberRegex = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z\- ]*$`)
	dateBoundRegex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}( \d{2}:\d{2}:\d{2})?$`)
)

// ValidateAccountNumber checks the account number bank statements are keyed by.
func ValidateAccountNumber(s string) error {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, "Account Number"); err != nil {
		return err
	}
	if err := ValidateStringMaxLength(trimmed, MaxAccountNumberLength, "Account Number"); err != nil {
		return err
	}
	return ValidateStringRegex(trimmed, accountNumberRegex, "Account Number", "digits and letters separated by hyphens or spaces")
}

// ValidateCurrencyToken accepts an ISO code or a symbol ("S/", "$", "€") of a supported currency.
func ValidateCurrencyToken(s string) error {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, "Currency"); err != nil {
		return err
	}
	if err := ValidateStringMaxLength(trimmed, MaxCurrencyTokenLength, "Currency"); err != nil {
		return err
	}
	if !canonical.Currency(trimmed).Known() {
		logger.L.Warn("Unsupported account currency", "currency", s)
		return fmt.Errorf("%w: Currency ('%s') is not a supported currency", ErrValidationFailed, s)
	}
	return nil
}

// ValidateSourceFormat checks a declared statement or notification format.
func ValidateSourceFormat(s string) (models.SourceFormat, error) {
	f := models.SourceFormat(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: format ('%s') must be one of %s, %s, %s, %s", ErrValidationFailed, s,
			models.FormatPersonalText, models.FormatBusinessText, models.FormatEmailText, models.FormatEmailHTML)
	}
	return f, nil
}

// ValidateDateBound checks an optional "YYYY-MM-DD" or canonical date-time range bound.
func ValidateDateBound(s, fieldName string) error {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if err := ValidateStringRegex(trimmed, dateBoundRegex, fieldName, "YYYY-MM-DD or YYYY-MM-DD HH:MM:SS"); err != nil {
		return err
	}
	layout := "2006-01-02"
	if len(trimmed) > len(layout) {
		layout = models.CanonicalLayout
	}
	if _, err := time.Parse(layout, trimmed); err != nil {
		return fmt.Errorf("%w: %s ('%s') is not a valid date: %v", ErrValidationFailed, fieldName, s, err)
	}
	return nil
}

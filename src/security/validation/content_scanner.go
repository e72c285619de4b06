package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/username/extractos/backend/src/logger"
)

var (
	// Common XSS vectors. Contextual output encoding is the primary defense.
	xssPatternsRegex = regexp.MustCompile(
		`(?i)<script|onerror=|onmouseover=|onfocus=|onload=|javascript:|vbscript:|livescript:|mocha:|<iframe|<object|<embed|<applet|<style|<link|<img\s+src\s*=\s*['"]?\s*(javascript|data):`,
	)
	// Formula injection characters at the start of a string
	formulaInjectionPrefixRegex = regexp.MustCompile(`^[=+@\t\r]`)
)

func truncateForLog(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

// CheckXSSPatterns detects basic XSS patterns in free-text account fields.
func CheckXSSPatterns(s, fieldName, contextID string) error {
	if xssPatternsRegex.MatchString(s) {
		errMsg := fmt.Sprintf("potential XSS pattern detected in field '%s'", fieldName)
		logger.L.Warn(errMsg, "contextID", contextID, "contentPreview", truncateForLog(s, 50))
		return fmt.Errorf("%w: %s", ErrValidationFailed, errMsg)
	}
	return nil
}

// CheckFormulaInjection detects if a string starts with characters spreadsheets treat as formulas.
// A leading '-' is allowed since account numbers and amounts may carry one.
func CheckFormulaInjection(s, fieldName, contextID string) error {
	prefixToCheck := strings.TrimSpace(s)
	if len(prefixToCheck) > 10 {
		prefixToCheck = prefixToCheck[:10]
	}
	if formulaInjectionPrefixRegex.MatchString(prefixToCheck) {
		errMsg := fmt.Sprintf("potential formula injection pattern detected in field '%s'", fieldName)
		logger.L.Warn(errMsg, "contextID", contextID, "contentPreview", truncateForLog(s, 50))
		return fmt.Errorf("%w: %s", ErrValidationFailed, errMsg)
	}
	return nil
}

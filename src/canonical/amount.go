package canonical

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/username/extractos/backend/src/models"
)

// ErrInvalidAmount is returned when a raw amount has no parseable number.
var ErrInvalidAmount = errors.New("invalid amount")

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Amount parses a raw monetary amount such as "S/ -1,234.50", "-S/. 8.00" or "+25.00".
// Thousands separators and currency symbols are dropped; a minus sign anywhere
// before the number makes it negative.
func Amount(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if !models.Present(s) {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	locs := numberPattern.FindAllStringIndex(s, -1)
	if len(locs) != 1 {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	start, end := locs[0][0], locs[0][1]
	d, err := decimal.NewFromString(s[start:end])
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if strings.Contains(s[:start], "-") {
		d = d.Neg()
	}
	return d, nil
}

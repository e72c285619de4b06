package models

// Currency is an ISO-like currency code. Tokens the canonicalizer does not know
// pass through uppercased, so a Currency is not restricted to the constants below.
type Currency string

const (
	CurrencyPEN     Currency = "PEN"
	CurrencyUSD     Currency = "USD"
	CurrencyEUR     Currency = "EUR"
	CurrencyGBP     Currency = "GBP"
	CurrencyJPY     Currency = "JPY"
	CurrencyUnknown Currency = "UNKNOWN"
)

// Known reports whether c is one of the recognized codes.
func (c Currency) Known() bool {
	switch c {
	case CurrencyPEN, CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyJPY:
		return true
	}
	return false
}

func (c Currency) String() string { return string(c) }

package canonical

import (
	"strings"

	"github.com/username/extractos/backend/src/models"
)

var currencySymbols = map[string]models.Currency{
	"S/.": models.CurrencyPEN,
	"S/":  models.CurrencyPEN,
	"S":   models.CurrencyPEN,
	"PEN": models.CurrencyPEN,
	"USD": models.CurrencyUSD,
	"$":   models.CurrencyUSD,
	"US$": models.CurrencyUSD,
	"EUR": models.CurrencyEUR,
	"€":   models.CurrencyEUR,
	"GBP": models.CurrencyGBP,
	"£":   models.CurrencyGBP,
	"JPY": models.CurrencyJPY,
	"¥":   models.CurrencyJPY,
}

// Currency maps a raw currency token to its code. Unrecognized tokens pass
// through uppercased; an empty token or the sentinel maps to CurrencyUnknown.
func Currency(token string) models.Currency {
	t := strings.ToUpper(strings.TrimSpace(token))
	if t == "" || t == models.Sentinel {
		return models.CurrencyUnknown
	}
	if c, ok := currencySymbols[t]; ok {
		return c
	}
	return models.Currency(t)
}

// Package personal extracts transactions from personal-account statement text,
// where each movement is a description line followed by a date/amount line.
package personal

import (
	"regexp"
	"strings"

	"github.com/username/extractos/backend/src/models"
	"github.com/username/extractos/backend/src/textnorm"
)

var (
	headerLine = regexp.MustCompile(`(?i)cargo\s+realizado\s+por|movimientos|fecha\s+y\s+hora|^monto$`)

	// "lun. 15 mar 10:45 S/ -25.00": date, currency token, signed amount.
	movementLine = regexp.MustCompile(`(?i)([\wáéíóúüñÁÉÍÓÚÜÑ]{3,4}\.? \d{1,2} [\wáéíóúüñÁÉÍÓÚÜÑ]{3}\.? \d{2}:\d{2})\s*([A-Za-z$€£¥/.\s]+)\s*([+-]?[0-9.,-]+)`)

	amountJunk = regexp.MustCompile(`[^0-9.\-]`)
)

// Parse pairs each description line with the movement line that follows it.
func Parse(text string) []models.ExtractedFields {
	lines := textnorm.Lines(text)
	var records []models.ExtractedFields

	for i := 0; i+1 < len(lines); i++ {
		desc := lines[i]
		if headerLine.MatchString(desc) {
			continue
		}
		m := movementLine.FindStringSubmatch(lines[i+1])
		if m == nil {
			continue
		}

		f := models.EmptyFields()
		f.Description = desc
		f.DateRaw = strings.TrimSpace(m[1])
		f.CurrencyToken = strings.TrimSpace(m[2])
		f.Amount = amountJunk.ReplaceAllString(strings.ReplaceAll(m[3], ",", ""), "")
		records = append(records, f)
	}
	return records
}

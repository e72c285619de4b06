// Package business extracts transactions from business-account statement text.
// A movement is a fixed run of eight lines that starts at an operation date.
package business

import (
	"regexp"
	"strings"

	"github.com/username/extractos/backend/src/canonical"
	"github.com/username/extractos/backend/src/logger"
	"github.com/username/extractos/backend/src/models"
	"github.com/username/extractos/backend/src/textnorm"
)

// GroupSize is the number of lines in one movement group.
const GroupSize = 8

var (
	operationDate = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
	amountPrefix  = regexp.MustCompile(`^(S/|\$)`)
)

// RawMovement holds the eight positional lines of a movement group.
type RawMovement struct {
	OperationDate, ProcessDate, OperationNumber, MovementType, Description, Channel, Amount, Balance string
}

func groupAt(lines []string, start int) RawMovement {
	at := func(offset int) string {
		if start+offset < len(lines) {
			return lines[start+offset]
		}
		return models.Sentinel
	}
	return RawMovement{
		OperationDate:   at(0),
		ProcessDate:     at(1),
		OperationNumber: at(2),
		MovementType:    at(3),
		Description:     at(4),
		Channel:         at(5),
		Amount:          at(6),
		Balance:         at(7),
	}
}

// Parse returns the accepted movements and the number of groups dropped because
// their amount had no recognized currency prefix or was not a number.
func Parse(text string) ([]models.ExtractedFields, int) {
	lines := textnorm.Lines(text)
	var records []models.ExtractedFields
	skipped := 0

	for i := 0; i < len(lines); {
		if !operationDate.MatchString(lines[i]) {
			i++
			continue
		}
		raw := groupAt(lines, i)
		i += GroupSize

		symbol := amountPrefix.FindString(raw.Amount)
		if symbol == "" {
			logger.L.Debug("Business parser: skipping movement without currency prefix", "operationDate", raw.OperationDate, "amount", raw.Amount)
			skipped++
			continue
		}
		number := strings.TrimSpace(strings.TrimPrefix(raw.Amount, symbol))
		if _, err := canonical.Amount(number); err != nil {
			logger.L.Debug("Business parser: skipping movement with invalid amount", "operationDate", raw.OperationDate, "amount", raw.Amount)
			skipped++
			continue
		}

		f := models.EmptyFields()
		f.DateRaw = raw.OperationDate
		f.ProcessDate = raw.ProcessDate
		f.OperationNumber = raw.OperationNumber
		f.MovementType = raw.MovementType
		f.Description = raw.Description
		f.Channel = raw.Channel
		f.Amount = number
		f.CurrencyToken = symbol
		f.Balance = raw.Balance
		records = append(records, f)
	}
	return records, skipped
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel marks a field that no pattern could extract.
const Sentinel = "-"

// CanonicalLayout is the layout of every canonical date-time string.
const CanonicalLayout = "2006-01-02 15:04:05"

// SourceFormat identifies which extraction strategy handles a raw input.
type SourceFormat string

const (
	FormatPersonalText SourceFormat = "personal-text"
	FormatBusinessText SourceFormat = "business-text"
	FormatEmailText    SourceFormat = "email-text"
	FormatEmailHTML    SourceFormat = "email-html"
)

// Valid reports whether f is one of the supported formats.
func (f SourceFormat) Valid() bool {
	switch f {
	case FormatPersonalText, FormatBusinessText, FormatEmailText, FormatEmailHTML:
		return true
	}
	return false
}

// RawInput is a text blob paired with its declared format.
type RawInput struct {
	Text   string       `json:"text"`
	Format SourceFormat `json:"format"`
}

// AccountContext carries what the assembler needs to know about the target account.
type AccountContext struct {
	AccountNumber    string `json:"account_number"`
	ExpectedCurrency string `json:"expected_currency"`
}

// CanonicalTransaction is the normalized representation of one statement line or notification.
type CanonicalTransaction struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      Currency        `json:"currency"`
	CurrencyRaw   string          `json:"currency_raw,omitempty"`
	OccurredAt    string          `json:"occurred_at"`
	OccurredAtRaw string          `json:"occurred_at_raw"`
	Description   string          `json:"description"`
	IdentityKey   string          `json:"identity_key"`
	Source        SourceFormat    `json:"source"`

	// Business statements only.
	OperationNumber string `json:"operation_number,omitempty"`
	MovementType    string `json:"movement_type,omitempty"`
	Channel         string `json:"channel,omitempty"`
	Balance         string `json:"balance,omitempty"`
}

// Time parses OccurredAt. ok is false when the date could not be canonicalized.
func (t CanonicalTransaction) Time() (time.Time, bool) {
	parsed, err := time.Parse(CanonicalLayout, t.OccurredAt)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

package models

// ExtractedFields holds the raw values pulled out of one record by a format strategy.
// Every field is either the captured text or Sentinel.
type ExtractedFields struct {
	Amount              string `json:"amount"`
	CurrencyToken       string `json:"currency_token"`
	DateRaw             string `json:"date_raw"`
	Description         string `json:"description"`
	CounterpartyName    string `json:"counterparty_name"`
	CounterpartyAccount string `json:"counterparty_account"`
	CounterpartyPhone   string `json:"counterparty_phone"`
	SenderName          string `json:"sender_name"`
	OriginAccount       string `json:"origin_account"`
	OperationNumber     string `json:"operation_number"`

	// Business statement columns.
	ProcessDate  string `json:"process_date,omitempty"`
	MovementType string `json:"movement_type,omitempty"`
	Channel      string `json:"channel,omitempty"`
	Balance      string `json:"balance,omitempty"`

	// Display helpers filled by the email strategies: DateRaw canonicalized and
	// CurrencyToken mapped to a code, or Sentinel.
	Date     string `json:"date,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// EmptyFields returns an ExtractedFields with every field set to Sentinel.
func EmptyFields() ExtractedFields {
	return ExtractedFields{
		Amount:              Sentinel,
		CurrencyToken:       Sentinel,
		DateRaw:             Sentinel,
		Description:         Sentinel,
		CounterpartyName:    Sentinel,
		CounterpartyAccount: Sentinel,
		CounterpartyPhone:   Sentinel,
		SenderName:          Sentinel,
		OriginAccount:       Sentinel,
		OperationNumber:     Sentinel,
	}
}

// Present reports whether v holds an extracted value.
func Present(v string) bool {
	return v != "" && v != Sentinel
}

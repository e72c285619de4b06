package processors

import (
	"fmt"

	"github.com/username/extractos/backend/src/models"
)

// ErrorKind classifies batch-level extraction failures.
type ErrorKind string

const (
	KindCurrencyMismatch       ErrorKind = "currency_mismatch"
	KindMixedCurrencyBatch     ErrorKind = "mixed_currency_batch"
	KindUnparseableAmount      ErrorKind = "unparseable_amount"
	KindNoTransactionsFound    ErrorKind = "no_transactions_found"
	KindUnrecognizedCurrency   ErrorKind = "unrecognized_currency"
	KindInvalidAccountCurrency ErrorKind = "invalid_account_currency"
)

// BatchError rejects a whole batch. Expected and Detected are set for currency errors.
type BatchError struct {
	Kind     ErrorKind
	Expected models.Currency
	Detected []models.Currency
	Value    string
}

func (e *BatchError) Error() string {
	switch e.Kind {
	case KindCurrencyMismatch:
		return fmt.Sprintf("currency mismatch: account expects %s but statement is in %s", e.Expected, joinCurrencies(e.Detected))
	case KindMixedCurrencyBatch:
		return fmt.Sprintf("mixed currencies in one statement: %s", joinCurrencies(e.Detected))
	case KindUnparseableAmount:
		return fmt.Sprintf("unparseable amount %q", e.Value)
	case KindNoTransactionsFound:
		return "no transactions found"
	case KindUnrecognizedCurrency:
		return fmt.Sprintf("unrecognized currency for amount %q", e.Value)
	case KindInvalidAccountCurrency:
		return fmt.Sprintf("invalid account currency %q", e.Value)
	}
	return string(e.Kind)
}

// Is matches any *BatchError of the same kind, so callers can use the sentinels below with errors.Is.
func (e *BatchError) Is(target error) bool {
	t, ok := target.(*BatchError)
	return ok && t.Kind == e.Kind
}

var (
	ErrCurrencyMismatch       = &BatchError{Kind: KindCurrencyMismatch}
	ErrMixedCurrencyBatch     = &BatchError{Kind: KindMixedCurrencyBatch}
	ErrUnparseableAmount      = &BatchError{Kind: KindUnparseableAmount}
	ErrNoTransactionsFound    = &BatchError{Kind: KindNoTransactionsFound}
	ErrUnrecognizedCurrency   = &BatchError{Kind: KindUnrecognizedCurrency}
	ErrInvalidAccountCurrency = &BatchError{Kind: KindInvalidAccountCurrency}
)

func joinCurrencies(cs []models.Currency) string {
	s := ""
	for i, c := range cs {
		if i > 0 {
			s += ", "
		}
		s += string(c)
	}
	return s
}

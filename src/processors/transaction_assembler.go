package processors

import (
	"regexp"
	"strings"

	"github.com/username/extractos/backend/src/canonical"
	"github.com/username/extractos/backend/src/models"
)

var nonAlphanumeric = regexp.MustCompile(`[^0-9A-Za-z]`)

// TransactionAssembler turns extracted fields into canonical transactions bound to an account.
type TransactionAssembler struct {
	// ReferenceYear places yearless statement dates. Zero leaves them unparsed.
	ReferenceYear int
}

func NewTransactionAssembler(referenceYear int) *TransactionAssembler {
	return &TransactionAssembler{ReferenceYear: referenceYear}
}

// AssembleBatch validates the currencies of a whole batch and assembles every
// record. It returns either all transactions or a *BatchError, never a partial batch.
func (a *TransactionAssembler) AssembleBatch(records []models.ExtractedFields, source models.SourceFormat, acct models.AccountContext) ([]models.CanonicalTransaction, error) {
	if len(records) == 0 {
		return nil, &BatchError{Kind: KindNoTransactionsFound}
	}

	expected := canonical.Currency(acct.ExpectedCurrency)
	if expected == models.CurrencyUnknown {
		return nil, &BatchError{Kind: KindInvalidAccountCurrency, Value: acct.ExpectedCurrency}
	}

	var detected []models.Currency
	seen := make(map[models.Currency]bool)
	for _, r := range records {
		c := canonical.Currency(r.CurrencyToken)
		if c == models.CurrencyUnknown {
			return nil, &BatchError{Kind: KindUnrecognizedCurrency, Value: r.Amount}
		}
		if !seen[c] {
			seen[c] = true
			detected = append(detected, c)
		}
	}
	if len(detected) > 1 {
		return nil, &BatchError{Kind: KindMixedCurrencyBatch, Expected: expected, Detected: detected}
	}
	if detected[0] != expected {
		return nil, &BatchError{Kind: KindCurrencyMismatch, Expected: expected, Detected: detected}
	}

	txs := make([]models.CanonicalTransaction, 0, len(records))
	for _, r := range records {
		tx, err := a.Assemble(r, source, acct)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// Assemble builds one canonical transaction. It does not check the currency
// against the account; AssembleBatch does that for the batch as a whole.
func (a *TransactionAssembler) Assemble(f models.ExtractedFields, source models.SourceFormat, acct models.AccountContext) (models.CanonicalTransaction, error) {
	amount, err := canonical.Amount(f.Amount)
	if err != nil {
		// Rejects the batch rather than skipping the record. Only the business
		// parser drops malformed rows, and it does so before assembly.
		return models.CanonicalTransaction{}, &BatchError{Kind: KindUnparseableAmount, Value: f.Amount}
	}

	tx := models.CanonicalTransaction{
		Amount:        amount,
		Currency:      canonical.Currency(f.CurrencyToken),
		CurrencyRaw:   f.CurrencyToken,
		OccurredAt:    canonical.DateInYear(f.DateRaw, a.ReferenceYear),
		OccurredAtRaw: f.DateRaw,
		Description:   describe(f),
		Source:        source,
	}
	if models.Present(f.OperationNumber) {
		tx.OperationNumber = f.OperationNumber
	}
	if models.Present(f.MovementType) {
		tx.MovementType = f.MovementType
	}
	if models.Present(f.Channel) {
		tx.Channel = f.Channel
	}
	if models.Present(f.Balance) {
		tx.Balance = f.Balance
	}

	tx.IdentityKey = IdentityKey(acct.AccountNumber, tx)
	return tx, nil
}

// IdentityKey derives the de-duplication key of a transaction: the account
// number stripped to alphanumerics, the canonical date-time and, when the
// bank assigned one, the operation number.
func IdentityKey(accountNumber string, tx models.CanonicalTransaction) string {
	when := tx.OccurredAt
	if !models.Present(when) {
		when = tx.OccurredAtRaw
	}
	key := nonAlphanumeric.ReplaceAllString(accountNumber, "") + "_" + when
	if tx.OperationNumber != "" {
		key += "#" + tx.OperationNumber
	}
	return key
}

// describe picks the most specific human-readable label a record carries.
func describe(f models.ExtractedFields) string {
	for _, v := range []string{f.Description, f.CounterpartyName, f.SenderName, f.MovementType} {
		if models.Present(v) {
			return strings.TrimSpace(v)
		}
	}
	return models.Sentinel
}

package processors

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/extractos/backend/src/models"
)

func record(amount, currency, date string) models.ExtractedFields {
	f := models.EmptyFields()
	f.Amount = amount
	f.CurrencyToken = currency
	f.DateRaw = date
	f.Description = "Compra"
	return f
}

func TestAssembleIdentityKey(t *testing.T) {
	a := NewTransactionAssembler(0)
	acct := models.AccountContext{AccountNumber: "12-34", ExpectedCurrency: "PEN"}

	tx, err := a.Assemble(record("10.00", "S/", "2024-01-01 10:00"), models.FormatPersonalText, acct)
	require.NoError(t, err)

	assert.Equal(t, "1234_2024-01-01 10:00:00", tx.IdentityKey)
	assert.Equal(t, models.CurrencyPEN, tx.Currency)
	assert.True(t, decimal.NewFromInt(10).Equal(tx.Amount))
	assert.Equal(t, "Compra", tx.Description)
}

func TestAssembleIdentityKeyWithOperationNumber(t *testing.T) {
	a := NewTransactionAssembler(0)
	f := record("-1500.00", "S/", "15/03/2024")
	f.OperationNumber = "000123"

	tx, err := a.Assemble(f, models.FormatBusinessText, models.AccountContext{AccountNumber: "191-2020-30", ExpectedCurrency: "PEN"})
	require.NoError(t, err)
	assert.Equal(t, "191202030_2024-03-15 00:00:00#000123", tx.IdentityKey)
	assert.Equal(t, "000123", tx.OperationNumber)
}

func TestAssembleUnparsedDateKeepsRaw(t *testing.T) {
	a := NewTransactionAssembler(0)
	tx, err := a.Assemble(record("1", "S/", "lun. 15 mar 10:45"), models.FormatPersonalText, models.AccountContext{AccountNumber: "9"})
	require.NoError(t, err)
	assert.Equal(t, "lun. 15 mar 10:45", tx.OccurredAt)
	assert.Equal(t, "9_lun. 15 mar 10:45", tx.IdentityKey)
	_, ok := tx.Time()
	assert.False(t, ok)

	a.ReferenceYear = 2024
	tx, err = a.Assemble(record("1", "S/", "lun. 15 mar 10:45"), models.FormatPersonalText, models.AccountContext{AccountNumber: "9"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15 10:45:00", tx.OccurredAt)
}

func TestAssembleBatchErrors(t *testing.T) {
	a := NewTransactionAssembler(0)
	pen := models.AccountContext{AccountNumber: "1234", ExpectedCurrency: "S/"}

	tests := []struct {
		name     string
		records  []models.ExtractedFields
		acct     models.AccountContext
		sentinel error
		expected models.Currency
		detected []models.Currency
	}{
		{
			name:     "empty batch",
			acct:     pen,
			sentinel: ErrNoTransactionsFound,
		},
		{
			name:     "mixed currencies",
			records:  []models.ExtractedFields{record("1", "S/", "-"), record("2", "USD", "-")},
			acct:     pen,
			sentinel: ErrMixedCurrencyBatch,
			expected: models.CurrencyPEN,
			detected: []models.Currency{models.CurrencyPEN, models.CurrencyUSD},
		},
		{
			name:     "currency mismatch",
			records:  []models.ExtractedFields{record("1", "$", "-"), record("2", "US$", "-")},
			acct:     pen,
			sentinel: ErrCurrencyMismatch,
			expected: models.CurrencyPEN,
			detected: []models.Currency{models.CurrencyUSD},
		},
		{
			name:     "missing currency token",
			records:  []models.ExtractedFields{record("1", "", "-")},
			acct:     pen,
			sentinel: ErrUnrecognizedCurrency,
		},
		{
			name:     "invalid account currency",
			records:  []models.ExtractedFields{record("1", "S/", "-")},
			acct:     models.AccountContext{AccountNumber: "1"},
			sentinel: ErrInvalidAccountCurrency,
		},
		{
			name:     "unparseable amount",
			records:  []models.ExtractedFields{record("1", "S/", "-"), record("1.2.3", "S/", "-")},
			acct:     pen,
			sentinel: ErrUnparseableAmount,
		},
		{
			name:     "lone sign amount",
			records:  []models.ExtractedFields{record("-", "S/", "-")},
			acct:     pen,
			sentinel: ErrUnparseableAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := a.AssembleBatch(tt.records, models.FormatPersonalText, tt.acct)
			require.Error(t, err)
			assert.Nil(t, txs)
			assert.ErrorIs(t, err, tt.sentinel)

			var be *BatchError
			require.True(t, errors.As(err, &be))
			if tt.detected != nil {
				assert.Equal(t, tt.expected, be.Expected)
				assert.Equal(t, tt.detected, be.Detected)
			}
		})
	}
}

func TestCurrencyMismatchMessageNamesBoth(t *testing.T) {
	err := &BatchError{Kind: KindCurrencyMismatch, Expected: models.CurrencyPEN, Detected: []models.Currency{models.CurrencyUSD}}
	assert.Contains(t, err.Error(), "PEN")
	assert.Contains(t, err.Error(), "USD")
	assert.False(t, errors.Is(err, ErrMixedCurrencyBatch))
}

func TestAssembleBatch(t *testing.T) {
	a := NewTransactionAssembler(0)
	txs, err := a.AssembleBatch(
		[]models.ExtractedFields{record("-25.00", "S/", "2024-03-15 10:45"), record("1200", "PEN", "2024-03-16 09:00")},
		models.FormatPersonalText,
		models.AccountContext{AccountNumber: "1234", ExpectedCurrency: "PEN"},
	)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "1234_2024-03-15 10:45:00", txs[0].IdentityKey)
	assert.Equal(t, "1234_2024-03-16 09:00:00", txs[1].IdentityKey)
	assert.Equal(t, models.FormatPersonalText, txs[1].Source)
}

func tx(key string) models.CanonicalTransaction {
	return models.CanonicalTransaction{IdentityKey: key}
}

func TestPartition(t *testing.T) {
	existing := KeySet([]string{"k2"})

	fresh, dups := Partition([]models.CanonicalTransaction{tx("k1"), tx("k2"), tx("k3"), tx("k1")}, existing)

	assert.Equal(t, []models.CanonicalTransaction{tx("k1"), tx("k3")}, fresh)
	assert.Equal(t, []models.CanonicalTransaction{tx("k2"), tx("k1")}, dups)
	assert.Len(t, existing, 1, "existing keys must not be modified")
}

func TestPartitionEmpty(t *testing.T) {
	fresh, dups := Partition(nil, nil)
	assert.Empty(t, fresh)
	assert.Empty(t, dups)
	assert.NotNil(t, fresh)
}

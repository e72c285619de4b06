package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/extractos/backend/src/models"
	"github.com/username/extractos/backend/src/processors"
)

const personalStatement = `Movimientos
Compra Plaza Vea
lun. 15 mar 10:45 S/ -25.00
Transferencia recibida
sáb. 16 mar 09:00 S/ 1,200.00
`

var penAccount = models.AccountContext{AccountNumber: "191-123456-0-12", ExpectedCurrency: "PEN"}

func TestParseBatchPersonalWithDuplicate(t *testing.T) {
	existing := map[string]struct{}{"191123456012_2024-03-16 09:00:00": {}}

	res, err := ParseBatch(personalStatement, models.FormatPersonalText, penAccount, existing, Options{ReferenceYear: 2024})
	require.NoError(t, err)

	require.Len(t, res.New, 1)
	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, "Compra Plaza Vea", res.New[0].Description)
	assert.Equal(t, "-25", res.New[0].Amount.String())
	assert.Equal(t, "2024-03-15 10:45:00", res.New[0].OccurredAt)
	assert.Equal(t, "Transferencia recibida", res.Duplicates[0].Description)
	assert.Equal(t, models.CurrencyPEN, res.Currency)
	assert.Len(t, existing, 1)
}

func TestParseBatchBusinessSkipsMalformedGroup(t *testing.T) {
	text := "15/03/2024\n15/03/2024\n000123\nCARGO\nPAGO PROVEEDOR\nBANCA MOVIL\nS/ -1,500.00\nS/ 10,000.00\n" +
		"16/03/2024\n16/03/2024\n000124\nABONO\nDEPOSITO\nVENTANILLA\n1,200.00\nS/ 11,200.00\n"

	res, err := ParseBatch(text, models.FormatBusinessText, penAccount, nil, Options{})
	require.NoError(t, err)
	require.Len(t, res.New, 1)
	assert.Equal(t, 1, res.SkippedGroups)
	assert.Equal(t, "-1500", res.New[0].Amount.String())
	assert.Equal(t, "2024-03-15 00:00:00", res.New[0].OccurredAt)
	assert.Equal(t, "PAGO PROVEEDOR", res.New[0].Description)
	assert.Equal(t, "BANCA MOVIL", res.New[0].Channel)
}

func TestParseBatchCurrencyErrors(t *testing.T) {
	mixed := "A\nlun. 15 mar 10:45 S/ 1.00\nB\nlun. 15 mar 11:45 USD 2.00"
	_, err := ParseBatch(mixed, models.FormatPersonalText, penAccount, nil, Options{})
	assert.ErrorIs(t, err, processors.ErrMixedCurrencyBatch)

	dollars := "A\nlun. 15 mar 10:45 $ 1.00"
	res, err := ParseBatch(dollars, models.FormatPersonalText, penAccount, nil, Options{})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, processors.ErrCurrencyMismatch)
	assert.Contains(t, err.Error(), "PEN")
	assert.Contains(t, err.Error(), "USD")
}

func TestParseBatchNoTransactions(t *testing.T) {
	res, err := ParseBatch("texto sin movimientos", models.FormatPersonalText, penAccount, nil, Options{})
	assert.ErrorIs(t, err, processors.ErrNoTransactionsFound)
	require.NotNil(t, res)
	assert.Empty(t, res.New)
	assert.Empty(t, res.Duplicates)
}

func TestParseBatchEmail(t *testing.T) {
	body := "Hola Ana,\nMonto: S/ 30.00\nFecha y hora: 2 enero 2024 - 8:00 pm\nNúmero de operación: 998877"
	res, err := ParseBatch(body, models.FormatEmailText, penAccount, nil, Options{})
	require.NoError(t, err)
	require.Len(t, res.New, 1)
	assert.Equal(t, "191123456012_2024-01-02 20:00:00#998877", res.New[0].IdentityKey)
	assert.Equal(t, "Ana", res.New[0].Description)
}

func TestParseBatchUnsupportedFormat(t *testing.T) {
	_, err := ParseBatch("x", models.SourceFormat("csv"), penAccount, nil, Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseEmail(t *testing.T) {
	html := `<tr><td>Nº de operación </td><td>5544</td></tr>`
	assert.Equal(t, "5544", ParseEmail(html, true).OperationNumber)
	assert.Equal(t, models.Sentinel, ParseEmail(html, false).Amount)
}

func TestParseEmailHTMLWithoutOperationLabel(t *testing.T) {
	body := `<table><tr><td class="soles-amount">12.00</td></tr></table>`
	f := ParseEmail(body, true)
	assert.Equal(t, "12.00", f.Amount)
	assert.Equal(t, models.Sentinel, f.OperationNumber)
}

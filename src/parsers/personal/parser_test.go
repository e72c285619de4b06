package personal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statement = `Movimientos
Cargo realizado por
Compra Plaza Vea
lun. 15 mar 10:45 S/ -25.00
Transferencia recibida
mar. 16 mar 09:00 S/ 1,200.00
`

func TestParse(t *testing.T) {
	records := Parse(statement)
	require.Len(t, records, 2)

	assert.Equal(t, "Compra Plaza Vea", records[0].Description)
	assert.Equal(t, "lun. 15 mar 10:45", records[0].DateRaw)
	assert.Equal(t, "S/", records[0].CurrencyToken)
	assert.Equal(t, "-25.00", records[0].Amount)

	assert.Equal(t, "Transferencia recibida", records[1].Description)
	assert.Equal(t, "1200.00", records[1].Amount)
	assert.Equal(t, "-", records[1].OperationNumber)
}

func TestParseSkipsHeadersAndUnpairedLines(t *testing.T) {
	text := "Fecha y hora\nMonto\nlun. 15 mar 10:45 S/ 5.00\nsin fecha\notra linea"
	assert.Empty(t, Parse(text))
}

func TestParseEmptyInput(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("solo una linea"))
}

func TestParseForeignCurrencyToken(t *testing.T) {
	records := Parse("Netflix\njue. 18 abr 22:10 US$ -9.99\r\n")
	require.Len(t, records, 1)
	assert.Equal(t, "US$", records[0].CurrencyToken)
	assert.Equal(t, "-9.99", records[0].Amount)
}

// Package email extracts transfer and payment details from bank notification emails.
package email

import (
	"github.com/username/extractos/backend/src/canonical"
	"github.com/username/extractos/backend/src/models"
	"github.com/username/extractos/backend/src/parsers/patterns"
	"github.com/username/extractos/backend/src/textnorm"
)

const nameChars = `[A-Za-zÁÉÍÓÚÑáéíóúñ ]`

var genericOperationPatterns = patterns.Compile(
	`(?i)n[°º]?\s*de\s*operación[:\s]*([0-9]+)`,
	`(?i)numero\s*de\s*operacion[:\s]*([0-9]+)`,
	`(?i)num\.?\s*operación[:\s]*([0-9]+)`,
	`(?i)c[oó]digo\s*de\s*operaci[oó]n[:\s]*([0-9]+)`,
	`(?i)operación[:\s]*([0-9]{4,10})`,
)

var beneficiaryNameText = patterns.Compile(
	`(?i)Nombre del Beneficiario:?\s*(.+)`,
	`(?i)Enviado a:?\s*(.+)`,
	`(?i)Beneficiario:?\s*(.+)`,
	`(?i)Para:?\s*(`+nameChars+`+)`,
)

// textPatterns are the label-anchored patterns for plain-text notifications, in priority order.
var textPatterns = struct {
	amount, operation, date, sender, origin, beneficiaryName, beneficiaryAccount, beneficiaryPhone, currency patterns.List
}{
	amount: patterns.Compile(
		`(?i)Monto(?: Total)?:?\s*S/\s*([\d,.]+)`,
		`(?i)Total del consumo:?\s*S/\s*([\d,.]+)`,
		`(?i)S/\s*([\d,.]+)\s*(?:PEN)?`,
	),
	operation: patterns.Concat(patterns.Compile(
		`(?i)N(?:ú|u)mero de operación:?\s*(\d+)`,
		`(?i)N° de operación:?\s*(\d+)`,
		`(?i)Nº de operación:?\s*(\d+)`,
		`(?i)Código de operación:?\s*(\d+)`,
		`(?i)\bOperación[: ]+(\d{5,})`,
	), genericOperationPatterns),
	date: patterns.Compile(
		`(?i)(\d{1,2}\s+(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre)\s+\d{4}\s*-\s*\d{1,2}:\d{2}\s*(a\.?m\.?|p\.?m\.?))`,
		`(?i)\bFecha(?: y hora)?:?\s*(.+)`,
		`(?i)Datos de la operación\s*(.+)`,
		`(?i)Fecha y hora\s*(.+)`,
		`(?i)(\d{1,2}/\d{1,2}/\d{4}\s+\d{1,2}:\d{2}\s*(AM|PM))`,
		`(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2})`,
	),
	sender: patterns.Compile(
		`(?i)Hola[, ]+(`+nameChars+`+)`,
		`(?i)De: (`+nameChars+`+)`,
		`(?i)Titular:?\s*(`+nameChars+`+)`,
	),
	origin: patterns.Compile(
		`(?i)Cuenta cargo:?\s*([\d ]+)`,
		`(?i)Desde el número:?\s*(\d{6,})`,
		`(?i)Tu número de celular:?\s*(\d{6,})`,
		`(?i)Cuenta origen:?\s*([\d ]{6,})`,
	),
	beneficiaryName: beneficiaryNameText,
	beneficiaryAccount: patterns.Compile(
		`(?i)Cuenta destino:?\s*([\d ]+)`,
		`(?i)Celular del Beneficiario:?\s*(\d{6,})`,
		`(?i)Nro destino:?\s*(\d{6,})`,
	),
	beneficiaryPhone: patterns.Concat(patterns.Compile(
		`(?i)celular del beneficiario[:\s]*([x\d]{6,})`,
		`(?i)celular[:\s]*([x\d]{6,})`,
		`(?i)destinatario[:\s]*([x\d]{6,})`,
		`(?i)cuenta destino[:\s]*([x\d]{6,})`,
	), beneficiaryNameText),
	currency: patterns.Compile(
		`(?i)(S/)\s*[\d,.]+`,
		`(?i)(USD)\s*[\d,.]+`,
		`(?i)(\$)\s*[\d,.]+`,
	),
}

// ParseText extracts notification fields from a plain-text email body.
func ParseText(body string) models.ExtractedFields {
	text := textnorm.CleanBody(body)

	f := models.EmptyFields()
	f.Amount = textPatterns.amount.First(text)
	f.OperationNumber = textPatterns.operation.First(text)
	f.DateRaw = textPatterns.date.First(text)
	f.SenderName = textPatterns.sender.First(text)
	f.OriginAccount = textPatterns.origin.First(text)
	f.CounterpartyName = textPatterns.beneficiaryName.First(text)
	f.CounterpartyAccount = textPatterns.beneficiaryAccount.First(text)
	f.CounterpartyPhone = textPatterns.beneficiaryPhone.First(text)
	f.CurrencyToken = textPatterns.currency.First(text)

	f.Date = displayDate(f.DateRaw)
	f.Currency = displayCurrency(f.CurrencyToken)
	return f
}

func displayDate(raw string) string {
	if !models.Present(raw) {
		return models.Sentinel
	}
	return canonical.Date(raw)
}

func displayCurrency(token string) string {
	c := canonical.Currency(token)
	if c == models.CurrencyUnknown {
		return models.Sentinel
	}
	return string(c)
}

package email

import (
	"strings"

	"github.com/username/extractos/backend/src/models"
	"github.com/username/extractos/backend/src/parsers/patterns"
	"github.com/username/extractos/backend/src/textnorm"
)

const (
	destinationLabel = `Cuenta destino:</span></td>[\s\S]*?`
	yapeAmountCell   = `<strong>Monto de yapeo\*</strong>[\s\S]*?<td.*?style="[^"]*font-size:50px[^"]*">([\d,.]+)</td>`
	cardAmountCell   = `Total del consumo</td>.*?<b>S/\s*([\d,.]+)</b>`
	spanAmountCell   = `Moneda y monto:</span></td>[\s\S]*?<span>S/</span>\s*<span>([\d,.]+)</span>`
	beneficiaryCell  = `Nombre del Beneficiario\s*</td>\s*<td.*?>(.*?)</td>`
	companyCell      = `Empresa</td>[\s\S]*?<b>(.*?)</b>`
	beneficiaryPhone = `Celular del Beneficiario\s*</td>\s*<td.*?>(.*?)</td>`
)

// htmlPatterns work across tag boundaries of the bank templates. Several
// templates overlap, so the order decides which one wins.
var htmlPatterns = struct {
	amount, operation, date, sender, origin, beneficiaryName, beneficiaryAccount, beneficiaryPhone, currency patterns.List
}{
	currency: patterns.Compile(
		`(S/)\s*[\d,.]+`,
		`(USD)\s*[\d,.]+`,
		`(\$)\s*[\d,.]+`,
	),
	amount: patterns.Compile(
		`<td[^>]*class="soles-amount"[^>]*>\s*([\d.]+)\s*</td>`,
		yapeAmountCell,
		`<strong>Monto de yapeo*\*</strong>[\s\S]*?<td.*?style="[^"]*font-size:50px[^"]*">([\d,.]+)</td>`,
		`Monto de Yapeo</td>\s*<td[^>]*>\s*S/\s*([\d,.]+)`,
		cardAmountCell,
		spanAmountCell,
		`Total del consumo\s*S/\s*([\d,.]+)`,
		`S/\s*([\d,.]+)</b>`,
		`Monto Total:</span></td>[\s\S]*?<span>S/</span>\s*<span>([\d,.]+)</span>`,
	),
	sender: patterns.Compile(
		`Yapero\s*</td>\s*<td.*?>(.*?)</td>`,
		`Hola <b>(.*?)</b>`,
		destinationLabel+`<span>([^<]+)</span>`,
		`Hola\s*<span>([^<]+)</span>`,
	),
	origin: patterns.Compile(
		`Tu número de celular\s*</td>\s*<td.*?>(.*?)</td>`,
		`Número de Tarjeta de Crédito</td>[\s\S]*?<b>(.*?)</b>`,
		`Cuenta cargo:</span></td>[\s\S]*?<span>.*?</span><br clear="none"><span>(.*?)</span>`,
		`Cuenta cargo:</span></td>[\s\S]*?<span>(?:Cuenta Simple|Cuenta Corriente|Cuenta Interbank)</span> <span>Soles</span><br clear="none"><span>([\d\s]+)</span>`,
	),
	date: patterns.Compile(
		`(?i)Fecha y Hora de la operación\s*</td>\s*<td.*?>(.*?)</td>`,
		`(?i)Fecha y hora</td>[\s\S]*?<b><a.*?>(.*?)</a></b>`,
		`(?i)Date:</td>[\s\S]*?<b><a.*?>(.*?)</a></b>`,
		`(?i)Fecha y hora\s*[:\-]?\s*(\d{1,2}.*?\d{4}\s*-\s*\d{1,2}:\d{2}\s*(?:AM|PM))`,
	),
	beneficiaryName: patterns.Compile(
		beneficiaryCell,
		companyCell,
		destinationLabel+`<span>([^<]+)</span>`,
	),
	beneficiaryAccount: patterns.Compile(
		beneficiaryPhone,
		destinationLabel+`<span>.*?</span><br clear="none"><span>(.*?)</span>`,
	),
	operation: patterns.Compile(
		`Nº de operación\s*</td>\s*<td.*?>(.*?)</td>`,
		`Número de operación</td>[\s\S]*?<b><a.*?>(.*?)</a></b>`,
		`Código de operación:</span></td>[\s\S]*?<span>([\d]+)</span>`,
		`Código de operación:\s+(\d+)`,
		`N° de operación</td>[\s\S]*?<td[^>]*>\s*([\d]+)\s*</td>`,
	),
	beneficiaryPhone: patterns.Compile(
		beneficiaryPhone,
		destinationLabel+`<span>(?:.*?)</span><br clear="none"><span>(.*?)</span>`,
		beneficiaryCell,
		companyCell,
		destinationLabel+`<span>(.*?)</span>`,
	),
}

// ParseHTML extracts notification fields from an HTML email body. Values that
// look like an email address are rejected, since several templates put the
// recipient's address in the cells the patterns target.
func ParseHTML(body string) models.ExtractedFields {
	doc := textnorm.CleanHTML(body)

	f := models.EmptyFields()
	f.CurrencyToken = htmlPatterns.currency.First(doc)
	f.Amount = htmlPatterns.amount.First(doc)
	f.SenderName = cellValue(htmlPatterns.sender, doc)
	f.OriginAccount = cellValue(htmlPatterns.origin, doc)
	f.DateRaw = cellValue(htmlPatterns.date, doc)
	f.CounterpartyName = cellValue(htmlPatterns.beneficiaryName, doc)
	f.CounterpartyAccount = cellValue(htmlPatterns.beneficiaryAccount, doc)
	f.OperationNumber = cellValue(htmlPatterns.operation, doc)
	f.CounterpartyPhone = cellValue(htmlPatterns.beneficiaryPhone, doc)

	f.Date = displayDate(f.DateRaw)
	f.Currency = displayCurrency(f.CurrencyToken)
	return f
}

func cellValue(l patterns.List, doc string) string {
	v := l.First(doc)
	if v == models.Sentinel {
		return v
	}
	v = textnorm.HTMLText(v)
	if v == "" || strings.Contains(v, "@") {
		return models.Sentinel
	}
	return v
}

package price

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders prices for people, e.g. "1 299,00 €" for fr-FR/EUR.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewFormatter builds a Formatter for a BCP 47 locale and ISO 4217 currency.
// Unknown values fall back to French and EUR.
func NewFormatter(locale, code string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.French
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.EUR
	}
	return &Formatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
	}
}

// Format renders the value with two decimals followed by the currency symbol.
func (f *Formatter) Format(value decimal.Decimal) string {
	amount := value.Round(Places).InexactFloat64()
	digits := f.printer.Sprint(number.Decimal(amount, number.Scale(Places)))
	return digits + " " + f.printer.Sprint(currency.Symbol(f.unit))
}

package currency

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var symbols = map[string]string{
	"COP": "$",
	"MXN": "$",
	"ARS": "$",
	"BRL": "R$",
	"PEN": "S/",
	"EUR": "€",
}

const defaultSymbol = "$"

var printer = message.NewPrinter(language.English)

// Symbol returns the display symbol for a currency code.
func Symbol(code string) string {
	if s, ok := symbols[code]; ok {
		return s
	}
	return defaultSymbol
}

// Format renders an amount for display: symbol, space, grouped integer
// amount. Amounts are display-only; scoring never consumes them.
func Format(amount float64, code string) string {
	return Symbol(code) + " " + printer.Sprint(number.Decimal(int64(math.Round(amount))))
}

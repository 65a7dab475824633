package shared

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Round2 rounds to 2 decimal places. Applied only at the currency-display
// boundary; document arithmetic keeps full float precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var displayPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount with currency code for display,
// e.g. "AED 1,234.50".
func FormatAmount(currency string, amount float64) string {
	return displayPrinter.Sprintf("%s %.2f", currency, Round2(amount))
}

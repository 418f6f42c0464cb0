package utils

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
)

const DefaultCurrency = "usd"

// NormalizeCurrency validates an ISO 4217 code and returns it lower-cased,
// the way payments store it. An empty code yields DefaultCurrency.
func NormalizeCurrency(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return DefaultCurrency, nil
	}
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return "", fmt.Errorf("unknown currency %q", code)
	}
	return strings.ToLower(unit.String()), nil
}

// FormatMinorUnits renders an amount held in minor units, e.g. 1250 usd as
// "12.50 USD" and 500 jpy as "500 JPY".
func FormatMinorUnits(amount int64, code string) (string, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return "", fmt.Errorf("unknown currency %q", code)
	}
	scale, _ := currency.Standard.Rounding(unit)

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	if scale == 0 {
		return fmt.Sprintf("%s%d %s", sign, amount, unit), nil
	}

	pow := int64(1)
	for i := 0; i < scale; i++ {
		pow *= 10
	}
	return fmt.Sprintf("%s%d.%0*d %s", sign, amount/pow, scale, amount%pow, unit), nil
}

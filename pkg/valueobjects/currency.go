// Package valueobjects holds small domain values shared by the services.
package valueobjects

import (
	"fmt"
	"strings"

	"github.com/NomadCrew/nomad-split-backend/errors"
)

// Currency represents a supported ISO 4217 currency code.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
	CAD Currency = "CAD"
	AUD Currency = "AUD"

	DefaultCurrency = USD
)

var validCurrencies = map[Currency]bool{
	USD: true,
	EUR: true,
	GBP: true,
	JPY: true,
	CAD: true,
	AUD: true,
}

const ErrInvalidCurrency = "INVALID_CURRENCY"

// IsValidCurrency reports whether c is supported.
func IsValidCurrency(c Currency) bool {
	return validCurrencies[c]
}

// ParseCurrency normalizes a currency code. Empty input yields the default currency.
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency, nil
	}
	c := Currency(code)
	if !IsValidCurrency(c) {
		return "", errors.ValidationFailed(
			ErrInvalidCurrency,
			fmt.Sprintf("currency %s is not supported", code),
		)
	}
	return c, nil
}

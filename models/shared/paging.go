package shared

import (
	"strings"

	"github.com/NomadCrew/nomad-split-backend/pkg/valueobjects"
)

// NormalizeCurrency upper-cases code and applies the default to an empty value.
// ok is false for unsupported currencies.
func NormalizeCurrency(code string) (string, bool) {
	c, err := valueobjects.ParseCurrency(code)
	if err != nil {
		return strings.ToUpper(strings.TrimSpace(code)), false
	}
	return string(c), true
}

// Page clamps a requested page and limit. A missing limit becomes def and a
// limit above max is capped.
func Page(page, limit, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return page, limit
}

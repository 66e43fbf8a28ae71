package utils

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// dateLayouts are tried in order when parsing transaction dates
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseAmount converts a money string to a decimal.
// Currency symbols, thousands separators and surrounding spaces are removed;
// an amount wrapped in parentheses is negative.
func ParseAmount(raw string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
	}

	replacer := strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "")
	clean = replacer.Replace(clean)

	amount, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

// ParseDate parses a calendar date in any of the supported layouts
func ParseDate(raw string) (time.Time, error) {
	clean := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

// CleanDescription trims a description and collapses inner whitespace
func CleanDescription(raw string) string {
	return whitespacePattern.ReplaceAllString(strings.TrimSpace(raw), " ")
}

// FormatMoney renders an amount as $1,234.56, rounded half away from zero
func FormatMoney(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}

	whole, frac, _ := strings.Cut(rounded.StringFixed(2), ".")
	n, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return sign + "$" + whole + "." + frac
	}
	return sign + "$" + humanize.BigComma(n) + "." + frac
}

// Contains checks if text contains any of the given keywords
func Contains(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

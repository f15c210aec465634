// Package money provides lossless integer arithmetic for monetary subunits.
// All stored amounts are int64 subunits (kobo, cents); floats never enter
// arithmetic. Decimal strings are handled by shopspring/decimal at the parse
// and format boundary only.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultSubunitToUnit is the subunits-per-main-unit ratio for most currencies
const DefaultSubunitToUnit = 100

var (
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrNotInteger     = errors.New("amount must be an integer number of subunits")
	ErrInvalidFormat  = errors.New("invalid amount format")
	ErrInvalidParts   = errors.New("parts must be a positive integer")
	ErrZeroDivisor    = errors.New("divisor must be non-zero")
)

// ToSubunits converts a decimal main-unit string to subunits with half-up
// rounding on the sub-subunit digit. "10.50" -> 1050 for subunitToUnit 100.
func ToSubunits(mainUnit string, subunitToUnit int64) (int64, error) {
	if subunitToUnit <= 0 {
		return 0, ErrInvalidFormat
	}
	d, err := decimal.NewFromString(strings.TrimSpace(mainUnit))
	if err != nil {
		return 0, ErrInvalidFormat
	}
	if d.IsNegative() {
		return 0, ErrNegativeAmount
	}
	sub := d.Mul(decimal.NewFromInt(subunitToUnit)).Round(0)
	if !sub.IsInteger() {
		return 0, ErrNotInteger
	}
	return sub.IntPart(), nil
}

// FromSubunits converts subunits back to a main-unit decimal string.
// Display only; never feed the result back into arithmetic.
func FromSubunits(amount, subunitToUnit int64) (string, error) {
	if amount < 0 {
		return "", ErrNegativeAmount
	}
	if subunitToUnit <= 0 {
		return "", ErrInvalidFormat
	}
	return decimal.NewFromInt(amount).Div(decimal.NewFromInt(subunitToUnit)).StringFixed(2), nil
}

// Parse coerces free-form user input to subunits. Currency symbols, spaces
// and thousands separators are stripped: "₦1,050.50" -> 105050.
func Parse(input string, subunitToUnit int64) (int64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '₦', '$', '€', '£', ',', ' ', ' ':
			return -1
		}
		return r
	}, strings.TrimSpace(input))
	if cleaned == "" {
		return 0, ErrInvalidFormat
	}
	return ToSubunits(cleaned, subunitToUnit)
}

// Format renders subunits with a currency symbol, exactly two fraction digits
// and comma grouping: 105050 -> "₦1,050.50".
func Format(amount int64, symbol string, subunitToUnit int64) (string, error) {
	s, err := FromSubunits(amount, subunitToUnit)
	if err != nil {
		return "", err
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	b.WriteString(symbol)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String(), nil
}

// Add returns a+b. Subunit amounts are plain integers; the helpers exist so
// call sites never reach for floating point.
func Add(a, b int64) int64 { return a + b }

// Subtract returns a-b.
func Subtract(a, b int64) int64 { return a - b }

// Multiply scales amount by a decimal factor string, rounding half-up.
func Multiply(amount int64, factor string) (int64, error) {
	f, err := decimal.NewFromString(factor)
	if err != nil {
		return 0, ErrInvalidFormat
	}
	return decimal.NewFromInt(amount).Mul(f).Round(0).IntPart(), nil
}

// Divide divides amount by divisor, rounding half-up.
func Divide(amount, divisor int64) (int64, error) {
	if divisor == 0 {
		return 0, ErrZeroDivisor
	}
	return decimal.NewFromInt(amount).Div(decimal.NewFromInt(divisor)).Round(0).IntPart(), nil
}

// Percentage returns pct percent of amount, rounded half-up.
func Percentage(amount int64, pct int64) int64 {
	return decimal.NewFromInt(amount).Mul(decimal.NewFromInt(pct)).Div(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Split divides amount into parts integers that sum exactly to amount.
// The integer remainder goes to the first share.
func Split(amount int64, parts int) ([]int64, error) {
	if parts < 1 {
		return nil, ErrInvalidParts
	}
	base := amount / int64(parts)
	remainder := amount % int64(parts)
	result := make([]int64, parts)
	for i := range result {
		result[i] = base
	}
	result[0] += remainder
	return result, nil
}

// Compare returns -1, 0 or 1 as a is less than, equal to or greater than b.
func Compare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Abs returns the absolute value of amount.
func Abs(amount int64) int64 {
	if amount < 0 {
		return -amount
	}
	return amount
}

package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinorUnitsPerMajor is the gateway's fixed scale (paise per rupee).
const MinorUnitsPerMajor = 100

var minorScale = decimal.NewFromInt(MinorUnitsPerMajor)

// ToMinorUnits converts a major-unit amount to minor units. The conversion
// must be exact: a fractional remainder or an int64 overflow is an error.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	scaled := amount.Mul(minorScale)
	if !scaled.IsInteger() {
		return 0, NewArithmeticError(fmt.Sprintf("amount %s has more than two decimal places", amount.String()))
	}
	if !scaled.BigInt().IsInt64() {
		return 0, NewArithmeticError(fmt.Sprintf("amount %s overflows minor units", amount.String()))
	}
	return scaled.IntPart(), nil
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

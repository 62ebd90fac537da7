package types

import "github.com/shopspring/decimal"

// Money is the decimal type used for all rupiah amounts. Amounts are stored
// with two fractional digits but the payment gateway only accepts whole units.
type Money = decimal.Decimal

// MoneyFromInt builds a Money from a whole-rupiah value.
func MoneyFromInt(value int64) Money {
	return decimal.NewFromInt(value)
}

// IsWholeUnit reports whether the amount has no fractional component.
func IsWholeUnit(amount Money) bool {
	return amount.Equal(amount.Truncate(0))
}

// WholeUnits truncates the amount to an int64 of whole currency units.
func WholeUnits(amount Money) int64 {
	return amount.Truncate(0).IntPart()
}

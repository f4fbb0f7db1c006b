package paystack

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit amount to the integer minor units
// the gateway expects. Rounding is half away from zero so both sides
// of the amount comparison use the same value.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits is the inverse, for surfacing gateway amounts in
// domain responses.
func FromMinorUnits(v int64) decimal.Decimal {
	return decimal.NewFromInt(v).Div(hundred)
}

// Package arith holds the overflow-checked integer helpers every value and
// supply counter goes through. Nothing here wraps: any result that does not fit
// reports types.ErrMathOverflow naming the offending field.
package arith

import (
	"math/bits"

	"battlesol/internal/types"
)

// BpsDenominator is the basis-point scale (10000 bps == 100%).
const BpsDenominator uint64 = 10000

// Add returns a+b.
func Add(a, b uint64, field string) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, types.ErrMathOverflow.Wrapf("%s overflows uint64", field)
	}
	return sum, nil
}

// Sub returns a-b; a negative result is reported as overflow.
func Sub(a, b uint64, field string) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, types.ErrMathOverflow.Wrapf("%s underflows uint64", field)
	}
	return diff, nil
}

// Mul returns a*b.
func Mul(a, b uint64, field string) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, types.ErrMathOverflow.Wrapf("%s overflows uint64", field)
	}
	return lo, nil
}

// Div is floor division; a zero divisor is reported as overflow.
func Div(a, b uint64, field string) (uint64, error) {
	if b == 0 {
		return 0, types.ErrMathOverflow.Wrapf("%s divides by zero", field)
	}
	return a / b, nil
}

// BpsOf returns floor(amount*bps/10000). The intermediate product must fit in
// uint64.
func BpsOf(amount uint64, bps uint64, field string) (uint64, error) {
	p, err := Mul(amount, bps, field)
	if err != nil {
		return 0, err
	}
	return Div(p, BpsDenominator, field)
}

// Package modarith implements modular multiplication and exponentiation on 128-bit unsigned
// integers without intermediate overflow.
//
// Multiplication is computed by double-and-add over the bits of the multiplier, exponentiation
// by square-and-multiply over the bits of the exponent, both least significant bit first. Every
// intermediate value is kept below the modulus; additions that carry out of the 128-bit word are
// corrected by a wrapping subtraction of the modulus, so the results are exact for every
// modulus in [1, 2^128).
package modarith

import (
	"github.com/go-errors/errors"
	"github.com/zkpauth/zkp/num"
)

var ErrDivisionByZero = errors.New("modulus is zero")

// MulMod returns (a*b) mod m.
func MulMod(a, b, m num.Int) (num.Int, error) {
	if m.IsZero() {
		return num.Zero, ErrDivisionByZero
	}
	return mulMod(a.Mod(m), b, m), nil
}

// Power returns base^exp mod m. By convention base^0 = 1 (reduced modulo m).
func Power(base, exp, m num.Int) (num.Int, error) {
	if m.IsZero() {
		return num.Zero, ErrDivisionByZero
	}
	return power(base, exp, m), nil
}

// AddMod returns (a+b) mod m.
func AddMod(a, b, m num.Int) (num.Int, error) {
	if m.IsZero() {
		return num.Zero, ErrDivisionByZero
	}
	return addMod(a.Mod(m), b.Mod(m), m), nil
}

// addMod requires a, b < m.
func addMod(a, b, m num.Int) num.Int {
	s := a.AddWrap(b)
	// s < a means the true sum overflowed 2^128; it is then still below 2m, so a single
	// wrapping subtraction yields the reduced value.
	if s.Cmp(a) < 0 || s.Cmp(m) >= 0 {
		s = s.SubWrap(m)
	}
	return s
}

// mulMod requires a < m; b is unrestricted.
func mulMod(a, b, m num.Int) num.Int {
	res := num.Zero
	for !b.IsZero() {
		if b.Bit(0) == 1 {
			res = addMod(res, a, m)
		}
		a = addMod(a, a, m)
		b = b.Rsh(1)
	}
	return res
}

func power(base, exp, m num.Int) num.Int {
	res := num.One.Mod(m)
	base = base.Mod(m)
	for !exp.IsZero() {
		if exp.Bit(0) == 1 {
			res = mulMod(res, base, m)
		}
		base = mulMod(base, base, m)
		exp = exp.Rsh(1)
	}
	return res
}

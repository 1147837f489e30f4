package zkp

import (
	"github.com/go-errors/errors"
	"github.com/zkpauth/zkp/modarith"
	"github.com/zkpauth/zkp/num"
)

// Verification holds both sides of the verification equation g^s = R*y^e mod m.
type Verification struct {
	Left  num.Int
	Right num.Int
	OK    bool
}

// VerifyResponse evaluates the verifier's check on public values only: it reports whether
// g^s equals R*y^e modulo m. A modulus below 2 is rejected, as every value is congruent modulo 1.
func VerifyResponse(m, g, y, r, e, s num.Int) (*Verification, error) {
	if m.Cmp(num.NewInt(2)) < 0 {
		return nil, errors.Errorf("modulus %v leaves an empty exponent group: %w", m, modarith.ErrDivisionByZero)
	}
	// m >= 2, so the modulus is valid
	mod, _ := modarith.NewModulus(m)
	left := mod.Exp(g, s)
	right := mod.Mul(r, mod.Exp(y, e))
	return &Verification{Left: left, Right: right, OK: left.Equals(right)}, nil
}

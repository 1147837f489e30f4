package modarith

import "github.com/zkpauth/zkp/num"

// Modulus is a validated non-zero modulus. Its methods cannot fail and are safe for concurrent
// use, as a Modulus is never modified after construction.
type Modulus struct {
	m num.Int
}

func NewModulus(m num.Int) (*Modulus, error) {
	if m.IsZero() {
		return nil, ErrDivisionByZero
	}
	return &Modulus{m: m}, nil
}

func (md *Modulus) Value() num.Int { return md.m }

// Reduce returns a mod m.
func (md *Modulus) Reduce(a num.Int) num.Int { return a.Mod(md.m) }

// Add returns (a+b) mod m.
func (md *Modulus) Add(a, b num.Int) num.Int {
	return addMod(a.Mod(md.m), b.Mod(md.m), md.m)
}

// Mul returns (a*b) mod m.
func (md *Modulus) Mul(a, b num.Int) num.Int {
	return mulMod(a.Mod(md.m), b, md.m)
}

// Exp returns base^exp mod m.
func (md *Modulus) Exp(base, exp num.Int) num.Int {
	return power(base, exp, md.m)
}

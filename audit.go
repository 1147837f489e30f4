package zkp

import (
	"github.com/zkpauth/zkp/num"
	"github.com/zkpauth/zkp/primality"
)

// GuessesPerSecond is the attacker speed assumed by the brute force estimates.
const GuessesPerSecond = 1e8

type (
	Strength int

	// ModulusAudit describes how hard exhaustive search over a modulus is.
	ModulusAudit struct {
		Bits              int
		BruteForceSeconds float64
		Strength          Strength
		Prime             bool
		// Deterministic is set when Prime is exact rather than probabilistic.
		Deterministic bool
	}

	// SecretAudit describes how hard guessing a secret is.
	SecretAudit struct {
		Combinations num.Int
		GuessSeconds float64
		TooSmall     bool
	}

	Warning string

	// SetupReport is returned by Session.Configure.
	SetupReport struct {
		Modulus  ModulusAudit
		Secret   SecretAudit
		Warnings []Warning
	}
)

const (
	Weak Strength = iota
	Medium
	Strong
)

const (
	WarnCompositeModulus Warning = "modulus is composite"
	WarnWeakModulus      Warning = "modulus can be searched exhaustively within seconds"
	WarnSmallSecret      Warning = "secret is too small"
)

func (s Strength) String() string {
	switch s {
	case Weak:
		return "WEAK"
	case Medium:
		return "MEDIUM"
	case Strong:
		return "STRONG"
	}
	return "UNKNOWN"
}

func strengthOf(seconds float64) Strength {
	switch {
	case seconds < 10:
		return Weak
	case seconds < 3600:
		return Medium
	}
	return Strong
}

// AuditModulus measures m and tests it for primality with tester (the default witnesses when
// nil).
func AuditModulus(m num.Int, tester *primality.Tester) ModulusAudit {
	if tester == nil {
		tester = primality.NewTester()
	}
	seconds := m.Float64() / GuessesPerSecond
	prime := tester.IsProbablyPrime(m)
	return ModulusAudit{
		Bits:              m.Len(),
		BruteForceSeconds: seconds,
		Strength:          strengthOf(seconds),
		Prime:             prime,
		Deterministic:     !prime || tester.Deterministic(m),
	}
}

// AuditSecret measures x against the minimum secret size min.
func AuditSecret(x, min num.Int) SecretAudit {
	return SecretAudit{
		Combinations: x,
		GuessSeconds: x.Float64() / GuessesPerSecond,
		TooSmall:     x.Cmp(min) < 0,
	}
}

// HasWarning reports whether w was raised during setup.
func (r *SetupReport) HasWarning(w Warning) bool {
	for _, have := range r.Warnings {
		if have == w {
			return true
		}
	}
	return false
}

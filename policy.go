package zkp

import (
	"io"

	"github.com/zkpauth/zkp/num"
	"github.com/zkpauth/zkp/primality"
)

// DefaultMinSecret is the secret size below which a secret is reported as too small.
const DefaultMinSecret = 1000000

// Policy decides which setup warnings are fatal and how the modulus is tested. The zero value
// of each strictness flag keeps the corresponding warning advisory.
type Policy struct {
	// StrictModulus rejects a composite modulus (ErrCompositeModulus) and a modulus that can be
	// brute forced within seconds (ErrWeakModulus).
	StrictModulus bool
	// StrictSecret rejects a secret below MinSecret (ErrWeakSecret).
	StrictSecret bool
	// MinSecret is the size below which a secret is reported as too small. Zero disables the
	// check.
	MinSecret num.Int

	// Witnesses replaces primality.DefaultWitnesses when non-empty.
	Witnesses []uint64
	// RandomWitnessRounds adds Miller-Rabin rounds with random witnesses drawn from Rand
	// (crypto/rand when nil).
	RandomWitnessRounds int
	Rand                io.Reader
}

func DefaultPolicy() Policy {
	return Policy{MinSecret: num.NewInt(DefaultMinSecret)}
}

// Tester returns the primality tester configured by the policy.
func (p Policy) Tester() *primality.Tester {
	var opts []primality.Option
	if len(p.Witnesses) > 0 {
		opts = append(opts, primality.WithWitnesses(p.Witnesses...))
	}
	if p.RandomWitnessRounds > 0 {
		opts = append(opts, primality.WithRandomRounds(p.RandomWitnessRounds, p.Rand))
	}
	return primality.NewTester(opts...)
}

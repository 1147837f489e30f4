// Package primality implements the Miller-Rabin probable prime test on 128-bit integers, built on
// the exponentiation of package modarith.
package primality

import (
	"crypto/rand"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/zkpauth/zkp/modarith"
	"github.com/zkpauth/zkp/num"
)

var Logger = logrus.StandardLogger()

// DefaultWitnesses are the first nine primes. Testing against all of them is exact below
// DeterministicBound.
var DefaultWitnesses = []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23}

// DeterministicBound is the smallest strong pseudoprime to all of DefaultWitnesses.
var DeterministicBound = num.NewInt(3825123056546413051)

var defaultTester = NewTester()

type (
	// Tester runs Miller-Rabin against a fixed witness list, optionally followed by a number of
	// rounds with uniformly random witnesses. A Tester is not modified after construction.
	Tester struct {
		witnesses []uint64
		rounds    int
		rnd       io.Reader
	}

	Option func(*Tester)
)

// WithWitnesses replaces the fixed witness list.
func WithWitnesses(witnesses ...uint64) Option {
	return func(t *Tester) {
		t.witnesses = append([]uint64(nil), witnesses...)
	}
}

// WithRandomRounds adds n rounds with random witnesses drawn from rnd; a nil rnd means
// crypto/rand.
func WithRandomRounds(n int, rnd io.Reader) Option {
	return func(t *Tester) {
		t.rounds = n
		t.rnd = rnd
	}
}

func NewTester(opts ...Option) *Tester {
	t := &Tester{witnesses: DefaultWitnesses, rnd: rand.Reader}
	for _, opt := range opts {
		opt(t)
	}
	if t.rnd == nil {
		t.rnd = rand.Reader
	}
	return t
}

// IsProbablyPrime tests n against DefaultWitnesses.
func IsProbablyPrime(n num.Int) bool {
	return defaultTester.IsProbablyPrime(n)
}

// Deterministic reports whether the outcome of IsProbablyPrime on n is exact rather than
// probabilistic.
func (t *Tester) Deterministic(n num.Int) bool {
	if n.Cmp(DeterministicBound) >= 0 {
		return false
	}
	have := make(map[uint64]bool, len(t.witnesses))
	for _, w := range t.witnesses {
		have[w] = true
	}
	for _, w := range DefaultWitnesses {
		if !have[w] {
			return false
		}
	}
	return true
}

// IsProbablyPrime reports whether n passes every witness. A false result is always correct.
func (t *Tester) IsProbablyPrime(n num.Int) bool {
	if n.Cmp(num.NewInt(2)) < 0 {
		return false
	}
	if n.Equals(num.NewInt(2)) || n.Equals(num.NewInt(3)) {
		return true
	}
	if n.Bit(0) == 0 {
		return false
	}

	mr := newRound(n)
	for _, w := range t.witnesses {
		a := num.NewInt(w)
		if a.Cmp(n) >= 0 {
			continue
		}
		if !mr.passes(a) {
			return false
		}
	}

	if t.rounds == 0 || n.Cmp(num.NewInt(5)) < 0 {
		return true
	}
	// witnesses in [2, n-2]
	span := n.SubWrap(num.NewInt(3))
	for i := 0; i < t.rounds; i++ {
		a, err := num.RandInt(t.rnd, span)
		if err != nil {
			Logger.Warn("skipping random Miller-Rabin rounds: ", err.Error())
			break
		}
		if !mr.passes(a.AddWrap(num.NewInt(2))) {
			return false
		}
	}
	return true
}

// round holds the decomposition n-1 = d*2^r of an odd n > 3.
type round struct {
	mod *modarith.Modulus
	nm1 num.Int
	d   num.Int
	r   int
}

func newRound(n num.Int) *round {
	// n is odd and above 3, so the modulus is valid and d ends up odd and non-zero
	mod, _ := modarith.NewModulus(n)
	nm1 := n.SubWrap(num.One)
	d, r := nm1, 0
	for d.Bit(0) == 0 {
		d = d.Rsh(1)
		r++
	}
	return &round{mod: mod, nm1: nm1, d: d, r: r}
}

func (mr *round) passes(a num.Int) bool {
	x := mr.mod.Exp(a, mr.d)
	if x.Equals(num.One) || x.Equals(mr.nm1) {
		return true
	}
	for j := 0; j < mr.r-1; j++ {
		x = mr.mod.Mul(x, x)
		if x.Equals(mr.nm1) {
			return true
		}
	}
	return false
}

// Package safeprime computes safe primes, i.e. primes of the form 2q+1 where q is also prime, that
// fit in 128 bits. A safe prime p makes a good modulus: the exponent group of order p-1 = 2q has
// no small subgroups besides those of order 1 and 2.
package safeprime

import (
	"crypto/rand"
	"io"
	"runtime"
	"sync"

	"github.com/go-errors/errors"
	"github.com/zkpauth/zkp/internal/common"
	"github.com/zkpauth/zkp/modarith"
	"github.com/zkpauth/zkp/num"
	"github.com/zkpauth/zkp/primality"
)

var ErrBitSize = errors.New("safe prime size must be between 3 and 128 bits")

// GenerateConcurrent concurrently and continuously generates safe primes on all CPU cores,
// until the stop channel receives a struct or is closed. If an error is encountered, generation is
// stopped in all goroutines, and the error is sent on the second return parameter. rnd is shared
// by all goroutines and must be safe for concurrent use; nil means crypto/rand.
func GenerateConcurrent(bits int, rnd io.Reader, stop chan struct{}) (<-chan num.Int, <-chan error) {
	count := runtime.GOMAXPROCS(0)
	ints := make(chan num.Int, count)
	errs := make(chan error, count)

	// The goroutines below all watch stopped, which we close ourselves, so that they all stop
	// regardless of whether the caller closes stop or sends a single struct{}{} on it.
	stopped := make(chan struct{})
	var once sync.Once
	halt := func() { once.Do(func() { close(stopped) }) }
	go func() {
		select {
		case <-stop:
			halt()
		case <-stopped: // closed by a goroutine that encountered an error
		}
	}()

	for i := 0; i < count; i++ {
		go func() {
			for {
				p, ok, err := generate(bits, rnd, stopped)
				if err != nil {
					errs <- err
					halt()
					return
				}
				if !ok {
					return
				}

				// Only send the result and continue if we have not been told to stop
				select {
				case <-stopped:
					return
				case ints <- p:
				}
			}
		}()
	}

	return ints, errs
}

// Generate returns a random safe prime of exactly bits bits, drawing candidates from rnd (nil
// means crypto/rand). It uses the fact that if q is prime and 2^(2q) = 1 mod (2q+1), then 2q+1 is
// a safe prime. (See https://www.ijipbangalore.org/abstracts_2(1)/p5.pdf.)
func Generate(bits int, rnd io.Reader) (num.Int, error) {
	p, _, err := generate(bits, rnd, nil)
	return p, err
}

// generate returns false when it was stopped before finding a safe prime.
func generate(bits int, rnd io.Reader, stop chan struct{}) (num.Int, bool, error) {
	if bits < 3 || bits > num.Size {
		return num.Zero, false, errors.Errorf("%d bits: %w", bits, ErrBitSize)
	}
	if rnd == nil {
		rnd = rand.Reader
	}

	var (
		two = num.NewInt(2)
		// q has bits-1 bits, so that 2q+1 has exactly bits bits
		top = num.One.Lsh(uint(bits - 2))
	)
	for i := 1; ; i++ {
		// Every 1000 iterations, check if we have been asked to stop
		if stop != nil && i%1000 == 0 {
			select {
			case <-stop:
				return num.Zero, false, nil
			default:
			}
		}

		r, err := num.RandInt(rnd, top)
		if err != nil {
			return num.Zero, false, errors.WrapPrefix(err, "drawing safe prime candidate", 0)
		}
		q := r.AddWrap(top)
		q.Lo |= 1

		if common.HasSmallFactor(q) {
			continue
		}
		twoq := q.Lsh(1)
		p := twoq.AddWrap(num.One)
		if common.HasSmallFactor(p) {
			continue
		}

		// p > 2, so the modulus is valid
		if x, _ := modarith.Power(two, twoq, p); !x.Equals(num.One) {
			continue
		}
		if !primality.IsProbablyPrime(q) {
			continue
		}
		if !ProbablySafePrime(p) {
			return num.Zero, false, errors.Errorf("safe prime generation returned non-safe prime %v", p)
		}
		return p, true, nil
	}
}

// ProbablySafePrime reports whether p is probably a safe prime, by running
// primality.IsProbablyPrime on p as well as on (p-1)/2.
//
// If p is a safe prime, ProbablySafePrime returns true.
// If p is chosen randomly and not a safe prime, ProbablySafePrime probably returns false.
func ProbablySafePrime(p num.Int) bool {
	if p.Cmp(num.NewInt(2)) <= 0 {
		return false
	}
	if !primality.IsProbablyPrime(p) {
		return false
	}
	return primality.IsProbablyPrime(p.Rsh(1))
}

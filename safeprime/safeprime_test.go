package safeprime

import (
	"bytes"
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zkpauth/zkp/num"
)

func requireSafePrime(t *testing.T, p num.Int, bits int) {
	require.Equal(t, bits, p.Len(), "%v", p)
	require.True(t, p.Big().ProbablyPrime(40), "%v is not prime", p)
	q := new(big.Int).Rsh(p.Big(), 1)
	require.True(t, q.ProbablyPrime(40), "%v is not a safe prime", p)
}

func TestGenerate(t *testing.T) {
	for _, bits := range []int{3, 4, 5, 8, 16, 31, 32, 48, 64, 65, 100, 127, 128} {
		p, err := Generate(bits, nil)
		require.NoError(t, err)
		requireSafePrime(t, p, bits)
		assert.True(t, ProbablySafePrime(p))
	}
}

func TestGenerateSmallest(t *testing.T) {
	// 7 is the only safe prime of three bits that the construction can reach
	for i := 0; i < 10; i++ {
		p, err := Generate(3, rand.Reader)
		require.NoError(t, err)
		require.Equal(t, uint64(7), p.Uint64())
	}
}

func TestBitSize(t *testing.T) {
	for _, bits := range []int{-1, 0, 2, 129} {
		_, err := Generate(bits, nil)
		require.True(t, errors.Is(err, ErrBitSize), "bits = %d", bits)
	}
}

func TestReaderFailure(t *testing.T) {
	_, err := Generate(64, bytes.NewReader(nil))
	require.Error(t, err)
}

func TestProbablySafePrime(t *testing.T) {
	for _, p := range []uint64{5, 7, 11, 23, 47, 59, 83, 107, 1019} {
		assert.True(t, ProbablySafePrime(num.NewInt(p)), "%d", p)
	}
	for _, p := range []uint64{0, 1, 2, 3, 13, 15, 29, 1000003} {
		assert.False(t, ProbablySafePrime(num.NewInt(p)), "%d", p)
	}
}

func TestGenerateConcurrent(t *testing.T) {
	stop := make(chan struct{})
	ints, errs := GenerateConcurrent(64, nil, stop)
	for i := 0; i < 3; i++ {
		select {
		case p := <-ints:
			requireSafePrime(t, p, 64)
		case err := <-errs:
			t.Fatal(err)
		}
	}
	close(stop)
}

func TestGenerateConcurrentError(t *testing.T) {
	_, errs := GenerateConcurrent(1, nil, nil)
	err := <-errs
	require.True(t, errors.Is(err, ErrBitSize))
}

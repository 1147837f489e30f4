package modarith

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/bwesterb/go-exptable"
	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zkpauth/zkp/num"
)

var rnd = rand.New(rand.NewSource(37))

// Largest prime below 2^128.
var p128 = num.Max.SubWrap(num.NewInt(158))

func randInt(bits int) num.Int {
	v := num.Int{Lo: rnd.Uint64(), Hi: rnd.Uint64()}
	if bits < num.Size {
		v = v.Rsh(uint(num.Size - bits))
	}
	return v
}

func mustBig(t *testing.T, v *big.Int) num.Int {
	r, err := num.FromBig(v)
	require.NoError(t, err)
	return r
}

func refMulMod(a, b, m num.Int) *big.Int {
	r := new(big.Int).Mul(a.Big(), b.Big())
	return r.Mod(r, m.Big())
}

func testMulMod(t *testing.T, a, b, m num.Int) {
	r, err := MulMod(a, b, m)
	require.NoError(t, err)
	expected := refMulMod(a, b, m)
	if r.Big().Cmp(expected) != 0 {
		t.Fatalf("%v * %v mod %v = %v != %v", a, b, m, r, expected)
	}
}

func TestMulModSmall(t *testing.T) {
	for i := 0; i < 2000; i++ {
		m := num.NewInt(uint64(rnd.Int63n(1<<31)) + 1)
		a := num.NewInt(uint64(rnd.Int63n(1 << 31))).Mod(m)
		b := num.NewInt(uint64(rnd.Int63n(1 << 31))).Mod(m)
		r, err := MulMod(a, b, m)
		require.NoError(t, err)
		require.Equal(t, a.Uint64()*b.Uint64()%m.Uint64(), r.Uint64())
	}
}

func TestMulModWide(t *testing.T) {
	for bits := 2; bits <= num.Size; bits++ {
		for i := 0; i < 10; i++ {
			m := randInt(bits)
			if m.IsZero() {
				continue
			}
			testMulMod(t, randInt(bits).Mod(m), randInt(bits).Mod(m), m)
		}
	}
}

func TestMulModBoundary(t *testing.T) {
	one := num.One
	moduli := []num.Int{
		p128,
		num.Max,
		num.Max.SubWrap(one),
		num.One.Lsh(127),
		num.One.Lsh(127).SubWrap(one),
		num.One.Lsh(127).AddWrap(one),
	}
	for _, m := range moduli {
		mm1 := m.SubWrap(one)
		operands := []num.Int{num.Zero, one, num.NewInt(2), mm1, mm1.SubWrap(one), m.Rsh(1), m.Rsh(1).AddWrap(one)}
		for _, a := range operands {
			for _, b := range operands {
				testMulMod(t, a, b, m)
			}
		}
	}
}

func TestMulModUnreducedOperands(t *testing.T) {
	m := num.NewInt(1000003)
	for i := 0; i < 100; i++ {
		testMulMod(t, randInt(128), randInt(128), m)
	}
}

func TestDivisionByZero(t *testing.T) {
	_, err := MulMod(num.One, num.One, num.Zero)
	require.True(t, errors.Is(err, ErrDivisionByZero))
	_, err = Power(num.NewInt(2), num.NewInt(3), num.Zero)
	require.True(t, errors.Is(err, ErrDivisionByZero))
	_, err = AddMod(num.One, num.One, num.Zero)
	require.True(t, errors.Is(err, ErrDivisionByZero))
	_, err = NewModulus(num.Zero)
	require.True(t, errors.Is(err, ErrDivisionByZero))
}

func TestPowerConventions(t *testing.T) {
	m := num.NewInt(23)
	r, err := Power(num.NewInt(5), num.Zero, m)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.Uint64())

	r, err = Power(num.Zero, num.Zero, m)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.Uint64())

	// everything is congruent to zero modulo one
	r, err = Power(num.NewInt(5), num.Zero, num.One)
	require.NoError(t, err)
	assert.True(t, r.IsZero())

	r, err = Power(num.NewInt(2), num.NewInt(6), m)
	require.NoError(t, err)
	assert.Equal(t, uint64(18), r.Uint64())

	// base is reduced first
	r, err = Power(num.NewInt(25), num.NewInt(6), m)
	require.NoError(t, err)
	assert.Equal(t, uint64(18), r.Uint64())
}

func TestPowerBruteForce(t *testing.T) {
	for i := 0; i < 200; i++ {
		m := randInt(1 + rnd.Intn(num.Size))
		if m.IsZero() {
			continue
		}
		md, err := NewModulus(m)
		require.NoError(t, err)
		base := randInt(num.Size)
		acc := num.One.Mod(m)
		for e := uint64(0); e < 20; e++ {
			r, err := Power(base, num.NewInt(e), m)
			require.NoError(t, err)
			require.True(t, acc.Equals(r), "%v^%d mod %v = %v != %v", base, e, m, r, acc)
			acc = md.Mul(acc, base)
		}
	}
}

func TestPowerAgainstBig(t *testing.T) {
	for i := 0; i < 300; i++ {
		m := randInt(1 + rnd.Intn(num.Size))
		if m.IsZero() {
			continue
		}
		base, exp := randInt(num.Size), randInt(num.Size)
		r, err := Power(base, exp, m)
		require.NoError(t, err)
		expected := new(big.Int).Exp(base.Big(), exp.Big(), m.Big())
		require.Zero(t, expected.Cmp(r.Big()), "%v^%v mod %v", base, exp, m)
	}
}

func TestPowerAgainstExpTable(t *testing.T) {
	for _, m := range []num.Int{p128, num.NewInt(1000003), mustBig(t, big.NewInt(2305843009213693951))} {
		var table exptable.Table
		table.Compute(big.NewInt(2), m.Big(), 7)
		md, err := NewModulus(m)
		require.NoError(t, err)
		for i := 0; i < 50; i++ {
			exp := randInt(num.Size).Mod(m)
			expected := new(big.Int)
			table.Exp(expected, exp.Big())
			require.Zero(t, expected.Cmp(md.Exp(num.NewInt(2), exp).Big()), "2^%v mod %v", exp, m)
		}
	}
}

func TestAddMod(t *testing.T) {
	for i := 0; i < 500; i++ {
		m := randInt(1 + rnd.Intn(num.Size))
		if m.IsZero() {
			continue
		}
		a, b := randInt(num.Size), randInt(num.Size)
		r, err := AddMod(a, b, m)
		require.NoError(t, err)
		expected := new(big.Int).Add(a.Big(), b.Big())
		expected.Mod(expected, m.Big())
		require.Zero(t, expected.Cmp(r.Big()))
	}
}

func TestModulus(t *testing.T) {
	md, err := NewModulus(num.NewInt(22))
	require.NoError(t, err)
	assert.Equal(t, uint64(22), md.Value().Uint64())
	assert.Equal(t, uint64(8), md.Reduce(num.NewInt(30)).Uint64())
	assert.Equal(t, uint64(11), md.Add(num.NewInt(3), num.NewInt(30)).Uint64())
	assert.Equal(t, uint64(8), md.Mul(num.NewInt(5), num.NewInt(6)).Uint64())
	assert.Equal(t, uint64(16), md.Exp(num.NewInt(2), num.NewInt(4)).Uint64())
}

func BenchmarkMulMod128(b *testing.B) {
	x, y := p128.Rsh(1), p128.SubWrap(num.NewInt(7))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MulMod(x, y, p128)
	}
}

func BenchmarkPower128(b *testing.B) {
	md, _ := NewModulus(p128)
	e := p128.SubWrap(num.One)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		md.Exp(num.NewInt(2), e)
	}
}

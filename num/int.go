// Package num contains Int, a fixed-width 128-bit unsigned integer that marshals to and from
// its decimal representation.
package num

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"math/big"

	"github.com/go-errors/errors"
	"lukechampine.com/uint128"
)

// Int is an unsigned 128-bit integer. Arithmetic on it is modulo 2^128 unless stated otherwise;
// the modular kernel in package modarith never relies on that wrapping.
type Int uint128.Uint128

// Size is the width of Int in bits.
const Size = 128

var (
	ErrInputTooLarge   = errors.New("value does not fit in 128 bits")
	ErrInvalidEncoding = errors.New("invalid integer encoding")

	Zero = Int(uint128.Zero)
	One  = NewInt(1)
	Max  = Int(uint128.Max)

	maxDiv10, maxMod10 = uint128.Max.QuoRem64(10)
	twoToThe64th       = math.Ldexp(1, 64)
)

// NewInt returns v as an Int.
func NewInt(v uint64) Int { return Int(uint128.From64(v)) }

// Convert from a uint128.Uint128.
func Convert(u uint128.Uint128) Int { return Int(u) }

// Value converts to a uint128.Uint128.
func (i Int) Value() uint128.Uint128 { return uint128.Uint128(i) }

// FromBig converts a "math/big".Int, failing on negative values or values wider than 128 bits.
func FromBig(b *big.Int) (Int, error) {
	if b.Sign() < 0 {
		return Zero, errors.Errorf("negative value %v: %w", b, ErrInvalidEncoding)
	}
	if b.BitLen() > Size {
		return Zero, ErrInputTooLarge
	}
	return Int(uint128.FromBig(b)), nil
}

// ParseDecimal reads the decimal digits of s, skipping every other character. A string without
// digits yields zero. Digits describing a number above Max yield ErrInputTooLarge.
func ParseDecimal(s string) (Int, error) {
	res := uint128.Zero
	for _, c := range s {
		if c < '0' || c > '9' {
			continue
		}
		d := uint64(c - '0')
		if cmp := res.Cmp(maxDiv10); cmp > 0 || (cmp == 0 && d > maxMod10) {
			return Zero, errors.Errorf("parsing %q: %w", s, ErrInputTooLarge)
		}
		res = res.Mul64(10).Add64(d)
	}
	return Int(res), nil
}

// Parse parses s as a base 10 integer without leniency: every character must be a digit.
func Parse(s string) (Int, error) {
	if s == "" {
		return Zero, errors.Errorf("parsing empty string: %w", ErrInvalidEncoding)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return Zero, errors.Errorf("parsing %q: %w", s, ErrInvalidEncoding)
		}
	}
	return ParseDecimal(s)
}

// Format returns the canonical decimal representation of i: no leading zeros, "0" for zero.
func Format(i Int) string { return i.String() }

// RandInt returns a uniform random value in [0, max). It panics if max is zero.
func RandInt(rnd io.Reader, max Int) (Int, error) {
	if max.IsZero() {
		panic("num: RandInt with zero bound")
	}
	i, err := cryptorand.Int(rnd, max.Big())
	if err != nil {
		return Zero, errors.WrapPrefix(err, "drawing random integer", 0)
	}
	return Int(uint128.FromBig(i)), nil
}

func (i Int) String() string    { return i.Value().String() }
func (i Int) Big() *big.Int     { return i.Value().Big() }
func (i Int) IsZero() bool      { return i.Value().IsZero() }
func (i Int) Equals(j Int) bool { return i.Value().Equals(j.Value()) }
func (i Int) Cmp(j Int) int     { return i.Value().Cmp(j.Value()) }
func (i Int) Len() int          { return i.Value().Len() }
func (i Int) Lsh(n uint) Int    { return Int(i.Value().Lsh(n)) }
func (i Int) Rsh(n uint) Int    { return Int(i.Value().Rsh(n)) }
func (i Int) AddWrap(j Int) Int { return Int(i.Value().AddWrap(j.Value())) }
func (i Int) SubWrap(j Int) Int { return Int(i.Value().SubWrap(j.Value())) }

// Mod returns i mod m. It panics if m is zero.
func (i Int) Mod(m Int) Int { return Int(i.Value().Mod(m.Value())) }

// Bit returns the value of the j'th bit of i, counting from the least significant bit.
func (i Int) Bit(j int) uint {
	switch {
	case j < 64:
		return uint(i.Lo>>uint(j)) & 1
	case j < Size:
		return uint(i.Hi>>uint(j-64)) & 1
	}
	return 0
}

// IsUint64 reports whether i can be represented as a uint64.
func (i Int) IsUint64() bool { return i.Hi == 0 }

// Uint64 returns the low 64 bits of i.
func (i Int) Uint64() uint64 { return i.Lo }

// Float64 returns the nearest float64 to i.
func (i Int) Float64() float64 {
	return float64(i.Hi)*twoToThe64th + float64(i.Lo)
}

// Format implements fmt.Formatter. %v prints the plain decimal, ignoring the '+' flag that
// struct dumps with %+v pass on; other verbs format as big.Int does.
func (i Int) Format(s fmt.State, ch rune) {
	if ch != 'v' {
		i.Big().Format(s, ch)
		return
	}
	str := i.String()
	w, ok := s.Width()
	switch {
	case !ok:
		fmt.Fprint(s, str)
	case s.Flag('-'):
		fmt.Fprintf(s, "%-*s", w, str)
	default:
		fmt.Fprintf(s, "%*s", w, str)
	}
}

// MarshalText implements encoding.TextMarshaler, returning the decimal representation.
func (i Int) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, strictly parsing a base 10 integer.
func (i *Int) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. Quoted input is parsed as decimal text; unquoted
// input is accepted as a plain JSON number.
func (i *Int) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return ErrInvalidEncoding
	}
	if b[0] != '"' {
		tmp := new(big.Int)
		if err := json.Unmarshal(b, tmp); err != nil {
			return errors.WrapPrefix(err, "decoding JSON number", 0)
		}
		v, err := FromBig(tmp)
		if err != nil {
			return err
		}
		*i = v
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.WrapPrefix(err, "decoding JSON string", 0)
	}
	return i.UnmarshalText([]byte(s))
}

func (i Int) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return e.EncodeElement(i.String(), start)
}

// UnmarshalXML implements xml.Unmarshaler, attempting to parse the text of the specified element
// as a base 10 integer.
func (i *Int) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	tmp := struct {
		Str string `xml:",chardata"`
	}{}
	if err := d.DecodeElement(&tmp, &start); err != nil {
		return err
	}
	return i.UnmarshalText([]byte(tmp.Str))
}

// MarshalBinary implements encoding.BinaryMarshaler as 16 big-endian bytes. CBOR encodes Int
// through this method as a byte string.
func (i Int) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[:8], i.Hi)
	binary.BigEndian.PutUint64(buf[8:], i.Lo)
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Shorter inputs are treated as
// big-endian with leading zeros stripped.
func (i *Int) UnmarshalBinary(data []byte) error {
	if len(data) > 16 {
		return errors.Errorf("%d bytes: %w", len(data), ErrInputTooLarge)
	}
	var buf [16]byte
	copy(buf[16-len(data):], data)
	i.Hi = binary.BigEndian.Uint64(buf[:8])
	i.Lo = binary.BigEndian.Uint64(buf[8:])
	return nil
}

package zkp

import (
	"github.com/go-errors/errors"
	"github.com/zkpauth/zkp/cbor"
	"github.com/zkpauth/zkp/modarith"
	"github.com/zkpauth/zkp/num"
)

// Transcript is the public record of a proof. It never contains the secret x or the session
// secret k, and can be verified by anyone.
type Transcript struct {
	Modulus    num.Int `json:"m" cbor:"1,keyasint"`
	Generator  num.Int `json:"g" cbor:"2,keyasint"`
	PublicKey  num.Int `json:"y" cbor:"3,keyasint"`
	Commitment num.Int `json:"r" cbor:"4,keyasint"`
	Challenge  num.Int `json:"e" cbor:"5,keyasint"`
	Response   num.Int `json:"s" cbor:"6,keyasint"`
	// NonInteractive is set when the challenge was derived with FiatShamir.
	NonInteractive bool `json:"nonInteractive,omitempty" cbor:"7,keyasint,omitempty"`
}

// Verify checks the verification equation of the transcript. The generator must be Generator and
// the public key and commitment must lie in [1, m), otherwise ErrInvalidTranscript is returned.
// For non-interactive transcripts the challenge must equal the hash of the public values,
// otherwise ErrChallengeMismatch is returned.
func (t *Transcript) Verify() (*Verification, error) {
	if t.Modulus.Cmp(num.NewInt(2)) < 0 {
		return nil, errors.Errorf("modulus %v leaves an empty exponent group: %w", t.Modulus, modarith.ErrDivisionByZero)
	}
	if !t.Generator.Equals(Generator) {
		return nil, errors.Errorf("generator %v, expected %v: %w", t.Generator, Generator, ErrInvalidTranscript)
	}
	if !inGroup(t.PublicKey, t.Modulus) {
		return nil, errors.Errorf("public key %v not in [1, %v): %w", t.PublicKey, t.Modulus, ErrInvalidTranscript)
	}
	if !inGroup(t.Commitment, t.Modulus) {
		return nil, errors.Errorf("commitment %v not in [1, %v): %w", t.Commitment, t.Modulus, ErrInvalidTranscript)
	}
	if t.NonInteractive {
		expected := FiatShamir(t.Modulus, t.Generator, t.PublicKey, t.Commitment)
		if !expected.Equals(t.Challenge) {
			return nil, ErrChallengeMismatch
		}
	}
	return VerifyResponse(t.Modulus, t.Generator, t.PublicKey, t.Commitment, t.Challenge, t.Response)
}

func inGroup(v, m num.Int) bool {
	return !v.IsZero() && v.Cmp(m) < 0
}

// Marshal encodes the transcript as deterministic CBOR.
func (t *Transcript) Marshal() ([]byte, error) {
	return cbor.Marshal(t)
}

func UnmarshalTranscript(data []byte) (*Transcript, error) {
	t := new(Transcript)
	if err := cbor.Unmarshal(data, t); err != nil {
		return nil, errors.WrapPrefix(err, "decoding transcript", 0)
	}
	return t, nil
}

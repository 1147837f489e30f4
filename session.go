package zkp

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/go-errors/errors"
	"github.com/zkpauth/zkp/internal/common"
	"github.com/zkpauth/zkp/modarith"
	"github.com/zkpauth/zkp/num"
	"github.com/zkpauth/zkp/primality"
)

// Generator is the fixed base g of every session.
var Generator = num.NewInt(2)

var (
	ErrInvalidStateTransition  = errors.New("invalid state transition")
	ErrSecretTooLarge          = errors.New("secret must be smaller than the modulus")
	ErrSessionSecretOutOfRange = errors.New("session secret must be smaller than the modulus")
	ErrCompositeModulus        = errors.New("modulus is not prime")
	ErrWeakModulus             = errors.New("modulus is too small")
	ErrWeakSecret              = errors.New("secret is too small")
	ErrChallengeMismatch       = errors.New("challenge does not match the commitment hash")
	ErrInvalidTranscript       = errors.New("transcript holds values outside the group")
)

// State is the protocol phase a Session is in. States only ever advance.
type State int

const (
	Unconfigured State = iota
	Configured
	PublicKeyDerived
	Committed
	Challenged
	Responded
	Verified
)

var stateNames = [...]string{
	Unconfigured:     "unconfigured",
	Configured:       "configured",
	PublicKeyDerived: "public key derived",
	Committed:        "committed",
	Challenged:       "challenged",
	Responded:        "responded",
	Verified:         "verified",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// StateError is returned when an operation is attempted in the wrong state. It matches
// ErrInvalidStateTransition under errors.Is.
type StateError struct {
	Op    string
	State State
	Want  State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: session is %v, must be %v", e.Op, e.State, e.Want)
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidStateTransition
}

// Session is one run of the proof between a prover and a verifier, holding both sides' values.
// A Session must not be used from multiple goroutines; concurrent proofs each get their own.
type Session struct {
	policy Policy
	tester *primality.Tester
	state  State

	mod   *modarith.Modulus // m
	order *modarith.Modulus // m-1, the exponent group order

	x, y num.Int
	k, r num.Int
	e, s num.Int

	nonInteractive bool
	report         *SetupReport
	verification   *Verification
}

// NewSession starts a session under policy. Use DefaultPolicy for the default secret minimum; a
// zero MinSecret disables the small secret check.
func NewSession(policy Policy) *Session {
	return &Session{policy: policy, tester: policy.Tester()}
}

func (s *Session) expect(op string, want State) error {
	if s.state != want {
		return &StateError{Op: op, State: s.state, Want: want}
	}
	return nil
}

func (s *Session) advance(to State) {
	Logger.Tracef("zkp session: %v -> %v", s.state, to)
	s.state = to
}

// Configure fixes the modulus m and the secret x and audits them. A failed Configure leaves the
// session unconfigured, so the caller can retry with new parameters.
func (s *Session) Configure(m, x num.Int) (*SetupReport, error) {
	if err := s.expect("configure", Unconfigured); err != nil {
		return nil, err
	}
	if m.Cmp(num.NewInt(2)) < 0 {
		return nil, errors.Errorf("modulus %v leaves an empty exponent group: %w", m, modarith.ErrDivisionByZero)
	}
	if x.Cmp(m) >= 0 {
		return nil, ErrSecretTooLarge
	}

	report := &SetupReport{
		Modulus: AuditModulus(m, s.tester),
		Secret:  AuditSecret(x, s.policy.MinSecret),
	}
	if !report.Modulus.Prime {
		if s.policy.StrictModulus {
			return nil, errors.Errorf("modulus %v: %w", m, ErrCompositeModulus)
		}
		report.Warnings = append(report.Warnings, WarnCompositeModulus)
	}
	if report.Modulus.Strength == Weak {
		if s.policy.StrictModulus {
			return nil, errors.Errorf("modulus of %d bits: %w", report.Modulus.Bits, ErrWeakModulus)
		}
		report.Warnings = append(report.Warnings, WarnWeakModulus)
	}
	if report.Secret.TooSmall {
		if s.policy.StrictSecret {
			return nil, errors.Errorf("secret below %v: %w", s.policy.MinSecret, ErrWeakSecret)
		}
		report.Warnings = append(report.Warnings, WarnSmallSecret)
	}
	for _, w := range report.Warnings {
		Logger.Warn("zkp setup: ", string(w))
	}

	// m >= 2, so neither modulus is zero
	s.mod, _ = modarith.NewModulus(m)
	s.order, _ = modarith.NewModulus(m.SubWrap(num.One))
	s.x = x
	s.report = report
	s.advance(Configured)
	return report, nil
}

// DerivePublicKey computes the public identity y = g^x mod m.
func (s *Session) DerivePublicKey() (num.Int, error) {
	if err := s.expect("derive public key", Configured); err != nil {
		return num.Zero, err
	}
	s.y = s.mod.Exp(Generator, s.x)
	s.advance(PublicKeyDerived)
	return s.y, nil
}

// Commit computes the commitment R = g^k mod m for the session secret k, which must be in
// [0, m). The caller is responsible for k being fresh and unpredictable.
func (s *Session) Commit(k num.Int) (num.Int, error) {
	if err := s.expect("commit", PublicKeyDerived); err != nil {
		return num.Zero, err
	}
	if k.Cmp(s.mod.Value()) >= 0 {
		return num.Zero, ErrSessionSecretOutOfRange
	}
	s.k = k
	s.r = s.mod.Exp(Generator, k)
	s.advance(Committed)
	return s.r, nil
}

// CommitRandom commits to a session secret drawn uniformly from [0, m) using rnd (crypto/rand
// when nil).
func (s *Session) CommitRandom(rnd io.Reader) (num.Int, error) {
	if err := s.expect("commit", PublicKeyDerived); err != nil {
		return num.Zero, err
	}
	if rnd == nil {
		rnd = rand.Reader
	}
	k, err := num.RandInt(rnd, s.mod.Value())
	if err != nil {
		return num.Zero, err
	}
	return s.Commit(k)
}

// Challenge records the verifier's challenge e. Any value is accepted; values at or above
// m-1 are only reduced when the response is computed.
func (s *Session) Challenge(e num.Int) error {
	if err := s.expect("challenge", Committed); err != nil {
		return err
	}
	if e.Cmp(s.order.Value()) >= 0 {
		Logger.Debugf("zkp challenge %v is not below the group order %v", e, s.order.Value())
	}
	s.e = e
	s.advance(Challenged)
	return nil
}

// SelfChallenge derives the challenge from the public values (m, g, y, R) with FiatShamir,
// making the proof non-interactive.
func (s *Session) SelfChallenge() (num.Int, error) {
	if err := s.expect("challenge", Committed); err != nil {
		return num.Zero, err
	}
	e := FiatShamir(s.mod.Value(), Generator, s.y, s.r)
	s.nonInteractive = true
	return e, s.Challenge(e)
}

// Respond computes the response s = (k + e*x) mod (m-1).
func (s *Session) Respond() (num.Int, error) {
	if err := s.expect("respond", Challenged); err != nil {
		return num.Zero, err
	}
	s.s = s.order.Add(s.k, s.order.Mul(s.e, s.x))
	s.advance(Responded)
	return s.s, nil
}

// Verify checks g^s = R*y^e mod m. It is evaluated exactly once per session.
func (s *Session) Verify() (bool, error) {
	if err := s.expect("verify", Responded); err != nil {
		return false, err
	}
	v, err := VerifyResponse(s.mod.Value(), Generator, s.y, s.r, s.e, s.s)
	if err != nil {
		return false, err
	}
	s.verification = v
	s.advance(Verified)
	if !v.OK {
		Logger.Debug("zkp verification failed")
	}
	return v.OK, nil
}

// Transcript returns the public values of the session once the response is known.
func (s *Session) Transcript() (*Transcript, error) {
	if s.state < Responded {
		return nil, &StateError{Op: "transcript", State: s.state, Want: Responded}
	}
	return &Transcript{
		Modulus:        s.mod.Value(),
		Generator:      Generator,
		PublicKey:      s.y,
		Commitment:     s.r,
		Challenge:      s.e,
		Response:       s.s,
		NonInteractive: s.nonInteractive,
	}, nil
}

func (s *Session) State() State { return s.state }

// Report returns the audit of the last successful Configure, or nil.
func (s *Session) Report() *SetupReport { return s.report }

// Verification returns the outcome of Verify, or nil before it ran.
func (s *Session) Verification() *Verification { return s.verification }

func (s *Session) Modulus() num.Int {
	if s.mod == nil {
		return num.Zero
	}
	return s.mod.Value()
}

func (s *Session) Generator() num.Int      { return Generator }
func (s *Session) PublicKey() num.Int      { return s.y }
func (s *Session) Commitment() num.Int     { return s.r }
func (s *Session) ChallengeValue() num.Int { return s.e }
func (s *Session) Response() num.Int       { return s.s }

// FiatShamir hashes the public values of a proof into a challenge.
func FiatShamir(m, g, y, r num.Int) num.Int {
	return common.HashCommit(m, g, y, r)
}

// RandomChallenge draws a verifier challenge uniformly from [0, m-1).
func RandomChallenge(rnd io.Reader, m num.Int) (num.Int, error) {
	if m.Cmp(num.NewInt(2)) < 0 {
		return num.Zero, errors.Errorf("modulus %v leaves an empty exponent group: %w", m, modarith.ErrDivisionByZero)
	}
	return num.RandInt(rnd, m.SubWrap(num.One))
}

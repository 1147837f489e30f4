package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/go-errors/errors"
	"github.com/zkpauth/zkp"
	"github.com/zkpauth/zkp/modarith"
	"github.com/zkpauth/zkp/num"
)

const banner = `  ____________________________________________________________
 |                                                            |
 |             ______  _  __ _____                            |
 |            |___  / | |/ /|  __ \                           |
 |               / /  | ' / | |__) |                          |
 |              / /   |  <  |  ___/                           |
 |             / /__  | . \ | |                               |
 |            /_____| |_|\_\|_|                               |
 |                                                            |
 |   A U T H E N T I C A T I O N   S Y S T E M                |
 |____________________________________________________________|
`

// prompter reads whitespace separated answers, so that answers may be given one per line or
// all at once.
type prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanWords)
	return &prompter{scanner: scanner, out: out}
}

func (p *prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", errors.WrapPrefix(err, "reading input", 0)
		}
		return "", errors.Errorf("reading input: %w", io.ErrUnexpectedEOF)
	}
	return p.scanner.Text(), nil
}

// askInt asks until the answer fits in 128 bits. Non-digit characters are ignored.
func (p *prompter) askInt(prompt string) (num.Int, error) {
	for {
		answer, err := p.ask(prompt)
		if err != nil {
			return num.Zero, err
		}
		v, err := num.ParseDecimal(answer)
		if errors.Is(err, num.ErrInputTooLarge) {
			fmt.Fprintf(p.out, "  [!] ERROR: %v\n", err)
			continue
		}
		return v, err
	}
}

func (p *prompter) header(title string) {
	fmt.Fprintf(p.out, "\n   %s\n  %s\n", title, strings.Repeat("-", 60))
}

func (p *prompter) section(title string) {
	fmt.Fprintf(p.out, "\n  --- %s ---\n", title)
}

// runDemo walks through the protocol with the user playing both prover and verifier.
func runDemo(in io.Reader, out io.Writer, policy zkp.Policy) error {
	p := newPrompter(in, out)
	fmt.Fprint(out, banner)

	s, err := configure(p, policy)
	if err != nil {
		return err
	}

	y, err := s.DerivePublicKey()
	if err != nil {
		return err
	}
	p.section("CALCULATION: PUBLIC IDENTITY")
	fmt.Fprintln(out, "  Formula: y = g^x mod m")
	fmt.Fprintf(out, "  Step:    %v ^ <secret> mod %v\n", s.Generator(), s.Modulus())
	fmt.Fprintf(out, "  Public Identity (y) generated: %v\n", y)

	p.header("2: PROVER'S COMMITMENT")
	var r num.Int
	for {
		k, err := p.askInt("  Prover, enter session secret (k): ")
		if err != nil {
			return err
		}
		r, err = s.Commit(k)
		if errors.Is(err, zkp.ErrSessionSecretOutOfRange) {
			fmt.Fprintln(out, "  CRITICAL ERROR: k must be < m!")
			continue
		}
		if err != nil {
			return err
		}
		p.section("CALCULATION: PROVER'S COMMITMENT")
		fmt.Fprintln(out, "  Formula: R = g^k mod m")
		fmt.Fprintf(out, "  Step:    %v ^ %v mod %v\n", s.Generator(), k, s.Modulus())
		fmt.Fprintf(out, "  Commitment (R) generated: %v\n", r)
		break
	}

	p.header("3: VERIFIER'S CHALLENGE")
	fmt.Fprintf(out, "  The Prover has sent Commitment: %v\n", r)
	e, err := p.askInt("  Verifier, enter Challenge (e): ")
	if err != nil {
		return err
	}
	if err = s.Challenge(e); err != nil {
		return err
	}

	p.header("4: PROVER'S RESPONSE")
	resp, err := s.Respond()
	if err != nil {
		return err
	}
	p.section("CALCULATION: PROVER'S RESPONSE")
	fmt.Fprintln(out, "  Formula: s = (k + e*x) mod (m-1)")
	fmt.Fprintf(out, "  Response (s) to be sent: %v\n", resp)

	p.header("5: FINAL VERIFICATION")
	ok, err := s.Verify()
	if err != nil {
		return err
	}
	v := s.Verification()
	fmt.Fprintf(out, "  Left Hand Side (g^s mod m):       %v\n", v.Left)
	fmt.Fprintf(out, "  Right Hand Side (R * y^e mod m):  %v\n", v.Right)
	fmt.Fprintf(out, "\n  %s\n", strings.Repeat("=", 60))
	if ok {
		fmt.Fprintln(out, "   RESULT: SUCCESS - Identity Verified!")
	} else {
		fmt.Fprintln(out, "   RESULT: FAILED")
	}
	fmt.Fprintf(out, "  %s\n", strings.Repeat("=", 60))
	return nil
}

// configure repeats the configuration screen until the parameters are accepted and the user
// chooses to proceed.
func configure(p *prompter, policy zkp.Policy) (*zkp.Session, error) {
	tester := policy.Tester()
	for {
		p.header("1: SYSTEM CONFIGURATION")
		m, err := p.askInt("  [INPUT] Enter Prime Modulus (m): ")
		if err != nil {
			return nil, err
		}

		audit := zkp.AuditModulus(m, tester)
		p.section("MODULUS STRENGTH AUDIT")
		fmt.Fprintf(p.out, "  [+] Size: %d bits\n", audit.Bits)
		fmt.Fprintf(p.out, "  [+] Brute Force Time: %.1f seconds\n", audit.BruteForceSeconds)
		fmt.Fprintf(p.out, "  [+] Status: %v\n", audit.Strength)
		switch {
		case !audit.Prime:
			fmt.Fprintln(p.out, "  [!] WARNING: Modulus is COMPOSITE!")
			fmt.Fprintln(p.out, "      Note: ZKP requires a Prime Modulus for math stability.")
		case audit.Deterministic:
			fmt.Fprintln(p.out, "  [OK] AUDIT PASSED: Modulus is Prime.")
		default:
			fmt.Fprintln(p.out, "  [OK] AUDIT PASSED: Modulus is probably Prime.")
		}

		x, err := p.askInt("\n  [INPUT] Enter 128-bit Secret Key (x): ")
		if err != nil {
			return nil, err
		}

		p.section("SECRET STRENGTH AUDIT")
		s := zkp.NewSession(policy)
		report, err := s.Configure(m, x)
		switch {
		case errors.Is(err, zkp.ErrSecretTooLarge):
			fmt.Fprintln(p.out, "  CRITICAL ERROR: x must be < m!")
			continue
		case errors.Is(err, modarith.ErrDivisionByZero):
			fmt.Fprintln(p.out, "  CRITICAL ERROR: m must be at least 2!")
			continue
		case err != nil:
			fmt.Fprintf(p.out, "  CRITICAL ERROR: %v\n", err)
			continue
		}

		fmt.Fprintln(p.out, "  [+] DATA INTEGRITY: x < m (No Collisions).")
		fmt.Fprintf(p.out, "  [+] Secret Complexity: %v combinations.\n", report.Secret.Combinations)
		fmt.Fprintf(p.out, "  [+] Time to Guess Secret: %.6f seconds\n", report.Secret.GuessSeconds)
		if report.Secret.TooSmall {
			fmt.Fprintln(p.out, "  [!] WARNING: Your secret is too small!")
		}

		choice, err := p.ask("\n  Proceed with these parameters? (1: Yes / 2: Re-enter): ")
		if err != nil {
			return nil, err
		}
		if choice == "1" {
			return s, nil
		}
	}
}

package main

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"
	"github.com/zkpauth/zkp"
	"github.com/zkpauth/zkp/cbor"
	"github.com/zkpauth/zkp/internal/common"
	"github.com/zkpauth/zkp/num"
	"github.com/zkpauth/zkp/safeprime"
	"github.com/zkpauth/zkp/signed"
)

var (
	output io.Writer = os.Stdout
	input  io.Reader = os.Stdin
)

var verboseFlag = &cli.BoolFlag{
	Name:    "verbose",
	Aliases: []string{"V"},
	Usage:   "If set, verbosity is at the debug level",
}

var configFlag = &cli.StringFlag{
	Name:  "config",
	Usage: "TOML file holding the setup policy",
}

var strictModulusFlag = &cli.BoolFlag{
	Name:  "strict-modulus",
	Usage: "Reject composite moduli and moduli that can be searched exhaustively",
}

var strictSecretFlag = &cli.BoolFlag{
	Name:  "strict-secret",
	Usage: "Reject secrets smaller than --min-secret",
}

var minSecretFlag = &cli.StringFlag{
	Name:  "min-secret",
	Usage: "Secrets below this value are reported as too small",
}

var witnessesFlag = &cli.Int64SliceFlag{
	Name:  "witnesses",
	Usage: "Miller-Rabin witnesses used to test the modulus",
}

var randomRoundsFlag = &cli.IntFlag{
	Name:  "random-rounds",
	Usage: "Additional Miller-Rabin rounds with random witnesses",
}

var modulusFlag = &cli.StringFlag{
	Name:     "modulus",
	Aliases:  []string{"m"},
	Usage:    "Prime modulus m, in decimal",
	Required: true,
}

var secretFlag = &cli.StringFlag{
	Name:     "secret",
	Aliases:  []string{"x"},
	Usage:    "Secret x with 0 <= x < m, in decimal",
	Required: true,
}

var sessionSecretFlag = &cli.StringFlag{
	Name:  "session-secret",
	Usage: "Session secret k; drawn at random when not given",
}

var challengeFlag = &cli.StringFlag{
	Name:  "challenge",
	Usage: "Verifier challenge e; derived from the commitment (Fiat-Shamir) when not given",
}

var outFlag = &cli.StringFlag{
	Name:  "out",
	Usage: "Write the CBOR transcript to this file",
}

var signKeyFlag = &cli.StringFlag{
	Name:  "sign-key",
	Usage: "PEM private key with which the verifier signs the accepted transcript",
}

var publicKeyFlag = &cli.StringFlag{
	Name:  "public-key",
	Usage: "PEM public key of the verifier that signed the transcript",
}

var privateOutFlag = &cli.StringFlag{
	Name:     "private",
	Usage:    "Write the private key to this file",
	Required: true,
}

var publicOutFlag = &cli.StringFlag{
	Name:     "public",
	Usage:    "Write the public key to this file",
	Required: true,
}

var bitsFlag = &cli.IntFlag{
	Name:  "bits",
	Usage: "Size of the safe prime in bits (3 to 128)",
	Value: 64,
}

var countFlag = &cli.IntFlag{
	Name:  "count",
	Usage: "Number of safe primes to generate",
	Value: 1,
}

func toArray(flags ...cli.Flag) []cli.Flag {
	return flags
}

var appCommands = []*cli.Command{
	{
		Name:   "demo",
		Usage:  "Walk through the five protocol screens interactively (the default).\n",
		Action: demoCmd,
	},
	{
		Name: "prove",
		Usage: "Run the protocol non-interactively and print its transcript. Without " +
			"--challenge the challenge is the Fiat-Shamir hash of the commitment.\n",
		Flags:  toArray(modulusFlag, secretFlag, sessionSecretFlag, challengeFlag, outFlag, signKeyFlag),
		Action: proveCmd,
	},
	{
		Name:      "verify",
		Usage:     "Verify a CBOR transcript written by prove.\n",
		ArgsUsage: "<transcript file>",
		Flags:     toArray(publicKeyFlag),
		Action:    verifyCmd,
	},
	{
		Name:   "keygen",
		Usage:  "Generate an ECDSA key pair for signing accepted transcripts.\n",
		Flags:  toArray(privateOutFlag, publicOutFlag),
		Action: keygenCmd,
	},
	{
		Name:      "prime",
		Usage:     "Test a number for primality with the configured witnesses.\n",
		ArgsUsage: "<number>",
		Action:    primeCmd,
	},
	{
		Name:   "safeprime",
		Usage:  "Generate safe primes, suitable as modulus, on all CPU cores.\n",
		Flags:  toArray(bitsFlag, countFlag),
		Action: safePrimeCmd,
	},
}

// CLI runs the zkauth app
func CLI() *cli.App {
	app := cli.NewApp()
	app.Name = "zkauth"
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(output, "zkauth %v (date %v, commit %v)\n", version, buildDate, gitCommit)
	}
	app.ExitErrHandler = func(context *cli.Context, err error) {
		// override to prevent the default behavior of calling os.Exit(1), so that tests can run
		// multiple commands
	}
	app.Version = version
	app.Usage = "zero-knowledge proof of a discrete logarithm on 128-bit integers"
	app.Commands = appCommands
	app.Flags = toArray(verboseFlag, configFlag, strictModulusFlag, strictSecretFlag, minSecretFlag,
		witnessesFlag, randomRoundsFlag)
	app.Before = setupLogging
	app.Action = demoCmd
	return app
}

func setupLogging(c *cli.Context) error {
	if c.Bool(verboseFlag.Name) {
		zkp.Logger.SetLevel(logrus.DebugLevel)
	} else {
		// the demo prints every setup warning itself
		zkp.Logger.SetLevel(logrus.ErrorLevel)
	}
	return nil
}

func demoCmd(c *cli.Context) error {
	policy, err := contextToPolicy(c)
	if err != nil {
		return err
	}
	return runDemo(input, output, policy)
}

func parseFlag(c *cli.Context, flag *cli.StringFlag) (num.Int, error) {
	v, err := num.Parse(c.String(flag.Name))
	if err != nil {
		return num.Zero, errors.WrapPrefix(err, "--"+flag.Name, 0)
	}
	return v, nil
}

func proveCmd(c *cli.Context) error {
	policy, err := contextToPolicy(c)
	if err != nil {
		return err
	}
	m, err := parseFlag(c, modulusFlag)
	if err != nil {
		return err
	}
	x, err := parseFlag(c, secretFlag)
	if err != nil {
		return err
	}

	s := zkp.NewSession(policy)
	report, err := s.Configure(m, x)
	if err != nil {
		return err
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(output, "warning: %s\n", w)
	}
	if _, err = s.DerivePublicKey(); err != nil {
		return err
	}

	if c.IsSet(sessionSecretFlag.Name) {
		k, err := parseFlag(c, sessionSecretFlag)
		if err != nil {
			return err
		}
		if _, err = s.Commit(k); err != nil {
			return err
		}
	} else if _, err = s.CommitRandom(policy.Rand); err != nil {
		return err
	}

	if c.IsSet(challengeFlag.Name) {
		e, err := parseFlag(c, challengeFlag)
		if err != nil {
			return err
		}
		if err = s.Challenge(e); err != nil {
			return err
		}
	} else if _, err = s.SelfChallenge(); err != nil {
		return err
	}

	if _, err = s.Respond(); err != nil {
		return err
	}
	t, err := s.Transcript()
	if err != nil {
		return err
	}

	if path := c.String(outFlag.Name); path != "" {
		var sk *ecdsa.PrivateKey
		if keyPath := c.String(signKeyFlag.Name); keyPath != "" {
			ok, err := s.Verify()
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("refusing to sign a transcript that does not verify")
			}
			if sk, err = readPrivateKey(keyPath); err != nil {
				return err
			}
		}
		if err = writeTranscript(path, t, sk); err != nil {
			return err
		}
	}
	enc := json.NewEncoder(output)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// writeTranscript writes t as CBOR, or as a signed message holding the CBOR when sk is set.
func writeTranscript(path string, t *zkp.Transcript, sk *ecdsa.PrivateKey) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapPrefix(err, "creating transcript file", 0)
	}
	if sk == nil {
		err = cbor.NewEncoder(f).Encode(t)
	} else {
		var msg signed.Message
		if msg, err = signed.MarshalSign(sk, t); err == nil {
			_, err = f.Write(msg)
		}
	}
	if err != nil {
		common.Close(f)
		return errors.WrapPrefix(err, "writing transcript", 0)
	}
	return f.Close()
}

// readTranscript reads a transcript written by writeTranscript. When pk is set the transcript
// must be signed by it.
func readTranscript(path string, pk *ecdsa.PublicKey) (*zkp.Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapPrefix(err, "opening transcript file", 0)
	}
	defer common.Close(f)

	t := new(zkp.Transcript)
	if pk == nil {
		err = cbor.NewDecoder(f).Decode(t)
	} else {
		var msg []byte
		if msg, err = io.ReadAll(f); err == nil {
			err = signed.UnmarshalVerify(pk, msg, t)
		}
	}
	if err != nil {
		return nil, errors.WrapPrefix(err, "decoding transcript", 0)
	}
	return t, nil
}

func readPrivateKey(path string) (*ecdsa.PrivateKey, error) {
	bts, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapPrefix(err, "reading private key", 0)
	}
	return signed.UnmarshalPemPrivateKey(bts)
}

func readPublicKey(path string) (*ecdsa.PublicKey, error) {
	bts, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapPrefix(err, "reading public key", 0)
	}
	return signed.UnmarshalPemPublicKey(bts)
}

func keygenCmd(c *cli.Context) error {
	sk, err := signed.GenerateKey()
	if err != nil {
		return err
	}
	skPem, err := signed.MarshalPemPrivateKey(sk)
	if err != nil {
		return err
	}
	pkPem, err := signed.MarshalPemPublicKey(&sk.PublicKey)
	if err != nil {
		return err
	}
	if err = os.WriteFile(c.String(privateOutFlag.Name), skPem, 0600); err != nil {
		return errors.WrapPrefix(err, "writing private key", 0)
	}
	if err = os.WriteFile(c.String(publicOutFlag.Name), pkPem, 0644); err != nil {
		return errors.WrapPrefix(err, "writing public key", 0)
	}
	fmt.Fprintf(output, "Generated key pair %s, %s\n", c.String(privateOutFlag.Name), c.String(publicOutFlag.Name))
	return nil
}

func verifyCmd(c *cli.Context) error {
	if !c.Args().Present() {
		return errors.New("missing transcript file argument")
	}
	var pk *ecdsa.PublicKey
	if keyPath := c.String(publicKeyFlag.Name); keyPath != "" {
		var err error
		if pk, err = readPublicKey(keyPath); err != nil {
			return err
		}
	}
	t, err := readTranscript(c.Args().First(), pk)
	if err != nil {
		return err
	}
	v, err := t.Verify()
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "Left Hand Side (g^s mod m):       %v\n", v.Left)
	fmt.Fprintf(output, "Right Hand Side (R * y^e mod m):  %v\n", v.Right)
	if !v.OK {
		return errors.New("verification failed")
	}
	fmt.Fprintln(output, "RESULT: SUCCESS - Identity Verified!")
	return nil
}

func primeCmd(c *cli.Context) error {
	if !c.Args().Present() {
		return errors.New("missing number argument")
	}
	n, err := num.Parse(c.Args().First())
	if err != nil {
		return err
	}
	policy, err := contextToPolicy(c)
	if err != nil {
		return err
	}
	audit := zkp.AuditModulus(n, policy.Tester())
	switch {
	case !audit.Prime:
		fmt.Fprintf(output, "%v is composite\n", n)
	case audit.Deterministic:
		fmt.Fprintf(output, "%v is prime\n", n)
	default:
		fmt.Fprintf(output, "%v is probably prime\n", n)
	}
	return nil
}

func safePrimeCmd(c *cli.Context) error {
	bits, count := c.Int(bitsFlag.Name), c.Int(countFlag.Name)
	stop := make(chan struct{})
	defer close(stop)

	ints, errs := safeprime.GenerateConcurrent(bits, nil, stop)
	for i := 0; i < count; i++ {
		select {
		case p := <-ints:
			fmt.Fprintln(output, p)
		case err := <-errs:
			return err
		}
	}
	return nil
}

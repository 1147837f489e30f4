package main

import (
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-errors/errors"
	cli "github.com/urfave/cli/v2"
	"github.com/zkpauth/zkp"
	"github.com/zkpauth/zkp/num"
)

// policyFile is the TOML form of zkp.Policy. min_secret is a string because TOML integers are
// limited to 64 bits.
type policyFile struct {
	StrictModulus       bool     `toml:"strict_modulus"`
	StrictSecret        bool     `toml:"strict_secret"`
	MinSecret           string   `toml:"min_secret"`
	Witnesses           []uint64 `toml:"witnesses"`
	RandomWitnessRounds int      `toml:"random_witness_rounds"`
}

func (f *policyFile) apply(p *zkp.Policy) error {
	p.StrictModulus = f.StrictModulus
	p.StrictSecret = f.StrictSecret
	if f.MinSecret != "" {
		min, err := num.Parse(f.MinSecret)
		if err != nil {
			return errors.WrapPrefix(err, "min_secret", 0)
		}
		p.MinSecret = min
	}
	if len(f.Witnesses) > 0 {
		p.Witnesses = f.Witnesses
	}
	p.RandomWitnessRounds = f.RandomWitnessRounds
	return nil
}

// loadPolicyFile reads a policy file on top of the default policy. Unknown keys are an error.
func loadPolicyFile(path string) (zkp.Policy, error) {
	policy := zkp.DefaultPolicy()
	var f policyFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return policy, errors.WrapPrefix(err, "reading policy file", 0)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return policy, errors.Errorf("unknown keys in policy file %s: %s", path, strings.Join(keys, ", "))
	}
	if err = f.apply(&policy); err != nil {
		return policy, err
	}
	return policy, nil
}

// contextToPolicy builds the policy from the --config file, if any, overridden by flags.
func contextToPolicy(c *cli.Context) (zkp.Policy, error) {
	policy := zkp.DefaultPolicy()
	if path := c.String(configFlag.Name); path != "" {
		var err error
		if policy, err = loadPolicyFile(path); err != nil {
			return policy, err
		}
	}

	if c.IsSet(strictModulusFlag.Name) {
		policy.StrictModulus = c.Bool(strictModulusFlag.Name)
	}
	if c.IsSet(strictSecretFlag.Name) {
		policy.StrictSecret = c.Bool(strictSecretFlag.Name)
	}
	if c.IsSet(minSecretFlag.Name) {
		min, err := num.Parse(c.String(minSecretFlag.Name))
		if err != nil {
			return policy, errors.WrapPrefix(err, minSecretFlag.Name, 0)
		}
		policy.MinSecret = min
	}
	if c.IsSet(witnessesFlag.Name) {
		policy.Witnesses = nil
		for _, w := range c.Int64Slice(witnessesFlag.Name) {
			if w < 2 {
				return policy, errors.Errorf("witness %d must be at least 2", w)
			}
			policy.Witnesses = append(policy.Witnesses, uint64(w))
		}
	}
	if c.IsSet(randomRoundsFlag.Name) {
		policy.RandomWitnessRounds = c.Int(randomRoundsFlag.Name)
	}
	return policy, nil
}

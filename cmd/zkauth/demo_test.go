package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zkpauth/zkp"
)

func demo(t *testing.T, policy zkp.Policy, answers ...string) (string, error) {
	var out bytes.Buffer
	err := runDemo(strings.NewReader(strings.Join(answers, "\n")+"\n"), &out, policy)
	return out.String(), err
}

func TestDemoScenario(t *testing.T) {
	out, err := demo(t, zkp.DefaultPolicy(), "23", "6", "1", "3", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "[+] Size: 5 bits")
	assert.Contains(t, out, "[+] Status: WEAK")
	assert.Contains(t, out, "AUDIT PASSED: Modulus is Prime.")
	assert.Contains(t, out, "WARNING: Your secret is too small!")
	assert.Contains(t, out, "Public Identity (y) generated: 18")
	assert.Contains(t, out, "Commitment (R) generated: 8")
	assert.Contains(t, out, "The Prover has sent Commitment: 8")
	assert.Contains(t, out, "Response (s) to be sent: 11")
	assert.Contains(t, out, "Left Hand Side (g^s mod m):       1")
	assert.Contains(t, out, "Right Hand Side (R * y^e mod m):  1")
	assert.Contains(t, out, "RESULT: SUCCESS - Identity Verified!")
	assert.Equal(t, 1, strings.Count(out, "1: SYSTEM CONFIGURATION"))
}

func TestDemoReenter(t *testing.T) {
	out, err := demo(t, zkp.DefaultPolicy(),
		"23", "23", // x >= m
		"1", "0", // m < 2
		"21", "5", "2", // composite, re-enter by choice
		"23", "6", "1", "3", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "CRITICAL ERROR: x must be < m!")
	assert.Contains(t, out, "CRITICAL ERROR: m must be at least 2!")
	assert.Contains(t, out, "WARNING: Modulus is COMPOSITE!")
	assert.Equal(t, 4, strings.Count(out, "1: SYSTEM CONFIGURATION"))
	assert.Contains(t, out, "RESULT: SUCCESS")
}

func TestDemoStrictPolicy(t *testing.T) {
	policy := zkp.DefaultPolicy()
	policy.StrictSecret = true
	out, err := demo(t, policy, "2305843009213693951", "6", "2305843009213693951", "123456789", "1", "3", "5")
	require.NoError(t, err)
	assert.Contains(t, out, zkp.ErrWeakSecret.Error())
	assert.Contains(t, out, "[+] Status: STRONG")
	assert.Contains(t, out, "RESULT: SUCCESS")
}

func TestDemoRetriesSessionSecretAndInput(t *testing.T) {
	out, err := demo(t, zkp.DefaultPolicy(),
		"23", "6", "1",
		"23", // k >= m
		"340282366920938463463374607431768211456", // too large
		"k=3", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "CRITICAL ERROR: k must be < m!")
	assert.Contains(t, out, "[!] ERROR:")
	assert.Contains(t, out, "Commitment (R) generated: 8")
	assert.Contains(t, out, "RESULT: SUCCESS")
}

func TestDemoFailedVerificationIsNotAnError(t *testing.T) {
	// g = 2 lies outside the group modulo 2
	out, err := demo(t, zkp.DefaultPolicy(), "2", "1", "1", "0", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "RESULT: FAILED")
}

func TestDemoEOF(t *testing.T) {
	_, err := demo(t, zkp.DefaultPolicy(), "23", "6")
	require.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

// Package zkp implements the interactive Schnorr proof of knowledge of a discrete logarithm: a
// prover convinces a verifier that it knows x such that y = g^x mod m, without revealing x.
//
// A Session sequences the four-message protocol. Configure fixes the modulus m and the secret x
// and audits both; DerivePublicKey computes y = g^x; Commit publishes R = g^k for a fresh session
// secret k; Challenge accepts the verifier's e; Respond computes s = k + e*x mod (m-1); Verify
// checks g^s = R*y^e mod m. Operations out of this order fail with ErrInvalidStateTransition.
//
// All arithmetic is done on 128-bit unsigned integers (package num) by the overflow-safe kernel
// in package modarith. Primality of the modulus is checked with package primality, but only
// advisory unless the Policy says otherwise.
//
// The public values of a run can be exported as a Transcript, which can be verified offline and
// is encoded as deterministic CBOR. See session_test.go for example usage.
package zkp

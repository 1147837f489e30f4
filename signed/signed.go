// Package signed lets a verifier attest to the transcripts it accepted. It contains
// (1) PEM handling of ECDSA P-256 keys, and signing and verifying byte slices with them;
// (2) functions for marshaling values to signed CBOR bytes, and verifying and unmarshaling signed
// bytes back to values.
package signed

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"math/big"

	"github.com/go-errors/errors"
	"github.com/zkpauth/zkp/cbor"
)

var ErrInvalidSignature = errors.New("ecdsa signature was invalid")

type (
	// Message is a signed message, created and signed by MarshalSign, and verified and parsed
	// by UnmarshalVerify.
	Message []byte

	// message-signature tuple
	tuple struct {
		Msg []byte `cbor:"1,keyasint"`
		Sig []byte `cbor:"2,keyasint"`
	}
)

func GenerateKey() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
}

func pemBlock(bts []byte, typ string) ([]byte, error) {
	block, _ := pem.Decode(bts)
	if block == nil {
		return nil, errors.Errorf("no PEM data found, expected %s", typ)
	}
	if block.Type != typ {
		return nil, errors.Errorf("PEM block is of type %s, expected %s", block.Type, typ)
	}
	return block.Bytes, nil
}

func UnmarshalPemPublicKey(bts []byte) (*ecdsa.PublicKey, error) {
	der, err := pemBlock(bts, "PUBLIC KEY")
	if err != nil {
		return nil, err
	}
	genericPk, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, errors.WrapPrefix(err, "parsing public key", 0)
	}
	pk, ok := genericPk.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("invalid ecdsa public key")
	}
	return pk, nil
}

func MarshalPemPublicKey(pk *ecdsa.PublicKey) ([]byte, error) {
	bts, err := x509.MarshalPKIXPublicKey(pk)
	if err != nil {
		return nil, errors.WrapPrefix(err, "Failed to serialize public key", 0)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: bts}), nil
}

func UnmarshalPemPrivateKey(bts []byte) (*ecdsa.PrivateKey, error) {
	der, err := pemBlock(bts, "EC PRIVATE KEY")
	if err != nil {
		return nil, err
	}
	sk, err := x509.ParseECPrivateKey(der)
	if err != nil {
		return nil, errors.WrapPrefix(err, "parsing private key", 0)
	}
	return sk, nil
}

func MarshalPemPrivateKey(sk *ecdsa.PrivateKey) ([]byte, error) {
	bts, err := x509.MarshalECPrivateKey(sk)
	if err != nil {
		return nil, errors.WrapPrefix(err, "Failed to serialize private key", 0)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: bts}), nil
}

// Sign signs the SHA-256 hash of bts and returns the ASN.1 encoded (r, s) pair.
func Sign(sk *ecdsa.PrivateKey, bts []byte) ([]byte, error) {
	hash := sha256.Sum256(bts)
	r, s, err := ecdsa.Sign(rand.Reader, sk, hash[:])
	if err != nil {
		return nil, err
	}
	return asn1.Marshal([]*big.Int{r, s})
}

func Verify(pk *ecdsa.PublicKey, bts []byte, signature []byte) error {
	var ints []*big.Int
	if _, err := asn1.Unmarshal(signature, &ints); err != nil {
		return errors.WrapPrefix(err, "decoding signature", 0)
	}
	if len(ints) != 2 {
		return ErrInvalidSignature
	}
	hash := sha256.Sum256(bts)
	if !ecdsa.Verify(pk, hash[:], ints[0], ints[1]) {
		return ErrInvalidSignature
	}
	return nil
}

// MarshalSign encodes message as deterministic CBOR, signs the resulting bytes, and returns
// signed message bytes suitable for verifying with UnmarshalVerify.
func MarshalSign(sk *ecdsa.PrivateKey, message interface{}) (Message, error) {
	bts, err := cbor.Marshal(message)
	if err != nil {
		return nil, err
	}
	signature, err := Sign(sk, bts)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(&tuple{bts, signature})
}

// UnmarshalVerify verifies the signature of a Message created by MarshalSign, and decodes the
// message bytes into dst.
func UnmarshalVerify(pk *ecdsa.PublicKey, signed Message, dst interface{}) error {
	var tmp tuple
	if err := cbor.Unmarshal(signed, &tmp); err != nil {
		return err
	}
	if err := Verify(pk, tmp.Msg, tmp.Sig); err != nil {
		return err
	}
	return cbor.Unmarshal(tmp.Msg, dst)
}

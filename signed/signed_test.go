package signed

import (
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/require"
	"github.com/zkpauth/zkp/num"
)

// test struct for signing, verifying and (un)marshaling
type test struct {
	X string
	Y num.Int
	Z int
	T *test // allow recursion
}

func TestSigned(t *testing.T) {
	sk, err := GenerateKey()
	require.NoError(t, err)

	var (
		before = test{X: "hello", Y: num.Max.SubWrap(num.NewInt(158)), Z: 12, T: &test{X: "world"}}
		after  test
	)

	signedmsg, err := MarshalSign(sk, before)
	require.NoError(t, err)

	require.NoError(t, UnmarshalVerify(&sk.PublicKey, signedmsg, &after))
	require.Equal(t, before, after)
}

func TestWrongKey(t *testing.T) {
	sk, err := GenerateKey()
	require.NoError(t, err)
	other, err := GenerateKey()
	require.NoError(t, err)

	signedmsg, err := MarshalSign(sk, test{X: "hello"})
	require.NoError(t, err)

	var after test
	err = UnmarshalVerify(&other.PublicKey, signedmsg, &after)
	require.True(t, errors.Is(err, ErrInvalidSignature))
}

func TestTamperedMessage(t *testing.T) {
	sk, err := GenerateKey()
	require.NoError(t, err)
	sig, err := Sign(sk, []byte("hello"))
	require.NoError(t, err)

	require.NoError(t, Verify(&sk.PublicKey, []byte("hello"), sig))
	require.True(t, errors.Is(Verify(&sk.PublicKey, []byte("hellp"), sig), ErrInvalidSignature))
	require.Error(t, Verify(&sk.PublicKey, []byte("hello"), []byte{1, 2, 3}))
}

func TestPemKeys(t *testing.T) {
	sk, err := GenerateKey()
	require.NoError(t, err)

	skPem, err := MarshalPemPrivateKey(sk)
	require.NoError(t, err)
	pkPem, err := MarshalPemPublicKey(&sk.PublicKey)
	require.NoError(t, err)

	sk2, err := UnmarshalPemPrivateKey(skPem)
	require.NoError(t, err)
	require.True(t, sk.Equal(sk2))

	pk2, err := UnmarshalPemPublicKey(pkPem)
	require.NoError(t, err)
	require.True(t, sk.PublicKey.Equal(pk2))

	_, err = UnmarshalPemPublicKey(skPem)
	require.Error(t, err)
	_, err = UnmarshalPemPrivateKey([]byte("not a key"))
	require.Error(t, err)
}

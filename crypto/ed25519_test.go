package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	priv := GenPrivKeyEd25519()
	pub := priv.PublicKey()

	msg := []byte("settle offer 7")
	sig, err := priv.Sign(msg)
	require.NoError(t, err)

	assert.True(t, pub.Verify(msg, sig))
	assert.False(t, pub.Verify([]byte("settle offer 8"), sig))

	other := GenPrivKeyEd25519().PublicKey()
	assert.False(t, other.Verify(msg, sig))

	assert.False(t, pub.Verify(msg, nil))
	assert.False(t, pub.Verify(msg, &Signature{Ed25519: []byte("short")}))
}

func TestDeterministicFromSeed(t *testing.T) {
	seed := make([]byte, 32)
	copy(seed, "not-very-random")

	a := PrivKeyEd25519FromSeed(seed)
	b := PrivKeyEd25519FromSeed(seed)
	assert.Equal(t, a.PublicKey().Ed25519, b.PublicKey().Ed25519)
	assert.Equal(t, a.PublicKey().Address(), b.PublicKey().Address())
}

func TestConditionAndAddress(t *testing.T) {
	pub := GenPrivKeyEd25519().PublicKey()

	cond := pub.Condition()
	require.NoError(t, cond.Validate())
	ext, typ, data, err := cond.Parse()
	require.NoError(t, err)
	assert.Equal(t, "sigs", ext)
	assert.Equal(t, "ed25519", typ)
	assert.Equal(t, pub.Ed25519, data)

	assert.Equal(t, cond.Address(), pub.Address())
	require.NoError(t, pub.Address().Validate())
}

func TestPublicKeyRoundTrip(t *testing.T) {
	pub := GenPrivKeyEd25519().PublicKey()
	raw, err := pub.Marshal()
	require.NoError(t, err)

	var got PublicKey
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, pub.Ed25519, got.Ed25519)
}

package custody

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionParse(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	cond := NewCondition("escrow", "vault", data)
	require.NoError(t, cond.Validate())

	ext, typ, got, err := cond.Parse()
	require.NoError(t, err)
	assert.Equal(t, "escrow", ext)
	assert.Equal(t, "vault", typ)
	assert.Equal(t, data, got)

	// data containing a slash or newline still parses
	tricky := NewCondition("sigs", "ed25519", []byte("a/b\nc"))
	_, _, got, err = tricky.Parse()
	require.NoError(t, err)
	assert.Equal(t, []byte("a/b\nc"), got)

	// malformed conditions are rejected
	assert.Error(t, Condition("no-separators").Validate())
	assert.Error(t, Condition("x/y/z").Validate())
}

func TestConditionAddress(t *testing.T) {
	cond := NewCondition("escrow", "vault", []byte("seed"))
	addr := cond.Address()

	require.NoError(t, addr.Validate())
	assert.Equal(t, AddressLength, len(addr))
	// derivation is deterministic
	assert.True(t, addr.Equals(NewCondition("escrow", "vault", []byte("seed")).Address()))
	// and sensitive to every input
	assert.False(t, addr.Equals(NewCondition("escrow", "vault", []byte("seeds")).Address()))
	assert.False(t, addr.Equals(NewCondition("escrow", "vaults", []byte("seed")).Address()))
}

func TestAddressValidate(t *testing.T) {
	addr := NewCondition("sigs", "ed25519", []byte("key material")).Address()
	assert.NoError(t, addr.Validate())

	assert.Error(t, Address([]byte{1, 2, 3}).Validate())
	assert.Error(t, Address(nil).Validate())
}

func TestAddressJSON(t *testing.T) {
	addr := NewCondition("sigs", "ed25519", []byte("key material")).Address()

	raw, err := json.Marshal(addr)
	require.NoError(t, err)

	var parsed Address
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.True(t, addr.Equals(parsed))

	// the hex form must round trip through String as well
	var fromString Address
	require.NoError(t, json.Unmarshal([]byte(`"`+addr.String()+`"`), &fromString))
	assert.True(t, addr.Equals(fromString))

	// a condition serialization resolves to its address
	var fromCond Address
	require.NoError(t, json.Unmarshal([]byte(`"cond:sigs/ed25519/6B6579206D6174657269616C"`), &fromCond))
	assert.True(t, addr.Equals(fromCond))
}

func TestAddressClone(t *testing.T) {
	addr := NewCondition("sigs", "ed25519", []byte("key material")).Address()
	cpy := addr.Clone()
	require.True(t, addr.Equals(cpy))
	cpy[0] ^= 0xFF
	assert.False(t, addr.Equals(cpy))

	var empty Address
	assert.Nil(t, empty.Clone())
}

// Package crypto wraps the signature schemes supported by the
// custodian. Only ed25519 is in use today.
package crypto

import (
	"golang.org/x/crypto/ed25519"

	"github.com/genezys/custody"
	"github.com/genezys/custody/errors"
)

// ExtensionName is used for the conditions we get from signatures
const ExtensionName = "sigs"

// Wire sizes of the ed25519 primitives.
const (
	PubKeySize    = ed25519.PublicKeySize
	SignatureSize = ed25519.SignatureSize
)

// PubKey represents a crypto public key we use
type PubKey interface {
	Verify(message []byte, sig *Signature) bool
	Condition() custody.Condition
}

// Signer is the functionality we use from a private key.
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) (*Signature, error)
	PublicKey() *PublicKey
}

// PublicKey is an ed25519 public key
type PublicKey struct {
	Ed25519 []byte
}

var _ PubKey = (*PublicKey)(nil)

// Verify verifies the signature was created with this message and public key
func (p *PublicKey) Verify(message []byte, sig *Signature) bool {
	if sig == nil || len(sig.Ed25519) != ed25519.SignatureSize {
		return false
	}
	if len(p.Ed25519) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p.Ed25519), message, sig.Ed25519)
}

// Condition encodes the public key into a custody condition
func (p *PublicKey) Condition() custody.Condition {
	return custody.NewCondition(ExtensionName, "ed25519", p.Ed25519)
}

// Address is a shortcut for Condition().Address()
func (p *PublicKey) Address() custody.Address {
	return p.Condition().Address()
}

// Validate ensures the key has the proper size
func (p *PublicKey) Validate() error {
	if len(p.Ed25519) != ed25519.PublicKeySize {
		return errors.Wrapf(errors.ErrInput, "public key size: %d", len(p.Ed25519))
	}
	return nil
}

// Marshal returns the raw key material
func (p *PublicKey) Marshal() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return append([]byte(nil), p.Ed25519...), nil
}

// Unmarshal loads raw key material
func (p *PublicKey) Unmarshal(raw []byte) error {
	if len(raw) != ed25519.PublicKeySize {
		return errors.Wrapf(errors.ErrInput, "public key size: %d", len(raw))
	}
	p.Ed25519 = append([]byte(nil), raw...)
	return nil
}

// PrivateKey is an ed25519 private key
type PrivateKey struct {
	Ed25519 []byte
}

var _ Signer = (*PrivateKey)(nil)

// Sign returns a matching signature for this private key
func (p *PrivateKey) Sign(message []byte) (*Signature, error) {
	if len(p.Ed25519) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "private key size: %d", len(p.Ed25519))
	}
	bz := ed25519.Sign(ed25519.PrivateKey(p.Ed25519), message)
	return &Signature{Ed25519: bz}, nil
}

// PublicKey returns the corresponding PublicKey
func (p *PrivateKey) PublicKey() *PublicKey {
	priv := ed25519.PrivateKey(p.Ed25519)
	pub := priv.Public().(ed25519.PublicKey)
	return &PublicKey{Ed25519: pub}
}

// Signature is an ed25519 signature
type Signature struct {
	Ed25519 []byte
}

// Validate ensures the signature has the proper size
func (s *Signature) Validate() error {
	if len(s.Ed25519) != ed25519.SignatureSize {
		return errors.Wrapf(errors.ErrInput, "signature size: %d", len(s.Ed25519))
	}
	return nil
}

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{Ed25519: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	priv := ed25519.NewKeyFromSeed(seed)
	return &PrivateKey{Ed25519: priv}
}

package sigs

import (
	"encoding/binary"

	"github.com/genezys/custody"
	"github.com/genezys/custody/crypto"
	"github.com/genezys/custody/errors"
)

// SignedTx is anything with identifiable public key signatures attached.
// The sign bytes must be stable for a given transaction so every signer
// commits to the same payload.
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the
	// transaction content covered by the signatures. Chain ID and
	// sequence are mixed in separately in BuildSignBytes.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signatures attached to the transaction,
	// present in checkTx and deliverTx.
	GetSignatures() []*StdSignature
}

// StdSignature binds a public key and its signature over the transaction
// to the sequence number the signer committed to. The sequence provides
// replay protection: it must match the stored counter of the signer and
// is incremented on every accepted signature.
type StdSignature struct {
	Sequence  int64
	Pubkey    *crypto.PublicKey
	Signature *crypto.Signature
}

var _ custody.Persistent = (*StdSignature)(nil)

// stdSignatureSize is the fixed wire size: 8 bytes sequence, 32 bytes
// ed25519 public key, 64 bytes ed25519 signature.
const stdSignatureSize = 8 + crypto.PubKeySize + crypto.SignatureSize

// Marshal serializes the signature in its fixed binary layout.
func (s *StdSignature) Marshal() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	out := make([]byte, stdSignatureSize)
	binary.BigEndian.PutUint64(out[:8], uint64(s.Sequence))
	copy(out[8:8+crypto.PubKeySize], s.Pubkey.Ed25519)
	copy(out[8+crypto.PubKeySize:], s.Signature.Ed25519)
	return out, nil
}

// Unmarshal parses the fixed binary layout produced by Marshal.
func (s *StdSignature) Unmarshal(raw []byte) error {
	if len(raw) != stdSignatureSize {
		return errors.Wrapf(errors.ErrInput, "signature length %d", len(raw))
	}
	s.Sequence = int64(binary.BigEndian.Uint64(raw[:8]))
	s.Pubkey = &crypto.PublicKey{
		Ed25519: append([]byte{}, raw[8:8+crypto.PubKeySize]...),
	}
	s.Signature = &crypto.Signature{
		Ed25519: append([]byte{}, raw[8+crypto.PubKeySize:]...),
	}
	return nil
}

// Validate ensures the signature is well formed before verification.
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrapf(ErrInvalidSequence, "negative sequence %d", s.Sequence)
	}
	if s.Pubkey == nil {
		return errors.Wrap(errors.ErrEmpty, "public key")
	}
	if err := s.Pubkey.Validate(); err != nil {
		return err
	}
	if s.Signature == nil {
		return errors.Wrap(errors.ErrEmpty, "signature")
	}
	return s.Signature.Validate()
}

// nonceBytes encodes the sequence for inclusion in the sign bytes.
func nonceBytes(nonce int64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, uint64(nonce))
	return out
}

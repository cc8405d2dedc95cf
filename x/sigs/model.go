package sigs

import (
	"encoding/binary"

	"github.com/genezys/custody"
	"github.com/genezys/custody/crypto"
	"github.com/genezys/custody/errors"
	"github.com/genezys/custody/orm"
)

// BucketName holds the signer accounts.
const BucketName = "usr"

// UserData is the replay-protection state kept per signer address:
// the public key that first signed and the next expected sequence.
type UserData struct {
	Pubkey   *crypto.PublicKey
	Sequence int64
}

var _ orm.Model = (*UserData)(nil)

// userDataSize is the fixed wire size: 32 bytes pubkey, 8 bytes sequence.
const userDataSize = crypto.PubKeySize + 8

// Validate requires a pubkey to be present and a non-negative sequence.
func (u *UserData) Validate() error {
	if u.Pubkey == nil {
		return errors.Wrap(errors.ErrEmpty, "public key")
	}
	if err := u.Pubkey.Validate(); err != nil {
		return err
	}
	if u.Sequence < 0 {
		return errors.Wrapf(ErrInvalidSequence, "negative sequence %d", u.Sequence)
	}
	return nil
}

// Marshal serializes the user data in its fixed binary layout.
func (u *UserData) Marshal() ([]byte, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	out := make([]byte, userDataSize)
	copy(out[:crypto.PubKeySize], u.Pubkey.Ed25519)
	binary.BigEndian.PutUint64(out[crypto.PubKeySize:], uint64(u.Sequence))
	return out, nil
}

// Unmarshal parses the fixed binary layout produced by Marshal.
func (u *UserData) Unmarshal(raw []byte) error {
	if len(raw) != userDataSize {
		return errors.Wrapf(errors.ErrInput, "user data length %d", len(raw))
	}
	u.Pubkey = &crypto.PublicKey{
		Ed25519: append([]byte{}, raw[:crypto.PubKeySize]...),
	}
	u.Sequence = int64(binary.BigEndian.Uint64(raw[crypto.PubKeySize:]))
	return nil
}

// SetPubkey stores the public key on first use. It is an error to
// change an already assigned key.
func (u *UserData) SetPubkey(pubkey *crypto.PublicKey) error {
	if u.Pubkey != nil {
		return errors.Wrap(errors.ErrImmutable, "cannot change pubkey assigned to user")
	}
	u.Pubkey = pubkey
	return nil
}

// CheckAndIncrementSequence validates the nonce and increments the
// stored counter if it matches.
func (u *UserData) CheckAndIncrementSequence(check int64) error {
	if u.Sequence != check {
		return errors.Wrapf(ErrInvalidSequence, "expected %d, got %d", u.Sequence, check)
	}
	u.Sequence++
	return nil
}

// NewUserBucket returns the bucket storing UserData keyed by the
// signer's address.
func NewUserBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName)
}

// loadUser fetches the user record for the address, returning a fresh
// zero record when the signer was never seen before.
func loadUser(bucket orm.ModelBucket, db custody.KVStore, addr custody.Address) (*UserData, error) {
	var user UserData
	switch err := bucket.One(db, addr, &user); {
	case err == nil:
		return &user, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{}, nil
	default:
		return nil, err
	}
}

package token

import (
	"encoding/binary"

	"github.com/genezys/custody"
	"github.com/genezys/custody/errors"
	"github.com/genezys/custody/orm"
)

// BucketName holds the token accounts.
const BucketName = "tok"

// TokenAccount is a holding of a single asset class. The collectibles
// traded by the custodian are asset classes with a supply of one, so a
// holding account carries a quantity of either zero or one.
type TokenAccount struct {
	// Mint identifies the asset class this account holds.
	Mint custody.Address
	// Authority is the only address allowed to move the holding or to
	// change the authority itself.
	Authority custody.Address
	// Quantity is the number of units held.
	Quantity uint64
	// Deposit is the native value locked when the account was created,
	// refunded when the account is closed.
	Deposit uint64
}

var _ orm.Model = (*TokenAccount)(nil)

// tokenAccountSize is the fixed wire size: 32 bytes mint, 32 bytes
// authority, 8 bytes quantity, 8 bytes deposit.
const tokenAccountSize = custody.AddressLength + custody.AddressLength + 8 + 8

// Validate ensures mint and authority are well formed addresses.
func (t *TokenAccount) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Mint", t.Mint.Validate())
	errs = errors.AppendField(errs, "Authority", t.Authority.Validate())
	return errs
}

// Marshal serializes the account in its fixed binary layout.
func (t *TokenAccount) Marshal() ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	out := make([]byte, tokenAccountSize)
	offset := copy(out, t.Mint)
	offset += copy(out[offset:], t.Authority)
	binary.LittleEndian.PutUint64(out[offset:], t.Quantity)
	binary.LittleEndian.PutUint64(out[offset+8:], t.Deposit)
	return out, nil
}

// Unmarshal parses the fixed binary layout produced by Marshal.
func (t *TokenAccount) Unmarshal(raw []byte) error {
	if len(raw) != tokenAccountSize {
		return errors.Wrapf(errors.ErrInput, "token account length %d", len(raw))
	}
	t.Mint = custody.Address(append([]byte{}, raw[:custody.AddressLength]...))
	raw = raw[custody.AddressLength:]
	t.Authority = custody.Address(append([]byte{}, raw[:custody.AddressLength]...))
	raw = raw[custody.AddressLength:]
	t.Quantity = binary.LittleEndian.Uint64(raw[:8])
	t.Deposit = binary.LittleEndian.Uint64(raw[8:])
	return nil
}

// NewTokenBucket returns the bucket storing token accounts keyed by
// the account address.
func NewTokenBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName)
}

/*
Package token tracks holdings of unique assets.

Every account references a mint (the asset class), an authority that
controls the holding, and the native value deposit locked at creation.
The escrow extension reassigns the authority of a vault account to the
custodian's derived capability, so authority checks here are the
backbone of asset custody.
*/
package token

import (
	"github.com/genezys/custody"
	"github.com/genezys/custody/errors"
	"github.com/genezys/custody/orm"
	"github.com/genezys/custody/x/funds"
)

// Controller exposes the account operations other extensions build on.
// Every mutation demands the account's current authority to be
// presented, there is no ambient permission.
type Controller interface {
	Account(db custody.ReadOnlyKVStore, id custody.Address) (*TokenAccount, error)
	Create(db custody.KVStore, id custody.Address, acct *TokenAccount) error
	Transfer(db custody.KVStore, presented custody.Address, src, dest custody.Address, quantity uint64) error
	SetAuthority(db custody.KVStore, presented custody.Address, id custody.Address, newAuthority custody.Address) error
	CloseAccount(db custody.KVStore, presented custody.Address, id custody.Address, refundTo custody.Address) error
}

// NewController returns a controller operating on the default token
// bucket, refunding deposits through the given funds controller.
func NewController(cash funds.Controller) Controller {
	return controller{
		bucket: NewTokenBucket(),
		cash:   cash,
	}
}

type controller struct {
	bucket orm.ModelBucket
	cash   funds.Controller
}

// Account loads the token account stored under the id.
func (c controller) Account(db custody.ReadOnlyKVStore, id custody.Address) (*TokenAccount, error) {
	var acct TokenAccount
	if err := c.bucket.One(db, id, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// Create stores a new token account. It fails if the id is taken.
func (c controller) Create(db custody.KVStore, id custody.Address, acct *TokenAccount) error {
	if err := id.Validate(); err != nil {
		return err
	}
	switch has, err := c.bucket.Has(db, id); {
	case err != nil:
		return err
	case has:
		return errors.Wrapf(errors.ErrDuplicate, "token account %s", id)
	}
	return c.bucket.Put(db, id, acct)
}

// Transfer moves quantity units from src to dest. The presented address
// must be the authority of src and both accounts must hold the same
// mint.
func (c controller) Transfer(db custody.KVStore, presented custody.Address, src, dest custody.Address, quantity uint64) error {
	if quantity == 0 {
		return errors.Wrap(errors.ErrAmount, "zero transfer")
	}
	source, err := c.Account(db, src)
	if err != nil {
		return err
	}
	if err := c.allowed(source, presented); err != nil {
		return err
	}
	if source.Quantity < quantity {
		return errors.Wrapf(errors.ErrAmount, "holding %d, needed %d", source.Quantity, quantity)
	}
	// Writing back two copies of the same record would mint units out of
	// thin air.
	if src.Equals(dest) {
		return nil
	}

	recipient, err := c.Account(db, dest)
	if err != nil {
		return err
	}
	if !source.Mint.Equals(recipient.Mint) {
		return errors.Wrapf(errors.ErrState, "mint mismatch: %s vs %s", source.Mint, recipient.Mint)
	}
	if recipient.Quantity+quantity < recipient.Quantity {
		return errors.Wrap(errors.ErrOverflow, "destination holding")
	}

	source.Quantity -= quantity
	recipient.Quantity += quantity
	if err := c.bucket.Put(db, src, source); err != nil {
		return err
	}
	return c.bucket.Put(db, dest, recipient)
}

// SetAuthority hands control of the account over to newAuthority. The
// presented address must be the current authority.
func (c controller) SetAuthority(db custody.KVStore, presented custody.Address, id custody.Address, newAuthority custody.Address) error {
	if err := newAuthority.Validate(); err != nil {
		return errors.Wrap(err, "new authority")
	}
	acct, err := c.Account(db, id)
	if err != nil {
		return err
	}
	if err := c.allowed(acct, presented); err != nil {
		return err
	}
	acct.Authority = newAuthority
	return c.bucket.Put(db, id, acct)
}

// CloseAccount removes an emptied account and refunds its deposit. The
// presented address must be the authority, the holding must be zero.
func (c controller) CloseAccount(db custody.KVStore, presented custody.Address, id custody.Address, refundTo custody.Address) error {
	acct, err := c.Account(db, id)
	if err != nil {
		return err
	}
	if err := c.allowed(acct, presented); err != nil {
		return err
	}
	if acct.Quantity != 0 {
		return errors.Wrapf(errors.ErrState, "cannot close account holding %d units", acct.Quantity)
	}
	if err := c.bucket.Delete(db, id); err != nil {
		return err
	}
	if acct.Deposit == 0 {
		return nil
	}
	return c.cash.IssueFunds(db, refundTo, acct.Deposit)
}

func (c controller) allowed(acct *TokenAccount, presented custody.Address) error {
	if !acct.Authority.Equals(presented) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not the account authority", presented)
	}
	return nil
}

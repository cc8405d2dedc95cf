/*
Package funds maintains the native value wallets of the custodian.

Wallets are simple unsigned balances keyed by address. The package
exposes a controller API for other extensions to move value around,
there is no message handler of its own.
*/
package funds

import (
	"github.com/genezys/custody"
	"github.com/genezys/custody/errors"
	"github.com/genezys/custody/orm"
)

// Controller provides the balance operations other extensions build on.
type Controller interface {
	Balance(db custody.ReadOnlyKVStore, addr custody.Address) (uint64, error)
	MoveFunds(db custody.KVStore, src custody.Address, dest custody.Address, amount uint64) error
	IssueFunds(db custody.KVStore, dest custody.Address, amount uint64) error
}

// NewController returns a controller operating on the default wallet
// bucket.
func NewController() Controller {
	return controller{bucket: NewWalletBucket()}
}

type controller struct {
	bucket orm.ModelBucket
}

// Balance returns the current balance of the address. An address with
// no wallet has a zero balance.
func (c controller) Balance(db custody.ReadOnlyKVStore, addr custody.Address) (uint64, error) {
	wallet, err := c.load(db, addr)
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// MoveFunds moves the given amount from src to dest. It fails with
// ErrInsufficientFunds if src does not hold enough.
func (c controller) MoveFunds(db custody.KVStore, src custody.Address, dest custody.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero transfer")
	}

	sender, err := c.load(db, src)
	if err != nil {
		return err
	}
	if err := sender.Subtract(amount); err != nil {
		return errors.Wrapf(err, "source %s", src)
	}
	if src.Equals(dest) {
		// a self transfer is a no-op once covered
		return nil
	}

	recipient, err := c.load(db, dest)
	if err != nil {
		return err
	}
	if err := recipient.Add(amount); err != nil {
		return errors.Wrapf(err, "destination %s", dest)
	}

	if err := c.bucket.Put(db, src, sender); err != nil {
		return err
	}
	return c.bucket.Put(db, dest, recipient)
}

// IssueFunds credits the destination wallet out of thin air. Used by
// genesis initialization and by deposit refunds on account close.
func (c controller) IssueFunds(db custody.KVStore, dest custody.Address, amount uint64) error {
	recipient, err := c.load(db, dest)
	if err != nil {
		return err
	}
	if err := recipient.Add(amount); err != nil {
		return errors.Wrapf(err, "destination %s", dest)
	}
	return c.bucket.Put(db, dest, recipient)
}

func (c controller) load(db custody.ReadOnlyKVStore, addr custody.Address) (*Wallet, error) {
	var wallet Wallet
	switch err := c.bucket.One(db, addr, &wallet); {
	case err == nil:
		return &wallet, nil
	case errors.ErrNotFound.Is(err):
		return &Wallet{}, nil
	default:
		return nil, err
	}
}

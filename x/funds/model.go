package funds

import (
	"encoding/binary"

	"github.com/genezys/custody/errors"
	"github.com/genezys/custody/orm"
)

// BucketName holds the wallets.
const BucketName = "wlt"

// Wallet holds the native value balance of an address. Balances are
// unsigned, there is no debt.
type Wallet struct {
	Balance uint64
}

var _ orm.Model = (*Wallet)(nil)

// Validate accepts every wallet state, any uint64 balance is legal.
func (w *Wallet) Validate() error {
	return nil
}

// Marshal serializes the balance as 8 little endian bytes.
func (w *Wallet) Marshal() ([]byte, error) {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, w.Balance)
	return out, nil
}

// Unmarshal parses the 8 byte little endian balance.
func (w *Wallet) Unmarshal(raw []byte) error {
	if len(raw) != 8 {
		return errors.Wrapf(errors.ErrInput, "wallet length %d", len(raw))
	}
	w.Balance = binary.LittleEndian.Uint64(raw)
	return nil
}

// Add credits the wallet, guarding against overflow.
func (w *Wallet) Add(amount uint64) error {
	if w.Balance+amount < w.Balance {
		return errors.Wrap(errors.ErrOverflow, "wallet balance")
	}
	w.Balance += amount
	return nil
}

// Subtract debits the wallet, guarding against underflow.
func (w *Wallet) Subtract(amount uint64) error {
	if amount > w.Balance {
		return errors.Wrapf(ErrInsufficientFunds, "balance %d, needed %d", w.Balance, amount)
	}
	w.Balance -= amount
	return nil
}

// NewWalletBucket returns the bucket storing wallets keyed by address.
func NewWalletBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName)
}

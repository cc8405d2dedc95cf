package escrow

import (
	"encoding/binary"

	"github.com/genezys/custody"
	"github.com/genezys/custody/errors"
	"github.com/genezys/custody/orm"
)

// BucketName holds the open offers.
const BucketName = "esc"

// vaultSeed is the fixed seed material mixed into the custodian's
// derived capability. Immutable for the process lifetime.
const vaultSeed = "genezys-escrow"

// VaultCondition is the custodian's capability over a seller's vault.
// It is derived from fixed seed material plus the seller identity, so
// it can be recomputed at the point of use and never needs a stored
// secret. While an offer is open, the vault's authority is always this
// condition's address.
func VaultCondition(seller custody.Address) custody.Condition {
	return custody.NewCondition("escrow", "vault", append([]byte(vaultSeed), seller...))
}

// Offer is the record of one trade. It is created by initialize and
// deleted again when the trade settles or is cancelled. One offer per
// vault, the pairing is fixed for the offer's lifetime.
type Offer struct {
	// Initialized guards against reopening. Always true for a stored
	// offer.
	Initialized bool
	// Seller is the identity that opened the offer. Required signer on
	// cancel, receives the proceeds on settlement.
	Seller custody.Address
	// AssetHolder references the vault holding the collectible.
	AssetHolder custody.Address
	// Quantity of the asset under custody. Always 1, the collectible is
	// indivisible.
	Quantity uint8
	// FeeRate is the marketplace cut in parts per thousand.
	FeeRate uint8
	// Price is the exact payment required to settle, in the smallest
	// payment unit.
	Price uint64
}

var _ orm.Model = (*Offer)(nil)

// offerSize is the fixed wire size: initialized byte, 32 bytes seller,
// 32 bytes vault reference, quantity byte, fee rate byte, 8 bytes
// little endian price. 75 bytes total.
const offerSize = 1 + custody.AddressLength + custody.AddressLength + 1 + 1 + 8

// Validate ensures a stored offer is in its open state.
func (o *Offer) Validate() error {
	var errs error
	if !o.Initialized {
		errs = errors.AppendField(errs, "Initialized", errors.ErrState.New("offer not initialized"))
	}
	errs = errors.AppendField(errs, "Seller", o.Seller.Validate())
	errs = errors.AppendField(errs, "AssetHolder", o.AssetHolder.Validate())
	if o.Quantity != 1 {
		errs = errors.AppendField(errs, "Quantity",
			errors.Wrapf(ErrInvalidAssetQuantity, "quantity %d", o.Quantity))
	}
	if o.Price == 0 {
		errs = errors.AppendField(errs, "Price", errors.ErrAmount.New("price must be positive"))
	}
	return errs
}

// Marshal serializes the offer in its fixed binary layout.
func (o *Offer) Marshal() ([]byte, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	out := make([]byte, offerSize)
	if o.Initialized {
		out[0] = 1
	}
	offset := 1
	offset += copy(out[offset:], o.Seller)
	offset += copy(out[offset:], o.AssetHolder)
	out[offset] = o.Quantity
	out[offset+1] = o.FeeRate
	binary.LittleEndian.PutUint64(out[offset+2:], o.Price)
	return out, nil
}

// Unmarshal parses the fixed binary layout produced by Marshal.
func (o *Offer) Unmarshal(raw []byte) error {
	if len(raw) != offerSize {
		return errors.Wrapf(errors.ErrInput, "offer length %d", len(raw))
	}
	switch raw[0] {
	case 0:
		o.Initialized = false
	case 1:
		o.Initialized = true
	default:
		return errors.Wrapf(errors.ErrInput, "initialized flag %d", raw[0])
	}
	raw = raw[1:]
	o.Seller = custody.Address(append([]byte{}, raw[:custody.AddressLength]...))
	raw = raw[custody.AddressLength:]
	o.AssetHolder = custody.Address(append([]byte{}, raw[:custody.AddressLength]...))
	raw = raw[custody.AddressLength:]
	o.Quantity = raw[0]
	o.FeeRate = raw[1]
	o.Price = binary.LittleEndian.Uint64(raw[2:])
	return nil
}

// NewOfferBucket returns the bucket storing offers keyed by the vault
// address of the trade.
func NewOfferBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName)
}

package escrow

import (
	"encoding/binary"

	"github.com/genezys/custody"
	"github.com/genezys/custody/errors"
)

// Message paths, consumed by the router.
const (
	pathInitialize = "escrow/initialize"
	pathExchange   = "escrow/exchange"
	pathCancel     = "escrow/cancel"
)

var (
	_ custody.Msg = (*InitializeMsg)(nil)
	_ custody.Msg = (*ExchangeMsg)(nil)
	_ custody.Msg = (*CancelMsg)(nil)
)

// InitializeMsg opens an offer: the seller puts the collectible under
// the custodian's control at a fixed ask price.
type InitializeMsg struct {
	// Seller is the identity opening the offer. Must sign.
	Seller custody.Address
	// Mint identifies the collectible's asset class.
	Mint custody.Address
	// Vault is the asset account taken into custody.
	Vault custody.Address
	// SellerAsset is the seller's asset account currently holding the
	// collectible.
	SellerAsset custody.Address
	// Price is the exact payment required to settle.
	Price uint64
	// FeeRate is the marketplace cut in parts per thousand.
	FeeRate uint8
}

func (InitializeMsg) Path() string {
	return pathInitialize
}

// Validate checks the message is well formed, stateless checks only.
func (m *InitializeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Seller", m.Seller.Validate())
	errs = errors.AppendField(errs, "Mint", m.Mint.Validate())
	errs = errors.AppendField(errs, "Vault", m.Vault.Validate())
	errs = errors.AppendField(errs, "SellerAsset", m.SellerAsset.Validate())
	if m.Price == 0 {
		errs = errors.AppendField(errs, "Price", errors.ErrAmount.New("price must be positive"))
	}
	return errs
}

const initializeMsgSize = 4*custody.AddressLength + 8 + 1

func (m *InitializeMsg) Marshal() ([]byte, error) {
	out := make([]byte, initializeMsgSize)
	offset := copy(out, m.Seller)
	offset += copy(out[offset:], m.Mint)
	offset += copy(out[offset:], m.Vault)
	offset += copy(out[offset:], m.SellerAsset)
	binary.LittleEndian.PutUint64(out[offset:], m.Price)
	out[offset+8] = m.FeeRate
	return out, nil
}

func (m *InitializeMsg) Unmarshal(raw []byte) error {
	if len(raw) != initializeMsgSize {
		return errors.Wrapf(errors.ErrInput, "initialize message length %d", len(raw))
	}
	m.Seller, raw = cutAddress(raw)
	m.Mint, raw = cutAddress(raw)
	m.Vault, raw = cutAddress(raw)
	m.SellerAsset, raw = cutAddress(raw)
	m.Price = binary.LittleEndian.Uint64(raw)
	m.FeeRate = raw[8]
	return nil
}

// ExchangeMsg settles an open offer: the buyer pays the exact ask price
// and receives the collectible.
type ExchangeMsg struct {
	// Buyer is the identity paying for the collectible. Must sign.
	Buyer custody.Address
	// BuyerAsset is the buyer's asset account receiving the
	// collectible.
	BuyerAsset custody.Address
	// Seller must match the identity recorded in the offer.
	Seller custody.Address
	// MarketWallet receives the marketplace fee.
	MarketWallet custody.Address
	// Vault identifies the offer and the asset account under custody.
	Vault custody.Address
	// Payment is the amount offered. Must equal the recorded price.
	Payment uint64
}

func (ExchangeMsg) Path() string {
	return pathExchange
}

// Validate checks the message is well formed, stateless checks only.
func (m *ExchangeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Buyer", m.Buyer.Validate())
	errs = errors.AppendField(errs, "BuyerAsset", m.BuyerAsset.Validate())
	errs = errors.AppendField(errs, "Seller", m.Seller.Validate())
	errs = errors.AppendField(errs, "MarketWallet", m.MarketWallet.Validate())
	errs = errors.AppendField(errs, "Vault", m.Vault.Validate())
	if m.Payment == 0 {
		errs = errors.AppendField(errs, "Payment", errors.ErrAmount.New("payment must be positive"))
	}
	return errs
}

const exchangeMsgSize = 5*custody.AddressLength + 8

func (m *ExchangeMsg) Marshal() ([]byte, error) {
	out := make([]byte, exchangeMsgSize)
	offset := copy(out, m.Buyer)
	offset += copy(out[offset:], m.BuyerAsset)
	offset += copy(out[offset:], m.Seller)
	offset += copy(out[offset:], m.MarketWallet)
	offset += copy(out[offset:], m.Vault)
	binary.LittleEndian.PutUint64(out[offset:], m.Payment)
	return out, nil
}

func (m *ExchangeMsg) Unmarshal(raw []byte) error {
	if len(raw) != exchangeMsgSize {
		return errors.Wrapf(errors.ErrInput, "exchange message length %d", len(raw))
	}
	m.Buyer, raw = cutAddress(raw)
	m.BuyerAsset, raw = cutAddress(raw)
	m.Seller, raw = cutAddress(raw)
	m.MarketWallet, raw = cutAddress(raw)
	m.Vault, raw = cutAddress(raw)
	m.Payment = binary.LittleEndian.Uint64(raw)
	return nil
}

// CancelMsg withdraws an open offer: the seller takes the collectible
// back. Only the seller recorded in the offer may cancel.
type CancelMsg struct {
	// Vault identifies the offer and the asset account under custody.
	Vault custody.Address
	// SellerAsset is the seller's asset account receiving the
	// collectible back.
	SellerAsset custody.Address
}

func (CancelMsg) Path() string {
	return pathCancel
}

// Validate checks the message is well formed, stateless checks only.
func (m *CancelMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Vault", m.Vault.Validate())
	errs = errors.AppendField(errs, "SellerAsset", m.SellerAsset.Validate())
	return errs
}

const cancelMsgSize = 2 * custody.AddressLength

func (m *CancelMsg) Marshal() ([]byte, error) {
	out := make([]byte, cancelMsgSize)
	offset := copy(out, m.Vault)
	copy(out[offset:], m.SellerAsset)
	return out, nil
}

func (m *CancelMsg) Unmarshal(raw []byte) error {
	if len(raw) != cancelMsgSize {
		return errors.Wrapf(errors.ErrInput, "cancel message length %d", len(raw))
	}
	m.Vault, raw = cutAddress(raw)
	m.SellerAsset, _ = cutAddress(raw)
	return nil
}

// cutAddress copies the leading address out of raw and returns the
// rest.
func cutAddress(raw []byte) (custody.Address, []byte) {
	addr := custody.Address(append([]byte{}, raw[:custody.AddressLength]...))
	return addr, raw[custody.AddressLength:]
}

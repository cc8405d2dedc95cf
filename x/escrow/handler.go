package escrow

import (
	"github.com/genezys/custody"
	"github.com/genezys/custody/errors"
	"github.com/genezys/custody/orm"
	"github.com/genezys/custody/x"
	"github.com/genezys/custody/x/funds"
	"github.com/genezys/custody/x/sigs"
	"github.com/genezys/custody/x/token"
)

const (
	initializeCost int64 = 300
	exchangeCost   int64 = 300
	cancelCost     int64 = 100
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r custody.Registry, auth x.Authenticator, assets token.Controller, cash funds.Controller) {
	offers := NewOfferBucket()
	r.Handle(pathInitialize, InitializeHandler{auth: auth, offers: offers, assets: assets})
	r.Handle(pathExchange, ExchangeHandler{auth: auth, offers: offers, assets: assets, cash: cash})
	r.Handle(pathCancel, CancelHandler{auth: auth, offers: offers, assets: assets})
}

// InitializeHandler opens an offer and takes the collectible into
// custody.
type InitializeHandler struct {
	auth   x.Authenticator
	offers orm.ModelBucket
	assets token.Controller
}

var _ custody.Handler = InitializeHandler{}

// Check validates all preconditions without opening the offer.
func (h InitializeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: initializeCost}, nil
}

// Deliver opens the offer: the record is written, the vault's authority
// moves to the custodian's capability and the collectible moves into
// the vault. The surrounding savepoint discards every write if any step
// fails.
func (h InitializeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	offer := &Offer{
		Initialized: true,
		Seller:      msg.Seller,
		AssetHolder: msg.Vault,
		Quantity:    1,
		FeeRate:     msg.FeeRate,
		Price:       msg.Price,
	}
	if err := h.offers.Put(db, msg.Vault, offer); err != nil {
		return nil, err
	}
	if err := h.assets.Transfer(db, msg.Seller, msg.SellerAsset, msg.Vault, 1); err != nil {
		return nil, err
	}
	capability := VaultCondition(msg.Seller).Address()
	if err := h.assets.SetAuthority(db, msg.Seller, msg.Vault, capability); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{Data: msg.Vault}, nil
}

// validate preconditions and returns the message on success. No
// mutation happens here.
func (h InitializeHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*InitializeMsg, error) {
	var msg InitializeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	if err := signedBy(ctx, h.auth, msg.Seller); err != nil {
		return nil, err
	}

	switch has, err := h.offers.Has(db, msg.Vault); {
	case err != nil:
		return nil, err
	case has:
		return nil, errors.Wrapf(ErrAlreadyInitialized, "vault %s", msg.Vault)
	}

	if msg.SellerAsset.Equals(msg.Vault) {
		return nil, errors.Wrap(ErrInvalidAccountBinding, "seller asset account is the vault")
	}
	source, err := h.assets.Account(db, msg.SellerAsset)
	if err != nil {
		return nil, err
	}
	if !source.Mint.Equals(msg.Mint) {
		return nil, errors.Wrap(ErrInvalidAccountBinding, "seller asset account mint")
	}
	if source.Quantity != 1 {
		return nil, errors.Wrapf(ErrInvalidAssetQuantity, "holding %d", source.Quantity)
	}

	vault, err := h.assets.Account(db, msg.Vault)
	if err != nil {
		return nil, err
	}
	if !vault.Mint.Equals(msg.Mint) {
		return nil, errors.Wrap(ErrInvalidAccountBinding, "vault mint")
	}
	if !vault.Authority.Equals(msg.Seller) {
		return nil, errors.Wrap(ErrInvalidAccountBinding, "vault authority")
	}
	// A vault that already holds units could never be emptied and
	// closed, leaving the offer without a terminal path.
	if vault.Quantity != 0 {
		return nil, errors.Wrapf(ErrInvalidAssetQuantity, "vault holding %d", vault.Quantity)
	}
	return &msg, nil
}

// ExchangeHandler settles an offer against an exact payment.
type ExchangeHandler struct {
	auth   x.Authenticator
	offers orm.ModelBucket
	assets token.Controller
	cash   funds.Controller
}

var _ custody.Handler = ExchangeHandler{}

// Check validates all preconditions without moving anything.
func (h ExchangeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: exchangeCost}, nil
}

// Deliver settles the trade: the buyer's payment is split between the
// seller and the market wallet, the collectible moves to the buyer and
// vault and record are decommissioned with their deposits refunded to
// the seller. All of it commits together or not at all.
func (h ExchangeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, offer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	fee, net, err := Split(offer.Price, offer.FeeRate)
	if err != nil {
		return nil, err
	}
	if err := h.cash.MoveFunds(db, msg.Buyer, offer.Seller, net); err != nil {
		return nil, err
	}
	if fee > 0 {
		if err := h.cash.MoveFunds(db, msg.Buyer, msg.MarketWallet, fee); err != nil {
			return nil, err
		}
	}

	capability := VaultCondition(offer.Seller).Address()
	if err := h.assets.Transfer(db, capability, msg.Vault, msg.BuyerAsset, 1); err != nil {
		return nil, err
	}
	if err := h.assets.SetAuthority(db, capability, msg.Vault, msg.Buyer); err != nil {
		return nil, err
	}
	if err := h.assets.CloseAccount(db, msg.Buyer, msg.Vault, offer.Seller); err != nil {
		return nil, err
	}
	if err := h.offers.Delete(db, msg.Vault); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{Data: msg.Vault}, nil
}

// validate preconditions in order and returns the message and the
// offer on success. No mutation happens here.
func (h ExchangeHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*ExchangeMsg, *Offer, error) {
	var msg ExchangeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, err
	}
	if err := signedBy(ctx, h.auth, msg.Buyer); err != nil {
		return nil, nil, err
	}

	var offer Offer
	if err := h.offers.One(db, msg.Vault, &offer); err != nil {
		return nil, nil, err
	}
	if !offer.AssetHolder.Equals(msg.Vault) {
		return nil, nil, errors.Wrap(ErrInvalidAccountBinding, "vault reference")
	}
	if offer.Quantity != 1 {
		return nil, nil, errors.Wrapf(ErrInvalidAccountBinding, "record quantity %d", offer.Quantity)
	}
	if !offer.Seller.Equals(msg.Seller) {
		return nil, nil, errors.Wrap(ErrInvalidAccountBinding, "seller identity")
	}
	balance, err := h.cash.Balance(db, msg.Buyer)
	if err != nil {
		return nil, nil, err
	}
	if balance < msg.Payment {
		return nil, nil, errors.Wrapf(funds.ErrInsufficientFunds, "balance %d, needed %d", balance, msg.Payment)
	}
	if msg.Payment != offer.Price {
		return nil, nil, errors.Wrapf(ErrPriceMismatch, "offered %d, asked %d", msg.Payment, offer.Price)
	}
	if _, _, err := Split(offer.Price, offer.FeeRate); err != nil {
		return nil, nil, err
	}
	return &msg, &offer, nil
}

// CancelHandler withdraws an offer and returns the collectible to the
// seller.
type CancelHandler struct {
	auth   x.Authenticator
	offers orm.ModelBucket
	assets token.Controller
}

var _ custody.Handler = CancelHandler{}

// Check validates all preconditions without touching the offer.
func (h CancelHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{GasAllocated: cancelCost}, nil
}

// Deliver hands the vault back to the seller, moves the collectible to
// the seller's asset account and decommissions vault and record. No
// payment balances change on this path.
func (h CancelHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, offer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	capability := VaultCondition(offer.Seller).Address()
	if err := h.assets.SetAuthority(db, capability, msg.Vault, offer.Seller); err != nil {
		return nil, err
	}
	if err := h.assets.Transfer(db, offer.Seller, msg.Vault, msg.SellerAsset, 1); err != nil {
		return nil, err
	}
	if err := h.assets.CloseAccount(db, offer.Seller, msg.Vault, offer.Seller); err != nil {
		return nil, err
	}
	if err := h.offers.Delete(db, msg.Vault); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{Data: msg.Vault}, nil
}

// validate preconditions and returns the message and the offer on
// success. No mutation happens here.
func (h CancelHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*CancelMsg, *Offer, error) {
	var msg CancelMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, err
	}

	var offer Offer
	if err := h.offers.One(db, msg.Vault, &offer); err != nil {
		return nil, nil, err
	}
	if !offer.AssetHolder.Equals(msg.Vault) {
		return nil, nil, errors.Wrap(ErrInvalidAccountBinding, "vault reference")
	}
	if err := signedBy(ctx, h.auth, offer.Seller); err != nil {
		return nil, nil, err
	}
	return &msg, &offer, nil
}

// signedBy requires the given address among the transaction's signers.
// A transaction with no signers at all is reported as missing a
// signature rather than unauthorized.
func signedBy(ctx custody.Context, auth x.Authenticator, addr custody.Address) error {
	conds := auth.GetConditions(ctx)
	if len(conds) == 0 {
		return errors.Wrap(sigs.ErrMissingSignature, "no signer")
	}
	if !auth.HasAddress(ctx, addr) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s did not sign", addr)
	}
	return nil
}

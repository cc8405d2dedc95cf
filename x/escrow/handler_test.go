package escrow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genezys/custody"
	"github.com/genezys/custody/app"
	"github.com/genezys/custody/custodytest"
	"github.com/genezys/custody/errors"
	"github.com/genezys/custody/store"
	"github.com/genezys/custody/x/funds"
	"github.com/genezys/custody/x/sigs"
	"github.com/genezys/custody/x/token"
	"github.com/genezys/custody/x/utils"
)

const (
	askPrice     uint64 = 1_500_000_000
	buyerFunding uint64 = 2_000_000_000
	vaultDeposit uint64 = 2_039_280
	feeRate      uint8  = 35
)

// env wires a complete trading scene: a seller holding one collectible,
// a funded buyer and a market wallet, dispatched through the router
// behind logging, panic recovery and a savepoint around every Deliver.
type env struct {
	db     custody.CacheableKVStore
	auth   *custodytest.CtxAuth
	cash   funds.Controller
	assets token.Controller
	stack  custody.Handler

	seller custody.Condition
	buyer  custody.Condition
	market custody.Address
	mint   custody.Address

	sellerAsset custody.Address
	buyerAsset  custody.Address
	vault       custody.Address
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		db:     store.MemStore(),
		auth:   &custodytest.CtxAuth{Key: "auth"},
		seller: custodytest.NewCondition(),
		buyer:  custodytest.NewCondition(),
		market: custodytest.NewCondition().Address(),
		mint:   custodytest.NewCondition().Address(),

		sellerAsset: custodytest.NewCondition().Address(),
		buyerAsset:  custodytest.NewCondition().Address(),
		vault:       custodytest.NewCondition().Address(),
	}
	e.cash = funds.NewController()
	e.assets = token.NewController(e.cash)

	r := app.NewRouter()
	RegisterRoutes(r, e.auth, e.assets, e.cash)
	e.stack = app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewSavepoint().OnDeliver(),
	).WithHandler(r)

	require.NoError(t, e.assets.Create(e.db, e.sellerAsset, &token.TokenAccount{
		Mint: e.mint, Authority: e.seller.Address(), Quantity: 1,
	}))
	require.NoError(t, e.assets.Create(e.db, e.buyerAsset, &token.TokenAccount{
		Mint: e.mint, Authority: e.buyer.Address(),
	}))
	require.NoError(t, e.assets.Create(e.db, e.vault, &token.TokenAccount{
		Mint: e.mint, Authority: e.seller.Address(), Deposit: vaultDeposit,
	}))
	require.NoError(t, e.cash.IssueFunds(e.db, e.buyer.Address(), buyerFunding))
	return e
}

func (e *env) signedCtx(signers ...custody.Condition) custody.Context {
	return e.auth.SetConditions(context.Background(), signers...)
}

func (e *env) initializeMsg() *InitializeMsg {
	return &InitializeMsg{
		Seller:      e.seller.Address(),
		Mint:        e.mint,
		Vault:       e.vault,
		SellerAsset: e.sellerAsset,
		Price:       askPrice,
		FeeRate:     feeRate,
	}
}

func (e *env) exchangeMsg() *ExchangeMsg {
	return &ExchangeMsg{
		Buyer:        e.buyer.Address(),
		BuyerAsset:   e.buyerAsset,
		Seller:       e.seller.Address(),
		MarketWallet: e.market,
		Vault:        e.vault,
		Payment:      askPrice,
	}
}

func (e *env) cancelMsg() *CancelMsg {
	return &CancelMsg{
		Vault:       e.vault,
		SellerAsset: e.sellerAsset,
	}
}

func (e *env) deliver(ctx custody.Context, msg custody.Msg) error {
	_, err := e.stack.Deliver(ctx, e.db, &custodytest.Tx{Msg: msg})
	return err
}

func (e *env) open(t *testing.T) {
	t.Helper()
	require.NoError(t, e.deliver(e.signedCtx(e.seller), e.initializeMsg()))
}

func (e *env) balance(t *testing.T, addr custody.Address) uint64 {
	t.Helper()
	balance, err := e.cash.Balance(e.db, addr)
	require.NoError(t, err)
	return balance
}

func TestInitialize(t *testing.T) {
	e := newEnv(t)

	ctx := e.signedCtx(e.seller)
	_, err := e.stack.Check(ctx, e.db, &custodytest.Tx{Msg: e.initializeMsg()})
	require.NoError(t, err)
	require.NoError(t, e.deliver(ctx, e.initializeMsg()))

	var offer Offer
	require.NoError(t, NewOfferBucket().One(e.db, e.vault, &offer))
	assert.True(t, offer.Initialized)
	assert.True(t, offer.Seller.Equals(e.seller.Address()))
	assert.True(t, offer.AssetHolder.Equals(e.vault))
	assert.Equal(t, uint8(1), offer.Quantity)
	assert.Equal(t, feeRate, offer.FeeRate)
	assert.Equal(t, askPrice, offer.Price)

	// the collectible moved into the vault and the vault's authority is
	// the custodian's derived capability, not the seller
	vault, err := e.assets.Account(e.db, e.vault)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), vault.Quantity)
	assert.True(t, vault.Authority.Equals(VaultCondition(e.seller.Address()).Address()))

	src, err := e.assets.Account(e.db, e.sellerAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), src.Quantity)
}

func TestInitializeErrors(t *testing.T) {
	other := custodytest.NewCondition()

	cases := map[string]struct {
		setup   func(t *testing.T, e *env)
		signers []custody.Condition
		alter   func(msg *InitializeMsg, e *env)
		wantErr *errors.Error
	}{
		"no signature": {
			signers: nil,
			wantErr: sigs.ErrMissingSignature,
		},
		"signed by someone else": {
			signers: []custody.Condition{other},
			wantErr: errors.ErrUnauthorized,
		},
		"already initialized": {
			setup: func(t *testing.T, e *env) {
				e.open(t)
			},
			wantErr: ErrAlreadyInitialized,
		},
		"seller asset holds wrong quantity": {
			setup: func(t *testing.T, e *env) {
				// a second unit appears in the seller's account
				require.NoError(t, e.assets.Create(e.db, e.sellerAsset2(), &token.TokenAccount{
					Mint: e.mint, Authority: e.seller.Address(), Quantity: 2,
				}))
			},
			alter: func(msg *InitializeMsg, e *env) {
				msg.SellerAsset = e.sellerAsset2()
			},
			wantErr: ErrInvalidAssetQuantity,
		},
		"seller asset of a different mint": {
			setup: func(t *testing.T, e *env) {
				require.NoError(t, e.assets.Create(e.db, e.sellerAsset2(), &token.TokenAccount{
					Mint: custodytest.NewCondition().Address(), Authority: e.seller.Address(), Quantity: 1,
				}))
			},
			alter: func(msg *InitializeMsg, e *env) {
				msg.SellerAsset = e.sellerAsset2()
			},
			wantErr: ErrInvalidAccountBinding,
		},
		"seller asset is the vault": {
			alter: func(msg *InitializeMsg, e *env) {
				msg.SellerAsset = e.vault
			},
			wantErr: ErrInvalidAccountBinding,
		},
		"vault already holds a unit": {
			setup: func(t *testing.T, e *env) {
				stray := custodytest.NewCondition().Address()
				require.NoError(t, e.assets.Create(e.db, stray, &token.TokenAccount{
					Mint: e.mint, Authority: e.seller.Address(), Quantity: 1,
				}))
				require.NoError(t, e.assets.Transfer(e.db, e.seller.Address(), stray, e.vault, 1))
			},
			wantErr: ErrInvalidAssetQuantity,
		},
		"zero price": {
			alter: func(msg *InitializeMsg, e *env) {
				msg.Price = 0
			},
			wantErr: errors.ErrAmount,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t)
			if tc.setup != nil {
				tc.setup(t, e)
			}
			signers := tc.signers
			if signers == nil && tc.wantErr != sigs.ErrMissingSignature {
				signers = []custody.Condition{e.seller}
			}
			msg := e.initializeMsg()
			if tc.alter != nil {
				tc.alter(msg, e)
			}

			err := e.deliver(e.signedCtx(signers...), msg)
			require.Error(t, err)
			assert.True(t, tc.wantErr.Is(err), "got %+v", err)
		})
	}
}

// sellerAsset2 derives a deterministic secondary account id for the
// seller, used by failure scenarios.
func (e *env) sellerAsset2() custody.Address {
	return custody.NewCondition("test", "asset", e.seller.Address()).Address()
}

func TestInitializeQuantityTwoLeavesVaultUntouched(t *testing.T) {
	e := newEnv(t)

	badAsset := e.sellerAsset2()
	require.NoError(t, e.assets.Create(e.db, badAsset, &token.TokenAccount{
		Mint: e.mint, Authority: e.seller.Address(), Quantity: 2,
	}))
	msg := e.initializeMsg()
	msg.SellerAsset = badAsset

	err := e.deliver(e.signedCtx(e.seller), msg)
	assert.True(t, ErrInvalidAssetQuantity.Is(err))

	// no authority change happened
	vault, err := e.assets.Account(e.db, e.vault)
	require.NoError(t, err)
	assert.True(t, vault.Authority.Equals(e.seller.Address()))
	assert.Equal(t, uint64(0), vault.Quantity)
}

func TestInitializeVaultAsSellerAssetCannotMintUnits(t *testing.T) {
	e := newEnv(t)

	// naming the vault as the source account must not pass the custody
	// checks, it would pay the vault with its own holding
	msg := e.initializeMsg()
	msg.SellerAsset = e.vault

	err := e.deliver(e.signedCtx(e.seller), msg)
	assert.True(t, ErrInvalidAccountBinding.Is(err))

	// the vault is untouched and no record was written
	vault, err := e.assets.Account(e.db, e.vault)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), vault.Quantity)
	assert.True(t, vault.Authority.Equals(e.seller.Address()))
	var offer Offer
	err = NewOfferBucket().One(e.db, e.vault, &offer)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestInitializeRequiresEmptyVault(t *testing.T) {
	e := newEnv(t)

	// a pre-loaded vault could never be emptied and closed, so the open
	// must be refused up front
	stray := custodytest.NewCondition().Address()
	require.NoError(t, e.assets.Create(e.db, stray, &token.TokenAccount{
		Mint: e.mint, Authority: e.seller.Address(), Quantity: 1,
	}))
	require.NoError(t, e.assets.Transfer(e.db, e.seller.Address(), stray, e.vault, 1))

	err := e.deliver(e.signedCtx(e.seller), e.initializeMsg())
	assert.True(t, ErrInvalidAssetQuantity.Is(err))

	// the collectible stayed with the seller and no record exists
	src, err := e.assets.Account(e.db, e.sellerAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), src.Quantity)
	var offer Offer
	err = NewOfferBucket().One(e.db, e.vault, &offer)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestExchange(t *testing.T) {
	e := newEnv(t)
	e.open(t)

	ctx := e.signedCtx(e.buyer)
	_, err := e.stack.Check(ctx, e.db, &custodytest.Tx{Msg: e.exchangeMsg()})
	require.NoError(t, err)
	require.NoError(t, e.deliver(ctx, e.exchangeMsg()))

	// fee = 1_500_000_000 * 35 / 1000, net is the rest
	const fee, net = 52_500_000, 1_447_500_000
	assert.Equal(t, buyerFunding-askPrice, e.balance(t, e.buyer.Address()))
	assert.Equal(t, uint64(net)+vaultDeposit, e.balance(t, e.seller.Address()))
	assert.Equal(t, uint64(fee), e.balance(t, e.market))

	// buyer holds the collectible, vault and record are gone
	got, err := e.assets.Account(e.db, e.buyerAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Quantity)

	_, err = e.assets.Account(e.db, e.vault)
	assert.True(t, errors.ErrNotFound.Is(err))
	var offer Offer
	err = NewOfferBucket().One(e.db, e.vault, &offer)
	assert.True(t, errors.ErrNotFound.Is(err))

	// terminated identifiers are inert
	err = e.deliver(e.signedCtx(e.buyer), e.exchangeMsg())
	assert.True(t, errors.ErrNotFound.Is(err))
	err = e.deliver(e.signedCtx(e.seller), e.cancelMsg())
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestExchangeErrors(t *testing.T) {
	cases := map[string]struct {
		alter   func(msg *ExchangeMsg, e *env)
		signers func(e *env) []custody.Condition
		setup   func(t *testing.T, e *env)
		wantErr *errors.Error
	}{
		"no signature": {
			signers: func(e *env) []custody.Condition { return nil },
			wantErr: sigs.ErrMissingSignature,
		},
		"payment above price": {
			alter:   func(msg *ExchangeMsg, e *env) { msg.Payment = askPrice + 1 },
			wantErr: ErrPriceMismatch,
		},
		"payment below price": {
			alter:   func(msg *ExchangeMsg, e *env) { msg.Payment = askPrice - 1 },
			wantErr: ErrPriceMismatch,
		},
		"insufficient funds": {
			setup: func(t *testing.T, e *env) {
				// drain the buyer almost completely
				require.NoError(t, e.cash.MoveFunds(e.db, e.buyer.Address(), e.market, buyerFunding-1))
			},
			wantErr: funds.ErrInsufficientFunds,
		},
		"unaffordable payment reported as insufficient funds": {
			// the funds check comes before the price comparison
			alter:   func(msg *ExchangeMsg, e *env) { msg.Payment = buyerFunding + 1 },
			wantErr: funds.ErrInsufficientFunds,
		},
		"wrong seller reference": {
			alter: func(msg *ExchangeMsg, e *env) {
				msg.Seller = custodytest.NewCondition().Address()
			},
			wantErr: ErrInvalidAccountBinding,
		},
		"unknown vault": {
			alter: func(msg *ExchangeMsg, e *env) {
				msg.Vault = custodytest.NewCondition().Address()
			},
			wantErr: errors.ErrNotFound,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t)
			e.open(t)
			if tc.setup != nil {
				tc.setup(t, e)
			}
			msg := e.exchangeMsg()
			if tc.alter != nil {
				tc.alter(msg, e)
			}
			signers := []custody.Condition{e.buyer}
			if tc.signers != nil {
				signers = tc.signers(e)
			}
			sellerBefore := e.balance(t, e.seller.Address())
			marketBefore := e.balance(t, e.market)

			err := e.deliver(e.signedCtx(signers...), msg)
			require.Error(t, err)
			assert.True(t, tc.wantErr.Is(err), "got %+v", err)

			// no funds moved and the offer stays open
			assert.Equal(t, sellerBefore, e.balance(t, e.seller.Address()))
			assert.Equal(t, marketBefore, e.balance(t, e.market))
			var offer Offer
			assert.NoError(t, NewOfferBucket().One(e.db, e.vault, &offer))
		})
	}
}

func TestExchangeRollsBackOnSubStepFailure(t *testing.T) {
	e := newEnv(t)
	e.open(t)

	// a buyer asset account of a foreign mint passes validation but
	// makes the custody transfer fail after the payment moved
	foreignAsset := custodytest.NewCondition().Address()
	require.NoError(t, e.assets.Create(e.db, foreignAsset, &token.TokenAccount{
		Mint: custodytest.NewCondition().Address(), Authority: e.buyer.Address(),
	}))
	msg := e.exchangeMsg()
	msg.BuyerAsset = foreignAsset

	err := e.deliver(e.signedCtx(e.buyer), msg)
	require.Error(t, err)

	// the savepoint discarded the staged payment
	assert.Equal(t, buyerFunding, e.balance(t, e.buyer.Address()))
	assert.Equal(t, uint64(0), e.balance(t, e.seller.Address()))
	assert.Equal(t, uint64(0), e.balance(t, e.market))
	var offer Offer
	assert.NoError(t, NewOfferBucket().One(e.db, e.vault, &offer))
}

func TestCancel(t *testing.T) {
	e := newEnv(t)
	e.open(t)

	ctx := e.signedCtx(e.seller)
	_, err := e.stack.Check(ctx, e.db, &custodytest.Tx{Msg: e.cancelMsg()})
	require.NoError(t, err)
	require.NoError(t, e.deliver(ctx, e.cancelMsg()))

	// the collectible is back with the seller
	src, err := e.assets.Account(e.db, e.sellerAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), src.Quantity)
	assert.True(t, src.Authority.Equals(e.seller.Address()))

	// vault and record are decommissioned, deposit refunded
	_, err = e.assets.Account(e.db, e.vault)
	assert.True(t, errors.ErrNotFound.Is(err))
	var offer Offer
	err = NewOfferBucket().One(e.db, e.vault, &offer)
	assert.True(t, errors.ErrNotFound.Is(err))
	assert.Equal(t, vaultDeposit, e.balance(t, e.seller.Address()))

	// no payment balances changed
	assert.Equal(t, buyerFunding, e.balance(t, e.buyer.Address()))
	assert.Equal(t, uint64(0), e.balance(t, e.market))
}

func TestCancelUnauthorized(t *testing.T) {
	e := newEnv(t)
	e.open(t)

	// the buyer, or anyone but the seller, cannot cancel
	err := e.deliver(e.signedCtx(e.buyer), e.cancelMsg())
	assert.True(t, errors.ErrUnauthorized.Is(err))

	// unsigned cancellation is reported as a missing signature
	err = e.deliver(e.signedCtx(), e.cancelMsg())
	assert.True(t, sigs.ErrMissingSignature.Is(err))

	// the offer is still open and the vault untouched
	var offer Offer
	require.NoError(t, NewOfferBucket().One(e.db, e.vault, &offer))
	vault, err := e.assets.Account(e.db, e.vault)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), vault.Quantity)
	assert.True(t, vault.Authority.Equals(VaultCondition(e.seller.Address()).Address()))
}

func TestDoubleInitialize(t *testing.T) {
	e := newEnv(t)

	// both attempts are validated against the same store state, only
	// the first one can win
	require.NoError(t, e.deliver(e.signedCtx(e.seller), e.initializeMsg()))
	err := e.deliver(e.signedCtx(e.seller), e.initializeMsg())
	assert.True(t, ErrAlreadyInitialized.Is(err))
}

func TestGenesisOffers(t *testing.T) {
	e := newEnv(t)

	opts := custody.Options{
		"escrow": []byte(`[{"seller": "` + e.seller.Address().String() +
			`", "vault": "` + e.vault.String() +
			`", "price": 5000, "fee_rate": 20}]`),
	}
	var ini Initializer
	require.NoError(t, ini.FromGenesis(opts, e.db))

	var offer Offer
	require.NoError(t, NewOfferBucket().One(e.db, e.vault, &offer))
	assert.Equal(t, uint64(5000), offer.Price)
	assert.Equal(t, uint8(20), offer.FeeRate)
	assert.True(t, offer.Seller.Equals(e.seller.Address()))
}

/*
Package sigs provides basic authentication middleware to verify the
signatures on the transaction, and maintain nonces for replay
protection.
*/
package sigs

import (
	"github.com/genezys/custody"
	"github.com/genezys/custody/errors"
)

// Decorator verifies the signatures and adds them to the context.
// It is the first authentication gate of the processing stack: by
// default a transaction with no valid signature is rejected.
type Decorator struct {
	allowMissingSigs bool
}

var _ custody.Decorator = Decorator{}

// NewDecorator returns a default authentication decorator, which
// rejects all unsigned transactions.
func NewDecorator() Decorator {
	return Decorator{allowMissingSigs: false}
}

// AllowMissingSigs allows us to pass along items with no signatures
func (d Decorator) AllowMissingSigs() Decorator {
	d.allowMissingSigs = true
	return d
}

// Check verifies signatures before calling down the stack
func (d Decorator) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	var err error
	if ctx, err = d.authenticate(ctx, store, tx); err != nil {
		return nil, err
	}
	return next.Check(ctx, store, tx)
}

// Deliver verifies signatures before calling down the stack
func (d Decorator) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	var err error
	if ctx, err = d.authenticate(ctx, store, tx); err != nil {
		return nil, err
	}
	return next.Deliver(ctx, store, tx)
}

func (d Decorator) authenticate(ctx custody.Context, store custody.KVStore, tx custody.Tx) (custody.Context, error) {
	stx, ok := tx.(SignedTx)
	if !ok {
		return ctx, errors.Wrapf(errors.ErrMsg, "transaction type %T cannot be signed", tx)
	}
	chainID := custody.GetChainID(ctx)
	signers, err := VerifyTxSignatures(store, stx, chainID)
	if err != nil {
		return ctx, err
	}
	if len(signers) == 0 && !d.allowMissingSigs {
		return ctx, errors.Wrap(ErrMissingSignature, "transaction carries no signatures")
	}
	return withSigners(ctx, signers), nil
}

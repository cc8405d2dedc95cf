package sigs

import (
	"context"

	"github.com/genezys/custody"
	"github.com/genezys/custody/x"
)

type contextKey int // local to the sigs module

const (
	contextKeySigners contextKey = iota
)

// withSigners is a private method, as only this module can add a signer
func withSigners(ctx custody.Context, signers []custody.Condition) custody.Context {
	return context.WithValue(ctx, contextKeySigners, signers)
}

// Authenticate implements x.Authenticator and provides authentication
// based on signatures that were validated by the decorator.
type Authenticate struct {
}

var _ x.Authenticator = Authenticate{}

// GetConditions returns who signed the current Context.
// May be empty.
func (a Authenticate) GetConditions(ctx custody.Context) []custody.Condition {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeySigners).([]custody.Condition)
	if val == nil {
		return nil
	}

	// if we have signers, we don't want them to be modified by a handler
	res := make([]custody.Condition, len(val))
	copy(res, val)
	return res
}

// HasAddress returns true if the given address had signed in the
// current Context.
func (a Authenticate) HasAddress(ctx custody.Context, addr custody.Address) bool {
	signers := a.GetConditions(ctx)
	for _, s := range signers {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

package sigs

import (
	"github.com/genezys/custody/errors"
)

// Error codes 1000-1009 are reserved for the sigs extension.
var (
	// ErrMissingSignature is returned when an operation that demands a
	// signed transaction is given one carrying no signatures at all.
	ErrMissingSignature = errors.Register(1000, "missing signature")

	// ErrInvalidSequence is returned when the sequence (nonce) of a
	// signature does not match the state of the signer's account.
	ErrInvalidSequence = errors.Register(1001, "invalid sequence")
)

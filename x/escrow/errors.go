package escrow

import (
	"github.com/genezys/custody/errors"
)

// Error codes 1030-1039 are reserved for the escrow extension.
var (
	// ErrAlreadyInitialized is returned when opening an offer for a
	// vault that already has an open offer.
	ErrAlreadyInitialized = errors.Register(1030, "escrow already initialized")

	// ErrInvalidAssetQuantity is returned when the seller's asset
	// account does not hold exactly one unit of the collectible.
	ErrInvalidAssetQuantity = errors.Register(1031, "invalid asset quantity")

	// ErrPriceMismatch is returned when the payment does not equal the
	// asked price exactly. No partial or excess payment is accepted.
	ErrPriceMismatch = errors.Register(1032, "price mismatch")

	// ErrInvalidAccountBinding is returned when an account reference in
	// the message does not match what the offer record binds it to.
	ErrInvalidAccountBinding = errors.Register(1033, "invalid account binding")
)

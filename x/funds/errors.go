package funds

import (
	"github.com/genezys/custody/errors"
)

// Error codes 1010-1019 are reserved for the funds extension.
var (
	// ErrInsufficientFunds is returned when a wallet does not hold
	// enough native value to cover a transfer.
	ErrInsufficientFunds = errors.Register(1010, "insufficient funds")
)

package escrow

import (
	"math"

	"github.com/genezys/custody/errors"
)

// feeRateDivisor makes the fee rate a parts-per-thousand figure, so a
// rate of 35 takes a 3.5% cut.
const feeRateDivisor = 1000

// Split divides the price between the marketplace and the seller.
//
// The fee is price*feeRate/1000 with the division truncating, so the
// rounding remainder always stays with the seller. The two parts sum to
// the price exactly. A multiplication that would not fit in 64 bits
// fails with ErrOverflow instead of wrapping.
func Split(price uint64, feeRate uint8) (fee uint64, net uint64, err error) {
	rate := uint64(feeRate)
	if rate != 0 && price > math.MaxUint64/rate {
		return 0, 0, errors.Wrapf(errors.ErrOverflow, "%d * %d", price, rate)
	}
	fee = price * rate / feeRateDivisor
	net = price - fee
	return fee, net, nil
}

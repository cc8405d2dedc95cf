package escrow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genezys/custody/errors"
)

func TestSplit(t *testing.T) {
	cases := map[string]struct {
		price   uint64
		feeRate uint8
		wantFee uint64
		wantNet uint64
	}{
		"documented scenario, 3.5 percent": {
			price: 1_500_000_000, feeRate: 35,
			wantFee: 52_500_000, wantNet: 1_447_500_000,
		},
		"zero fee rate": {
			price: 1_000_000, feeRate: 0,
			wantFee: 0, wantNet: 1_000_000,
		},
		"truncation favors the seller": {
			// 999 * 35 / 1000 = 34.965, truncated to 34
			price: 999, feeRate: 35,
			wantFee: 34, wantNet: 965,
		},
		"price below divisor": {
			price: 10, feeRate: 35,
			wantFee: 0, wantNet: 10,
		},
		"maximal fee rate": {
			price: 1000, feeRate: 255,
			wantFee: 255, wantNet: 745,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			fee, net, err := Split(tc.price, tc.feeRate)
			require.NoError(t, err)
			assert.Equal(t, tc.wantFee, fee)
			assert.Equal(t, tc.wantNet, net)
			assert.Equal(t, tc.price, fee+net)
		})
	}
}

func TestSplitOverflow(t *testing.T) {
	_, _, err := Split(math.MaxUint64, 35)
	require.Error(t, err)
	assert.True(t, errors.ErrOverflow.Is(err))

	// a zero rate can never overflow
	fee, net, err := Split(math.MaxUint64, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), fee)
	assert.Equal(t, uint64(math.MaxUint64), net)
}

func TestSplitConservation(t *testing.T) {
	prices := []uint64{1, 999, 1000, 1001, 123_456_789, 1_500_000_000}
	rates := []uint8{0, 1, 35, 100, 255}
	for _, price := range prices {
		for _, rate := range rates {
			fee, net, err := Split(price, rate)
			require.NoError(t, err)
			assert.Equal(t, price, fee+net)
			assert.Equal(t, price*uint64(rate)/1000, fee)
		}
	}
}

package escrow

import (
	"github.com/genezys/custody"
)

const optKey = "escrow"

// GenesisOffer is used to parse pre-opened offers from the genesis
// file. The referenced vault must be seeded as a token account holding
// the collectible under the custodian's capability.
type GenesisOffer struct {
	Seller  custody.Address `json:"seller"`
	Vault   custody.Address `json:"vault"`
	Price   uint64          `json:"price"`
	FeeRate uint8           `json:"fee_rate"`
}

// Initializer fulfils the custody.Initializer interface to load data
// from the genesis file
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis will parse initial offers from genesis and save them to
// the database
func (Initializer) FromGenesis(opts custody.Options, kv custody.KVStore) error {
	offers := []GenesisOffer{}
	if err := opts.ReadOptions(optKey, &offers); err != nil {
		return err
	}
	bucket := NewOfferBucket()
	for _, g := range offers {
		offer := Offer{
			Initialized: true,
			Seller:      g.Seller,
			AssetHolder: g.Vault,
			Quantity:    1,
			FeeRate:     g.FeeRate,
			Price:       g.Price,
		}
		if err := bucket.Put(kv, g.Vault, &offer); err != nil {
			return err
		}
	}
	return nil
}

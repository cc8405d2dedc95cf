package funds

import (
	"github.com/genezys/custody"
)

const optKey = "wallets"

// GenesisAccount is used to parse the json from genesis file
// use custody.Address, so address in hex, not base64
type GenesisAccount struct {
	Address custody.Address `json:"address"`
	Balance uint64          `json:"balance"`
}

// Initializer fulfils the custody.Initializer interface to load data
// from the genesis file
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis and save it
// to the database
func (Initializer) FromGenesis(opts custody.Options, kv custody.KVStore) error {
	accts := []GenesisAccount{}
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	bucket := NewWalletBucket()
	for _, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return err
		}
		wallet := Wallet{Balance: acct.Balance}
		if err := bucket.Put(kv, acct.Address, &wallet); err != nil {
			return err
		}
	}
	return nil
}

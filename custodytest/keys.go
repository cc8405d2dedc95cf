package custodytest

import (
	"github.com/genezys/custody"
	"github.com/genezys/custody/crypto"
)

func NewKey() crypto.Signer {
	return crypto.GenPrivKeyEd25519()
}

func NewCondition() custody.Condition {
	return NewKey().PublicKey().Condition()
}

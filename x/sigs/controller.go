package sigs

import (
	"crypto/sha512"

	"github.com/genezys/custody"
	"github.com/genezys/custody/crypto"
	"github.com/genezys/custody/errors"
	"github.com/genezys/custody/orm"
)

// SignCodeV1 marks the version of the sign bytes format.
var SignCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// BuildSignBytes combines the transaction content with the chain ID and
// the signer's sequence into the exact payload that is signed. Mixing in
// the chain ID prevents cross-chain replay, the sequence prevents replay
// on the same chain.
func BuildSignBytes(signBytes []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative sequence")
	}
	if !custody.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}

	// encode nonce and chainID into the sign bytes
	output := make([]byte, 0, len(SignCodeV1)+1+len(chainID)+8+len(signBytes))
	output = append(output, SignCodeV1...)
	output = append(output, byte(len(chainID)))
	output = append(output, []byte(chainID)...)
	output = append(output, nonceBytes(seq)...)
	output = append(output, signBytes...)

	// now, we hash it to standard size (and to fit into crypto-lib
	// which expects to hash the message itself)
	hashed := sha512.Sum512(output)
	return hashed[:], nil
}

// BuildSignBytesTx calculates the sign bytes given a tx.
func BuildSignBytesTx(tx SignedTx, chainID string, seq int64) ([]byte, error) {
	signBytes, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	return BuildSignBytes(signBytes, chainID, seq)
}

// VerifyTxSignatures checks all the signatures on the tx, which must
// have at least one.
//
// It returns an array of conditions derived from the public keys of
// every valid signature, or an error if any signature is invalid.
func VerifyTxSignatures(store custody.KVStore, tx SignedTx, chainID string) ([]custody.Condition, error) {
	bytes, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	sigs := tx.GetSignatures()
	signers := make([]custody.Condition, 0, len(sigs))

	bucket := NewUserBucket()
	for _, sig := range sigs {
		signer, err := VerifySignature(bucket, store, sig, bytes, chainID)
		if err != nil {
			return nil, err
		}
		signers = append(signers, signer)
	}
	return signers, nil
}

// VerifySignature checks one signature against the sign bytes and the
// stored state of the signer, and updates the stored sequence on
// success.
func VerifySignature(bucket orm.ModelBucket, store custody.KVStore, sig *StdSignature, signBytes []byte, chainID string) (custody.Condition, error) {
	if sig == nil {
		return nil, errors.Wrap(ErrMissingSignature, "signature missing")
	}
	if err := sig.Validate(); err != nil {
		return nil, err
	}

	pub := sig.Pubkey
	addr := pub.Address()
	user, err := loadUser(bucket, store, addr)
	if err != nil {
		return nil, err
	}
	if user.Pubkey == nil {
		if err := user.SetPubkey(pub); err != nil {
			return nil, err
		}
	}

	toSign, err := BuildSignBytes(signBytes, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}
	if !pub.Verify(toSign, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}

	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if err := bucket.Put(store, addr, user); err != nil {
		return nil, err
	}
	return pub.Condition(), nil
}

// SignTx creates a signature for the given transaction with the given
// sequence, which must match the stored counter of the signer.
func SignTx(signer crypto.Signer, tx SignedTx, chainID string, seq int64) (*StdSignature, error) {
	signBytes, err := BuildSignBytesTx(tx, chainID, seq)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(signBytes)
	if err != nil {
		return nil, err
	}
	return &StdSignature{
		Pubkey:    signer.PublicKey(),
		Signature: sig,
		Sequence:  seq,
	}, nil
}

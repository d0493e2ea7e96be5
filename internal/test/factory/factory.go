// Package factory builds validator keys, validator sets and signed headers
// for tests.
package factory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/unionlabs/union-sub007/crypto"
	"github.com/unionlabs/union-sub007/crypto/ed25519"
	"github.com/unionlabs/union-sub007/types"
)

// PrivKeys is a helper type for testing.
//
// It lets us simulate signing with many keys.  The main use case is to create
// a set, and call GenSignedHeader to get properly signed header for testing.
//
// You can set different weights of validators each time you call ToValidators,
// and can optionally extend the validator set later with Extend.
type PrivKeys []crypto.PrivKey

// GenPrivKeys produces an array of private keys to generate commits.
func GenPrivKeys(n int) PrivKeys {
	res := make(PrivKeys, n)
	for i := range res {
		res[i] = ed25519.GenPrivKey()
	}
	return res
}

// GenPrivKeysFromSecret produces n deterministic ed25519 keys derived from
// prefix, so fixtures hash to the same values on every run.
func GenPrivKeysFromSecret(prefix string, n int) PrivKeys {
	res := make(PrivKeys, n)
	for i := range res {
		res[i] = ed25519.GenPrivKeyFromSecret([]byte(fmt.Sprintf("%s-%d", prefix, i)))
	}
	return res
}

// PrivKeysFromSeeds produces the ed25519 keys of the given RFC 8032 seeds.
func PrivKeysFromSeeds(seeds ...[]byte) PrivKeys {
	res := make(PrivKeys, len(seeds))
	for i, seed := range seeds {
		res[i] = ed25519.PrivKeyFromSeed(seed)
	}
	return res
}

// Extend adds n more keys (to remove, just take a slice).
func (pkz PrivKeys) Extend(n int) PrivKeys {
	extra := GenPrivKeys(n)
	return append(pkz, extra...)
}

// ChangeKeys drops the first delta keys and appends delta fresh ones.
func (pkz PrivKeys) ChangeKeys(delta int) PrivKeys {
	newKeys := pkz[delta:]
	return newKeys.Extend(delta)
}

// ToValidators produces a valset from the set of keys.
// The first key has weight `init` and it increases by `inc` every step
// so we can have all the same weight, or a simple linear distribution
// (should be enough for testing).
func (pkz PrivKeys) ToValidators(init, inc int64) *types.ValidatorSet {
	res := make([]*types.Validator, len(pkz))
	for i, k := range pkz {
		res[i] = types.NewValidator(k.PubKey(), init+int64(i)*inc)
	}
	return types.NewValidatorSet(res)
}

// ToValidatorsWithPowers produces a valset whose i-th member has powers[i].
func (pkz PrivKeys) ToValidatorsWithPowers(powers ...int64) *types.ValidatorSet {
	res := make([]*types.Validator, len(pkz))
	for i, k := range pkz {
		res[i] = types.NewValidator(k.PubKey(), powers[i])
	}
	return types.NewValidatorSet(res)
}

// SignHeader properly signs the header with all keys from first to last exclusive.
func (pkz PrivKeys) SignHeader(t testing.TB, header *types.Header, valSet *types.ValidatorSet, first, last int) *types.Commit {
	t.Helper()

	commitSigs := make([]types.CommitSig, valSet.Size())
	for i := range commitSigs {
		commitSigs[i] = types.NewCommitSigAbsent()
	}

	blockID := types.BlockID{
		Hash:          header.Hash(),
		PartSetHeader: types.PartSetHeader{Total: 1, Hash: crypto.CRandBytes(32)},
	}

	// Fill in the votes we want.
	for i := first; i < last && i < len(pkz); i++ {
		vote := MakeVote(t, header, valSet, pkz[i], blockID)
		commitSigs[vote.ValidatorIndex] = vote.CommitSig()
	}

	return &types.Commit{
		Height:     header.Height,
		Round:      1,
		BlockID:    blockID,
		Signatures: commitSigs,
	}
}

// MakeVote signs a precommit for blockID at the header's height.
func MakeVote(t testing.TB, header *types.Header, valset *types.ValidatorSet, key crypto.PrivKey,
	blockID types.BlockID) *types.Vote {
	t.Helper()

	addr := key.PubKey().Address()
	idx, _ := valset.GetByAddress(addr)
	require.True(t, idx >= 0, "key %v is not part of the validator set", addr)
	vote := &types.Vote{
		ValidatorAddress: addr,
		ValidatorIndex:   idx,
		Height:           header.Height,
		Round:            1,
		Timestamp:        header.Time.Add(time.Second),
		Type:             types.PrecommitType,
		BlockID:          blockID,
	}

	// Sign it
	signBytes := types.VoteSignBytes(header.ChainID, vote)
	sig, err := key.Sign(signBytes)
	require.NoError(t, err)

	vote.Signature = sig

	return vote
}

// MakeHeader builds an unsigned header committing to valset and nextValset.
func MakeHeader(chainID string, height int64, bTime time.Time,
	valset, nextValset *types.ValidatorSet, appHash []byte) *types.Header {
	return &types.Header{
		Version: types.Consensus{Block: 11, App: 0},
		ChainID: chainID,
		Height:  height,
		Time:    bTime,
		// LastBlockID
		// LastCommitHash
		ValidatorsHash:     valset.Hash(),
		NextValidatorsHash: nextValset.Hash(),
		DataHash:           Hash("data_hash"),
		AppHash:            appHash,
		ConsensusHash:      Hash("cons_hash"),
		LastResultsHash:    Hash("results_hash"),
		ProposerAddress:    valset.Validators[0].Address,
	}
}

// GenSignedHeader calls MakeHeader and SignHeader and combines them into a SignedHeader.
func (pkz PrivKeys) GenSignedHeader(t testing.TB, chainID string, height int64, bTime time.Time,
	valset, nextValset *types.ValidatorSet, appHash []byte, first, last int) *types.SignedHeader {
	t.Helper()

	header := MakeHeader(chainID, height, bTime, valset, nextValset, appHash)
	return &types.SignedHeader{
		Header: header,
		Commit: pkz.SignHeader(t, header, valset, first, last),
	}
}

// Hash is SHA256 of s, handy for fixture hashes.
func Hash(s string) []byte {
	return crypto.Checksum([]byte(s))
}

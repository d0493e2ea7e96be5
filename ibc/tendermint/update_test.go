package tendermint_test

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/unionlabs/union-sub007/crypto"
	"github.com/unionlabs/union-sub007/crypto/ed25519"
	"github.com/unionlabs/union-sub007/ibc/client"
	"github.com/unionlabs/union-sub007/ibc/commitment"
	"github.com/unionlabs/union-sub007/ibc/tendermint"
	"github.com/unionlabs/union-sub007/internal/test/factory"
	"github.com/unionlabs/union-sub007/light"
	"github.com/unionlabs/union-sub007/types"
)

const (
	chainID        = "union-testnet-1"
	trustingPeriod = 14 * 24 * time.Hour
	unbonding      = 21 * 24 * time.Hour
	maxClockDrift  = 10 * time.Second
)

var (
	hash          = factory.Hash
	bTime         = time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)
	trustedHeight = client.NewHeight(1, 1633807)
)

// fixture is a client trusting vals at trustedHeight and a header at
// 1633942 signed by every key.
type fixture struct {
	keys      factory.PrivKeys
	vals      *types.ValidatorSet
	cs        *tendermint.ClientState
	consState *tendermint.ConsensusState
	header    *tendermint.Header
	now       time.Time
}

func newFixture(t *testing.T, height int64, first, last int) *fixture {
	t.Helper()

	keys := factory.GenPrivKeys(4)
	vals := keys.ToValidators(10, 0)
	return &fixture{
		keys: keys,
		vals: vals,
		cs: tendermint.NewClientState(chainID, light.DefaultTrustLevel, trustingPeriod, unbonding,
			maxClockDrift, trustedHeight, commitment.SDKSpecs()),
		consState: tendermint.NewConsensusState(bTime, hash("trusted_app_hash"), vals.Hash()),
		header: &tendermint.Header{
			SignedHeader: keys.GenSignedHeader(t, chainID, height, bTime.Add(time.Hour), vals, vals,
				hash("app_hash"), first, last),
			ValidatorSet:      vals,
			TrustedHeight:     trustedHeight,
			TrustedValidators: vals,
		},
		now: bTime.Add(2 * time.Hour),
	}
}

func (f *fixture) verify() (*tendermint.StateUpdate, error) {
	return tendermint.VerifyHeader(f.cs, f.consState, f.header, f.now)
}

func TestVerifyHeader(t *testing.T) {
	f := newFixture(t, 1633942, 0, 4)

	update, err := f.verify()
	require.NoError(t, err)

	assert.Equal(t, client.NewHeight(1, 1633942), update.Height)
	assert.Equal(t, f.header.Header.NextValidatorsHash, update.ConsensusState.NextValidatorsHash)
	assert.Equal(t, f.header.Header.AppHash, update.ConsensusState.Root)
	assert.True(t, f.header.Header.Time.Equal(update.ConsensusState.Timestamp))
	require.NotNil(t, update.ClientState)
	assert.Equal(t, client.NewHeight(1, 1633942), update.ClientState.LatestHeight)
	// the input is not modified
	assert.Equal(t, trustedHeight, f.cs.LatestHeight)

	cs, consState := tendermint.Apply(*f.cs, *update)
	assert.Equal(t, client.NewHeight(1, 1633942), cs.LatestHeight)
	assert.True(t, consState.Equal(*update.ConsensusState))
}

// TestVerifyHeaderKnownValidatorsHash trusts a next validators hash given as
// bytes rather than computed here. The validators use the RFC 8032 test keys.
func TestVerifyHeaderKnownValidatorsHash(t *testing.T) {
	seeds := []string{
		"9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60",
		"4ccd089b28ff96da9db6c346ec114e0f5b8a319f35aba624da8cf6ed4fb8a6fb",
		"c5aa8df43f9f837bedb7442f31dcb7b166d38535076f094b85ce3a2e0b4458f7",
	}
	seedBytes := make([][]byte, len(seeds))
	for i, s := range seeds {
		bz, err := hex.DecodeString(s)
		require.NoError(t, err)
		seedBytes[i] = bz
	}
	keys := factory.PrivKeysFromSeeds(seedBytes...)
	vals := keys.ToValidatorsWithPowers(10, 20, 30)

	nextValsHash, err := hex.DecodeString("523E0786AE6B8E3AFFFCD7635004927F64266990830F3490FFA1BB1D10989E2C")
	require.NoError(t, err)

	cs := tendermint.NewClientState(chainID, light.DefaultTrustLevel, trustingPeriod, unbonding,
		maxClockDrift, trustedHeight, commitment.SDKSpecs())
	consState := tendermint.NewConsensusState(bTime, hash("trusted_app_hash"), nextValsHash)
	header := &tendermint.Header{
		SignedHeader: keys.GenSignedHeader(t, chainID, 1633942, bTime.Add(time.Hour), vals, vals,
			hash("app_hash"), 0, len(keys)),
		ValidatorSet:      vals,
		TrustedHeight:     trustedHeight,
		TrustedValidators: vals,
	}

	update, err := tendermint.VerifyHeader(cs, consState, header, bTime.Add(2*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, nextValsHash, update.ConsensusState.NextValidatorsHash)
	assert.Equal(t, client.NewHeight(1, 1633942), update.ClientState.LatestHeight)
}

func TestVerifyHeaderAdjacent(t *testing.T) {
	f := newFixture(t, 1633808, 0, 4)

	update, err := f.verify()
	require.NoError(t, err)
	assert.Equal(t, client.NewHeight(1, 1633808), update.Height)
}

func TestVerifyHeaderTimeBoundaries(t *testing.T) {
	t.Run("trusted consensus state expires exactly now", func(t *testing.T) {
		f := newFixture(t, 1633942, 0, 4)
		f.now = bTime.Add(trustingPeriod)

		_, err := f.verify()
		require.NoError(t, err)
	})

	t.Run("header exactly at now plus max clock drift", func(t *testing.T) {
		f := newFixture(t, 1633942, 0, 4)
		f.now = bTime.Add(time.Hour - maxClockDrift)

		_, err := f.verify()
		require.NoError(t, err)
	})
}

func TestVerifyHeaderErrors(t *testing.T) {
	testCases := []struct {
		name     string
		height   int64
		first    int
		last     int
		malleate func(t *testing.T, f *fixture)
		expErr   error
	}{
		{
			"frozen client", 1633942, 0, 4,
			func(t *testing.T, f *fixture) { f.cs.FrozenHeight = client.NewHeight(1, 1) },
			tendermint.ErrClientFrozen,
		},
		{
			"chain id without revision", 1633942, 0, 4,
			func(t *testing.T, f *fixture) { f.header.Header.ChainID = "uniontestnet" },
			tendermint.ErrInvalidChainID,
		},
		{
			"client tracks another chain", 1633942, 0, 4,
			func(t *testing.T, f *fixture) { f.cs.ChainID = "union-devnet-1" },
			tendermint.ErrInvalidChainID,
		},
		{
			"trusted height from another revision", 1633942, 0, 4,
			func(t *testing.T, f *fixture) { f.header.TrustedHeight = client.NewHeight(2, 1633807) },
			tendermint.ErrRevisionMismatch,
		},
		{
			"same height as trusted", 1633942, 0, 4,
			func(t *testing.T, f *fixture) { f.header.TrustedHeight = client.NewHeight(1, 1633942) },
			tendermint.ErrHeightNotMoreRecent,
		},
		{
			"lower height than trusted", 1633942, 0, 4,
			func(t *testing.T, f *fixture) { f.header.TrustedHeight = client.NewHeight(1, 1700000) },
			tendermint.ErrHeightNotMoreRecent,
		},
		{
			"trusted height overflows", 1633942, 0, 4,
			func(t *testing.T, f *fixture) { f.header.TrustedHeight = client.NewHeight(1, math.MaxUint64) },
			tendermint.ErrInvalidHeaderHeight,
		},
		{
			"trusted validators do not match", 1633942, 0, 4,
			func(t *testing.T, f *fixture) { f.header.TrustedValidators = f.keys.ToValidators(11, 0) },
			tendermint.ErrTrustedValidatorsMismatch,
		},
		{
			"nil trusted validators", 1633942, 0, 4,
			func(t *testing.T, f *fixture) { f.header.TrustedValidators = nil },
			tendermint.ErrInvalidValidatorSet,
		},
		{
			"nil validator set", 1633942, 0, 4,
			func(t *testing.T, f *fixture) { f.header.ValidatorSet = nil },
			tendermint.ErrInvalidValidatorSet,
		},
		{
			"nil trusted validator", 1633942, 0, 4,
			func(t *testing.T, f *fixture) {
				f.header.TrustedValidators = f.vals.Copy()
				f.header.TrustedValidators.Validators[1] = nil
			},
			tendermint.ErrInvalidValidatorSet,
		},
		{
			"nil validator", 1633942, 0, 4,
			func(t *testing.T, f *fixture) {
				f.header.ValidatorSet = f.vals.Copy()
				f.header.ValidatorSet.Validators[1] = nil
			},
			tendermint.ErrInvalidValidatorSet,
		},
		{
			"trusted validator key of the wrong size", 1633942, 0, 4,
			func(t *testing.T, f *fixture) {
				f.header.TrustedValidators = f.vals.Copy()
				f.header.TrustedValidators.Validators[0].PubKey = ed25519.PubKey(make([]byte, 31))
			},
			tendermint.ErrInvalidValidatorSet,
		},
		{
			"validator key of the wrong size", 1633942, 0, 4,
			func(t *testing.T, f *fixture) {
				f.header.ValidatorSet = f.vals.Copy()
				f.header.ValidatorSet.Validators[0].PubKey = ed25519.PubKey(make([]byte, 33))
			},
			tendermint.ErrInvalidValidatorSet,
		},
		{
			"trusted validator address does not match key", 1633942, 0, 4,
			func(t *testing.T, f *fixture) {
				f.header.TrustedValidators = f.vals.Copy()
				f.header.TrustedValidators.Validators[2].Address = crypto.AddressHash([]byte("elsewhere"))
			},
			tendermint.ErrInvalidValidatorSet,
		},
		{
			"validator address does not match key", 1633942, 0, 4,
			func(t *testing.T, f *fixture) {
				f.header.ValidatorSet = f.vals.Copy()
				f.header.ValidatorSet.Validators[2].Address = crypto.AddressHash([]byte("elsewhere"))
			},
			tendermint.ErrInvalidValidatorSet,
		},
		{
			"validator set does not match header", 1633942, 0, 4,
			func(t *testing.T, f *fixture) { f.header.ValidatorSet = factory.GenPrivKeys(4).ToValidators(10, 0) },
			tendermint.ErrInvalidHeader,
		},
		{
			"trusted consensus state expired", 1633942, 0, 4,
			func(t *testing.T, f *fixture) { f.now = bTime.Add(trustingPeriod + time.Nanosecond) },
			tendermint.ErrTrustingPeriodExpired,
		},
		{
			"header from the future", 1633942, 0, 4,
			func(t *testing.T, f *fixture) { f.now = bTime.Add(time.Hour - maxClockDrift - time.Nanosecond) },
			tendermint.ErrHeaderFromFuture,
		},
		{
			"header not after trusted time", 1633942, 0, 4,
			func(t *testing.T, f *fixture) { f.consState.Timestamp = bTime.Add(time.Hour) },
			tendermint.ErrInvalidHeader,
		},
		{
			"1/4 signed", 1633942, 0, 1,
			func(t *testing.T, f *fixture) {},
			tendermint.ErrInvalidCommit,
		},
		{
			"2/4 signed", 1633942, 0, 2,
			func(t *testing.T, f *fixture) {},
			tendermint.ErrInvalidCommit,
		},
		{
			"2/4 signed adjacent", 1633808, 0, 2,
			func(t *testing.T, f *fixture) {},
			tendermint.ErrInvalidCommit,
		},
		{
			"nil commit", 1633942, 0, 4,
			func(t *testing.T, f *fixture) { f.header.Commit = nil },
			tendermint.ErrInvalidHeader,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.height, tc.first, tc.last)
			tc.malleate(t, f)

			update, err := f.verify()
			require.Error(t, err)
			assert.Nil(t, update)
			assert.True(t, errors.Is(err, tc.expErr), "expected %v, got %v", tc.expErr, err)
		})
	}
}

func TestVerifyHeaderTrustedValidatorsMutation(t *testing.T) {
	f := newFixture(t, 1633942, 0, 4)

	rapid.Check(t, func(t *rapid.T) {
		idx := rapid.IntRange(0, f.vals.Size()-1).Draw(t, "idx").(int)
		delta := rapid.Int64Range(1, 1000).Draw(t, "delta").(int64)

		mutated := f.vals.Copy()
		mutated.Validators[idx].VotingPower += delta

		header := *f.header
		header.TrustedValidators = mutated
		_, err := tendermint.VerifyHeader(f.cs, f.consState, &header, f.now)
		if !errors.Is(err, tendermint.ErrTrustedValidatorsMismatch) {
			t.Fatalf("expected trusted validators mismatch, got %v", err)
		}
	})
}

func TestVerifyHeaderVotingPowerOverflow(t *testing.T) {
	f := newFixture(t, 1633942, 0, 4)

	huge := f.keys.ToValidatorsWithPowers(math.MaxInt64/2, math.MaxInt64/2, math.MaxInt64/2, 1)
	f.consState.NextValidatorsHash = huge.Hash()
	f.header.TrustedValidators = huge

	_, err := f.verify()
	require.Error(t, err)
	assert.True(t, errors.Is(err, tendermint.ErrMathOverflow), err)
	assert.True(t, errors.Is(err, types.ErrTotalVotingPowerOverflow), err)
}

func TestVerifyHeaderVotingPowerAboveMaximum(t *testing.T) {
	f := newFixture(t, 1633942, 0, 4)

	capped := f.keys.ToValidatorsWithPowers(types.MaxTotalVotingPower, 1, 1, 1)
	f.consState.NextValidatorsHash = capped.Hash()
	f.header.TrustedValidators = capped

	_, err := f.verify()
	require.Error(t, err)
	assert.True(t, errors.Is(err, tendermint.ErrInvalidValidatorSet), err)
	assert.True(t, errors.Is(err, types.ErrTotalVotingPowerTooHigh), err)
	assert.False(t, errors.Is(err, tendermint.ErrMathOverflow), err)
}

func TestVerifyHeaderNullValidatorFromJSON(t *testing.T) {
	for _, field := range []string{"trusted", "new"} {
		field := field
		t.Run(field, func(t *testing.T) {
			f := newFixture(t, 1633942, 0, 4)

			var vals types.ValidatorSet
			require.NoError(t, json.Unmarshal([]byte(`{"validators":[null]}`), &vals))
			if field == "trusted" {
				f.header.TrustedValidators = &vals
			} else {
				f.header.ValidatorSet = &vals
			}

			var err error
			require.NotPanics(t, func() { _, err = f.verify() })
			assert.True(t, errors.Is(err, tendermint.ErrInvalidValidatorSet), err)
			assert.True(t, errors.Is(err, types.ErrNilValidator), err)
		})
	}
}

func TestVerifyHeaderSingleBadSignature(t *testing.T) {
	f := newFixture(t, 1633942, 0, 4)

	sig := append([]byte(nil), f.header.Commit.Signatures[2].Signature...)
	sig[0] ^= 0xff
	f.header.Commit.Signatures[2].Signature = sig

	_, err := f.verify()
	require.Error(t, err)
	assert.True(t, errors.Is(err, tendermint.ErrInvalidCommit), err)

	var badSig types.ErrInvalidSignature
	require.True(t, errors.As(err, &badSig), err)
	assert.Equal(t, 2, badSig.Index)
}

func TestVerifyHeaderQuorumBoundary(t *testing.T) {
	keys := factory.GenPrivKeys(3)
	vals := keys.ToValidatorsWithPowers(1, 1, 4)

	newHeader := func(first, last int) *tendermint.Header {
		return &tendermint.Header{
			SignedHeader: keys.GenSignedHeader(t, chainID, 1633808, bTime.Add(time.Hour), vals, vals,
				hash("app_hash"), first, last),
			ValidatorSet:      vals,
			TrustedHeight:     trustedHeight,
			TrustedValidators: vals,
		}
	}
	cs := tendermint.NewClientState(chainID, light.DefaultTrustLevel, trustingPeriod, unbonding,
		maxClockDrift, trustedHeight, commitment.SDKSpecs())
	consState := tendermint.NewConsensusState(bTime, hash("trusted_app_hash"), vals.Hash())
	now := bTime.Add(2 * time.Hour)

	// 4/6 is exactly two thirds
	_, err := tendermint.VerifyHeader(cs, consState, newHeader(2, 3), now)
	require.Error(t, err)
	var notEnough types.ErrNotEnoughVotingPowerSigned
	require.True(t, errors.As(err, &notEnough), err)
	assert.Equal(t, types.ErrNotEnoughVotingPowerSigned{Got: 4, Needed: 4}, notEnough)

	// 5/6
	_, err = tendermint.VerifyHeader(cs, consState, newHeader(1, 3), now)
	require.NoError(t, err)
}

func TestVerifyHeaderOutOfOrder(t *testing.T) {
	f := newFixture(t, 1633942, 0, 4)
	f.cs.LatestHeight = client.NewHeight(1, 1700000)

	update, err := f.verify()
	require.NoError(t, err)
	assert.Nil(t, update.ClientState)
	assert.Equal(t, client.NewHeight(1, 1633942), update.Height)

	cs, _ := tendermint.Apply(*f.cs, *update)
	assert.Equal(t, client.NewHeight(1, 1700000), cs.LatestHeight)
}

func TestVerifyHeaderResubmission(t *testing.T) {
	f := newFixture(t, 1633942, 0, 4)

	update, err := f.verify()
	require.NoError(t, err)
	cs, _ := tendermint.Apply(*f.cs, *update)

	// the same header against the updated client neither fails nor advances
	// the client again
	again, err := tendermint.VerifyHeader(&cs, f.consState, f.header, f.now)
	require.NoError(t, err)
	assert.Nil(t, again.ClientState)
	cs2, consState := tendermint.Apply(cs, *again)
	assert.Equal(t, cs.LatestHeight, cs2.LatestHeight)
	assert.True(t, consState.Equal(*update.ConsensusState))
}

func TestVerifyHeaderCustomVerifier(t *testing.T) {
	f := newFixture(t, 1633942, 0, 4)

	var calls int32
	v := tendermint.HeaderVerifier{Light: light.Verifier{Commits: types.CommitVerifier{
		SignatureVerifier: crypto.SignatureVerifierFunc(func(pubKey crypto.PubKey, msg, sig []byte) bool {
			atomic.AddInt32(&calls, 1)
			return pubKey.VerifySignature(msg, sig)
		}),
		Parallelism: 1,
	}}}

	_, err := v.VerifyHeader(f.cs, f.consState, f.header, f.now)
	require.NoError(t, err)
	// trusting check and full check
	assert.EqualValues(t, 8, atomic.LoadInt32(&calls))
}

func TestApplyMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		heights := rapid.SliceOfN(rapid.Uint64Range(1, math.MaxInt64), 1, 50).Draw(t, "heights").([]uint64)

		cs := tendermint.ClientState{LatestHeight: client.NewHeight(1, 1)}
		max := cs.LatestHeight
		for _, h := range heights {
			height := client.NewHeight(1, h)
			prev := cs.LatestHeight
			consState := &tendermint.ConsensusState{Timestamp: bTime, Root: hash("root")}

			var got tendermint.ConsensusState
			cs, got = tendermint.Apply(cs, tendermint.StateUpdate{Height: height, ConsensusState: consState})
			if cs.LatestHeight.LT(prev) {
				t.Fatalf("latest height decreased from %s to %s", prev, cs.LatestHeight)
			}
			if !got.Equal(*consState) {
				t.Fatalf("consensus state changed: %v", got)
			}
			if height.GT(max) {
				max = height
			}
		}
		if !cs.LatestHeight.EQ(max) {
			t.Fatalf("expected latest height %s, got %s", max, cs.LatestHeight)
		}
	})
}

func TestCheckMisbehaviour(t *testing.T) {
	f := newFixture(t, 1633942, 0, 4)

	err := tendermint.CheckMisbehaviour(f.cs, &tendermint.Misbehaviour{Header1: f.header, Header2: f.header})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tendermint.ErrUnimplemented))
	assert.False(t, errors.Is(err, tendermint.ErrInvalidHeader))
}

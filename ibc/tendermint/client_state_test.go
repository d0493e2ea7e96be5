package tendermint_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unionlabs/union-sub007/ibc/client"
	"github.com/unionlabs/union-sub007/ibc/commitment"
	"github.com/unionlabs/union-sub007/ibc/tendermint"
	tmmath "github.com/unionlabs/union-sub007/libs/math"
	"github.com/unionlabs/union-sub007/light"
)

func newClientState() *tendermint.ClientState {
	return tendermint.NewClientState(chainID, light.DefaultTrustLevel, trustingPeriod, unbonding,
		maxClockDrift, trustedHeight, commitment.SDKSpecs())
}

func TestClientStateValidate(t *testing.T) {
	testCases := []struct {
		name     string
		malleate func(cs *tendermint.ClientState)
		expErr   error
	}{
		{"valid client", func(cs *tendermint.ClientState) {}, nil},
		{"revision 0 chain", func(cs *tendermint.ClientState) {
			cs.ChainID = "union-0"
			cs.LatestHeight = client.NewHeight(0, 5)
		}, nil},
		{"empty chain id", func(cs *tendermint.ClientState) { cs.ChainID = "  " }, tendermint.ErrInvalidChainID},
		{"chain id too long", func(cs *tendermint.ClientState) {
			cs.ChainID = "a-very-long-chain-id-that-goes-on-and-on-and-on-and-on-1"
		}, tendermint.ErrInvalidChainID},
		{"chain id without revision", func(cs *tendermint.ClientState) { cs.ChainID = "union" },
			tendermint.ErrInvalidChainID},
		{"trust level below 1/3", func(cs *tendermint.ClientState) {
			cs.TrustLevel = tmmath.Fraction{Numerator: 1, Denominator: 4}
		}, tendermint.ErrInvalidTrustLevel},
		{"trust level above 1", func(cs *tendermint.ClientState) {
			cs.TrustLevel = tmmath.Fraction{Numerator: 4, Denominator: 3}
		}, tendermint.ErrInvalidTrustLevel},
		{"zero trusting period", func(cs *tendermint.ClientState) { cs.TrustingPeriod = 0 },
			tendermint.ErrInvalidTrustingPeriod},
		{"zero unbonding period", func(cs *tendermint.ClientState) { cs.UnbondingPeriod = 0 },
			tendermint.ErrInvalidUnbondingPeriod},
		{"negative clock drift", func(cs *tendermint.ClientState) { cs.MaxClockDrift = -time.Second },
			tendermint.ErrInvalidMaxClockDrift},
		{"trusting period equals unbonding period", func(cs *tendermint.ClientState) {
			cs.TrustingPeriod = cs.UnbondingPeriod
		}, tendermint.ErrInvalidTrustingPeriod},
		{"latest height revision mismatch", func(cs *tendermint.ClientState) {
			cs.LatestHeight = client.NewHeight(2, 10)
		}, tendermint.ErrInvalidHeaderHeight},
		{"zero latest height", func(cs *tendermint.ClientState) {
			cs.LatestHeight = client.NewHeight(1, 0)
		}, tendermint.ErrInvalidHeaderHeight},
		{"nil proof specs", func(cs *tendermint.ClientState) { cs.ProofSpecs = nil },
			tendermint.ErrInvalidProofSpecs},
		{"nil proof spec", func(cs *tendermint.ClientState) { cs.ProofSpecs[1] = nil },
			tendermint.ErrInvalidProofSpecs},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cs := newClientState()
			tc.malleate(cs)

			err := cs.Validate()
			if tc.expErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.expErr), "expected %v, got %v", tc.expErr, err)
		})
	}
}

func TestClientStateStatus(t *testing.T) {
	latest := tendermint.NewConsensusState(bTime, hash("root"), hash("vals"))

	testCases := []struct {
		name      string
		frozen    bool
		consState *tendermint.ConsensusState
		now       time.Time
		expStatus client.Status
	}{
		{"active", false, latest, bTime.Add(time.Hour), client.Active},
		{"just before expiry", false, latest, bTime.Add(trustingPeriod - 1), client.Active},
		{"active at the boundary", false, latest, bTime.Add(trustingPeriod), client.Active},
		{"expired just after the boundary", false, latest, bTime.Add(trustingPeriod + 1), client.Expired},
		{"missing consensus state", false, nil, bTime, client.Expired},
		{"frozen", true, latest, bTime.Add(time.Hour), client.Frozen},
		{"frozen takes precedence over expired", true, latest, bTime.Add(2 * trustingPeriod), client.Frozen},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cs := newClientState()
			if tc.frozen {
				cs.FrozenHeight = client.NewHeight(1, 1)
			}
			assert.Equal(t, tc.expStatus, cs.Status(tc.consState, tc.now))
		})
	}
}

func TestClientStateVerifyMembershipArgs(t *testing.T) {
	cs := newClientState()
	consState := tendermint.NewConsensusState(bTime, hash("root"), hash("vals"))
	path := commitment.NewMerklePath("ibc", "clients/07-tendermint-0/clientState")

	err := cs.VerifyMembership(consState, cs.LatestHeight.Increment(), nil, path, []byte("value"))
	assert.True(t, errors.Is(err, tendermint.ErrInvalidProofHeight), err)

	err = cs.VerifyNonMembership(nil, cs.LatestHeight, nil, path)
	assert.True(t, errors.Is(err, tendermint.ErrInvalidConsensusState), err)

	err = cs.VerifyMembership(consState, cs.LatestHeight, []byte{0x0a, 0xff}, path, []byte("value"))
	assert.True(t, errors.Is(err, commitment.ErrInvalidMerkleProof), err)
}

func TestConsensusStateValidateBasic(t *testing.T) {
	testCases := []struct {
		name      string
		consState *tendermint.ConsensusState
		expPass   bool
	}{
		{"valid", tendermint.NewConsensusState(bTime, hash("root"), hash("vals")), true},
		{"empty root", tendermint.NewConsensusState(bTime, nil, hash("vals")), false},
		{"short next validators hash", tendermint.NewConsensusState(bTime, hash("root"), []byte{1, 2}), false},
		{"zero timestamp", tendermint.NewConsensusState(time.Time{}, hash("root"), hash("vals")), false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.consState.ValidateBasic()
			if tc.expPass {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tendermint.ErrInvalidConsensusState))
			}
		})
	}
}

func TestHeaderValidateBasic(t *testing.T) {
	f := newFixture(t, 1633942, 0, 4)
	require.NoError(t, f.header.ValidateBasic())

	height, err := f.header.GetHeight()
	require.NoError(t, err)
	assert.Equal(t, client.NewHeight(1, 1633942), height)

	f.header.TrustedHeight = height
	require.Error(t, f.header.ValidateBasic())

	f = newFixture(t, 1633942, 0, 4)
	f.header.ValidatorSet = f.keys.ToValidators(1, 0)
	require.Error(t, f.header.ValidateBasic())

	f.header.SignedHeader = nil
	require.Error(t, f.header.ValidateBasic())
	_, err = f.header.GetHeight()
	require.Error(t, err)
}

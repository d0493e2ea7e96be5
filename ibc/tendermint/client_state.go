package tendermint

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ics23 "github.com/cosmos/ics23/go"

	"github.com/unionlabs/union-sub007/ibc/client"
	"github.com/unionlabs/union-sub007/ibc/commitment"
	tmmath "github.com/unionlabs/union-sub007/libs/math"
	"github.com/unionlabs/union-sub007/light"
	"github.com/unionlabs/union-sub007/types"
)

// ClientState tracks one counterparty chain.
type ClientState struct {
	ChainID         string          `json:"chain_id"`
	TrustLevel      tmmath.Fraction `json:"trust_level"`
	TrustingPeriod  time.Duration   `json:"trusting_period"`
	UnbondingPeriod time.Duration   `json:"unbonding_period"`
	MaxClockDrift   time.Duration   `json:"max_clock_drift"`
	// FrozenHeight is zero for an active client. Once set it never resets.
	FrozenHeight client.Height `json:"frozen_height"`
	// LatestHeight is the highest verified height. It never decreases.
	LatestHeight client.Height      `json:"latest_height"`
	ProofSpecs   []*ics23.ProofSpec `json:"proof_specs"`
}

// NewClientState creates a new ClientState instance
func NewClientState(
	chainID string, trustLevel tmmath.Fraction,
	trustingPeriod, ubdPeriod, maxClockDrift time.Duration,
	latestHeight client.Height, specs []*ics23.ProofSpec,
) *ClientState {
	return &ClientState{
		ChainID:         chainID,
		TrustLevel:      trustLevel,
		TrustingPeriod:  trustingPeriod,
		UnbondingPeriod: ubdPeriod,
		MaxClockDrift:   maxClockDrift,
		LatestHeight:    latestHeight,
		FrozenHeight:    client.ZeroHeight(),
		ProofSpecs:      specs,
	}
}

// ClientType is tendermint.
func (ClientState) ClientType() string {
	return ModuleName
}

// IsFrozen returns true if the frozen height has been set.
func (cs ClientState) IsFrozen() bool {
	return !cs.FrozenHeight.IsZero()
}

// IsExpired returns whether or not the client has passed the trusting period
// since the last update (in which case no headers are considered valid). A
// consensus state is still trusted at exactly timestamp + trusting period.
func (cs ClientState) IsExpired(latestTimestamp, now time.Time) bool {
	expirationTime := latestTimestamp.Add(cs.TrustingPeriod)
	return expirationTime.Before(now)
}

// Status returns the status of the tendermint client.
// The client may be:
// - Active: FrozenHeight is zero and client is not expired
// - Frozen: Frozen Height is not zero
// - Expired: the latest consensus state timestamp + trusting period < now
//
// latest is the consensus state stored at LatestHeight; nil means it is
// missing, and a client without one is expired.
//
// A frozen client will become expired, so the Frozen status
// has higher precedence.
func (cs ClientState) Status(latest *ConsensusState, now time.Time) client.Status {
	if cs.IsFrozen() {
		return client.Frozen
	}
	if latest == nil {
		return client.Expired
	}
	if cs.IsExpired(latest.Timestamp, now) {
		return client.Expired
	}
	return client.Active
}

// Validate performs a basic validation of the client state fields.
func (cs ClientState) Validate() error {
	if strings.TrimSpace(cs.ChainID) == "" {
		return newError(ErrInvalidChainID, errors.New("chain id cannot be empty string"))
	}
	if len(cs.ChainID) > types.MaxChainIDLen {
		return newError(ErrInvalidChainID, fmt.Errorf("chainID is too long; got: %d, max: %d",
			len(cs.ChainID), types.MaxChainIDLen))
	}
	revision, err := client.ParseChainID(cs.ChainID)
	if err != nil {
		return newError(ErrInvalidChainID, err)
	}

	if err := light.ValidateTrustLevel(cs.TrustLevel); err != nil {
		return newError(ErrInvalidTrustLevel, err)
	}
	if cs.TrustingPeriod <= 0 {
		return newError(ErrInvalidTrustingPeriod, errors.New("trusting period must be greater than zero"))
	}
	if cs.UnbondingPeriod <= 0 {
		return newError(ErrInvalidUnbondingPeriod, errors.New("unbonding period must be greater than zero"))
	}
	if cs.MaxClockDrift <= 0 {
		return newError(ErrInvalidMaxClockDrift, errors.New("max clock drift must be greater than zero"))
	}

	// the latest height revision number must match the chain id revision number
	if cs.LatestHeight.RevisionNumber != revision {
		return newError(ErrInvalidHeaderHeight, fmt.Errorf(
			"latest height revision number must match chain id revision number (%d != %d)",
			cs.LatestHeight.RevisionNumber, revision))
	}
	if cs.LatestHeight.RevisionHeight == 0 {
		return newError(ErrInvalidHeaderHeight, errors.New("latest height revision height cannot be zero"))
	}
	if _, err := cs.LatestHeight.Int64(); err != nil {
		return newError(ErrInvalidHeaderHeight, err)
	}
	if cs.TrustingPeriod >= cs.UnbondingPeriod {
		return newError(ErrInvalidTrustingPeriod, fmt.Errorf(
			"trusting period (%s) should be < unbonding period (%s)", cs.TrustingPeriod, cs.UnbondingPeriod))
	}

	if cs.ProofSpecs == nil {
		return newError(ErrInvalidProofSpecs, errors.New("proof specs cannot be nil for tm client"))
	}
	for i, spec := range cs.ProofSpecs {
		if spec == nil {
			return newError(ErrInvalidProofSpecs, fmt.Errorf("proof spec cannot be nil at index: %d", i))
		}
	}

	return nil
}

// VerifyMembership verifies a proof of the existence of value at path in the
// state committed by consState, the consensus state stored at height.
func (cs ClientState) VerifyMembership(consState *ConsensusState, height client.Height,
	proof []byte, path commitment.MerklePath, value []byte) error {
	merkleProof, err := cs.checkProofArgs(consState, height, proof)
	if err != nil {
		return err
	}
	return commitment.NewVerifier(cs.ProofSpecs...).VerifyMembership(consState.Root, merkleProof, path, value)
}

// VerifyNonMembership verifies a proof of the absence of path in the state
// committed by consState, the consensus state stored at height.
func (cs ClientState) VerifyNonMembership(consState *ConsensusState, height client.Height,
	proof []byte, path commitment.MerklePath) error {
	merkleProof, err := cs.checkProofArgs(consState, height, proof)
	if err != nil {
		return err
	}
	return commitment.NewVerifier(cs.ProofSpecs...).VerifyNonMembership(consState.Root, merkleProof, path)
}

func (cs ClientState) checkProofArgs(consState *ConsensusState, height client.Height,
	proof []byte) (commitment.MerkleProof, error) {
	if cs.LatestHeight.LT(height) {
		return commitment.MerkleProof{}, newError(ErrInvalidProofHeight, fmt.Errorf(
			"client state height < proof height (%s < %s), please ensure the client has been updated",
			cs.LatestHeight, height))
	}
	if consState == nil {
		return commitment.MerkleProof{}, newError(ErrInvalidConsensusState, fmt.Errorf("no consensus state at height %s", height))
	}
	merkleProof, err := commitment.DecodeMerkleProof(proof)
	if err != nil {
		return commitment.MerkleProof{}, err
	}
	return merkleProof, nil
}

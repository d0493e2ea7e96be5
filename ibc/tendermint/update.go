package tendermint

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/unionlabs/union-sub007/ibc/client"
	"github.com/unionlabs/union-sub007/light"
	"github.com/unionlabs/union-sub007/types"
)

// StateUpdate describes the writes that follow a verified header. The
// caller persists ConsensusState at Height, and ClientState when it is not
// nil.
type StateUpdate struct {
	Height         client.Height
	ConsensusState *ConsensusState
	// ClientState is set only when Height is above the client's latest
	// height.
	ClientState *ClientState
}

// HeaderVerifier verifies headers with a configurable light verifier. The
// zero value is ready to use.
type HeaderVerifier struct {
	Light light.Verifier
}

// VerifyHeader verifies header with the zero HeaderVerifier.
func VerifyHeader(cs *ClientState, trusted *ConsensusState, header *Header, now time.Time) (*StateUpdate, error) {
	return HeaderVerifier{}.VerifyHeader(cs, trusted, header, now)
}

// VerifyHeader decides whether header can be trusted given the consensus
// state stored at header.TrustedHeight. It returns an error if:
//   - the client is frozen
//   - the header chain id cannot be parsed, differs from the client's, or its
//     revision differs from the trusted height's revision
//   - the header height is not above the trusted height
//   - the trusted validators do not hash to the trusted next validators hash
//   - either validator set is invalid or its voting power overflows
//   - the header fails basic validation
//   - the trusted consensus state has expired or the header is too far in
//     the future
//   - the commit is not signed by enough of the trusted and new validators
//
// now is the host's clock. Nothing is written: on success the returned
// StateUpdate is passed to Apply.
func (v HeaderVerifier) VerifyHeader(cs *ClientState, trusted *ConsensusState, header *Header,
	now time.Time) (*StateUpdate, error) {
	if cs == nil {
		return nil, newError(ErrInvalidClientState, errors.New("client state cannot be nil"))
	}
	if trusted == nil {
		return nil, newError(ErrInvalidConsensusState, errors.New("trusted consensus state cannot be nil"))
	}
	if header == nil || header.SignedHeader == nil || header.Header == nil || header.Commit == nil {
		return nil, newError(ErrInvalidHeader, errors.New("header, signed header and commit cannot be nil"))
	}
	if cs.IsFrozen() {
		return nil, newError(ErrClientFrozen, fmt.Errorf("frozen at height %s", cs.FrozenHeight))
	}

	// chain id and revision
	revision, err := client.ParseChainID(header.Header.ChainID)
	if err != nil {
		return nil, newError(ErrInvalidChainID, err)
	}
	if header.Header.ChainID != cs.ChainID {
		return nil, newError(ErrInvalidChainID, fmt.Errorf("header belongs to chain %q, client tracks %q",
			header.Header.ChainID, cs.ChainID))
	}
	// UpdateClient only accepts updates with a header at the same revision
	// as the trusted consensus state
	if revision != header.TrustedHeight.RevisionNumber {
		return nil, newError(ErrRevisionMismatch, fmt.Errorf(
			"header height revision %d does not match trusted header revision %d",
			revision, header.TrustedHeight.RevisionNumber))
	}

	// heights
	if header.Header.Height <= 0 {
		return nil, newError(ErrInvalidHeaderHeight, fmt.Errorf("header height must be positive, got %d",
			header.Header.Height))
	}
	trustedHeight, err := header.TrustedHeight.Int64()
	if err != nil {
		return nil, newError(ErrInvalidHeaderHeight, err)
	}
	height := client.NewHeight(revision, uint64(header.Header.Height))
	if height.LTE(header.TrustedHeight) {
		return nil, newError(ErrHeightNotMoreRecent, fmt.Errorf("header height ≤ trusted height (%s ≤ %s)",
			height, header.TrustedHeight))
	}

	// trusted validators
	if header.TrustedValidators == nil {
		return nil, newError(ErrInvalidValidatorSet, errors.New("trusted validators cannot be nil"))
	}
	// members and voting power are checked before hashing so that a
	// malformed set is reported as such rather than as a hash mismatch
	if err := checkValidatorSet("trusted validators", header.TrustedValidators); err != nil {
		return nil, err
	}
	trustedValsHash, err := types.ValidatorsHash(header.TrustedValidators.Validators)
	if err != nil {
		return nil, newError(ErrInvalidValidatorSet, fmt.Errorf("trusted validators: %w", err))
	}
	if !bytes.Equal(trustedValsHash, trusted.NextValidatorsHash) {
		return nil, newError(ErrTrustedValidatorsMismatch, light.ErrValidatorsMismatch{
			Expected: trusted.NextValidatorsHash,
			Got:      trustedValsHash,
		})
	}

	if header.ValidatorSet == nil {
		return nil, newError(ErrInvalidValidatorSet, errors.New("validator set cannot be nil"))
	}
	if err := checkValidatorSet("validator set", header.ValidatorSet); err != nil {
		return nil, err
	}

	if err := header.ValidateBasic(); err != nil {
		return nil, newError(ErrInvalidHeader, err)
	}

	// time bounds
	if cs.IsExpired(trusted.Timestamp, now) {
		return nil, newError(ErrTrustingPeriodExpired, light.ErrOldHeaderExpired{
			At:  trusted.Timestamp.Add(cs.TrustingPeriod),
			Now: now,
		})
	}
	if header.Header.Time.After(now.Add(cs.MaxClockDrift)) {
		return nil, newError(ErrHeaderFromFuture, light.ErrHeaderFromFuture{
			HeaderTime:    header.Header.Time,
			Now:           now,
			MaxClockDrift: cs.MaxClockDrift,
		})
	}

	// Construct a trusted header using the fields in consensus state
	// Only Height, Time, and NextValidatorsHash are necessary for verification
	// NOTE: updates must be within the same revision
	trustedHeader := types.SignedHeader{
		Header: &types.Header{
			ChainID:            cs.ChainID,
			Height:             trustedHeight,
			Time:               trusted.Timestamp,
			NextValidatorsHash: trusted.NextValidatorsHash,
		},
	}

	// Verify next header with the passed-in trustedVals
	// - asserts trusting period not passed
	// - assert header timestamp is not past the trusting period
	// - assert header timestamp is past latest stored consensus state timestamp
	// - assert that a TrustLevel proportion of TrustedValidators signed new Commit
	err = v.Light.Verify(
		&trustedHeader,
		header.TrustedValidators, header.SignedHeader, header.ValidatorSet,
		cs.TrustingPeriod, now, cs.MaxClockDrift, cs.TrustLevel,
	)
	if err != nil {
		return nil, classifyLightError(err)
	}

	update := &StateUpdate{
		Height:         height,
		ConsensusState: header.ConsensusState(),
	}
	if height.GT(cs.LatestHeight) {
		updated := *cs
		updated.LatestHeight = height
		update.ClientState = &updated
	}
	return update, nil
}

// Apply returns the client state and consensus state to persist for
// update. current is returned unchanged unless update.Height is above its
// latest height.
func Apply(current ClientState, update StateUpdate) (ClientState, ConsensusState) {
	if update.Height.GT(current.LatestHeight) {
		current.LatestHeight = update.Height
	}
	var consState ConsensusState
	if update.ConsensusState != nil {
		consState = *update.ConsensusState
	}
	return current, consState
}

func checkValidatorSet(name string, vals *types.ValidatorSet) error {
	if _, err := vals.TotalVotingPower(); err != nil {
		if errors.Is(err, types.ErrTotalVotingPowerOverflow) {
			return newError(ErrMathOverflow, fmt.Errorf("%s: %w", name, err))
		}
		return newError(ErrInvalidValidatorSet, fmt.Errorf("%s: %w", name, err))
	}
	if err := vals.ValidateBasic(); err != nil {
		if errors.Is(err, types.ErrTotalVotingPowerOverflow) {
			return newError(ErrMathOverflow, fmt.Errorf("%s: %w", name, err))
		}
		return newError(ErrInvalidValidatorSet, fmt.Errorf("%s: %w", name, err))
	}
	return nil
}

// classifyLightError maps a light verification failure onto an error kind.
func classifyLightError(err error) error {
	var (
		expired   light.ErrOldHeaderExpired
		future    light.ErrHeaderFromFuture
		notEnough types.ErrNotEnoughVotingPowerSigned
		badSig    types.ErrInvalidSignature
	)
	switch {
	case errors.As(err, &expired):
		return newError(ErrTrustingPeriodExpired, err)
	case errors.As(err, &future):
		return newError(ErrHeaderFromFuture, err)
	case errors.Is(err, types.ErrTotalVotingPowerOverflow):
		return newError(ErrMathOverflow, err)
	case errors.As(err, &notEnough), errors.As(err, &badSig):
		return newError(ErrInvalidCommit, err)
	default:
		return newError(ErrInvalidHeader, err)
	}
}

package tendermint

import (
	"errors"
)

// ModuleName is the client type of the Tendermint light client.
const ModuleName = "07-tendermint"

// Kinds of verification failure. Every error returned by this package
// matches exactly one of them with errors.Is; the underlying cause stays
// reachable with errors.As.
var (
	ErrInvalidChainID            = errors.New("invalid chain-id")
	ErrRevisionMismatch          = errors.New("revision number mismatch")
	ErrInvalidHeaderHeight       = errors.New("invalid header height")
	ErrHeightNotMoreRecent       = errors.New("signed header height must be more recent than the trusted height")
	ErrInvalidHeader             = errors.New("invalid header")
	ErrInvalidValidatorSet       = errors.New("invalid validator set")
	ErrTrustedValidatorsMismatch = errors.New("trusted validators do not match the trusted consensus state")
	ErrMathOverflow              = errors.New("math overflow")
	ErrInvalidCommit             = errors.New("invalid commit")
	ErrTrustingPeriodExpired     = errors.New("time since latest trusted state has passed the trusting period")
	ErrHeaderFromFuture          = errors.New("header is from the future")
	ErrClientFrozen              = errors.New("client is frozen")
	ErrUnimplemented             = errors.New("unimplemented")

	ErrInvalidClientState     = errors.New("invalid client state")
	ErrInvalidConsensusState  = errors.New("invalid consensus state")
	ErrInvalidTrustLevel      = errors.New("invalid trust level")
	ErrInvalidTrustingPeriod  = errors.New("invalid trusting period")
	ErrInvalidUnbondingPeriod = errors.New("invalid unbonding period")
	ErrInvalidMaxClockDrift   = errors.New("invalid max clock drift")
	ErrInvalidProofSpecs      = errors.New("invalid proof specs")
	ErrInvalidProofHeight     = errors.New("invalid proof height")
)

// Error is a failure of a given Kind, caused by Err.
type Error struct {
	Kind error
	Err  error
}

func newError(kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

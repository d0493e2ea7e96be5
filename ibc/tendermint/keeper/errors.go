package keeper

import "errors"

var (
	// ErrInvalidClientID is returned for an empty or malformed client id.
	ErrInvalidClientID = errors.New("invalid client id")
	// ErrClientExists is returned by CreateClient for a client id in use.
	ErrClientExists = errors.New("client already exists")
	// ErrConflictingConsensusState is returned when a verified header
	// produces a consensus state that differs from the one already stored at
	// its height. Two valid headers at one height are evidence of
	// misbehaviour.
	ErrConflictingConsensusState = errors.New("conflicting consensus state at height")
	// ErrClientNotActive is returned by proof verification on a frozen or
	// expired client.
	ErrClientNotActive = errors.New("client is not active")
	// ErrDelayPeriodNotPassed is returned by proof verification before the
	// connection delay has elapsed since the consensus state was stored.
	ErrDelayPeriodNotPassed = errors.New("delay period has not passed")
)

package client

import "errors"

var (
	// ErrInvalidChainID is returned for a chain id without a parsable
	// revision suffix.
	ErrInvalidChainID = errors.New("invalid chain id")
	// ErrInvalidHeight is returned for a height that cannot be parsed.
	ErrInvalidHeight = errors.New("invalid height")
)

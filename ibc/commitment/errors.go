package commitment

import "errors"

var (
	ErrInvalidProof       = errors.New("invalid proof")
	ErrInvalidMerkleProof = errors.New("invalid merkle proof")
	ErrInvalidPath        = errors.New("invalid merkle path")
	ErrEmptyRoot          = errors.New("empty commitment root")
)

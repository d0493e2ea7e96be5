package types

import (
	"errors"
	"fmt"
)

var (
	// ErrTotalVotingPowerOverflow is returned when the checked sum of voting
	// powers leaves the int64 range.
	ErrTotalVotingPowerOverflow = errors.New("total voting power overflow")
	// ErrTotalVotingPowerTooHigh is returned when the total voting power fits
	// in an int64 but is above MaxTotalVotingPower.
	ErrTotalVotingPowerTooHigh = errors.New("total voting power too high")
	// ErrNilValidator is returned when a validator set has a nil member.
	ErrNilValidator = errors.New("nil validator")

	ErrNilValidatorSet = errors.New("nil validator set")
	ErrNilCommit       = errors.New("nil commit")
)

// ErrInvalidCommitHeight is returned when we encounter a commit with an
// unexpected height.
type ErrInvalidCommitHeight struct {
	Expected int64
	Actual   int64
}

func NewErrInvalidCommitHeight(expected, actual int64) ErrInvalidCommitHeight {
	return ErrInvalidCommitHeight{
		Expected: expected,
		Actual:   actual,
	}
}

func (e ErrInvalidCommitHeight) Error() string {
	return fmt.Sprintf("Invalid commit -- wrong height: %v vs %v", e.Expected, e.Actual)
}

// ErrInvalidCommitSignatures is returned when we encounter a commit where
// the number of signatures doesn't match the number of validators.
type ErrInvalidCommitSignatures struct {
	Expected int
	Actual   int
}

func NewErrInvalidCommitSignatures(expected, actual int) ErrInvalidCommitSignatures {
	return ErrInvalidCommitSignatures{
		Expected: expected,
		Actual:   actual,
	}
}

func (e ErrInvalidCommitSignatures) Error() string {
	return fmt.Sprintf("Invalid commit -- wrong set size: %v vs %v", e.Expected, e.Actual)
}

// ErrInvalidSignature is returned when a present commit signature does not
// verify. One such signature rejects the whole commit.
type ErrInvalidSignature struct {
	Index     int
	Signature []byte
}

func (e ErrInvalidSignature) Error() string {
	return fmt.Sprintf("wrong signature (#%d): %X", e.Index, e.Signature)
}

// ErrNotEnoughVotingPowerSigned is returned when not enough validators signed
// a commit.
type ErrNotEnoughVotingPowerSigned struct {
	Got    int64
	Needed int64
}

func (e ErrNotEnoughVotingPowerSigned) Error() string {
	return fmt.Sprintf("invalid commit -- insufficient voting power: got %d, needed more than %d", e.Got, e.Needed)
}

package light

import (
	"fmt"
	"time"

	"github.com/unionlabs/union-sub007/types"
)

// ErrOldHeaderExpired means the old (trusted) header has expired according to
// the given trustingPeriod and current time. If so, the light client must be
// reset subjectively.
type ErrOldHeaderExpired struct {
	At  time.Time
	Now time.Time
}

func (e ErrOldHeaderExpired) Error() string {
	return fmt.Sprintf("old header has expired at %v (now: %v)", e.At, e.Now)
}

// ErrNewValSetCantBeTrusted means the new validator set cannot be trusted
// because < 1/3rd (+trustLevel+) of the old validator set has signed.
type ErrNewValSetCantBeTrusted struct {
	Reason types.ErrNotEnoughVotingPowerSigned
}

func (e ErrNewValSetCantBeTrusted) Error() string {
	return fmt.Sprintf("cant trust new val set: %v", e.Reason)
}

func (e ErrNewValSetCantBeTrusted) Unwrap() error {
	return e.Reason
}

// ErrInvalidHeader means the header either failed the basic validation or
// commit is not signed by 2/3+.
type ErrInvalidHeader struct {
	Reason error
}

func (e ErrInvalidHeader) Error() string {
	return fmt.Sprintf("invalid header: %v", e.Reason)
}

// Unwrap returns underlying reason.
func (e ErrInvalidHeader) Unwrap() error {
	return e.Reason
}

// ErrHeaderFromFuture means the new header is dated at or beyond now plus the
// allowed clock drift.
type ErrHeaderFromFuture struct {
	HeaderTime    time.Time
	Now           time.Time
	MaxClockDrift time.Duration
}

func (e ErrHeaderFromFuture) Error() string {
	return fmt.Sprintf("new header has a time from the future %v (now: %v; max clock drift: %v)",
		e.HeaderTime, e.Now, e.MaxClockDrift)
}

// ErrValidatorsMismatch means a validator set does not hash to the value a
// header committed to.
type ErrValidatorsMismatch struct {
	Expected []byte
	Got      []byte
}

func (e ErrValidatorsMismatch) Error() string {
	return fmt.Sprintf("validators hash mismatch: expected %X, got %X", e.Expected, e.Got)
}

package client

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Height is a monotonically increasing data type that can be compared
// against another Height for the purposes of updating and freezing clients.
//
// Normally the RevisionHeight is incremented at each height while keeping
// RevisionNumber the same. However some consensus algorithms may choose to
// reset the height in certain conditions e.g. hard forks, state-machine
// breaking changes. In these cases, the RevisionNumber is incremented so that
// height continues to be monotonically increasing even as the RevisionHeight
// gets reset.
type Height struct {
	RevisionNumber uint64 `json:"revision_number,string"`
	RevisionHeight uint64 `json:"revision_height,string"`
}

// NewHeight is a constructor for the Height type.
func NewHeight(revisionNumber, revisionHeight uint64) Height {
	return Height{
		RevisionNumber: revisionNumber,
		RevisionHeight: revisionHeight,
	}
}

// ZeroHeight is a helper function which returns an uninitialized height.
func ZeroHeight() Height {
	return Height{}
}

// Compare implements a method to compare two heights. When comparing two
// heights a, b we can call a.Compare(b) which will return
// -1 if a < b
// 0  if a = b
// 1  if a > b
//
// It first compares based on revision numbers, whichever has the higher
// revision number is the higher height. If revision number is the same, then
// the revision height is compared.
func (h Height) Compare(other Height) int {
	switch {
	case h.RevisionNumber < other.RevisionNumber:
		return -1
	case h.RevisionNumber > other.RevisionNumber:
		return 1
	case h.RevisionHeight < other.RevisionHeight:
		return -1
	case h.RevisionHeight > other.RevisionHeight:
		return 1
	default:
		return 0
	}
}

// LT Helper comparison function returns true if h < other
func (h Height) LT(other Height) bool { return h.Compare(other) == -1 }

// LTE Helper comparison function returns true if h <= other
func (h Height) LTE(other Height) bool { return h.Compare(other) != 1 }

// GT Helper comparison function returns true if h > other
func (h Height) GT(other Height) bool { return h.Compare(other) == 1 }

// GTE Helper comparison function returns true if h >= other
func (h Height) GTE(other Height) bool { return h.Compare(other) != -1 }

// EQ Helper comparison function returns true if h == other
func (h Height) EQ(other Height) bool { return h.Compare(other) == 0 }

// IsZero returns true if both revision number and revision height are 0.
func (h Height) IsZero() bool {
	return h.RevisionNumber == 0 && h.RevisionHeight == 0
}

// Increment returns the next height within the same revision.
func (h Height) Increment() Height {
	return NewHeight(h.RevisionNumber, h.RevisionHeight+1)
}

// Int64 returns the revision height as a block height. It fails if the
// revision height does not fit the signed 64-bit block height type.
func (h Height) Int64() (int64, error) {
	if h.RevisionHeight > math.MaxInt64 {
		return 0, fmt.Errorf("%w: revision height %d overflows int64", ErrInvalidHeight, h.RevisionHeight)
	}
	return int64(h.RevisionHeight), nil
}

// String returns a string representation of Height.
func (h Height) String() string {
	return fmt.Sprintf("%d-%d", h.RevisionNumber, h.RevisionHeight)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (h Height) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("revision_number", h.RevisionNumber)
	e.Uint64("revision_height", h.RevisionHeight)
}

// ParseHeight is a utility function that takes a string representation of
// the height and returns a Height struct.
func ParseHeight(heightStr string) (Height, error) {
	splitStr := strings.Split(heightStr, "-")
	if len(splitStr) != 2 {
		return Height{}, fmt.Errorf("%w: expected height string format: {revision}-{height}. Got: %s",
			ErrInvalidHeight, heightStr)
	}
	revisionNumber, err := strconv.ParseUint(splitStr[0], 10, 64)
	if err != nil {
		return Height{}, fmt.Errorf("%w: invalid revision number %q: %v", ErrInvalidHeight, splitStr[0], err)
	}
	revisionHeight, err := strconv.ParseUint(splitStr[1], 10, 64)
	if err != nil {
		return Height{}, fmt.Errorf("%w: invalid revision height %q: %v", ErrInvalidHeight, splitStr[1], err)
	}
	return NewHeight(revisionNumber, revisionHeight), nil
}

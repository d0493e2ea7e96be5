package client

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseChainID returns the revision number encoded as the trailing -{N} of
// chainID. A chain id without a well formed suffix is an error, not
// revision 0.
func ParseChainID(chainID string) (uint64, error) {
	idx := strings.LastIndexByte(chainID, '-')
	if idx <= 0 || idx == len(chainID)-1 || chainID[idx-1] == '-' {
		return 0, fmt.Errorf("%w: %q does not end in -{revision}", ErrInvalidChainID, chainID)
	}
	suffix := chainID[idx+1:]
	if len(suffix) > 1 && suffix[0] == '0' {
		return 0, fmt.Errorf("%w: revision %q of %q has a leading zero", ErrInvalidChainID, suffix, chainID)
	}
	for _, c := range suffix {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: revision %q of %q is not a number", ErrInvalidChainID, suffix, chainID)
		}
	}
	revision, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: revision of %q: %v", ErrInvalidChainID, chainID, err)
	}
	return revision, nil
}

// IsRevisionFormat reports whether chainID carries a revision suffix.
func IsRevisionFormat(chainID string) bool {
	_, err := ParseChainID(chainID)
	return err == nil
}

// FormatChainID joins a chain name and a revision number.
func FormatChainID(name string, revision uint64) string {
	return fmt.Sprintf("%s-%d", name, revision)
}

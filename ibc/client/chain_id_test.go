package client_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unionlabs/union-sub007/ibc/client"
)

func TestParseChainID(t *testing.T) {
	testCases := []struct {
		chainID   string
		revision  uint64
		formatted bool
	}{
		{"gaiamainnet-3", 3, true},
		{"a-1", 1, true},
		{"gaia-mainnet-40", 40, true},
		{"gaiamainnet-3-39", 39, true},
		{"gaiamainnet-0", 0, true},
		{"union-testnet-18446744073709551615", 18446744073709551615, true},
		{"gaiamainnet--", 0, false},
		{"gaiamainnet-03", 0, false},
		{"gaiamainnet--4", 0, false},
		{"gaiamainnet-3.4", 0, false},
		{"gaiamainnet", 0, false},
		{"gaiamainnet-", 0, false},
		{"-1", 0, false},
		{"", 0, false},
		{"union-testnet-18446744073709551616", 0, false},
	}

	for _, tc := range testCases {
		revision, err := client.ParseChainID(tc.chainID)
		if tc.formatted {
			require.NoError(t, err, "chain id %q", tc.chainID)
			assert.Equal(t, tc.revision, revision, "chain id %q", tc.chainID)
		} else {
			assert.ErrorIs(t, err, client.ErrInvalidChainID, "chain id %q", tc.chainID)
		}
		assert.Equal(t, tc.formatted, client.IsRevisionFormat(tc.chainID), "chain id %q", tc.chainID)
	}
}

func TestFormatChainID(t *testing.T) {
	chainID := client.FormatChainID("union-testnet", 7)
	assert.Equal(t, "union-testnet-7", chainID)

	revision, err := client.ParseChainID(chainID)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), revision)
}

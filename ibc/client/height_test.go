package client_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/unionlabs/union-sub007/ibc/client"
)

func TestCompareHeights(t *testing.T) {
	testCases := []struct {
		name        string
		height1     client.Height
		height2     client.Height
		compareSign int
	}{
		{"revision number 1 is lesser", client.NewHeight(1, 3), client.NewHeight(3, 4), -1},
		{"revision number 1 is greater", client.NewHeight(7, 5), client.NewHeight(4, 5), 1},
		{"revision height 1 is lesser", client.NewHeight(3, 4), client.NewHeight(3, 9), -1},
		{"revision height 1 is greater", client.NewHeight(3, 8), client.NewHeight(3, 3), 1},
		{"revision number is MaxUint64", client.NewHeight(math.MaxUint64, 1), client.NewHeight(math.MaxUint64-1, 5), 1},
		{"revision height is MaxUint64", client.NewHeight(3, math.MaxUint64), client.NewHeight(3, 0), 1},
		{"height is equal", client.NewHeight(4, 4), client.NewHeight(4, 4), 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			compare := tc.height1.Compare(tc.height2)

			switch tc.compareSign {
			case -1:
				require.True(t, compare == -1, "compare returned wrong sign")
				require.True(t, tc.height1.LT(tc.height2))
				require.True(t, tc.height1.LTE(tc.height2))
				require.False(t, tc.height1.GTE(tc.height2))
			case 0:
				require.True(t, compare == 0, "compare returned wrong sign")
				require.True(t, tc.height1.EQ(tc.height2))
				require.True(t, tc.height1.GTE(tc.height2))
				require.True(t, tc.height1.LTE(tc.height2))
			case 1:
				require.True(t, compare == 1, "compare returned wrong sign")
				require.True(t, tc.height1.GT(tc.height2))
				require.True(t, tc.height1.GTE(tc.height2))
				require.False(t, tc.height1.LTE(tc.height2))
			}
		})
	}
}

func TestParseHeight(t *testing.T) {
	testCases := []struct {
		name           string
		heightStr      string
		expectedHeight client.Height
		expErr         bool
	}{
		{"valid zero height", "0-0", client.ZeroHeight(), false},
		{"valid height", "1-1633807", client.NewHeight(1, 1633807), false},
		{"invalid revision number", "a-1", client.Height{}, true},
		{"invalid revision height", "1-a", client.Height{}, true},
		{"too many dashes", "1-2-3", client.Height{}, true},
		{"no dash", "12", client.Height{}, true},
		{"negative", "1--3", client.Height{}, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			height, err := client.ParseHeight(tc.heightStr)
			if tc.expErr {
				assert.ErrorIs(t, err, client.ErrInvalidHeight)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expectedHeight, height)
			}
		})
	}
}

func TestHeightStringRoundTrips(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := client.NewHeight(rapid.Uint64().Draw(t, "revision").(uint64), rapid.Uint64().Draw(t, "height").(uint64))
		parsed, err := client.ParseHeight(h.String())
		if err != nil {
			t.Fatalf("parse %s: %v", h, err)
		}
		if !parsed.EQ(h) {
			t.Fatalf("expected %s, got %s", h, parsed)
		}
	})
}

func TestHeightCompareIsAntisymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := client.NewHeight(rapid.Uint64Range(0, 3).Draw(t, "a_rev").(uint64), rapid.Uint64().Draw(t, "a_h").(uint64))
		b := client.NewHeight(rapid.Uint64Range(0, 3).Draw(t, "b_rev").(uint64), rapid.Uint64().Draw(t, "b_h").(uint64))
		if a.Compare(b) != -b.Compare(a) {
			t.Fatalf("%s vs %s is not antisymmetric", a, b)
		}
		if a.Increment().LTE(a) && a.RevisionHeight != math.MaxUint64 {
			t.Fatalf("%s incremented is not greater", a)
		}
	})
}

func TestHeightInt64(t *testing.T) {
	v, err := client.NewHeight(1, 1633942).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(1633942), v)

	_, err = client.NewHeight(1, math.MaxInt64+1).Int64()
	assert.ErrorIs(t, err, client.ErrInvalidHeight)
}

package light_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unionlabs/union-sub007/internal/test/factory"
	tmmath "github.com/unionlabs/union-sub007/libs/math"
	"github.com/unionlabs/union-sub007/light"
	"github.com/unionlabs/union-sub007/types"
)

const (
	maxClockDrift = 10 * time.Second
)

var hash = factory.Hash

func TestVerifyAdjacentHeaders(t *testing.T) {
	const (
		chainID    = "TestVerifyAdjacentHeaders"
		lastHeight = 1
		nextHeight = 2
	)

	var (
		keys = factory.GenPrivKeys(4)
		// 20, 20, 20, 20
		vals     = keys.ToValidators(20, 0)
		bTime, _ = time.Parse(time.RFC3339, "2006-01-02T15:04:05Z")
		header   = keys.GenSignedHeader(t, chainID, lastHeight, bTime, vals, vals, hash("app_hash"), 0, len(keys))
	)

	testCases := []struct {
		newHeader      *types.SignedHeader
		newVals        *types.ValidatorSet
		trustingPeriod time.Duration
		now            time.Time
		expErr         error
		expErrText     string
	}{
		// same header -> no error
		0: {
			header,
			vals,
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			nil,
			"headers must be adjacent in height",
		},
		// different chainID -> error
		1: {
			keys.GenSignedHeader(t, "different-chainID", nextHeight, bTime.Add(1*time.Hour), vals, vals,
				hash("app_hash"), 0, len(keys)),
			vals,
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			nil,
			"header belongs to another chain",
		},
		// new header's time is before old header's time -> error
		2: {
			keys.GenSignedHeader(t, chainID, nextHeight, bTime.Add(-1*time.Hour), vals, vals,
				hash("app_hash"), 0, len(keys)),
			vals,
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			nil,
			"to be after old header time",
		},
		// new header's time is from the future -> error
		3: {
			keys.GenSignedHeader(t, chainID, nextHeight, bTime.Add(3*time.Hour), vals, vals,
				hash("app_hash"), 0, len(keys)),
			vals,
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			nil,
			"new header has a time from the future",
		},
		// new header's time is from the future, but it's acceptable (< maxClockDrift) -> no error
		4: {
			keys.GenSignedHeader(t, chainID, nextHeight,
				bTime.Add(2*time.Hour).Add(maxClockDrift).Add(-1*time.Millisecond), vals, vals,
				hash("app_hash"), 0, len(keys)),
			vals,
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			nil,
			"",
		},
		// exactly now + maxClockDrift -> no error
		5: {
			keys.GenSignedHeader(t, chainID, nextHeight, bTime.Add(2*time.Hour).Add(maxClockDrift), vals, vals,
				hash("app_hash"), 0, len(keys)),
			vals,
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			nil,
			"",
		},
		// 3/3 signed -> no error
		6: {
			keys.GenSignedHeader(t, chainID, nextHeight, bTime.Add(1*time.Hour), vals, vals,
				hash("app_hash"), 0, len(keys)),
			vals,
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			nil,
			"",
		},
		// 3/4 signed -> no error
		7: {
			keys.GenSignedHeader(t, chainID, nextHeight, bTime.Add(1*time.Hour), vals, vals,
				hash("app_hash"), 1, len(keys)),
			vals,
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			nil,
			"",
		},
		// 1/4 signed -> error
		8: {
			keys.GenSignedHeader(t, chainID, nextHeight, bTime.Add(1*time.Hour), vals, vals,
				hash("app_hash"), len(keys)-1, len(keys)),
			vals,
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			light.ErrInvalidHeader{Reason: types.ErrNotEnoughVotingPowerSigned{Got: 20, Needed: 53}},
			"",
		},
		// vals does not match with what we have -> error
		9: {
			keys.GenSignedHeader(t, chainID, nextHeight, bTime.Add(1*time.Hour), keys.ToValidators(10, 1), vals,
				hash("app_hash"), 0, len(keys)),
			keys.ToValidators(10, 1),
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			nil,
			"validators hash mismatch",
		},
		// vals are inconsistent with newHeader -> error
		10: {
			keys.GenSignedHeader(t, chainID, nextHeight, bTime.Add(1*time.Hour), vals, vals,
				hash("app_hash"), 0, len(keys)),
			keys.ToValidators(10, 1),
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			nil,
			"to match those that were supplied",
		},
		// old header has expired -> error
		11: {
			keys.GenSignedHeader(t, chainID, nextHeight, bTime.Add(1*time.Hour), vals, vals,
				hash("app_hash"), 0, len(keys)),
			keys.ToValidators(10, 1),
			1 * time.Hour,
			bTime.Add(1*time.Hour + time.Nanosecond),
			nil,
			"old header has expired",
		},
		// old header expires exactly now -> no error
		12: {
			keys.GenSignedHeader(t, chainID, nextHeight, bTime.Add(1*time.Hour), vals, vals,
				hash("app_hash"), 0, len(keys)),
			vals,
			1 * time.Hour,
			bTime.Add(1 * time.Hour),
			nil,
			"",
		},
		// one nanosecond past now + maxClockDrift -> error
		13: {
			keys.GenSignedHeader(t, chainID, nextHeight,
				bTime.Add(2*time.Hour).Add(maxClockDrift).Add(time.Nanosecond), vals, vals,
				hash("app_hash"), 0, len(keys)),
			vals,
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			nil,
			"new header has a time from the future",
		},
	}

	for i, tc := range testCases {
		tc := tc
		t.Run(tcName(i), func(t *testing.T) {
			err := light.VerifyAdjacent(header, tc.newHeader, tc.newVals, tc.trustingPeriod, tc.now, maxClockDrift)
			switch {
			case tc.expErr != nil && assert.Error(t, err):
				assert.Equal(t, tc.expErr, err)
			case tc.expErrText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expErrText)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifyNonAdjacentHeaders(t *testing.T) {
	const (
		chainID    = "TestVerifyNonAdjacentHeaders"
		lastHeight = 1
	)

	var (
		keys = factory.GenPrivKeys(4)
		// 20, 30, 40, 50 - total = 140
		vals     = keys.ToValidators(20, 10)
		bTime, _ = time.Parse(time.RFC3339, "2006-01-02T15:04:05Z")
		header   = keys.GenSignedHeader(t, chainID, lastHeight, bTime, vals, vals, hash("app_hash"), 0, len(keys))

		// 30, 40, 50
		twoThirds     = keys[1:]
		twoThirdsVals = twoThirds.ToValidators(30, 10)

		// 50
		oneThird     = keys[len(keys)-1:]
		oneThirdVals = oneThird.ToValidators(50, 10)

		// 20
		lessThanOneThird     = keys[0:1]
		lessThanOneThirdVals = lessThanOneThird.ToValidators(20, 10)
	)

	testCases := []struct {
		newHeader      *types.SignedHeader
		newVals        *types.ValidatorSet
		trustingPeriod time.Duration
		now            time.Time
		expErr         error
		expErrText     string
	}{
		// 3/3 new vals signed, 3/3 old vals present -> no error
		0: {
			keys.GenSignedHeader(t, chainID, 3, bTime.Add(1*time.Hour), vals, vals,
				hash("app_hash"), 0, len(keys)),
			vals,
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			nil,
			"",
		},
		// 2/3 new vals signed, 3/3 old vals present -> no error
		1: {
			keys.GenSignedHeader(t, chainID, 4, bTime.Add(1*time.Hour), vals, vals,
				hash("app_hash"), 1, len(keys)),
			vals,
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			nil,
			"",
		},
		// 1/3 new vals signed, 3/3 old vals present -> error
		2: {
			keys.GenSignedHeader(t, chainID, 5, bTime.Add(1*time.Hour), vals, vals,
				hash("app_hash"), len(keys)-1, len(keys)),
			vals,
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			light.ErrInvalidHeader{types.ErrNotEnoughVotingPowerSigned{Got: 50, Needed: 93}},
			"",
		},
		// 3/3 new vals signed, 2/3 old vals present -> no error
		3: {
			twoThirds.GenSignedHeader(t, chainID, 5, bTime.Add(1*time.Hour), twoThirdsVals, twoThirdsVals,
				hash("app_hash"), 0, len(twoThirds)),
			twoThirdsVals,
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			nil,
			"",
		},
		// 3/3 new vals signed, 1/3 old vals present -> no error
		4: {
			oneThird.GenSignedHeader(t, chainID, 5, bTime.Add(1*time.Hour), oneThirdVals, oneThirdVals,
				hash("app_hash"), 0, len(oneThird)),
			oneThirdVals,
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			nil,
			"",
		},
		// 3/3 new vals signed, less than 1/3 old vals present -> error
		5: {
			lessThanOneThird.GenSignedHeader(t, chainID, 5, bTime.Add(1*time.Hour), lessThanOneThirdVals,
				lessThanOneThirdVals, hash("app_hash"), 0, len(lessThanOneThird)),
			lessThanOneThirdVals,
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			light.ErrNewValSetCantBeTrusted{types.ErrNotEnoughVotingPowerSigned{Got: 20, Needed: 46}},
			"",
		},
		// adjacent header -> error
		6: {
			keys.GenSignedHeader(t, chainID, lastHeight+1, bTime.Add(1*time.Hour), vals, vals,
				hash("app_hash"), 0, len(keys)),
			vals,
			3 * time.Hour,
			bTime.Add(2 * time.Hour),
			nil,
			"headers must be non adjacent in height",
		},
		// old header has expired -> error
		7: {
			keys.GenSignedHeader(t, chainID, 5, bTime.Add(1*time.Hour), vals, vals,
				hash("app_hash"), 0, len(keys)),
			vals,
			1 * time.Hour,
			bTime.Add(1*time.Hour + time.Nanosecond),
			nil,
			"old header has expired",
		},
	}

	for i, tc := range testCases {
		tc := tc
		t.Run(tcName(i), func(t *testing.T) {
			err := light.VerifyNonAdjacent(header, vals, tc.newHeader, tc.newVals, tc.trustingPeriod,
				tc.now, maxClockDrift, light.DefaultTrustLevel)
			switch {
			case tc.expErr != nil && assert.Error(t, err):
				assert.Equal(t, tc.expErr, err)
			case tc.expErrText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expErrText)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifyReturnsErrorsThatUnwrap(t *testing.T) {
	const chainID = "TestVerifyReturnsErrorsThatUnwrap"

	var (
		keys     = factory.GenPrivKeys(4)
		vals     = keys.ToValidators(20, 0)
		bTime, _ = time.Parse(time.RFC3339, "2006-01-02T15:04:05Z")
		header   = keys.GenSignedHeader(t, chainID, 1, bTime, vals, vals, hash("app_hash"), 0, len(keys))
	)

	future := keys.GenSignedHeader(t, chainID, 2, bTime.Add(3*time.Hour), vals, vals, hash("app_hash"), 0, len(keys))
	err := light.Verify(header, vals, future, vals, 4*time.Hour, bTime.Add(2*time.Hour), maxClockDrift,
		light.DefaultTrustLevel)
	var fromFuture light.ErrHeaderFromFuture
	require.True(t, errors.As(err, &fromFuture), "got %v", err)
	assert.Equal(t, maxClockDrift, fromFuture.MaxClockDrift)

	forged := keys.GenSignedHeader(t, chainID, 2, bTime.Add(time.Hour), vals, vals, hash("app_hash"), 0, len(keys))
	forged.Commit.Signatures[1].Signature[0] ^= 0xff
	err = light.Verify(header, vals, forged, vals, 4*time.Hour, bTime.Add(2*time.Hour), maxClockDrift,
		light.DefaultTrustLevel)
	var invalid types.ErrInvalidSignature
	require.True(t, errors.As(err, &invalid), "got %v", err)
	assert.Equal(t, 1, invalid.Index)

	var invalidHeader light.ErrInvalidHeader
	assert.True(t, errors.As(err, &invalidHeader))
}

func TestVerifierWithCustomCommitVerifier(t *testing.T) {
	const chainID = "TestVerifierWithCustomCommitVerifier"

	var (
		keys     = factory.GenPrivKeys(4)
		vals     = keys.ToValidators(20, 0)
		bTime, _ = time.Parse(time.RFC3339, "2006-01-02T15:04:05Z")
		header   = keys.GenSignedHeader(t, chainID, 1, bTime, vals, vals, hash("app_hash"), 0, len(keys))
		next     = keys.GenSignedHeader(t, chainID, 7, bTime.Add(time.Hour), vals, vals, hash("app_hash"), 0, len(keys))
	)

	v := light.Verifier{Commits: types.CommitVerifier{Parallelism: 1}}
	assert.NoError(t, v.Verify(header, vals, next, vals, 4*time.Hour, bTime.Add(2*time.Hour), maxClockDrift,
		light.DefaultTrustLevel))
}

func TestValidateTrustLevel(t *testing.T) {
	testCases := []struct {
		lvl   tmmath.Fraction
		valid bool
	}{
		// valid
		0: {tmmath.Fraction{Numerator: 1, Denominator: 1}, true},
		1: {tmmath.Fraction{Numerator: 1, Denominator: 3}, true},
		2: {tmmath.Fraction{Numerator: 2, Denominator: 3}, true},
		3: {tmmath.Fraction{Numerator: 3, Denominator: 3}, true},
		4: {tmmath.Fraction{Numerator: 9, Denominator: 10}, true},
		5: {tmmath.Fraction{Numerator: 1 << 62, Denominator: 1<<62 + 1}, true},

		// invalid
		6:  {tmmath.Fraction{Numerator: 3, Denominator: 10}, false},
		7:  {tmmath.Fraction{Numerator: 4, Denominator: 3}, false},
		8:  {tmmath.Fraction{Numerator: 1, Denominator: 4}, false},
		9:  {tmmath.Fraction{Numerator: 0, Denominator: 1}, false},
		10: {tmmath.Fraction{Numerator: 0, Denominator: 0}, false},
		11: {tmmath.Fraction{Numerator: 33, Denominator: 100}, false},
	}

	for _, tc := range testCases {
		err := light.ValidateTrustLevel(tc.lvl)
		if !tc.valid {
			assert.Error(t, err, "%v", tc.lvl)
		} else {
			assert.NoError(t, err, "%v", tc.lvl)
		}
	}
}

func TestHeaderExpired(t *testing.T) {
	bTime, _ := time.Parse(time.RFC3339, "2006-01-02T15:04:05Z")
	h := &types.SignedHeader{Header: &types.Header{Time: bTime}}

	assert.False(t, light.HeaderExpired(h, time.Hour, bTime.Add(59*time.Minute)))
	assert.False(t, light.HeaderExpired(h, time.Hour, bTime.Add(time.Hour)))
	assert.True(t, light.HeaderExpired(h, time.Hour, bTime.Add(time.Hour+time.Nanosecond)))
	assert.True(t, light.HeaderExpired(h, time.Hour, bTime.Add(2*time.Hour)))
}

func tcName(i int) string {
	return fmt.Sprintf("case %d", i)
}

package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unionlabs/union-sub007/types"
)

func TestGenSignedHeaderIsValid(t *testing.T) {
	keys := GenPrivKeysFromSecret("factory", 4)
	vals := keys.ToValidators(10, 0)
	bTime := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	sh := keys.GenSignedHeader(t, "test-1", 5, bTime, vals, vals, Hash("app_hash"), 0, len(keys))
	require.NoError(t, sh.ValidateBasic("test-1"))
	require.NoError(t, types.VerifyCommit("test-1", vals, sh.Commit.BlockID, 5, sh.Commit))
}

func TestGenPrivKeysFromSecretIsDeterministic(t *testing.T) {
	a := GenPrivKeysFromSecret("x", 3).ToValidators(1, 1)
	b := GenPrivKeysFromSecret("x", 3).ToValidators(1, 1)
	assert.Equal(t, a.Hash(), b.Hash())
}

package batch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unionlabs/union-sub007/crypto/batch"
	"github.com/unionlabs/union-sub007/crypto/ed25519"
	"github.com/unionlabs/union-sub007/crypto/secp256k1"
)

func TestCreateBatchVerifier(t *testing.T) {
	bv, ok := batch.CreateBatchVerifier(ed25519.GenPrivKey().PubKey())
	require.True(t, ok)
	require.NotNil(t, bv)
	assert.True(t, batch.SupportsBatchVerifier(ed25519.GenPrivKey().PubKey()))

	bv, ok = batch.CreateBatchVerifier(secp256k1.GenPrivKey().PubKey())
	assert.False(t, ok)
	assert.Nil(t, bv)
	assert.False(t, batch.SupportsBatchVerifier(secp256k1.GenPrivKey().PubKey()))
}

package crypto_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unionlabs/union-sub007/crypto"
)

func TestAddressHash(t *testing.T) {
	// sha256("") truncated to 20 bytes
	addr := crypto.AddressHash(nil)
	require.Len(t, addr, crypto.AddressSize)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4", hex.EncodeToString(addr))
}

func TestChecksum(t *testing.T) {
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		hex.EncodeToString(crypto.Checksum([]byte("abc"))))
}

func TestSignatureVerifierFunc(t *testing.T) {
	var calls int
	v := crypto.SignatureVerifierFunc(func(_ crypto.PubKey, msg, sig []byte) bool {
		calls++
		return string(msg) == string(sig)
	})

	assert.True(t, v.VerifySignature(nil, []byte("a"), []byte("a")))
	assert.False(t, v.VerifySignature(nil, []byte("a"), []byte("b")))
	assert.Equal(t, 2, calls)
}

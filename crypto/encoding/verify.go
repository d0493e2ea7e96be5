package encoding

import (
	"github.com/unionlabs/union-sub007/crypto"
	"github.com/unionlabs/union-sub007/crypto/bls12381"
	"github.com/unionlabs/union-sub007/crypto/ed25519"
	"github.com/unionlabs/union-sub007/crypto/secp256k1"
)

// SignatureVerifier selects the verification scheme from the concrete public
// key variant. Unknown variants never verify.
type SignatureVerifier struct{}

var _ crypto.SignatureVerifier = SignatureVerifier{}

func (SignatureVerifier) VerifySignature(pubKey crypto.PubKey, msg, sig []byte) bool {
	switch pk := pubKey.(type) {
	case ed25519.PubKey:
		return pk.VerifySignature(msg, sig)
	case secp256k1.PubKey:
		return pk.VerifySignature(msg, sig)
	case bls12381.PubKey:
		return pk.VerifySignature(msg, sig)
	default:
		return false
	}
}

package bls12381

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	bls "github.com/protolambda/bls12-381-util"

	"github.com/unionlabs/union-sub007/crypto"
)

const (
	PrivKeyName = "tendermint/PrivKeyBls12_381"
	PubKeyName  = "tendermint/PubKeyBls12_381"
	// PubKeySize is the size, in bytes, of a compressed G1 public key.
	PubKeySize = 48
	// PrivateKeySize is the size, in bytes, of a secret scalar.
	PrivateKeySize = 32
	// SignatureSize of a compressed G2 signature.
	SignatureSize = 96

	KeyType = "bls12_381"
)

var errInvalidSecretKey = errors.New("bls12381: invalid secret key")

//-------------------------------------

var _ crypto.PrivKey = PrivKey{}

// PrivKey is a big endian BLS12-381 secret scalar.
type PrivKey []byte

func (privKey PrivKey) Bytes() []byte {
	return []byte(privKey)
}

func (privKey PrivKey) secretKey() (*bls.SecretKey, error) {
	if len(privKey) != PrivateKeySize {
		return nil, errInvalidSecretKey
	}
	var raw [PrivateKeySize]byte
	copy(raw[:], privKey)
	sk := new(bls.SecretKey)
	if err := sk.Deserialize(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidSecretKey, err)
	}
	return sk, nil
}

// Sign produces a signature over msg using the proof-of-possession ciphersuite.
func (privKey PrivKey) Sign(msg []byte) ([]byte, error) {
	sk, err := privKey.secretKey()
	if err != nil {
		return nil, err
	}
	sig := bls.Sign(sk, msg).Serialize()
	return sig[:], nil
}

// PubKey derives the compressed public key.
//
// Panics if the private key is malformed.
func (privKey PrivKey) PubKey() crypto.PubKey {
	sk, err := privKey.secretKey()
	if err != nil {
		panic(err)
	}
	pk, err := bls.SkToPk(sk)
	if err != nil {
		panic(err)
	}
	raw := pk.Serialize()
	return PubKey(raw[:])
}

func (privKey PrivKey) Equals(other crypto.PrivKey) bool {
	if otherBLS, ok := other.(PrivKey); ok {
		return subtle.ConstantTimeCompare(privKey[:], otherBLS[:]) == 1
	}
	return false
}

func (privKey PrivKey) Type() string {
	return KeyType
}

// GenPrivKey generates a new key from OS randomness.
func GenPrivKey() PrivKey {
	return genPrivKey(crypto.CReader())
}

func genPrivKey(rand io.Reader) PrivKey {
	for {
		seed := make([]byte, PrivateKeySize)
		if _, err := io.ReadFull(rand, seed); err != nil {
			panic(err)
		}
		if key, ok := fromSeed(seed); ok {
			return key
		}
	}
}

// GenPrivKeyFromSecret hashes the secret with SHA2 and uses the digest as the
// secret scalar, after clearing the top bits so it is below the group order.
func GenPrivKeyFromSecret(secret []byte) PrivKey {
	key, ok := fromSeed(crypto.Checksum(secret))
	if !ok {
		panic("bls12381: secret hashes to the zero scalar")
	}
	return key
}

func fromSeed(seed []byte) (PrivKey, bool) {
	// the group order starts with 0x73, so masking to 0x3f keeps us below it
	seed[0] &= 0x3f
	key := PrivKey(seed)
	if _, err := key.secretKey(); err != nil {
		return nil, false
	}
	return key, true
}

//-------------------------------------

var _ crypto.PubKey = PubKey{}

// PubKey is a compressed G1 point.
type PubKey []byte

// Address is the SHA256-20 of the raw pubkey bytes.
func (pubKey PubKey) Address() crypto.Address {
	if len(pubKey) != PubKeySize {
		panic("pubkey is incorrect size")
	}
	return crypto.AddressHash(pubKey)
}

func (pubKey PubKey) Bytes() []byte {
	return []byte(pubKey)
}

// VerifySignature returns false for malformed keys or signatures, including
// points outside the prime order subgroup.
func (pubKey PubKey) VerifySignature(msg []byte, sig []byte) bool {
	if len(sig) != SignatureSize || len(pubKey) != PubKeySize {
		return false
	}

	var rawPk [PubKeySize]byte
	copy(rawPk[:], pubKey)
	pk := new(bls.Pubkey)
	if err := pk.Deserialize(&rawPk); err != nil {
		return false
	}

	var rawSig [SignatureSize]byte
	copy(rawSig[:], sig)
	signature := new(bls.Signature)
	if err := signature.Deserialize(&rawSig); err != nil {
		return false
	}

	return bls.Verify(pk, msg, signature)
}

func (pubKey PubKey) String() string {
	return fmt.Sprintf("PubKeyBLS12_381{%X}", []byte(pubKey))
}

func (pubKey PubKey) Type() string {
	return KeyType
}

func (pubKey PubKey) Equals(other crypto.PubKey) bool {
	if otherBLS, ok := other.(PubKey); ok {
		return bytes.Equal(pubKey[:], otherBLS[:])
	}
	return false
}

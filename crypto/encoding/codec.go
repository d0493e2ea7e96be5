package encoding

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/unionlabs/union-sub007/crypto"
	"github.com/unionlabs/union-sub007/crypto/bls12381"
	"github.com/unionlabs/union-sub007/crypto/ed25519"
	"github.com/unionlabs/union-sub007/crypto/secp256k1"
)

// Field numbers of the PublicKey oneof.
const (
	fieldEd25519   protowire.Number = 1
	fieldSecp256k1 protowire.Number = 2
	fieldBls12381  protowire.Number = 3
)

var ErrUnsupportedKey = errors.New("unsupported public key type")

// PubKeyToProto encodes k as a PublicKey protobuf message.
func PubKeyToProto(k crypto.PubKey) ([]byte, error) {
	var num protowire.Number
	switch k := k.(type) {
	case ed25519.PubKey:
		num = fieldEd25519
	case secp256k1.PubKey:
		num = fieldSecp256k1
	case bls12381.PubKey:
		num = fieldBls12381
	default:
		return nil, fmt.Errorf("toproto: %w: %T", ErrUnsupportedKey, k)
	}

	bz := protowire.AppendTag(nil, num, protowire.BytesType)
	return protowire.AppendBytes(bz, k.Bytes()), nil
}

// PubKeyFromProto decodes a PublicKey protobuf message.
func PubKeyFromProto(bz []byte) (crypto.PubKey, error) {
	num, typ, n := protowire.ConsumeTag(bz)
	if n < 0 {
		return nil, fmt.Errorf("fromproto: %w", protowire.ParseError(n))
	}
	if typ != protowire.BytesType {
		return nil, fmt.Errorf("fromproto: unexpected wire type %d", typ)
	}
	key, m := protowire.ConsumeBytes(bz[n:])
	if m < 0 {
		return nil, fmt.Errorf("fromproto: %w", protowire.ParseError(m))
	}
	if n+m != len(bz) {
		return nil, errors.New("fromproto: trailing bytes after public key")
	}

	switch num {
	case fieldEd25519:
		return PubKeyFromTypeAndBytes(ed25519.KeyType, key)
	case fieldSecp256k1:
		return PubKeyFromTypeAndBytes(secp256k1.KeyType, key)
	case fieldBls12381:
		return PubKeyFromTypeAndBytes(bls12381.KeyType, key)
	default:
		return nil, fmt.Errorf("fromproto: %w: field %d", ErrUnsupportedKey, num)
	}
}

// PubKeyJSONName returns the JSON type tag of k, e.g.
// "tendermint/PubKeyEd25519".
func PubKeyJSONName(k crypto.PubKey) (string, error) {
	switch k.(type) {
	case ed25519.PubKey:
		return ed25519.PubKeyName, nil
	case secp256k1.PubKey:
		return secp256k1.PubKeyName, nil
	case bls12381.PubKey:
		return bls12381.PubKeyName, nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedKey, k)
	}
}

// PubKeyFromTypeAndBytes builds a public key of the named type, checking the
// key length. keyType is either the short key type ("ed25519") or the JSON
// type tag ("tendermint/PubKeyEd25519").
func PubKeyFromTypeAndBytes(keyType string, bz []byte) (crypto.PubKey, error) {
	var (
		pubKey crypto.PubKey
		size   int
	)
	switch keyType {
	case ed25519.KeyType, ed25519.PubKeyName:
		pubKey, size = ed25519.PubKey(append([]byte(nil), bz...)), ed25519.PubKeySize
	case secp256k1.KeyType, secp256k1.PubKeyName:
		pubKey, size = secp256k1.PubKey(append([]byte(nil), bz...)), secp256k1.PubKeySize
	case bls12381.KeyType, bls12381.PubKeyName:
		pubKey, size = bls12381.PubKey(append([]byte(nil), bz...)), bls12381.PubKeySize
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKey, keyType)
	}

	if len(bz) != size {
		return nil, fmt.Errorf("invalid %s pubkey size: expected %d, got %d", keyType, size, len(bz))
	}
	return pubKey, nil
}

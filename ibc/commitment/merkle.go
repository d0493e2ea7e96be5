package commitment

import (
	"fmt"
	"net/url"
	"strings"

	ics23 "github.com/cosmos/ics23/go"
	"google.golang.org/protobuf/encoding/protowire"
)

// MerklePath is the path used to verify commitment proofs, which can be an
// arbitrary structured object (defined by a commitment type). The keys are
// ordered from the outermost store to the innermost key, e.g.
// ["ibc", "clients/07-tendermint-0/clientState"].
type MerklePath struct {
	KeyPath []string `json:"key_path"`
}

// NewMerklePath creates a new MerklePath instance.
func NewMerklePath(keyPath ...string) MerklePath {
	return MerklePath{KeyPath: keyPath}
}

// String implements fmt.Stringer. Keys are URL escaped so "/" inside a key
// stays distinguishable from the separator.
func (mp MerklePath) String() string {
	var b strings.Builder
	for _, k := range mp.KeyPath {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(k))
	}
	return b.String()
}

// GetKey will return a byte representation of the key at index i.
func (mp MerklePath) GetKey(i uint64) ([]byte, error) {
	if i >= uint64(len(mp.KeyPath)) {
		return nil, fmt.Errorf("%w: index out of range. %d (index) >= %d (len)", ErrInvalidPath, i, len(mp.KeyPath))
	}
	return []byte(mp.KeyPath[i]), nil
}

// Empty returns true if the path is empty.
func (mp MerklePath) Empty() bool {
	return len(mp.KeyPath) == 0
}

// MerkleProof is a wrapper type over a chain of CommitmentProofs. It
// demonstrates membership or non-membership for an element or set of
// elements, verifiable in conjunction with a known commitment root. Proofs
// are ordered from the innermost store to the root.
type MerkleProof struct {
	Proofs []*ics23.CommitmentProof
}

// Empty returns true if the proof has no commitment proofs.
func (proof MerkleProof) Empty() bool {
	return len(proof.Proofs) == 0
}

// Marshal encodes the proof as ibc.core.commitment.v1.MerkleProof.
func (proof MerkleProof) Marshal() ([]byte, error) {
	var bz []byte
	for i, p := range proof.Proofs {
		pbz, err := p.Marshal()
		if err != nil {
			return nil, fmt.Errorf("proof #%d: %w", i, err)
		}
		bz = protowire.AppendTag(bz, 1, protowire.BytesType)
		bz = protowire.AppendBytes(bz, pbz)
	}
	return bz, nil
}

// DecodeMerkleProof decodes an ibc.core.commitment.v1.MerkleProof. Unknown
// fields are skipped.
func DecodeMerkleProof(bz []byte) (MerkleProof, error) {
	var proof MerkleProof
	for len(bz) > 0 {
		num, typ, n := protowire.ConsumeTag(bz)
		if n < 0 {
			return MerkleProof{}, fmt.Errorf("%w: %v", ErrInvalidMerkleProof, protowire.ParseError(n))
		}
		bz = bz[n:]

		if num != 1 || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, bz)
			if n < 0 {
				return MerkleProof{}, fmt.Errorf("%w: %v", ErrInvalidMerkleProof, protowire.ParseError(n))
			}
			bz = bz[n:]
			continue
		}

		pbz, n := protowire.ConsumeBytes(bz)
		if n < 0 {
			return MerkleProof{}, fmt.Errorf("%w: %v", ErrInvalidMerkleProof, protowire.ParseError(n))
		}
		bz = bz[n:]

		p := new(ics23.CommitmentProof)
		if err := p.Unmarshal(pbz); err != nil {
			return MerkleProof{}, fmt.Errorf("%w: proof #%d: %v", ErrInvalidMerkleProof, len(proof.Proofs), err)
		}
		proof.Proofs = append(proof.Proofs, p)
	}
	return proof, nil
}

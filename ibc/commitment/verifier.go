package commitment

import (
	"bytes"
	"fmt"

	ics23 "github.com/cosmos/ics23/go"
)

// SDKSpecs returns the proof specs of a Cosmos SDK chain: an IAVL store
// proof followed by the Tendermint simple merkle proof of the multistore.
func SDKSpecs() []*ics23.ProofSpec {
	return []*ics23.ProofSpec{ics23.IavlSpec, ics23.TendermintSpec}
}

// Verifier checks ICS-23 proofs against a commitment root, the app hash of
// a verified header.
type Verifier struct {
	Specs []*ics23.ProofSpec
}

// NewVerifier returns a Verifier for the given specs, or for SDKSpecs when
// none are given.
func NewVerifier(specs ...*ics23.ProofSpec) Verifier {
	if len(specs) == 0 {
		specs = SDKSpecs()
	}
	return Verifier{Specs: specs}
}

// VerifyMembership verifies the membership of a merkle proof against the
// given root, path, and value. Note that the path is expected as
// []string{<store key of module>, <key corresponding to requested value>}.
func (v Verifier) VerifyMembership(root []byte, proof MerkleProof, path MerklePath, value []byte) error {
	if err := v.validateVerificationArgs(root, proof, path); err != nil {
		return err
	}

	// value must not be empty
	if len(value) == 0 {
		return fmt.Errorf("%w: empty value in membership proof", ErrInvalidProof)
	}

	// Since every proof in chain is a membership proof we can use
	// verifyChainedMembershipProof from index 0 to validate entire proof.
	return v.verifyChainedMembershipProof(root, proof.Proofs, path, value, 0)
}

// VerifyNonMembership verifies the absence of a merkle proof against the
// given root and path. The innermost proof must be a non-existence proof; the
// remaining ones prove the store roots up to root.
func (v Verifier) VerifyNonMembership(root []byte, proof MerkleProof, path MerklePath) error {
	if err := v.validateVerificationArgs(root, proof, path); err != nil {
		return err
	}

	switch proof.Proofs[0].Proof.(type) {
	case *ics23.CommitmentProof_Nonexist:
		// VerifyNonMembership will verify the absence of key in lowest subtree,
		// and then chain inclusion proofs of all subroots up to final root
		subroot, err := proof.Proofs[0].Calculate()
		if err != nil {
			return fmt.Errorf("%w: could not calculate root for proof index 0, merkle tree is likely empty. %v",
				ErrInvalidProof, err)
		}
		key, err := path.GetKey(uint64(len(path.KeyPath) - 1))
		if err != nil {
			return fmt.Errorf("%w: could not retrieve key bytes for key: %s", ErrInvalidProof, path.KeyPath[len(path.KeyPath)-1])
		}
		if !ics23.VerifyNonMembership(v.Specs[0], subroot, proof.Proofs[0], key) {
			return fmt.Errorf("%w: could not verify absence of key %s. Please ensure that the path is correct",
				ErrInvalidProof, string(key))
		}

		// Verify chained membership proof starting from index 1 with value = subroot
		return v.verifyChainedMembershipProof(root, proof.Proofs, path, subroot, 1)
	case *ics23.CommitmentProof_Exist:
		return fmt.Errorf("%w: got ExistenceProof in VerifyNonMembership. If this is unexpected, please ensure that proof was queried with the correct key",
			ErrInvalidProof)
	default:
		return fmt.Errorf("%w: expected proof type: %T, got: %T",
			ErrInvalidProof, (*ics23.CommitmentProof_Exist)(nil), proof.Proofs[0].Proof)
	}
}

// verifyChainedMembershipProof takes a list of proofs and specs and verifies
// each proof sequentially, ensuring that the value is committed to by first
// proof and each subsequent subroot is committed to by the next subroot and
// checking that the final calculated root is equal to the given root.
func (v Verifier) verifyChainedMembershipProof(root []byte, proofs []*ics23.CommitmentProof,
	path MerklePath, value []byte, index int) error {
	// Initialize subroot to value since the proofs list may be empty.
	// This may happen if this call is verifying intermediate proofs after the
	// lowest proof has been executed.
	subroot := value
	for i := index; i < len(proofs); i++ {
		switch proofs[i].Proof.(type) {
		case *ics23.CommitmentProof_Exist:
			var err error
			subroot, err = proofs[i].Calculate()
			if err != nil {
				return fmt.Errorf("%w: could not calculate proof root at index %d, merkle tree may be empty. %v",
					ErrInvalidProof, i, err)
			}
			// Since keys are passed in from highest to lowest, we must grab
			// their indices in reverse order from the proofs and specs which
			// are lowest to highest
			key, err := path.GetKey(uint64(len(path.KeyPath) - 1 - i))
			if err != nil {
				return fmt.Errorf("%w: could not retrieve key bytes for key %s", ErrInvalidProof,
					path.KeyPath[len(path.KeyPath)-1-i])
			}

			// verify membership of the proof at this index with appropriate
			// key and value
			if !ics23.VerifyMembership(v.Specs[i], subroot, proofs[i], key, value) {
				return fmt.Errorf("%w: chained membership proof failed to verify membership of value: %X in subroot %X at index %d. Please ensure the path and value are both correct",
					ErrInvalidProof, value, subroot, i)
			}
			// Set value to subroot so that we verify next proof in chain
			// commits to this subroot
			value = subroot
		case *ics23.CommitmentProof_Nonexist:
			return fmt.Errorf("%w: chained membership proof contains nonexistence proof at index %d. If this is unexpected, please ensure that proof was queried from a height that contained the value in store and was queried with the correct key",
				ErrInvalidProof, i)
		default:
			return fmt.Errorf("%w: expected proof type: %T, got: %T",
				ErrInvalidProof, (*ics23.CommitmentProof_Exist)(nil), proofs[i].Proof)
		}
	}
	// Check that chained proof root equals passed-in root
	if !bytes.Equal(root, subroot) {
		return fmt.Errorf("%w: proof did not commit to expected root: %X, got: %X. Please ensure proof was submitted with correct proofHeight and to the correct chain",
			ErrInvalidProof, root, subroot)
	}
	return nil
}

// validateVerificationArgs verifies the proof arguments are valid.
func (v Verifier) validateVerificationArgs(root []byte, proof MerkleProof, path MerklePath) error {
	if len(root) == 0 {
		return ErrEmptyRoot
	}
	if proof.Empty() {
		return fmt.Errorf("%w: proof cannot be empty", ErrInvalidMerkleProof)
	}
	if len(v.Specs) != len(proof.Proofs) {
		return fmt.Errorf("%w: length of specs: %d not equal to length of proof: %d",
			ErrInvalidMerkleProof, len(v.Specs), len(proof.Proofs))
	}
	if len(path.KeyPath) != len(proof.Proofs) {
		return fmt.Errorf("%w: path length %d not same as proof %d",
			ErrInvalidPath, len(path.KeyPath), len(proof.Proofs))
	}
	for i, spec := range v.Specs {
		if spec == nil {
			return fmt.Errorf("%w: spec at position %d is nil", ErrInvalidProof, i)
		}
	}
	for i, p := range proof.Proofs {
		if p == nil || p.Proof == nil {
			return fmt.Errorf("%w: proof at position %d is nil", ErrInvalidMerkleProof, i)
		}
	}
	return nil
}

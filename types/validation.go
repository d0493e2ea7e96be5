package types

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/unionlabs/union-sub007/crypto"
	"github.com/unionlabs/union-sub007/crypto/batch"
	tmmath "github.com/unionlabs/union-sub007/libs/math"
)

// CommitVerifier checks that a commit carries enough valid signatures from a
// validator set. The zero value verifies every signature with the scheme of
// the validator's public key and batch-verifies ed25519 sets.
type CommitVerifier struct {
	// SignatureVerifier, when set, is called for every present signature
	// instead of the key's own scheme. Batch verification is skipped.
	SignatureVerifier crypto.SignatureVerifier
	// Parallelism bounds the number of goroutines used for single signature
	// verification. Zero means runtime.NumCPU().
	Parallelism int
}

// VerifyCommit verifies +2/3 of the set had signed the given commit, using
// the zero CommitVerifier.
func VerifyCommit(chainID string, vals *ValidatorSet, blockID BlockID, height int64, commit *Commit) error {
	return CommitVerifier{}.VerifyCommit(chainID, vals, blockID, height, commit)
}

// VerifyCommitLightTrusting verifies that trustLevel of the validator set
// signed this commit, using the zero CommitVerifier.
func VerifyCommitLightTrusting(chainID string, vals *ValidatorSet, commit *Commit, trustLevel tmmath.Fraction) error {
	return CommitVerifier{}.VerifyCommitLightTrusting(chainID, vals, commit, trustLevel)
}

// VerifyCommit verifies +2/3 of the set had signed the given commit.
//
// The commit signatures are aligned with vals by position. Every present
// signature is checked, including votes for nil, and a single invalid one
// rejects the commit. Only votes for blockID count toward the quorum, which
// must be strictly more than two thirds of the recomputed total voting power.
func (cv CommitVerifier) VerifyCommit(chainID string, vals *ValidatorSet, blockID BlockID,
	height int64, commit *Commit) error {
	if vals == nil {
		return ErrNilValidatorSet
	}
	if commit == nil {
		return ErrNilCommit
	}

	if vals.Size() != len(commit.Signatures) {
		return NewErrInvalidCommitSignatures(vals.Size(), len(commit.Signatures))
	}

	// Validate Height and BlockID.
	if height != commit.Height {
		return NewErrInvalidCommitHeight(height, commit.Height)
	}
	if !blockID.Equals(commit.BlockID) {
		return fmt.Errorf("invalid commit -- wrong block ID: want %v, got %v",
			blockID, commit.BlockID)
	}

	votingPowerNeeded, err := votingPowerNeeded(vals, tmmath.Fraction{Numerator: 2, Denominator: 3})
	if err != nil {
		return err
	}

	var (
		talliedVotingPower int64
		entries            = make([]sigEntry, 0, len(commit.Signatures))
	)
	for idx, commitSig := range commit.Signatures {
		if commitSig.Absent() {
			continue // OK, some signatures can be absent.
		}

		// The vals and commit have a 1-to-1 correspondance.
		// This means we don't need the validator address or to do any lookup.
		val := vals.Validators[idx]
		if !bytes.Equal(val.Address, commitSig.ValidatorAddress) {
			return fmt.Errorf("wrong validator address in commit signature #%d: expected %v, got %v",
				idx, val.Address, commitSig.ValidatorAddress)
		}

		voteSignBytes, err := commit.voteSignBytes(chainID, int32(idx))
		if err != nil {
			return fmt.Errorf("commit signature #%d: %w", idx, err)
		}
		entries = append(entries, sigEntry{
			idx:       idx,
			pubKey:    val.PubKey,
			signBytes: voteSignBytes,
			signature: commitSig.Signature,
		})

		if commitSig.ForBlock() {
			talliedVotingPower += val.VotingPower
		}
	}

	// check the tally before paying for signature verification
	if got, needed := talliedVotingPower, votingPowerNeeded; got <= needed {
		return ErrNotEnoughVotingPowerSigned{Got: got, Needed: needed}
	}

	return cv.verifySignatures(entries)
}

// VerifyCommitLightTrusting verifies that trustLevel of the validator set signed
// this commit.
//
// NOTE the given validators do not necessarily correspond to the validator set
// for this commit, but there may be some intersection. Signatures are matched
// to vals by validator address; signatures of unknown validators are ignored
// and a validator signing twice rejects the commit.
func (cv CommitVerifier) VerifyCommitLightTrusting(chainID string, vals *ValidatorSet, commit *Commit,
	trustLevel tmmath.Fraction) error {
	// sanity checks
	if vals == nil {
		return ErrNilValidatorSet
	}
	if trustLevel.Denominator == 0 {
		return errors.New("trustLevel has zero Denominator")
	}
	if commit == nil {
		return ErrNilCommit
	}

	votingPowerNeeded, err := votingPowerNeeded(vals, trustLevel)
	if err != nil {
		return err
	}

	byAddress := make(map[string]int, len(vals.Validators))
	for idx, val := range vals.Validators {
		byAddress[string(val.Address)] = idx
	}

	var (
		talliedVotingPower int64
		seenVals           = make(map[int]int, len(commit.Signatures)) // validator index -> commit index
		entries            = make([]sigEntry, 0, len(commit.Signatures))
	)
	for idx, commitSig := range commit.Signatures {
		if commitSig.Absent() {
			continue
		}

		// We don't know the validators that committed this block, so we have to
		// check for each vote if its validator is already known.
		valIdx, ok := byAddress[string(commitSig.ValidatorAddress)]
		if !ok {
			continue
		}
		val := vals.Validators[valIdx]

		// check for double vote of validator on the same commit
		if firstIndex, ok := seenVals[valIdx]; ok {
			secondIndex := idx
			return fmt.Errorf("double vote from %v (%d and %d)", val, firstIndex, secondIndex)
		}
		seenVals[valIdx] = idx

		voteSignBytes, err := commit.voteSignBytes(chainID, int32(idx))
		if err != nil {
			return fmt.Errorf("commit signature #%d: %w", idx, err)
		}
		entries = append(entries, sigEntry{
			idx:       idx,
			pubKey:    val.PubKey,
			signBytes: voteSignBytes,
			signature: commitSig.Signature,
		})

		if commitSig.ForBlock() {
			talliedVotingPower += val.VotingPower
		}
	}

	if got, needed := talliedVotingPower, votingPowerNeeded; got <= needed {
		return ErrNotEnoughVotingPowerSigned{Got: got, Needed: needed}
	}

	return cv.verifySignatures(entries)
}

// votingPowerNeeded returns floor(total * level). A commit must carry
// strictly more than that. An empty or powerless set can never be satisfied.
func votingPowerNeeded(vals *ValidatorSet, level tmmath.Fraction) (int64, error) {
	total, err := vals.TotalVotingPower()
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, ErrNotEnoughVotingPowerSigned{Got: 0, Needed: 0}
	}

	numerator, err := tmmath.SafeConvertInt64(level.Numerator)
	if err != nil {
		return 0, fmt.Errorf("trust level numerator: %w", err)
	}
	denominator, err := tmmath.SafeConvertInt64(level.Denominator)
	if err != nil {
		return 0, fmt.Errorf("trust level denominator: %w", err)
	}

	product, err := tmmath.SafeMulInt64(total, numerator)
	if err != nil {
		return 0, fmt.Errorf("%w: while calculating voting power needed, please provide smaller trustLevel numerator",
			ErrTotalVotingPowerOverflow)
	}
	return product / denominator, nil
}

type sigEntry struct {
	idx       int
	pubKey    crypto.PubKey
	signBytes []byte
	signature []byte
}

// verifySignatures checks every entry. Keys that support it are batch
// verified first; if the batch fails, or cannot be formed, each signature is
// checked on its own so the first bad one (by commit position) is reported.
func (cv CommitVerifier) verifySignatures(entries []sigEntry) error {
	if len(entries) == 0 {
		return nil
	}

	if cv.SignatureVerifier == nil && len(entries) > 1 {
		if bv, ok := batch.CreateBatchVerifier(entries[0].pubKey); ok && addAll(bv, entries) {
			if allValid, _ := bv.Verify(); allValid {
				return nil
			}
		}
	}

	return cv.verifySingle(entries)
}

func addAll(bv crypto.BatchVerifier, entries []sigEntry) bool {
	for _, e := range entries {
		if err := bv.Add(e.pubKey, e.signBytes, e.signature); err != nil {
			return false
		}
	}
	return true
}

func (cv CommitVerifier) verifySingle(entries []sigEntry) error {
	verifier := cv.SignatureVerifier
	if verifier == nil {
		verifier = defaultSignatureVerifier
	}
	limit := cv.Parallelism
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	valid := make([]bool, len(entries))
	var g errgroup.Group
	g.SetLimit(limit)
	for i := range entries {
		i := i
		g.Go(func() error {
			e := entries[i]
			valid[i] = verifier.VerifySignature(e.pubKey, e.signBytes, e.signature)
			return nil
		})
	}
	_ = g.Wait()

	for i, ok := range valid {
		if !ok {
			return ErrInvalidSignature{Index: entries[i].idx, Signature: entries[i].signature}
		}
	}
	return nil
}

package types

import (
	"errors"
	"fmt"
	"time"

	gogotypes "github.com/gogo/protobuf/types"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/unionlabs/union-sub007/crypto"
	tmbytes "github.com/unionlabs/union-sub007/libs/bytes"
)

// SignedMsgType is a type of signed message in the consensus.
type SignedMsgType int32

const (
	UnknownType SignedMsgType = 0
	// Votes
	PrevoteType   SignedMsgType = 1
	PrecommitType SignedMsgType = 2
	// Proposals
	ProposalType SignedMsgType = 32
)

var (
	ErrVoteInvalidSignature = errors.New("invalid signature")
	ErrVoteNil              = errors.New("nil vote")
)

// Vote represents a prevote, precommit, or commit vote from validators for
// consensus. The light client only reconstructs precommits from commits.
type Vote struct {
	Type             SignedMsgType  `json:"type"`
	Height           int64          `json:"height,string"`
	Round            int32          `json:"round"`    // assume there will not be greater than 2_147_483_647 rounds
	BlockID          BlockID        `json:"block_id"` // zero if vote is nil.
	Timestamp        time.Time      `json:"timestamp"`
	ValidatorAddress crypto.Address `json:"validator_address"`
	ValidatorIndex   int32          `json:"validator_index"`
	Signature        []byte         `json:"signature"`
}

// VoteSignBytes returns the proto-encoding of the canonicalized Vote, for
// signing. The encoding is length delimited.
//
// Panics if the marshaling fails.
//
// See CanonicalizeVote
func VoteSignBytes(chainID string, vote *Vote) []byte {
	bz, err := voteSignBytes(chainID, vote)
	if err != nil {
		panic(err)
	}
	return bz
}

// voteSignBytes is VoteSignBytes for untrusted votes: a timestamp outside
// the protobuf range is reported instead of panicking.
func voteSignBytes(chainID string, vote *Vote) ([]byte, error) {
	bz, err := canonicalVoteBytes(chainID, vote)
	if err != nil {
		return nil, err
	}
	return protowire.AppendBytes(nil, bz), nil
}

// SignBytes is VoteSignBytes for this vote.
func (vote *Vote) SignBytes(chainID string) []byte {
	return VoteSignBytes(chainID, vote)
}

// Verify checks the signature over the vote's sign bytes.
func (vote *Vote) Verify(chainID string, pubKey crypto.PubKey) error {
	if vote == nil {
		return ErrVoteNil
	}
	if !pubKey.VerifySignature(vote.SignBytes(chainID), vote.Signature) {
		return ErrVoteInvalidSignature
	}
	return nil
}

func (vote *Vote) String() string {
	if vote == nil {
		return "nil-Vote"
	}
	return fmt.Sprintf("Vote{%v:%X %v/%d %v %X @ %s}",
		vote.ValidatorIndex,
		tmbytes.Fingerprint(vote.ValidatorAddress),
		vote.Height,
		vote.Round,
		vote.Type,
		tmbytes.Fingerprint(vote.BlockID.Hash),
		vote.Timestamp.UTC().Format(time.RFC3339Nano),
	)
}

// canonicalVoteBytes encodes tendermint.types.CanonicalVote. Height and round
// are sfixed64 so that their encoding is independent of their value.
func canonicalVoteBytes(chainID string, vote *Vote) ([]byte, error) {
	var bz []byte
	if vote.Type != UnknownType {
		bz = protowire.AppendTag(bz, 1, protowire.VarintType)
		bz = protowire.AppendVarint(bz, uint64(vote.Type))
	}
	if vote.Height != 0 {
		bz = protowire.AppendTag(bz, 2, protowire.Fixed64Type)
		bz = protowire.AppendFixed64(bz, uint64(vote.Height))
	}
	if vote.Round != 0 {
		bz = protowire.AppendTag(bz, 3, protowire.Fixed64Type)
		bz = protowire.AppendFixed64(bz, uint64(int64(vote.Round)))
	}
	if !vote.BlockID.IsNil() {
		bz = protowire.AppendTag(bz, 4, protowire.BytesType)
		bz = protowire.AppendBytes(bz, canonicalBlockIDBytes(vote.BlockID))
	}

	ts, err := gogotypes.StdTimeMarshal(vote.Timestamp)
	if err != nil {
		return nil, err
	}
	bz = protowire.AppendTag(bz, 5, protowire.BytesType)
	bz = protowire.AppendBytes(bz, ts)

	if chainID != "" {
		bz = protowire.AppendTag(bz, 6, protowire.BytesType)
		bz = protowire.AppendString(bz, chainID)
	}
	return bz, nil
}

// canonicalBlockIDBytes encodes tendermint.types.CanonicalBlockID, whose
// part set header is non-nullable.
func canonicalBlockIDBytes(blockID BlockID) []byte {
	var bz []byte
	if len(blockID.Hash) > 0 {
		bz = protowire.AppendTag(bz, 1, protowire.BytesType)
		bz = protowire.AppendBytes(bz, blockID.Hash)
	}
	bz = protowire.AppendTag(bz, 2, protowire.BytesType)
	return protowire.AppendBytes(bz, blockID.PartSetHeader.protoBytes())
}

// CommitSig converts the Vote to a CommitSig.
func (vote *Vote) CommitSig() CommitSig {
	if vote == nil {
		return NewCommitSigAbsent()
	}

	var blockIDFlag BlockIDFlag
	switch {
	case vote.BlockID.IsComplete():
		blockIDFlag = BlockIDFlagCommit
	case vote.BlockID.IsNil():
		blockIDFlag = BlockIDFlagNil
	default:
		panic(fmt.Sprintf("Invalid vote %v - expected BlockID to be either empty or complete", vote))
	}

	return CommitSig{
		BlockIDFlag:      blockIDFlag,
		ValidatorAddress: vote.ValidatorAddress,
		Timestamp:        vote.Timestamp,
		Signature:        vote.Signature,
	}
}

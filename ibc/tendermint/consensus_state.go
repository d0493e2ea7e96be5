package tendermint

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	tmbytes "github.com/unionlabs/union-sub007/libs/bytes"
	"github.com/unionlabs/union-sub007/types"
)

// ConsensusState is what a client stores for every verified height.
type ConsensusState struct {
	// Timestamp is the block time of the header that produced this state.
	Timestamp time.Time `json:"timestamp"`
	// Root is the app hash committed by the header. Membership proofs are
	// verified against it.
	Root tmbytes.HexBytes `json:"root"`
	// NextValidatorsHash commits to the validator set that signs the next
	// height. It authenticates the trusted validators of later headers.
	NextValidatorsHash tmbytes.HexBytes `json:"next_validators_hash"`
}

// NewConsensusState creates a new ConsensusState instance.
func NewConsensusState(timestamp time.Time, root, nextValsHash []byte) *ConsensusState {
	return &ConsensusState{
		Timestamp:          timestamp,
		Root:               root,
		NextValidatorsHash: nextValsHash,
	}
}

// ClientType returns Tendermint.
func (ConsensusState) ClientType() string {
	return ModuleName
}

// ValidateBasic defines a basic validation for the tendermint consensus state.
// NOTE: ProcessedTimestamp may be zero if this is an initial consensus state
// passed in by relayer as opposed to a consensus state constructed by the
// chain.
func (cs ConsensusState) ValidateBasic() error {
	if len(cs.Root) == 0 {
		return newError(ErrInvalidConsensusState, errors.New("root cannot be empty"))
	}
	if len(cs.NextValidatorsHash) != types.HashSize {
		return newError(ErrInvalidConsensusState, fmt.Errorf("next validators hash is invalid: expected %d bytes, got %d",
			types.HashSize, len(cs.NextValidatorsHash)))
	}
	if cs.Timestamp.Unix() <= 0 {
		return newError(ErrInvalidConsensusState, errors.New("timestamp must be a positive Unix time"))
	}
	return nil
}

// Equal reports whether both states commit to the same data.
func (cs ConsensusState) Equal(other ConsensusState) bool {
	return cs.Timestamp.Equal(other.Timestamp) &&
		bytes.Equal(cs.Root, other.Root) &&
		bytes.Equal(cs.NextValidatorsHash, other.NextValidatorsHash)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (cs ConsensusState) MarshalZerologObject(e *zerolog.Event) {
	e.Time("timestamp", cs.Timestamp)
	e.Str("root", cs.Root.String())
	e.Str("next_validators_hash", cs.NextValidatorsHash.String())
}

package tendermint

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/unionlabs/union-sub007/ibc/client"
	"github.com/unionlabs/union-sub007/types"
)

// Header is an untrusted update for a client. It carries the signed block,
// the validator set that signed it and the validator set the submitter
// claims was trusted after TrustedHeight.
type Header struct {
	*types.SignedHeader `json:"signed_header"`

	ValidatorSet      *types.ValidatorSet `json:"validator_set"`
	TrustedHeight     client.Height       `json:"trusted_height"`
	TrustedValidators *types.ValidatorSet `json:"trusted_validators"`
}

// ClientType defines that the Header is a Tendermint consensus algorithm
func (Header) ClientType() string {
	return ModuleName
}

// ConsensusState returns the updated consensus state associated with the header
func (h Header) ConsensusState() *ConsensusState {
	return &ConsensusState{
		Timestamp:          h.Header.Time,
		Root:               h.Header.AppHash,
		NextValidatorsHash: h.Header.NextValidatorsHash,
	}
}

// GetHeight returns the height of the signed header. The revision number is
// parsed from the chain id.
// NOTE: the header.Header is checked to be non nil in ValidateBasic.
func (h Header) GetHeight() (client.Height, error) {
	if h.SignedHeader == nil || h.Header == nil {
		return client.Height{}, errors.New("tendermint header cannot be nil")
	}
	revision, err := client.ParseChainID(h.Header.ChainID)
	if err != nil {
		return client.Height{}, err
	}
	if h.Header.Height <= 0 {
		return client.Height{}, fmt.Errorf("%w: header height must be positive, got %d",
			client.ErrInvalidHeight, h.Header.Height)
	}
	return client.NewHeight(revision, uint64(h.Header.Height)), nil
}

// GetTime returns the current block timestamp.
func (h Header) GetTime() time.Time {
	return h.Header.Time
}

// ValidateBasic calls the SignedHeader ValidateBasic function and checks
// that validatorsets are not nil.
// NOTE: TrustedHeight and TrustedValidators may be empty when creating client
// with MsgCreateClient
func (h Header) ValidateBasic() error {
	if h.SignedHeader == nil {
		return errors.New("tendermint signed header cannot be nil")
	}
	if h.Header == nil {
		return errors.New("tendermint header cannot be nil")
	}
	if err := h.SignedHeader.ValidateBasic(h.Header.ChainID); err != nil {
		return fmt.Errorf("header failed basic validation: %w", err)
	}

	height, err := h.GetHeight()
	if err != nil {
		return err
	}
	// TrustedHeight is less than Header for updates and misbehaviour
	if h.TrustedHeight.GTE(height) {
		return fmt.Errorf("TrustedHeight %s must be less than header height %s", h.TrustedHeight, height)
	}

	if h.ValidatorSet == nil {
		return errors.New("validator set is nil")
	}
	valsHash, err := types.ValidatorsHash(h.ValidatorSet.Validators)
	if err != nil {
		return fmt.Errorf("validator set: %w", err)
	}
	if !bytes.Equal(h.Header.ValidatorsHash, valsHash) {
		return fmt.Errorf("validator set does not match hash: expected %X, got %X",
			h.Header.ValidatorsHash, valsHash)
	}
	return nil
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (h Header) MarshalZerologObject(e *zerolog.Event) {
	if h.SignedHeader != nil && h.Header != nil {
		e.Str("chain_id", h.Header.ChainID)
		e.Int64("height", h.Header.Height)
		e.Str("hash", h.Header.Hash().String())
	}
	e.Object("trusted_height", h.TrustedHeight)
}

package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/unionlabs/union-sub007/crypto"
	ce "github.com/unionlabs/union-sub007/crypto/encoding"
)

// Validator is a member of a validator set. ProposerPriority is volatile
// state and is not included in Validator.Bytes().
type Validator struct {
	Address     crypto.Address `json:"address"`
	PubKey      crypto.PubKey  `json:"pub_key"`
	VotingPower int64          `json:"voting_power"`

	ProposerPriority int64 `json:"proposer_priority"`
}

type pubKeyJSON struct {
	Type  string `json:"type"`
	Value []byte `json:"value"`
}

type validatorJSON struct {
	Address          crypto.Address `json:"address"`
	PubKey           *pubKeyJSON    `json:"pub_key,omitempty"`
	VotingPower      int64          `json:"voting_power,string"`
	ProposerPriority int64          `json:"proposer_priority,string"`
}

func (v Validator) MarshalJSON() ([]byte, error) {
	val := validatorJSON{
		Address:          v.Address,
		VotingPower:      v.VotingPower,
		ProposerPriority: v.ProposerPriority,
	}
	if v.PubKey != nil {
		name, err := ce.PubKeyJSONName(v.PubKey)
		if err != nil {
			return nil, err
		}
		val.PubKey = &pubKeyJSON{Type: name, Value: v.PubKey.Bytes()}
	}
	return json.Marshal(val)
}

func (v *Validator) UnmarshalJSON(data []byte) error {
	var val validatorJSON
	if err := json.Unmarshal(data, &val); err != nil {
		return err
	}
	if val.PubKey != nil {
		pk, err := ce.PubKeyFromTypeAndBytes(val.PubKey.Type, val.PubKey.Value)
		if err != nil {
			return err
		}
		v.PubKey = pk
	}
	v.Address = val.Address
	v.VotingPower = val.VotingPower
	v.ProposerPriority = val.ProposerPriority
	return nil
}

// NewValidator returns a new validator with the given pubkey and voting power.
func NewValidator(pubKey crypto.PubKey, votingPower int64) *Validator {
	return &Validator{
		Address:          pubKey.Address(),
		PubKey:           pubKey,
		VotingPower:      votingPower,
		ProposerPriority: 0,
	}
}

// ValidateBasic performs basic validation.
func (v *Validator) ValidateBasic() error {
	if v == nil {
		return ErrNilValidator
	}
	if v.PubKey == nil {
		return errors.New("validator does not have a public key")
	}
	// rejects unsupported key types and keys of the wrong size, which
	// PubKey.Address would panic on
	if _, err := ce.PubKeyFromTypeAndBytes(v.PubKey.Type(), v.PubKey.Bytes()); err != nil {
		return err
	}

	if v.VotingPower < 0 {
		return errors.New("validator has negative voting power")
	}

	if len(v.Address) != crypto.AddressSize {
		return fmt.Errorf("validator address is the wrong size: %v", v.Address)
	}
	if addr := v.PubKey.Address(); !bytes.Equal(v.Address, addr) {
		return fmt.Errorf("validator address %X does not match its public key %X", v.Address, addr)
	}

	return nil
}

// Copy creates a new copy of the validator so we can mutate ProposerPriority.
// Panics if the validator is nil.
func (v *Validator) Copy() *Validator {
	vCopy := *v
	return &vCopy
}

// String returns a string representation of String.
//
// 1. address
// 2. public key
// 3. voting power
// 4. proposer priority
func (v *Validator) String() string {
	if v == nil {
		return "nil-Validator"
	}
	return fmt.Sprintf("Validator{%v %v VP:%v A:%v}",
		v.Address,
		v.PubKey,
		v.VotingPower,
		v.ProposerPriority)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler
func (v *Validator) MarshalZerologObject(e *zerolog.Event) {
	if v == nil {
		return
	}
	e.Str("address", v.Address.String())
	e.Int64("voting_power", v.VotingPower)
	if v.PubKey != nil {
		e.Str("pub_key_type", v.PubKey.Type())
	}
}

// ValidatorListString returns a prettified validator list for logging purposes.
func ValidatorListString(vals []*Validator) string {
	chunks := make([]string, len(vals))
	for i, val := range vals {
		if val == nil {
			chunks[i] = "nil"
			continue
		}
		chunks[i] = fmt.Sprintf("%s:%d", val.Address, val.VotingPower)
	}

	return strings.Join(chunks, ",")
}

// Bytes computes the unique encoding of a validator with a given voting power.
// These are the bytes that gets hashed in consensus. It excludes address
// as its redundant with the pubkey. This also excludes ProposerPriority
// which changes every round.
//
// The encoding is tendermint.types.SimpleValidator.
func (v *Validator) Bytes() []byte {
	bz, err := v.bytes()
	if err != nil {
		panic(err)
	}
	return bz
}

func (v *Validator) bytes() ([]byte, error) {
	if v == nil {
		return nil, ErrNilValidator
	}
	var bz []byte
	if v.PubKey != nil {
		pk, err := ce.PubKeyToProto(v.PubKey)
		if err != nil {
			return nil, err
		}
		bz = protowire.AppendTag(bz, 1, protowire.BytesType)
		bz = protowire.AppendBytes(bz, pk)
	}
	if v.VotingPower != 0 {
		bz = protowire.AppendTag(bz, 2, protowire.VarintType)
		bz = protowire.AppendVarint(bz, uint64(v.VotingPower))
	}
	return bz, nil
}

var defaultSignatureVerifier crypto.SignatureVerifier = ce.SignatureVerifier{}

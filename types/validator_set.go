package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/unionlabs/union-sub007/crypto/merkle"
	tmbytes "github.com/unionlabs/union-sub007/libs/bytes"
	tmmath "github.com/unionlabs/union-sub007/libs/math"
)

const (
	// MaxTotalVotingPower - the maximum allowed total voting power. It is
	// the bound the tracked chain enforces, and it keeps total*2 and
	// total*trustLevel.Numerator (for small numerators) inside int64.
	MaxTotalVotingPower = int64(math.MaxInt64) / 8
)

// ValidatorSet represent a set of *Validator at a given height.
//
// The validators are kept in the order they were received in: the set hash
// commits to that order and commit signatures are aligned with it. A set
// decoded from the wire is never re-sorted.
//
// The total voting power is never read from the wire. It is recomputed from
// the members with checked arithmetic on every call.
type ValidatorSet struct {
	Validators []*Validator `json:"validators"`
	Proposer   *Validator   `json:"proposer"`
}

type validatorSetJSON struct {
	Validators       []*Validator `json:"validators"`
	Proposer         *Validator   `json:"proposer,omitempty"`
	TotalVotingPower int64        `json:"total_voting_power,string,omitempty"`
}

// MarshalJSON includes the recomputed total for readers of the JSON form.
func (vals ValidatorSet) MarshalJSON() ([]byte, error) {
	out := validatorSetJSON{
		Validators: vals.Validators,
		Proposer:   vals.Proposer,
	}
	if total, err := TotalVotingPower(vals.Validators); err == nil {
		out.TotalVotingPower = total
	}
	return json.Marshal(out)
}

// UnmarshalJSON discards any total_voting_power carried by the input.
func (vals *ValidatorSet) UnmarshalJSON(data []byte) error {
	var in validatorSetJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	vals.Validators = in.Validators
	vals.Proposer = in.Proposer
	return nil
}

// NewValidatorSet initializes a ValidatorSet from the given validators,
// preserving their order. The first validator is taken as the proposer.
//
// The returned set is not validated; call ValidateBasic before using it
// with untrusted input.
func NewValidatorSet(valz []*Validator) *ValidatorSet {
	vals := &ValidatorSet{
		Validators: validatorListCopy(valz),
	}
	if len(vals.Validators) > 0 {
		vals.Proposer = vals.Validators[0]
	}
	return vals
}

// ValidateBasic performs basic validation: non-empty, every member valid, no
// duplicate addresses, a member proposer, and a total voting power that is
// positive and not above MaxTotalVotingPower.
func (vals *ValidatorSet) ValidateBasic() error {
	if vals.IsNilOrEmpty() {
		return errors.New("validator set is nil or empty")
	}

	seen := make(map[string]int, len(vals.Validators))
	for idx, val := range vals.Validators {
		if err := val.ValidateBasic(); err != nil {
			return fmt.Errorf("invalid validator #%d: %w", idx, err)
		}
		if prev, ok := seen[string(val.Address)]; ok {
			return fmt.Errorf("duplicate validator %v (#%d and #%d)", val.Address, prev, idx)
		}
		seen[string(val.Address)] = idx
	}

	if vals.Proposer != nil {
		if err := vals.Proposer.ValidateBasic(); err != nil {
			return fmt.Errorf("proposer failed validate basic, error: %w", err)
		}
		_, member := vals.GetByAddress(vals.Proposer.Address)
		if member == nil || !member.PubKey.Equals(vals.Proposer.PubKey) {
			return fmt.Errorf("proposer %v is not a member of the validator set", vals.Proposer.Address)
		}
	}

	total, err := vals.TotalVotingPower()
	if err != nil {
		return err
	}
	if total == 0 {
		return errors.New("validator set has zero total voting power")
	}
	if total > MaxTotalVotingPower {
		return fmt.Errorf("%w: %d exceeds maximum %d",
			ErrTotalVotingPowerTooHigh, total, MaxTotalVotingPower)
	}

	return nil
}

// IsNilOrEmpty returns true if validator set is nil or empty.
func (vals *ValidatorSet) IsNilOrEmpty() bool {
	return vals == nil || len(vals.Validators) == 0
}

// Makes a copy of the validator list.
func validatorListCopy(valsList []*Validator) []*Validator {
	if valsList == nil {
		return nil
	}
	valsCopy := make([]*Validator, len(valsList))
	for i, val := range valsList {
		if val != nil {
			valsCopy[i] = val.Copy()
		}
	}
	return valsCopy
}

// Copy each validator into a new ValidatorSet.
func (vals *ValidatorSet) Copy() *ValidatorSet {
	valsCopy := &ValidatorSet{
		Validators: validatorListCopy(vals.Validators),
	}
	if vals.Proposer != nil {
		_, valsCopy.Proposer = valsCopy.GetByAddress(vals.Proposer.Address)
	}
	return valsCopy
}

// HasAddress returns true if address given is in the validator set, false -
// otherwise.
func (vals *ValidatorSet) HasAddress(address []byte) bool {
	idx, _ := vals.GetByAddress(address)
	return idx >= 0
}

// GetByAddress returns an index of the validator with address and validator
// itself (copy) if found. Otherwise, -1 and nil are returned.
func (vals *ValidatorSet) GetByAddress(address []byte) (index int32, val *Validator) {
	for idx, val := range vals.Validators {
		if val != nil && bytes.Equal(val.Address, address) {
			return int32(idx), val.Copy()
		}
	}
	return -1, nil
}

// GetByIndex returns the validator's address and validator itself (copy) by
// index.
// It returns nil values if index is less than 0 or greater or equal to
// len(ValidatorSet.Validators).
func (vals *ValidatorSet) GetByIndex(index int32) (address []byte, val *Validator) {
	if index < 0 || int(index) >= len(vals.Validators) {
		return nil, nil
	}
	val = vals.Validators[index]
	return val.Address, val.Copy()
}

// Size returns the length of the validator set.
func (vals *ValidatorSet) Size() int {
	return len(vals.Validators)
}

// TotalVotingPower sums the voting power of vals left to right with checked
// addition. It fails with ErrTotalVotingPowerOverflow the moment the running
// sum would leave the int64 range, and rejects nil members and negative
// voting powers.
func TotalVotingPower(vals []*Validator) (int64, error) {
	var sum int64
	for idx, val := range vals {
		if val == nil {
			return 0, fmt.Errorf("%w: #%d", ErrNilValidator, idx)
		}
		if val.VotingPower < 0 {
			return 0, fmt.Errorf("validator #%d has negative voting power %d", idx, val.VotingPower)
		}
		next, err := tmmath.SafeAddInt64(sum, val.VotingPower)
		if err != nil {
			return 0, fmt.Errorf("%w: at validator #%d", ErrTotalVotingPowerOverflow, idx)
		}
		sum = next
	}
	return sum, nil
}

// TotalVotingPower returns the sum of the voting powers of all validators.
func (vals *ValidatorSet) TotalVotingPower() (int64, error) {
	return TotalVotingPower(vals.Validators)
}

// GetProposer returns the current proposer. If the validator set is empty, nil
// is returned.
func (vals *ValidatorSet) GetProposer() (proposer *Validator) {
	if len(vals.Validators) == 0 {
		return nil
	}
	if vals.Proposer == nil {
		return vals.Validators[0].Copy()
	}
	return vals.Proposer.Copy()
}

// ValidatorsHash is the Merkle root of the validators' SimpleValidator
// encodings, in the given order. It is the value a header records as
// validators_hash and next_validators_hash.
func ValidatorsHash(vals []*Validator) (tmbytes.HexBytes, error) {
	bzs := make([][]byte, len(vals))
	for i, val := range vals {
		if val == nil {
			return nil, fmt.Errorf("%w: #%d", ErrNilValidator, i)
		}
		bz, err := val.bytes()
		if err != nil {
			return nil, fmt.Errorf("validator #%d: %w", i, err)
		}
		bzs[i] = bz
	}
	return merkle.HashFromByteSlices(bzs), nil
}

// Hash returns the Merkle root hash build using validators (as leaves) in the
// set.
//
// Panics if a validator carries an unsupported key; ValidateBasic rejects
// such sets.
func (vals *ValidatorSet) Hash() tmbytes.HexBytes {
	hash, err := ValidatorsHash(vals.Validators)
	if err != nil {
		panic(err)
	}
	return hash
}

// String returns a string representation of ValidatorSet.
//
// See StringIndented.
func (vals *ValidatorSet) String() string {
	return vals.StringIndented("")
}

// StringIndented returns an intended String.
//
// See Validator#String.
func (vals *ValidatorSet) StringIndented(indent string) string {
	if vals == nil {
		return "nil-ValidatorSet"
	}
	var valStrings []string
	for _, val := range vals.Validators {
		valStrings = append(valStrings, val.String())
	}
	return fmt.Sprintf(`ValidatorSet{
%s  Proposer: %v
%s  Validators:
%s    %v
%s}`,
		indent, vals.GetProposer().String(),
		indent,
		indent, strings.Join(valStrings, "\n"+indent+"    "),
		indent)
}

package db

import (
	"fmt"
	"time"

	ics23 "github.com/cosmos/ics23/go"
	gogotypes "github.com/gogo/protobuf/types"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/unionlabs/union-sub007/ibc/client"
	"github.com/unionlabs/union-sub007/ibc/tendermint"
	"github.com/unionlabs/union-sub007/ibc/tendermint/store"
)

// Records are protobuf messages laid out like their ibc-go counterparts:
//
//	ClientState    { 1 chain_id, 2 trust_level, 3 trusting_period,
//	                 4 unbonding_period, 5 max_clock_drift, 6 frozen_height,
//	                 7 latest_height, 8 repeated proof_specs }
//	ConsensusState { 1 timestamp, 2 root { 1 hash }, 3 next_validators_hash }
//	Metadata       { 1 processed_time, 2 processed_height }
//	Height         { 1 revision_number, 2 revision_height }
//	Fraction       { 1 numerator, 2 denominator }

func marshalClientState(cs *tendermint.ClientState) ([]byte, error) {
	var bz []byte
	if cs.ChainID != "" {
		bz = protowire.AppendTag(bz, 1, protowire.BytesType)
		bz = protowire.AppendString(bz, cs.ChainID)
	}
	bz = protowire.AppendTag(bz, 2, protowire.BytesType)
	bz = protowire.AppendBytes(bz, appendUvarints(nil, cs.TrustLevel.Numerator, cs.TrustLevel.Denominator))

	for i, d := range []time.Duration{cs.TrustingPeriod, cs.UnbondingPeriod, cs.MaxClockDrift} {
		dbz, err := gogotypes.StdDurationMarshal(d)
		if err != nil {
			return nil, err
		}
		bz = protowire.AppendTag(bz, protowire.Number(3+i), protowire.BytesType)
		bz = protowire.AppendBytes(bz, dbz)
	}

	bz = protowire.AppendTag(bz, 6, protowire.BytesType)
	bz = protowire.AppendBytes(bz, heightBytes(cs.FrozenHeight))
	bz = protowire.AppendTag(bz, 7, protowire.BytesType)
	bz = protowire.AppendBytes(bz, heightBytes(cs.LatestHeight))

	for i, spec := range cs.ProofSpecs {
		if spec == nil {
			return nil, errors.Errorf("nil proof spec #%d", i)
		}
		sbz, err := spec.Marshal()
		if err != nil {
			return nil, errors.Wrapf(err, "proof spec #%d", i)
		}
		bz = protowire.AppendTag(bz, 8, protowire.BytesType)
		bz = protowire.AppendBytes(bz, sbz)
	}
	return bz, nil
}

func unmarshalClientState(bz []byte) (*tendermint.ClientState, error) {
	fields, err := parseFields(bz)
	if err != nil {
		return nil, err
	}

	var cs tendermint.ClientState
	for _, f := range fields {
		if f.num > 8 {
			continue
		}
		if f.typ != protowire.BytesType {
			return nil, fmt.Errorf("client state field %d: unexpected wire type %d", f.num, f.typ)
		}
		switch f.num {
		case 1:
			cs.ChainID = string(f.bz)
		case 2:
			vs, err := parseUvarints(f.bz, 2)
			if err != nil {
				return nil, errors.Wrap(err, "trust level")
			}
			cs.TrustLevel.Numerator, cs.TrustLevel.Denominator = vs[0], vs[1]
		case 3:
			err = gogotypes.StdDurationUnmarshal(&cs.TrustingPeriod, f.bz)
		case 4:
			err = gogotypes.StdDurationUnmarshal(&cs.UnbondingPeriod, f.bz)
		case 5:
			err = gogotypes.StdDurationUnmarshal(&cs.MaxClockDrift, f.bz)
		case 6:
			cs.FrozenHeight, err = parseHeight(f.bz)
		case 7:
			cs.LatestHeight, err = parseHeight(f.bz)
		case 8:
			spec := new(ics23.ProofSpec)
			if err := spec.Unmarshal(f.bz); err != nil {
				return nil, errors.Wrapf(err, "proof spec #%d", len(cs.ProofSpecs))
			}
			cs.ProofSpecs = append(cs.ProofSpecs, spec)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "client state field %d", f.num)
		}
	}
	return &cs, nil
}

func marshalConsensusState(cs *tendermint.ConsensusState) ([]byte, error) {
	ts, err := gogotypes.StdTimeMarshal(cs.Timestamp)
	if err != nil {
		return nil, err
	}
	bz := protowire.AppendTag(nil, 1, protowire.BytesType)
	bz = protowire.AppendBytes(bz, ts)

	var root []byte
	if len(cs.Root) > 0 {
		root = protowire.AppendTag(root, 1, protowire.BytesType)
		root = protowire.AppendBytes(root, cs.Root)
	}
	bz = protowire.AppendTag(bz, 2, protowire.BytesType)
	bz = protowire.AppendBytes(bz, root)

	if len(cs.NextValidatorsHash) > 0 {
		bz = protowire.AppendTag(bz, 3, protowire.BytesType)
		bz = protowire.AppendBytes(bz, cs.NextValidatorsHash)
	}
	return bz, nil
}

func unmarshalConsensusState(bz []byte) (*tendermint.ConsensusState, error) {
	fields, err := parseFields(bz)
	if err != nil {
		return nil, err
	}

	var cs tendermint.ConsensusState
	for _, f := range fields {
		if f.num > 3 {
			continue
		}
		if f.typ != protowire.BytesType {
			return nil, fmt.Errorf("consensus state field %d: unexpected wire type %d", f.num, f.typ)
		}
		switch f.num {
		case 1:
			if err := gogotypes.StdTimeUnmarshal(&cs.Timestamp, f.bz); err != nil {
				return nil, errors.Wrap(err, "timestamp")
			}
		case 2:
			root, err := parseFields(f.bz)
			if err != nil {
				return nil, errors.Wrap(err, "root")
			}
			for _, rf := range root {
				if rf.num == 1 && rf.typ == protowire.BytesType {
					cs.Root = append([]byte(nil), rf.bz...)
				}
			}
		case 3:
			cs.NextValidatorsHash = append([]byte(nil), f.bz...)
		}
	}
	return &cs, nil
}

func marshalMetadata(md store.Metadata) ([]byte, error) {
	ts, err := gogotypes.StdTimeMarshal(md.ProcessedTime)
	if err != nil {
		return nil, err
	}
	bz := protowire.AppendTag(nil, 1, protowire.BytesType)
	bz = protowire.AppendBytes(bz, ts)
	bz = protowire.AppendTag(bz, 2, protowire.BytesType)
	return protowire.AppendBytes(bz, heightBytes(md.ProcessedHeight)), nil
}

func unmarshalMetadata(bz []byte) (store.Metadata, error) {
	fields, err := parseFields(bz)
	if err != nil {
		return store.Metadata{}, err
	}

	var md store.Metadata
	for _, f := range fields {
		if f.num > 2 {
			continue
		}
		if f.typ != protowire.BytesType {
			return store.Metadata{}, fmt.Errorf("metadata field %d: unexpected wire type %d", f.num, f.typ)
		}
		switch f.num {
		case 1:
			err = gogotypes.StdTimeUnmarshal(&md.ProcessedTime, f.bz)
		case 2:
			md.ProcessedHeight, err = parseHeight(f.bz)
		}
		if err != nil {
			return store.Metadata{}, errors.Wrapf(err, "metadata field %d", f.num)
		}
	}
	return md, nil
}

func heightBytes(h client.Height) []byte {
	return appendUvarints(nil, h.RevisionNumber, h.RevisionHeight)
}

func parseHeight(bz []byte) (client.Height, error) {
	vs, err := parseUvarints(bz, 2)
	if err != nil {
		return client.Height{}, err
	}
	return client.NewHeight(vs[0], vs[1]), nil
}

// appendUvarints appends vs as fields 1..len(vs), skipping zeros.
func appendUvarints(bz []byte, vs ...uint64) []byte {
	for i, v := range vs {
		if v == 0 {
			continue
		}
		bz = protowire.AppendTag(bz, protowire.Number(i+1), protowire.VarintType)
		bz = protowire.AppendVarint(bz, v)
	}
	return bz
}

// parseUvarints reads varint fields 1..n of a message. Missing fields are
// zero.
func parseUvarints(bz []byte, n int) ([]uint64, error) {
	fields, err := parseFields(bz)
	if err != nil {
		return nil, err
	}
	vs := make([]uint64, n)
	for _, f := range fields {
		if f.num < 1 || int(f.num) > n {
			continue
		}
		if f.typ != protowire.VarintType {
			return nil, fmt.Errorf("field %d: unexpected wire type %d", f.num, f.typ)
		}
		vs[f.num-1] = f.v
	}
	return vs, nil
}

type field struct {
	num protowire.Number
	typ protowire.Type
	v   uint64 // varint fields
	bz  []byte // length-delimited fields
}

// parseFields splits a message into its varint and length-delimited fields.
// Fields of any other wire type are skipped.
func parseFields(bz []byte) ([]field, error) {
	var fields []field
	for len(bz) > 0 {
		num, typ, n := protowire.ConsumeTag(bz)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		bz = bz[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(bz)
		case protowire.BytesType:
			f.bz, n = protowire.ConsumeBytes(bz)
		default:
			n = protowire.ConsumeFieldValue(num, typ, bz)
		}
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		bz = bz[n:]

		if typ == protowire.VarintType || typ == protowire.BytesType {
			fields = append(fields, f)
		}
	}
	return fields, nil
}

package types

import (
	gogotypes "github.com/gogo/protobuf/types"

	"github.com/unionlabs/union-sub007/libs/bytes"
)

// cdcEncode returns nil if the input is nil or a zero value, otherwise it
// marshals the value into the matching protobuf well-known wrapper.
func cdcEncode(item interface{}) []byte {
	var (
		bz  []byte
		err error
	)
	switch item := item.(type) {
	case string:
		if item == "" {
			return nil
		}
		i := gogotypes.StringValue{
			Value: item,
		}
		bz, err = i.Marshal()
	case int64:
		if item == 0 {
			return nil
		}
		i := gogotypes.Int64Value{
			Value: item,
		}
		bz, err = i.Marshal()
	case bytes.HexBytes:
		if len(item) == 0 {
			return nil
		}
		i := gogotypes.BytesValue{
			Value: item,
		}
		bz, err = i.Marshal()
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return bz
}

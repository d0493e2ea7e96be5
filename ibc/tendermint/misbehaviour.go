package tendermint

import (
	"errors"
)

// Misbehaviour is a pair of conflicting headers for the same client.
type Misbehaviour struct {
	ClientID string  `json:"client_id"`
	Header1  *Header `json:"header_1"`
	Header2  *Header `json:"header_2"`
}

// CheckMisbehaviour always fails with ErrUnimplemented. Freezing a client
// on evidence is not supported.
func CheckMisbehaviour(cs *ClientState, m *Misbehaviour) error {
	return newError(ErrUnimplemented, errors.New("misbehaviour handling is not supported"))
}

// Package store defines persistence for Tendermint light clients: one client
// state per client id and a consensus state, with its processing metadata,
// per verified height.
package store

import (
	"errors"
	"time"

	"github.com/unionlabs/union-sub007/ibc/client"
	"github.com/unionlabs/union-sub007/ibc/tendermint"
)

//go:generate mockery --case underscore --name Store

var (
	// ErrClientNotFound is returned when a store has no client state for the
	// requested client id.
	ErrClientNotFound = errors.New("client not found")

	// ErrConsensusStateNotFound is returned when a store does not have a
	// consensus state at the requested height.
	ErrConsensusStateNotFound = errors.New("consensus state not found")
)

// Metadata records when the host stored a consensus state. Delay periods of
// membership proofs are measured from it.
type Metadata struct {
	ProcessedTime   time.Time     `json:"processed_time"`
	ProcessedHeight client.Height `json:"processed_height"`
}

// ConsensusEntry is a consensus state to write at Height.
type ConsensusEntry struct {
	Height         client.Height
	ConsensusState *tendermint.ConsensusState
	Metadata       Metadata
}

// Batch is a set of writes for one client, applied atomically.
type Batch struct {
	ClientID string
	// ClientState, when not nil, replaces the stored client state.
	ClientState *tendermint.ClientState
	// Set are the consensus states to write.
	Set []ConsensusEntry
	// Delete are the heights whose consensus state and metadata are removed.
	Delete []client.Height
}

// Store is anything that can persistently store light client state.
type Store interface {
	// ClientState returns the client state of clientID.
	//
	// If it is not found, ErrClientNotFound is returned.
	ClientState(clientID string) (*tendermint.ClientState, error)

	// ConsensusState returns the consensus state of clientID at height.
	//
	// If it is not found, ErrConsensusStateNotFound is returned.
	ConsensusState(clientID string, height client.Height) (*tendermint.ConsensusState, error)

	// ConsensusMetadata returns the processing metadata of the consensus
	// state of clientID at height.
	//
	// If it is not found, ErrConsensusStateNotFound is returned.
	ConsensusMetadata(clientID string, height client.Height) (Metadata, error)

	// ConsensusHeights returns the heights of every consensus state of
	// clientID in ascending order.
	ConsensusHeights(clientID string) ([]client.Height, error)

	// ClientIDs returns every stored client id in ascending order.
	ClientIDs() ([]string, error)

	// WriteBatch applies b atomically.
	WriteBatch(b Batch) error
}

package db

import (
	"fmt"
	"sync"

	"github.com/google/orderedcode"
	"github.com/pkg/errors"
	dbm "github.com/tendermint/tm-db"

	"github.com/unionlabs/union-sub007/ibc/client"
	"github.com/unionlabs/union-sub007/ibc/tendermint"
	"github.com/unionlabs/union-sub007/ibc/tendermint/store"
)

// key prefixes
const (
	prefixClientState       = int64(0)
	prefixConsensusState    = int64(1)
	prefixConsensusMetadata = int64(2)
)

type dbs struct {
	db dbm.DB

	// serialises batches against each other
	mtx sync.Mutex
}

var _ store.Store = (*dbs)(nil)

// New returns a Store that wraps any DB.
//
// Objects are marshalled as protobuf messages (see codec.go). Keys are built with
// github.com/google/orderedcode so that consensus states of one client
// iterate in height order.
func New(db dbm.DB) store.Store {
	return &dbs{db: db}
}

// ClientState loads the client state of clientID.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) ClientState(clientID string) (*tendermint.ClientState, error) {
	bz, err := s.db.Get(clientStateKey(clientID))
	if err != nil {
		return nil, errors.Wrap(err, "reading client state")
	}
	if len(bz) == 0 {
		return nil, errors.Wrap(store.ErrClientNotFound, clientID)
	}

	cs, err := unmarshalClientState(bz)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshalling client state")
	}
	return cs, nil
}

// ConsensusState loads the consensus state of clientID at height.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) ConsensusState(clientID string, height client.Height) (*tendermint.ConsensusState, error) {
	bz, err := s.db.Get(consensusStateKey(clientID, height))
	if err != nil {
		return nil, errors.Wrap(err, "reading consensus state")
	}
	if len(bz) == 0 {
		return nil, errors.Wrapf(store.ErrConsensusStateNotFound, "client %s at height %s", clientID, height)
	}

	consState, err := unmarshalConsensusState(bz)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshalling consensus state")
	}
	return consState, nil
}

// ConsensusMetadata loads the metadata of the consensus state of clientID at
// height.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) ConsensusMetadata(clientID string, height client.Height) (store.Metadata, error) {
	bz, err := s.db.Get(consensusMetadataKey(clientID, height))
	if err != nil {
		return store.Metadata{}, errors.Wrap(err, "reading consensus metadata")
	}
	if len(bz) == 0 {
		return store.Metadata{}, errors.Wrapf(store.ErrConsensusStateNotFound, "client %s at height %s", clientID, height)
	}

	md, err := unmarshalMetadata(bz)
	if err != nil {
		return store.Metadata{}, errors.Wrap(err, "unmarshalling consensus metadata")
	}
	return md, nil
}

// ConsensusHeights iterates over the consensus states of clientID.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) ConsensusHeights(clientID string) ([]client.Height, error) {
	start, end := consensusStateRange(clientID)
	itr, err := s.db.Iterator(start, end)
	if err != nil {
		return nil, errors.Wrap(err, "creating iterator")
	}
	defer itr.Close()

	var heights []client.Height
	for ; itr.Valid(); itr.Next() {
		id, height, err := decodeConsensusStateKey(itr.Key())
		if err != nil {
			return nil, err
		}
		if id != clientID {
			continue
		}
		heights = append(heights, height)
	}
	if err := itr.Error(); err != nil {
		return nil, errors.Wrap(err, "iterating consensus states")
	}
	return heights, nil
}

// ClientIDs iterates over the stored client states.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) ClientIDs() ([]string, error) {
	start, end := prefixRange(prefixClientState)
	itr, err := s.db.Iterator(start, end)
	if err != nil {
		return nil, errors.Wrap(err, "creating iterator")
	}
	defer itr.Close()

	var ids []string
	for ; itr.Valid(); itr.Next() {
		id, err := decodeClientStateKey(itr.Key())
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := itr.Error(); err != nil {
		return nil, errors.Wrap(err, "iterating client states")
	}
	return ids, nil
}

// WriteBatch persists b in a single synchronous tm-db batch.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) WriteBatch(b store.Batch) error {
	if b.ClientID == "" {
		return errors.New("empty client id")
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	batch := s.db.NewBatch()
	defer batch.Close()

	if b.ClientState != nil {
		bz, err := marshalClientState(b.ClientState)
		if err != nil {
			return errors.Wrap(err, "marshalling client state")
		}
		if err := batch.Set(clientStateKey(b.ClientID), bz); err != nil {
			return err
		}
	}

	for _, height := range b.Delete {
		if err := batch.Delete(consensusStateKey(b.ClientID, height)); err != nil {
			return err
		}
		if err := batch.Delete(consensusMetadataKey(b.ClientID, height)); err != nil {
			return err
		}
	}

	for _, entry := range b.Set {
		if entry.ConsensusState == nil {
			return errors.Errorf("nil consensus state at height %s", entry.Height)
		}
		csBz, err := marshalConsensusState(entry.ConsensusState)
		if err != nil {
			return errors.Wrap(err, "marshalling consensus state")
		}
		mdBz, err := marshalMetadata(entry.Metadata)
		if err != nil {
			return errors.Wrap(err, "marshalling consensus metadata")
		}
		if err := batch.Set(consensusStateKey(b.ClientID, entry.Height), csBz); err != nil {
			return err
		}
		if err := batch.Set(consensusMetadataKey(b.ClientID, entry.Height), mdBz); err != nil {
			return err
		}
	}

	return errors.Wrap(batch.WriteSync(), "writing batch")
}

//---------------------------------- KEY ENCODING -----------------------------------------

func clientStateKey(clientID string) []byte {
	key, err := orderedcode.Append(nil, prefixClientState, clientID)
	if err != nil {
		panic(err)
	}
	return key
}

func decodeClientStateKey(key []byte) (clientID string, err error) {
	var prefix int64
	remaining, err := orderedcode.Parse(string(key), &prefix, &clientID)
	if err != nil {
		return "", err
	}
	if len(remaining) != 0 {
		return "", fmt.Errorf("expected complete key but got remainder: %s", remaining)
	}
	if prefix != prefixClientState {
		return "", fmt.Errorf("incorrect prefix. Expected %v, got %v", prefixClientState, prefix)
	}
	return clientID, nil
}

func consensusStateKey(clientID string, height client.Height) []byte {
	return heightKey(prefixConsensusState, clientID, height)
}

func consensusMetadataKey(clientID string, height client.Height) []byte {
	return heightKey(prefixConsensusMetadata, clientID, height)
}

func heightKey(prefix int64, clientID string, height client.Height) []byte {
	key, err := orderedcode.Append(nil, prefix, clientID, height.RevisionNumber, height.RevisionHeight)
	if err != nil {
		panic(err)
	}
	return key
}

func decodeConsensusStateKey(key []byte) (clientID string, height client.Height, err error) {
	var prefix int64
	remaining, err := orderedcode.Parse(string(key), &prefix, &clientID,
		&height.RevisionNumber, &height.RevisionHeight)
	if err != nil {
		return "", client.Height{}, err
	}
	if len(remaining) != 0 {
		return "", client.Height{}, fmt.Errorf("expected complete key but got remainder: %s", remaining)
	}
	if prefix != prefixConsensusState {
		return "", client.Height{}, fmt.Errorf("incorrect prefix. Expected %v, got %v", prefixConsensusState, prefix)
	}
	return clientID, height, nil
}

// consensusStateRange bounds the consensus state keys of clientID.
func consensusStateRange(clientID string) (start, end []byte) {
	start, err := orderedcode.Append(nil, prefixConsensusState, clientID)
	if err != nil {
		panic(err)
	}
	end, err = orderedcode.Append(nil, prefixConsensusState, clientID, orderedcode.Infinity)
	if err != nil {
		panic(err)
	}
	return start, end
}

func prefixRange(prefix int64) (start, end []byte) {
	start, err := orderedcode.Append(nil, prefix)
	if err != nil {
		panic(err)
	}
	end, err = orderedcode.Append(nil, prefix+1)
	if err != nil {
		panic(err)
	}
	return start, end
}

// Package keeper hosts Tendermint light clients: it loads state from a
// store, runs header verification and commits the result atomically.
package keeper

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/unionlabs/union-sub007/ibc/client"
	"github.com/unionlabs/union-sub007/ibc/commitment"
	"github.com/unionlabs/union-sub007/ibc/tendermint"
	"github.com/unionlabs/union-sub007/ibc/tendermint/store"
	"github.com/unionlabs/union-sub007/libs/log"
)

const (
	// maxClientIDLen bounds client ids. They become part of store keys.
	maxClientIDLen = 64

	// lockStripes is the number of mutexes client ids are spread over.
	lockStripes = 64
)

// Env is the host environment an operation runs in.
type Env struct {
	// Time is the host's current time. Trusting periods, clock drift and
	// delay periods are measured against it.
	Time time.Time
	// Height is the host's current height, recorded as the processed height
	// of new consensus states.
	Height client.Height
}

// Delay is the minimum time and number of host blocks that must pass
// between storing a consensus state and using it to verify a proof.
type Delay struct {
	Time   time.Duration
	Blocks uint64
}

// Keeper manages light clients persisted in a store.Store.
//
// Updates to one client are serialised. Updates to different clients run
// concurrently unless their ids share a lock stripe.
type Keeper struct {
	store    store.Store
	verifier tendermint.HeaderVerifier
	logger   log.Logger
	metrics  *Metrics

	// a client id always maps to the same stripe
	locks [lockStripes]sync.Mutex
}

// Option sets a parameter for the keeper.
type Option func(*Keeper)

// Logger sets the logger.
func Logger(l log.Logger) Option {
	return func(k *Keeper) {
		k.logger = l
	}
}

// WithMetrics sets the metrics.
func WithMetrics(m *Metrics) Option {
	return func(k *Keeper) {
		k.metrics = m
	}
}

// HeaderVerifier sets the verifier used by UpdateClient.
func HeaderVerifier(v tendermint.HeaderVerifier) Option {
	return func(k *Keeper) {
		k.verifier = v
	}
}

// New returns a keeper over s. It logs nothing and records no metrics
// unless told otherwise.
func New(s store.Store, options ...Option) *Keeper {
	k := &Keeper{
		store:   s,
		logger:  log.NewNopLogger(),
		metrics: NopMetrics(),
	}
	for _, o := range options {
		o(k)
	}
	return k
}

// lock locks the stripe of clientID and returns the matching unlock.
func (k *Keeper) lock(clientID string) func() {
	l := &k.locks[lockStripe(clientID)]
	l.Lock()
	return l.Unlock
}

func lockStripe(clientID string) uint64 {
	return xxhash.Sum64String(clientID) % lockStripes
}

// CreateClient stores a new client with consState as its trusted state at
// cs.LatestHeight.
func (k *Keeper) CreateClient(clientID string, cs *tendermint.ClientState,
	consState *tendermint.ConsensusState, env Env) error {
	if err := validateClientID(clientID); err != nil {
		return err
	}
	if cs == nil || consState == nil {
		return errors.New("client state and consensus state cannot be nil")
	}
	if err := cs.Validate(); err != nil {
		return err
	}
	if cs.IsFrozen() {
		return fmt.Errorf("%w: a new client cannot be frozen", tendermint.ErrInvalidClientState)
	}
	if err := consState.ValidateBasic(); err != nil {
		return err
	}

	defer k.lock(clientID)()

	_, err := k.store.ClientState(clientID)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrClientExists, clientID)
	case !errors.Is(err, store.ErrClientNotFound):
		return err
	}

	err = k.store.WriteBatch(store.Batch{
		ClientID:    clientID,
		ClientState: cs,
		Set: []store.ConsensusEntry{{
			Height:         cs.LatestHeight,
			ConsensusState: consState,
			Metadata:       store.Metadata{ProcessedTime: env.Time, ProcessedHeight: env.Height},
		}},
	})
	if err != nil {
		return fmt.Errorf("storing client %s: %w", clientID, err)
	}

	k.logger.Info("created client", "client_id", clientID, "chain_id", cs.ChainID, "height", cs.LatestHeight)
	k.metrics.LatestHeight.With("client_id", clientID).Set(float64(cs.LatestHeight.RevisionHeight))
	return nil
}

// UpdateClient verifies header against the consensus state stored at its
// trusted height and, on success, stores the consensus state it produces
// and advances the client's latest height. A failed update writes nothing.
//
// Submitting a header whose consensus state is already stored is a no-op.
// UpdateClient also removes the oldest consensus state if it has expired.
func (k *Keeper) UpdateClient(clientID string, header *tendermint.Header, env Env) (client.Height, error) {
	if header == nil {
		return client.Height{}, fmt.Errorf("%w: nil header", tendermint.ErrInvalidHeader)
	}

	defer k.lock(clientID)()

	cs, err := k.store.ClientState(clientID)
	if err != nil {
		return client.Height{}, err
	}
	trusted, err := k.store.ConsensusState(clientID, header.TrustedHeight)
	if err != nil {
		return client.Height{}, fmt.Errorf("could not get trusted consensus state for header at trusted height %s: %w",
			header.TrustedHeight, err)
	}

	start := time.Now()
	update, err := k.verifier.VerifyHeader(cs, trusted, header, env.Time)
	k.metrics.VerificationDuration.With("client_id", clientID).Observe(time.Since(start).Seconds())
	if err != nil {
		k.metrics.HeadersVerified.With("client_id", clientID, "result", "rejected").Add(1)
		k.logger.Error("failed to verify header", "client_id", clientID,
			"trusted_height", header.TrustedHeight, "err", err)
		return client.Height{}, err
	}

	// check for duplicate update
	existing, err := k.store.ConsensusState(clientID, update.Height)
	switch {
	case err == nil:
		if !existing.Equal(*update.ConsensusState) {
			k.metrics.HeadersVerified.With("client_id", clientID, "result", "rejected").Add(1)
			k.logger.Error("conflicting consensus state", "client_id", clientID, "height", update.Height)
			return client.Height{}, fmt.Errorf("%w %s", ErrConflictingConsensusState, update.Height)
		}
		// perform no-op
		k.metrics.HeadersVerified.With("client_id", clientID, "result", "duplicate").Add(1)
		k.logger.Debug("consensus state already stored", "client_id", clientID, "height", update.Height)
		return update.Height, nil
	case !errors.Is(err, store.ErrConsensusStateNotFound):
		return client.Height{}, err
	}

	pruneHeights, err := k.expiredOldest(clientID, cs, env.Time)
	if err != nil {
		return client.Height{}, err
	}

	newCS, consState := tendermint.Apply(*cs, *update)
	b := store.Batch{
		ClientID: clientID,
		Set: []store.ConsensusEntry{{
			Height:         update.Height,
			ConsensusState: &consState,
			Metadata:       store.Metadata{ProcessedTime: env.Time, ProcessedHeight: env.Height},
		}},
		Delete: pruneHeights,
	}
	if update.ClientState != nil {
		b.ClientState = &newCS
	}
	if err := k.store.WriteBatch(b); err != nil {
		return client.Height{}, fmt.Errorf("storing update of client %s: %w", clientID, err)
	}

	k.metrics.HeadersVerified.With("client_id", clientID, "result", "accepted").Add(1)
	k.metrics.LatestHeight.With("client_id", clientID).Set(float64(newCS.LatestHeight.RevisionHeight))
	k.metrics.ValidatorSetSize.With("client_id", clientID).Set(float64(header.ValidatorSet.Size()))
	if len(pruneHeights) > 0 {
		k.metrics.ConsensusStatesPruned.With("client_id", clientID).Add(float64(len(pruneHeights)))
		k.logger.Debug("pruned expired consensus state", "client_id", clientID, "height", pruneHeights[0])
	}
	k.logger.Info("updated client", "client_id", clientID, "height", update.Height,
		"latest_height", newCS.LatestHeight)

	return update.Height, nil
}

// expiredOldest returns the height of the earliest consensus state of
// clientID if it has expired at now.
func (k *Keeper) expiredOldest(clientID string, cs *tendermint.ClientState, now time.Time) ([]client.Height, error) {
	heights, err := k.store.ConsensusHeights(clientID)
	if err != nil {
		return nil, err
	}
	if len(heights) == 0 {
		return nil, nil
	}
	oldest, err := k.store.ConsensusState(clientID, heights[0])
	if err != nil {
		return nil, err
	}
	if !cs.IsExpired(oldest.Timestamp, now) {
		return nil, nil
	}
	return heights[:1], nil
}

// Status returns the status of clientID at env.Time.
func (k *Keeper) Status(clientID string, env Env) (client.Status, error) {
	cs, err := k.store.ClientState(clientID)
	if err != nil {
		return client.Unknown, err
	}
	latest, err := k.store.ConsensusState(clientID, cs.LatestHeight)
	switch {
	case errors.Is(err, store.ErrConsensusStateNotFound):
		latest = nil
	case err != nil:
		return client.Unknown, err
	}
	return cs.Status(latest, env.Time), nil
}

// SubmitMisbehaviour reports evidence against clientID. Misbehaviour
// handling is not supported: an existing client always gets
// tendermint.ErrUnimplemented and is left unchanged.
func (k *Keeper) SubmitMisbehaviour(clientID string, m *tendermint.Misbehaviour) error {
	cs, err := k.store.ClientState(clientID)
	if err != nil {
		return err
	}
	return tendermint.CheckMisbehaviour(cs, m)
}

// ClientState returns the stored client state of clientID.
func (k *Keeper) ClientState(clientID string) (*tendermint.ClientState, error) {
	return k.store.ClientState(clientID)
}

// ConsensusState returns the stored consensus state of clientID at height.
func (k *Keeper) ConsensusState(clientID string, height client.Height) (*tendermint.ConsensusState, error) {
	return k.store.ConsensusState(clientID, height)
}

// VerifyMembership verifies that value is stored at path in the
// counterparty state at height.
func (k *Keeper) VerifyMembership(clientID string, height client.Height, delay Delay,
	proof []byte, path commitment.MerklePath, value []byte, env Env) error {
	cs, consState, err := k.proofState(clientID, height, delay, env)
	if err != nil {
		return err
	}
	return cs.VerifyMembership(consState, height, proof, path, value)
}

// VerifyNonMembership verifies that nothing is stored at path in the
// counterparty state at height.
func (k *Keeper) VerifyNonMembership(clientID string, height client.Height, delay Delay,
	proof []byte, path commitment.MerklePath, env Env) error {
	cs, consState, err := k.proofState(clientID, height, delay, env)
	if err != nil {
		return err
	}
	return cs.VerifyNonMembership(consState, height, proof, path)
}

func (k *Keeper) proofState(clientID string, height client.Height, delay Delay,
	env Env) (*tendermint.ClientState, *tendermint.ConsensusState, error) {
	cs, err := k.store.ClientState(clientID)
	if err != nil {
		return nil, nil, err
	}
	latest, err := k.store.ConsensusState(clientID, cs.LatestHeight)
	if err != nil && !errors.Is(err, store.ErrConsensusStateNotFound) {
		return nil, nil, err
	}
	if status := cs.Status(latest, env.Time); status != client.Active {
		return nil, nil, fmt.Errorf("%w: client %s is %s", ErrClientNotActive, clientID, status)
	}

	consState, err := k.store.ConsensusState(clientID, height)
	if err != nil {
		return nil, nil, err
	}
	md, err := k.store.ConsensusMetadata(clientID, height)
	if err != nil {
		return nil, nil, err
	}
	if err := verifyDelayPeriodPassed(md, delay, env); err != nil {
		return nil, nil, err
	}
	return cs, consState, nil
}

// verifyDelayPeriodPassed returns an error if the delay has not passed since
// the consensus state was processed.
func verifyDelayPeriodPassed(md store.Metadata, delay Delay, env Env) error {
	validTime := md.ProcessedTime.Add(delay.Time)
	if env.Time.Before(validTime) {
		return fmt.Errorf("%w: cannot verify packet until time: %s, current time: %s",
			ErrDelayPeriodNotPassed, validTime, env.Time)
	}

	if delay.Blocks != 0 {
		validHeight := client.NewHeight(md.ProcessedHeight.RevisionNumber,
			md.ProcessedHeight.RevisionHeight+delay.Blocks)
		if env.Height.LT(validHeight) {
			return fmt.Errorf("%w: cannot verify packet until height: %s, current height: %s",
				ErrDelayPeriodNotPassed, validHeight, env.Height)
		}
	}
	return nil
}

func validateClientID(clientID string) error {
	switch {
	case strings.TrimSpace(clientID) == "":
		return fmt.Errorf("%w: empty", ErrInvalidClientID)
	case len(clientID) > maxClientIDLen:
		return fmt.Errorf("%w: %d characters, max %d", ErrInvalidClientID, len(clientID), maxClientIDLen)
	case strings.ContainsAny(clientID, "/ "):
		return fmt.Errorf("%w: %q contains a separator", ErrInvalidClientID, clientID)
	}
	return nil
}

/*
Package tendermint implements the 07-tendermint IBC light client: it decides
whether an untrusted header from a CometBFT chain can be trusted given a
previously verified consensus state, and describes the resulting state
writes without performing them.

VerifyHeader runs the verification protocol against a trusted consensus
state and returns a StateUpdate. Apply turns a StateUpdate into the client
and consensus states to persist. Both are pure; persistence, clocks and
locking belong to the caller (see package keeper).
*/
package tendermint

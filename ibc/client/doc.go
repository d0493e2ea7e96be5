/*
Package client holds the client-agnostic IBC types shared by light clients:
revision-aware heights, chain id revision parsing and client status.

A chain id of the form {name}-{N} carries revision N. Heights compare by
revision first, then by block height within the revision.
*/
package client

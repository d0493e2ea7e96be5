package commands

import (
	"github.com/spf13/cobra"

	"github.com/unionlabs/union-sub007/config"
	"github.com/unionlabs/union-sub007/ibc/client"
	"github.com/unionlabs/union-sub007/ibc/tendermint"
	"github.com/unionlabs/union-sub007/libs/log"
)

type statusResponse struct {
	ClientID       string                     `json:"client_id"`
	Status         client.Status              `json:"status"`
	ClientState    *tendermint.ClientState    `json:"client_state"`
	ConsensusState *tendermint.ConsensusState `json:"latest_consensus_state,omitempty"`
}

// MakeStatusCommand returns the command that prints a client's status and
// latest consensus state.
func MakeStatusCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [client-id]",
		Short: "Show the status of a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID := args[0]

			k, db, err := openKeeper(conf, logger, nil)
			if err != nil {
				return err
			}
			defer db.Close()

			env, err := hostEnv(cmd)
			if err != nil {
				return err
			}
			status, err := k.Status(clientID, env)
			if err != nil {
				return err
			}
			cs, err := k.ClientState(clientID)
			if err != nil {
				return err
			}

			resp := statusResponse{ClientID: clientID, Status: status, ClientState: cs}
			// a missing latest consensus state is reported through the status
			if consState, err := k.ConsensusState(clientID, cs.LatestHeight); err == nil {
				resp.ConsensusState = consState
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	addHostHeightFlag(cmd)
	return cmd
}

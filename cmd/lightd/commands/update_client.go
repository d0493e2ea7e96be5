package commands

import (
	"github.com/spf13/cobra"

	"github.com/unionlabs/union-sub007/config"
	"github.com/unionlabs/union-sub007/ibc/client"
	"github.com/unionlabs/union-sub007/ibc/tendermint"
	"github.com/unionlabs/union-sub007/libs/log"
)

// MakeUpdateClientCommand returns the command that verifies headers and
// updates a client with them, in the order given.
func MakeUpdateClientCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-client [client-id] [header.json]...",
		Short: "Verify headers and update a client with them",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID := args[0]

			k, db, err := openKeeper(conf, logger, nil)
			if err != nil {
				return err
			}
			defer db.Close()

			heights := make([]client.Height, 0, len(args)-1)
			for _, path := range args[1:] {
				var header tendermint.Header
				if err := readJSONFile(path, &header); err != nil {
					return err
				}

				env, err := hostEnv(cmd)
				if err != nil {
					return err
				}

				height, err := k.UpdateClient(clientID, &header, env)
				if err != nil {
					return err
				}
				heights = append(heights, height)
			}

			return printJSON(cmd.OutOrStdout(), heights)
		},
	}
	addHostHeightFlag(cmd)
	return cmd
}

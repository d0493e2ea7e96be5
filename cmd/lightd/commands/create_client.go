package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unionlabs/union-sub007/config"
	"github.com/unionlabs/union-sub007/ibc/client"
	"github.com/unionlabs/union-sub007/ibc/commitment"
	"github.com/unionlabs/union-sub007/ibc/tendermint"
	"github.com/unionlabs/union-sub007/libs/log"
	tmmath "github.com/unionlabs/union-sub007/libs/math"
)

const (
	flagChainID         = "chain-id"
	flagHeight          = "height"
	flagTrustLevel      = "trust-level"
	flagTrustingPeriod  = "trusting-period"
	flagUnbondingPeriod = "unbonding-period"
	flagMaxClockDrift   = "max-clock-drift"
)

// MakeCreateClientCommand returns the command that creates a client from a
// trusted consensus state.
func MakeCreateClientCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-client [client-id] [consensus-state.json]",
		Short: "Create a light client from a trusted consensus state",
		Long: `Create a light client from a trusted consensus state.

The consensus state file holds the timestamp, app hash root and next
validators hash of the trusted header at --height. Trust parameters not
given on the command line are taken from the [client] section of
config.toml.`,
		Example: `lightd create-client 07-tendermint-0 trusted.json --chain-id union-testnet-1 --height 1-1633807`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID := args[0]

			var consState tendermint.ConsensusState
			if err := readJSONFile(args[1], &consState); err != nil {
				return err
			}

			cs, err := clientStateFromFlags(cmd, conf.Client)
			if err != nil {
				return err
			}

			env, err := hostEnv(cmd)
			if err != nil {
				return err
			}

			k, db, err := openKeeper(conf, logger, nil)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := k.CreateClient(clientID, cs, &consState, env); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cs)
		},
	}

	cmd.Flags().String(flagChainID, "", "chain id of the tracked chain")
	cmd.Flags().String(flagHeight, "", "height of the trusted consensus state, as {revision}-{height}")
	cmd.Flags().String(flagTrustLevel, "", "trust level for non-adjacent headers (default from config)")
	cmd.Flags().Duration(flagTrustingPeriod, 0, "trusting period (default from config)")
	cmd.Flags().Duration(flagUnbondingPeriod, 0, "unbonding period (default from config)")
	cmd.Flags().Duration(flagMaxClockDrift, 0, "maximum clock drift (default from config)")
	addHostHeightFlag(cmd)
	_ = cmd.MarkFlagRequired(flagChainID)
	_ = cmd.MarkFlagRequired(flagHeight)

	return cmd
}

func clientStateFromFlags(cmd *cobra.Command, defaults *config.ClientConfig) (*tendermint.ClientState, error) {
	flags := cmd.Flags()

	chainID, err := flags.GetString(flagChainID)
	if err != nil {
		return nil, err
	}
	h, err := flags.GetString(flagHeight)
	if err != nil {
		return nil, err
	}
	height, err := client.ParseHeight(h)
	if err != nil {
		return nil, err
	}

	params := *defaults
	if flags.Changed(flagTrustLevel) {
		if params.TrustLevel, err = flags.GetString(flagTrustLevel); err != nil {
			return nil, err
		}
	}
	if flags.Changed(flagTrustingPeriod) {
		if params.TrustingPeriod, err = flags.GetDuration(flagTrustingPeriod); err != nil {
			return nil, err
		}
	}
	if flags.Changed(flagUnbondingPeriod) {
		if params.UnbondingPeriod, err = flags.GetDuration(flagUnbondingPeriod); err != nil {
			return nil, err
		}
	}
	if flags.Changed(flagMaxClockDrift) {
		if params.MaxClockDrift, err = flags.GetDuration(flagMaxClockDrift); err != nil {
			return nil, err
		}
	}

	trustLevel, err := tmmath.ParseFraction(params.TrustLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid trust level %q: %w", params.TrustLevel, err)
	}

	return tendermint.NewClientState(
		chainID, trustLevel,
		params.TrustingPeriod, params.UnbondingPeriod, params.MaxClockDrift,
		height, commitment.SDKSpecs(),
	), nil
}

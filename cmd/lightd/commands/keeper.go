package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	dbm "github.com/tendermint/tm-db"

	"github.com/unionlabs/union-sub007/config"
	"github.com/unionlabs/union-sub007/ibc/client"
	"github.com/unionlabs/union-sub007/ibc/tendermint/keeper"
	dbs "github.com/unionlabs/union-sub007/ibc/tendermint/store/db"
	"github.com/unionlabs/union-sub007/libs/log"
)

const (
	clientDBName = "light-clients"

	flagHostHeight = "host-height"
)

// openKeeper opens the client database named in conf and returns a keeper
// over it. The caller closes the returned database.
func openKeeper(conf *config.Config, logger log.Logger, metrics *keeper.Metrics) (*keeper.Keeper, dbm.DB, error) {
	db, err := config.DefaultDBProvider(&config.DBContext{ID: clientDBName, Config: conf})
	if err != nil {
		return nil, nil, fmt.Errorf("opening client database: %w", err)
	}
	if metrics == nil {
		metrics = keeper.NopMetrics()
	}
	k := keeper.New(
		dbs.New(db),
		keeper.Logger(logger.With("module", "keeper")),
		keeper.WithMetrics(metrics),
	)
	return k, db, nil
}

func readJSONFile(path string, v interface{}) error {
	bz, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(bz, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(bz))
	return err
}

// hostEnv is the environment commands run in: the local clock and the host
// height given on the command line.
func hostEnv(cmd *cobra.Command) (keeper.Env, error) {
	h, err := cmd.Flags().GetString(flagHostHeight)
	if err != nil {
		return keeper.Env{}, err
	}
	height, err := client.ParseHeight(h)
	if err != nil {
		return keeper.Env{}, err
	}
	return keeper.Env{Time: time.Now(), Height: height}, nil
}

func addHostHeightFlag(cmd *cobra.Command) {
	cmd.Flags().String(flagHostHeight, "0-0", "height of the host chain recorded with new consensus states")
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/unionlabs/union-sub007/config"
	"github.com/unionlabs/union-sub007/libs/log"
	tmos "github.com/unionlabs/union-sub007/libs/os"
)

// MakeInitCommand returns the command that writes config.toml and the data
// directory under the home directory.
func MakeInitCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the lightd home directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := conf.ConfigFile()
			if tmos.FileExists(cfgFile) {
				logger.Info("Found config file", "path", cfgFile)
				return nil
			}
			if err := config.WriteConfigFile(conf.RootDir, conf); err != nil {
				return err
			}
			logger.Info("Generated config file", "path", cfgFile)
			return nil
		},
	}
}

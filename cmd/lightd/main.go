package main

import (
	"fmt"
	"os"

	"github.com/unionlabs/union-sub007/cmd/lightd/commands"
	"github.com/unionlabs/union-sub007/config"
	"github.com/unionlabs/union-sub007/libs/log"
)

func main() {
	conf := config.DefaultConfig()

	logger, err := log.NewDefaultLogger(conf.LogFormat, conf.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rcmd := commands.RootCommand(conf, logger)
	rcmd.AddCommand(
		commands.MakeInitCommand(conf, logger),
		commands.MakeCreateClientCommand(conf, logger),
		commands.MakeUpdateClientCommand(conf, logger),
		commands.MakeStatusCommand(conf, logger),
		commands.MakeStartCommand(conf, logger),
		commands.VersionCmd,
	)

	if err := rcmd.Execute(); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

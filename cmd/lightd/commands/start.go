package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/unionlabs/union-sub007/config"
	"github.com/unionlabs/union-sub007/ibc/tendermint"
	"github.com/unionlabs/union-sub007/ibc/tendermint/keeper"
	"github.com/unionlabs/union-sub007/libs/log"
	tmos "github.com/unionlabs/union-sub007/libs/os"
)

// MakeStartCommand returns the command that feeds a stream of headers into
// a client, serving metrics while it runs.
func MakeStartCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start [client-id]",
		Short: "Update a client with headers read from stdin",
		Long: `Update a client with headers read from stdin.

Headers are JSON values, one after the other. A header that fails
verification is logged and skipped. The command returns when stdin is
closed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID := args[0]

			metrics := keeper.NopMetrics()
			var srv *http.Server
			if conf.Instrumentation.Prometheus {
				metrics = keeper.PrometheusMetrics(conf.Instrumentation.Namespace)
				srv = startPrometheusServer(conf.Instrumentation.PrometheusListenAddr, logger)
			}

			k, db, err := openKeeper(conf, logger, metrics)
			if err != nil {
				return err
			}
			defer db.Close()

			tmos.TrapSignal(logger, func() {
				if srv != nil {
					_ = srv.Close()
				}
				_ = db.Close()
			})

			accepted, rejected, err := feedHeaders(cmd, k, clientID, cmd.InOrStdin(), logger)
			logger.Info("header stream closed", "accepted", accepted, "rejected", rejected)
			if srv != nil {
				_ = srv.Close()
			}
			return err
		},
	}
	addHostHeightFlag(cmd)
	return cmd
}

func feedHeaders(cmd *cobra.Command, k *keeper.Keeper, clientID string, r io.Reader,
	logger log.Logger) (accepted, rejected int, err error) {
	dec := json.NewDecoder(r)
	for {
		var header tendermint.Header
		if err := dec.Decode(&header); err != nil {
			if errors.Is(err, io.EOF) {
				return accepted, rejected, nil
			}
			return accepted, rejected, fmt.Errorf("decoding header: %w", err)
		}

		env, err := hostEnv(cmd)
		if err != nil {
			return accepted, rejected, err
		}
		height, err := k.UpdateClient(clientID, &header, env)
		if err != nil {
			rejected++
			logger.Error("header rejected", "client_id", clientID, "err", err)
			continue
		}
		accepted++
		if err := printJSON(cmd.OutOrStdout(), height); err != nil {
			return accepted, rejected, err
		}
	}
}

func startPrometheusServer(addr string, logger log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Prometheus HTTP server ListenAndServe", "err", err)
		}
	}()
	return srv
}

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cometbft/cometbft/abci/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"onchainwager/internal/app"
	"onchainwager/internal/config"
	"onchainwager/internal/logging"
	"onchainwager/internal/store"
)

func newStartCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the ABCI application until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, err := cmd.Flags().GetString(flagHome)
			if err != nil {
				return err
			}
			cfg, err := config.Load(v, home)
			if err != nil {
				return err
			}
			logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}

			db, err := store.Open(cfg.Home, cfg.DB.Backend)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					logger.Error("close store", "err", err)
				}
			}()

			a, err := app.New(db, cfg.Genesis, logger)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}

			srv, err := server.NewServer(cfg.ABCI.Addr, cfg.ABCI.Transport, a)
			if err != nil {
				return fmt.Errorf("start abci server: %w", err)
			}
			if err := srv.Start(); err != nil {
				return fmt.Errorf("abci server start: %w", err)
			}
			defer func() { _ = srv.Stop() }()
			logger.Info("abci server listening", "addr", cfg.ABCI.Addr, "transport", cfg.ABCI.Transport, "home", cfg.Home)

			// Wait for signal.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			logger.Info("shutting down", "signal", sig.String())
			return nil
		},
	}

	f := cmd.Flags()
	f.String("addr", "tcp://127.0.0.1:26658", "ABCI listen address")
	f.String("transport", "socket", "ABCI transport (socket|grpc)")
	f.String("log-level", "info", "log level (trace|debug|info|warn|error)")
	f.String("log-format", logging.FormatPlain, "log format (plain|json)")
	f.String("db-backend", "goleveldb", "state database backend (goleveldb|memdb)")
	for key, flag := range map[string]string{
		"abci.addr":      "addr",
		"abci.transport": "transport",
		"log_level":      "log-level",
		"log_format":     "log-format",
		"db.backend":     "db-backend",
	} {
		_ = v.BindPFlag(key, f.Lookup(flag))
	}
	return cmd
}

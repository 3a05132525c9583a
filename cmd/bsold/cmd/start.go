package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cometbft/cometbft/abci/server"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"battlesol/internal/app"
	"battlesol/internal/config"
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the ABCI application server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.New(), cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}

			db, err := dbm.NewDB("state", dbm.BackendType(cfg.DBBackend), cfg.DataDir())
			if err != nil {
				return fmt.Errorf("open state db: %w", err)
			}
			defer func() { _ = db.Close() }()

			a, err := app.New(db, logger, app.WithFaucet(cfg.Faucet))
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}

			srv, err := server.NewServer(cfg.Addr, cfg.Transport, a)
			if err != nil {
				return fmt.Errorf("create abci server: %w", err)
			}
			if err := srv.Start(); err != nil {
				return fmt.Errorf("abci server start: %w", err)
			}
			defer func() { _ = srv.Stop() }()

			logger.Info("abci server listening", "addr", cfg.Addr, "transport", cfg.Transport, "faucet", cfg.Faucet)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			logger.Info("shutting down", "signal", sig.String())
			return nil
		},
	}
	config.AddFlags(cmd.Flags())
	return cmd
}

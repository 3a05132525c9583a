package cmd

import (
	"io"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"battlesol/internal/config"
	"battlesol/internal/types"
)

// Version is set at build time with -ldflags "-X battlesol/cmd/bsold/cmd.Version=...".
var Version = "dev"

// NewRootCmd creates the bsold root command. It is called once in main.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bsold",
		Short:         "battlesol escrow and settlement ABCI daemon",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
		},
	}

	rootCmd.AddCommand(
		newStartCmd(),
		newCommitCmd(),
		newAddressCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// newLogger builds the daemon logger from the resolved config.
func newLogger(w io.Writer, cfg config.Config) (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := []log.Option{log.LevelOption(lvl)}
	if cfg.LogFormat == "json" {
		opts = append(opts, log.OutputJSONOption())
	}
	return log.NewLogger(w, opts...).With("app", types.AppName), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bsold version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(Version)
		},
	}
}

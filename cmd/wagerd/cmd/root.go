// Package cmd holds the wagerd command tree.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"onchainwager/internal/config"
)

const flagHome = "home"

// Version is overridden at build time with -ldflags "-X ...cmd.Version=...".
var Version = "dev"

// NewRootCmd creates a new root command for wagerd. It is called once in main.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "wagerd",
		Short:         "Non-custodial wagering ledger daemon",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().String(flagHome, config.DefaultHome, "node home directory (config under <home>/config, state under <home>/data)")

	rootCmd.AddCommand(
		newStartCmd(v),
		newInitCmd(),
		newKeysCmd(),
		newTxCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the wagerd version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(Version)
		},
	}
}

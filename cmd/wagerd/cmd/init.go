package cmd

import (
	"github.com/spf13/cobra"

	"onchainwager/internal/config"
)

func newInitCmd() *cobra.Command {
	var g config.Genesis

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file under <home>/config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, err := cmd.Flags().GetString(flagHome)
			if err != nil {
				return err
			}
			path, err := config.WriteDefault(home, g)
			if err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&g.Owner, "owner", "", "genesis owner address")
	cmd.Flags().StringVar(&g.Relayer, "relayer", "", "genesis relayer address")
	cmd.Flags().StringVar(&g.FeeRecipient, "fee-recipient", "", "genesis fee recipient address")
	return cmd
}

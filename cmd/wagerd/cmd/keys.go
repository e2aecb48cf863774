package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

type keyOutput struct {
	Address    common.Address `json:"address"`
	PrivateKey string         `json:"privateKey,omitempty"`
}

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Generate and inspect secp256k1 account keys",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "new",
			Short: "Generate a key and print its address and private key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				key, err := crypto.GenerateKey()
				if err != nil {
					return err
				}
				return printJSON(cmd, keyOutput{
					Address:    crypto.PubkeyToAddress(key.PublicKey),
					PrivateKey: hexutil.Encode(crypto.FromECDSA(key)),
				})
			},
		},
		&cobra.Command{
			Use:   "show <private-key-hex>",
			Short: "Print the address of a private key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := crypto.HexToECDSA(strings.TrimPrefix(args[0], "0x"))
				if err != nil {
					return fmt.Errorf("parse private key: %w", err)
				}
				return printJSON(cmd, keyOutput{Address: crypto.PubkeyToAddress(key.PublicKey)})
			},
		},
	)
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(b))
	return nil
}

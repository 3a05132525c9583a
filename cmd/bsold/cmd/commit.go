package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"battlesol/internal/commitment"
	"battlesol/internal/types"
)

func newCommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commit <fleet.json> <nonce>",
		Short: "Compute the fleet commitment to submit with game/create or game/join",
		Long: `Reads a fleet as JSON, e.g.

  [{"shipId":1,"cells":[{"row":0,"col":0},{"row":0,"col":1}]}]

and prints the 32-byte commitment hash for the given nonce. Keep the file and
nonce: both are needed again for game/reveal_and_finalize.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var fleet commitment.Fleet
			if err := json.Unmarshal(b, &fleet); err != nil {
				return fmt.Errorf("decode fleet: %w", err)
			}
			nonce, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid nonce %q", args[1])
			}
			d, err := commitment.Commit(fleet, nonce)
			if err != nil {
				return err
			}
			cmd.Println(d.String())
			return nil
		},
	}
}

func newAddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address <namespace> [game-id]",
		Short: "Print a derived record address",
		Long: fmt.Sprintf("Namespaces: %s, %s, %s (no id) and %s, %s (game id required).",
			types.NamespaceConfig, types.NamespacePresale, types.NamespacePresaleVault,
			types.NamespaceGame, types.NamespaceGameVault),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := deriveForArgs(args)
			if err != nil {
				return err
			}
			cmd.Println(addr)
			return nil
		},
	}
}

func deriveForArgs(args []string) (string, error) {
	rawID := ""
	if len(args) == 2 {
		rawID = args[1]
	}
	return types.NamespaceAddress(args[0], rawID)
}

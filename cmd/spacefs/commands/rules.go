package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akulov/spacefs/internal/cli/output"
	"github.com/akulov/spacefs/pkg/models"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage the ordered access rule list",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show access rules in evaluation order",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		rules, err := eng.store.GetAccessRules(cmd.Context())
		if err != nil {
			return err
		}

		table := output.NewTable("#", "PATH", "RECURSIVE", "PERMISSION")
		for i, r := range rules {
			recursive := "no"
			if r.Recursive {
				recursive = "yes"
			}
			table.AddRow(fmt.Sprintf("%d", i+1), r.Path, recursive, string(r.Permission))
		}
		table.Render(cmd.OutOrStdout())
		return nil
	},
}

var rulesSetCmd = &cobra.Command{
	Use:   "set <rules.json>",
	Short: "Replace the rule list with an ordered JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var rules []models.AccessRule
		if err := json.Unmarshal(data, &rules); err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[0], err)
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := eng.store.SetAccessRules(cmd.Context(), rules); err != nil {
			return err
		}
		cmd.Printf("Stored %d access rules\n", len(rules))
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesSetCmd)
}

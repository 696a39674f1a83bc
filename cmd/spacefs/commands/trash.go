package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/akulov/spacefs/internal/cli/output"
)

var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "Move items to the trash and restore them",
}

var trashPutCmd = &cobra.Command{
	Use:   "put <parent-logical-path> <name>",
	Short: "Move an item into the caller's trash",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		item, err := eng.trash.Trash(cmd.Context(), caller(), args[0], args[1])
		if err != nil {
			return err
		}
		cmd.Printf("Trashed %s (id %s)\n", item.SourceName, item.ID)
		return nil
	},
}

var trashListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the caller's trashed items",
	RunE: func(cmd *cobra.Command, args []string) error {
		if actAsUser == "" {
			return fmt.Errorf("--user is required to list the trash")
		}
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		items, err := eng.trash.List(cmd.Context(), actAsUser)
		if err != nil {
			return err
		}

		table := output.NewTable("ID", "NAME", "SOURCE", "SIZE", "TRASHED AT")
		for _, it := range items {
			table.AddRow(it.ID, it.SourceName, it.SourcePath,
				fmt.Sprintf("%d", it.Size),
				it.DeletedAt.Format(time.RFC3339))
		}
		table.Render(cmd.OutOrStdout())
		return nil
	},
}

var trashRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore a trashed item to its original location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		result, err := eng.trash.Restore(cmd.Context(), caller(), args[0])
		if err != nil {
			return err
		}
		cmd.Printf("Restored as %s\n", result.RestoredPath)
		return nil
	},
}

func init() {
	trashCmd.AddCommand(trashPutCmd)
	trashCmd.AddCommand(trashListCmd)
	trashCmd.AddCommand(trashRestoreCmd)
}

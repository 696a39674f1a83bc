package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akulov/spacefs/internal/cli/output"
	"github.com/akulov/spacefs/pkg/models"
)

var volumeCmd = &cobra.Command{
	Use:   "volume",
	Short: "Manage per-user volume assignments",
}

var volumeReadOnly bool

var volumeAddCmd = &cobra.Command{
	Use:   "add <user-id> <label> <real-root-path>",
	Short: "Assign a real directory to a user under a logical label",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		mode := models.AccessReadWrite
		if volumeReadOnly {
			mode = models.AccessReadOnly
		}
		volume, err := eng.volumes.AddVolume(cmd.Context(), args[0], args[1], args[2], mode)
		if err != nil {
			return err
		}
		cmd.Printf("Volume %s created (%s -> %s)\n", volume.ID, volume.Label, volume.RealRootPath)
		return nil
	},
}

var volumeListCmd = &cobra.Command{
	Use:   "list <user-id>",
	Short: "List a user's volume assignments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		volumes, err := eng.volumes.ListVolumes(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		table := output.NewTable("ID", "LABEL", "ROOT", "MODE")
		for _, v := range volumes {
			table.AddRow(v.ID, v.Label, v.RealRootPath, string(v.AccessMode))
		}
		table.Render(cmd.OutOrStdout())
		return nil
	},
}

var volumeRemoveCmd = &cobra.Command{
	Use:   "remove <volume-id>",
	Short: "Remove a volume assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := eng.volumes.RemoveVolume(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Volume removed")
		return nil
	},
}

func init() {
	volumeAddCmd.Flags().BoolVar(&volumeReadOnly, "read-only", false, "cap the volume at read-only access")
	volumeCmd.AddCommand(volumeAddCmd)
	volumeCmd.AddCommand(volumeListCmd)
	volumeCmd.AddCommand(volumeRemoveCmd)
}

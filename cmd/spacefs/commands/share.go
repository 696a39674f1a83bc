package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/akulov/spacefs/internal/cli/output"
	"github.com/akulov/spacefs/internal/cli/prompt"
	"github.com/akulov/spacefs/pkg/access"
	"github.com/akulov/spacefs/pkg/models"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Manage share links and guest sessions",
}

var (
	shareDir       bool
	shareWritable  bool
	shareUsers     []string
	sharePassword  bool
	shareExpiresIn time.Duration
	shareLabel     string
)

var shareCreateCmd = &cobra.Command{
	Use:   "create <source-space> <source-path>",
	Short: "Create a share link (source space is volume or personal)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if actAsUser == "" {
			return fmt.Errorf("--user is required to create a share")
		}
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		// The creating user must hold share rights on the source first.
		logical := args[0] + "/" + args[1]
		info, err := eng.manager.GetAccessInfo(cmd.Context(), caller(), logical)
		if err != nil {
			return err
		}
		if !info.CanAccess {
			return fmt.Errorf("cannot share %s: %s", logical, info.DenialReason)
		}
		if !info.CanShare {
			return fmt.Errorf("sharing is not permitted at %s", logical)
		}

		in := access.CreateShareInput{
			OwnerID:     actAsUser,
			SourceSpace: models.Space(args[0]),
			SourcePath:  args[1],
			IsDirectory: shareDir,
			AccessMode:  models.AccessReadOnly,
			SharingType: models.SharingAnyone,
			UserIDs:     shareUsers,
			Label:       shareLabel,
		}
		if shareWritable {
			in.AccessMode = models.AccessReadWrite
		}
		if len(shareUsers) > 0 {
			in.SharingType = models.SharingUsers
		}
		if shareExpiresIn > 0 {
			expiry := time.Now().Add(shareExpiresIn)
			in.ExpiresAt = &expiry
		}
		if sharePassword {
			pw, err := prompt.Password("Share password")
			if err != nil {
				return err
			}
			in.Password = pw
		}

		share, err := eng.shares.Create(cmd.Context(), in)
		if err != nil {
			return err
		}
		cmd.Printf("Share created: share/%s\n", share.Token)
		return nil
	},
}

var shareListCmd = &cobra.Command{
	Use:   "list [owner-id]",
	Short: "List shares, optionally scoped to one owner",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		var shares []*models.Share
		if len(args) == 1 {
			shares, err = eng.store.ListSharesByOwner(cmd.Context(), args[0])
		} else {
			shares, err = eng.store.ListShares(cmd.Context())
		}
		if err != nil {
			return err
		}

		table := output.NewTable("TOKEN", "OWNER", "SOURCE", "MODE", "TYPE", "EXPIRES", "DOWNLOADS")
		for _, s := range shares {
			expires := "-"
			if s.ExpiresAt != nil {
				expires = s.ExpiresAt.Format(time.RFC3339)
			}
			table.AddRow(s.Token, s.OwnerID,
				fmt.Sprintf("%s/%s", s.SourceSpace, s.SourcePath),
				string(s.AccessMode), string(s.SharingType),
				expires, fmt.Sprintf("%d", s.DownloadCount))
		}
		table.Render(cmd.OutOrStdout())
		return nil
	},
}

var shareDeleteCmd = &cobra.Command{
	Use:   "delete <token>",
	Short: "Delete a share link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		share, err := eng.shares.ResolveByToken(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := eng.shares.Delete(cmd.Context(), share.ID); err != nil {
			return err
		}
		cmd.Println("Share deleted")
		return nil
	},
}

var shareSweepGuestsCmd = &cobra.Command{
	Use:   "sweep-guests",
	Short: "Remove expired guest sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		n, err := eng.shares.SweepExpiredGuestSessions(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Printf("Removed %d expired guest sessions\n", n)
		return nil
	},
}

func init() {
	shareCreateCmd.Flags().BoolVar(&shareDir, "dir", false, "the source is a directory")
	shareCreateCmd.Flags().BoolVar(&shareWritable, "writable", false, "grant read-write access through the share")
	shareCreateCmd.Flags().StringSliceVar(&shareUsers, "users", nil, "restrict the share to these user IDs")
	shareCreateCmd.Flags().BoolVar(&sharePassword, "password", false, "protect the share with a password (prompted)")
	shareCreateCmd.Flags().DurationVar(&shareExpiresIn, "expires-in", 0, "expire the share after this duration")
	shareCreateCmd.Flags().StringVar(&shareLabel, "label", "", "display label for the share")

	shareCmd.AddCommand(shareCreateCmd)
	shareCmd.AddCommand(shareListCmd)
	shareCmd.AddCommand(shareDeleteCmd)
	shareCmd.AddCommand(shareSweepGuestsCmd)
}

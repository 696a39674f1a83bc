// Package commands implements the spacefs administration CLI.
package commands

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/akulov/spacefs/internal/logger"
	"github.com/akulov/spacefs/pkg/access"
	"github.com/akulov/spacefs/pkg/config"
	"github.com/akulov/spacefs/pkg/models"
	"github.com/akulov/spacefs/pkg/store"
	"github.com/akulov/spacefs/pkg/trash"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"

	// Global flags.
	cfgFile   string
	actAsUser string
	actAdmin  bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "spacefs",
	Short: "SpaceFS - multi-space shared storage access engine",
	Long: `SpaceFS exposes a shared storage volume through logical spaces:
an administrator-defined volume space, per-user personal spaces, and a
share space for links handed to other users or anonymous guests.

This CLI administers volumes, shares, access rules and trash directly
against the SpaceFS database.

Use "spacefs [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once by main.main().
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		rootCmd.PrintErrf("Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/spacefs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&actAsUser, "user", "", "user ID to act as")
	rootCmd.PersistentFlags().BoolVar(&actAdmin, "admin", false, "act with the admin role")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(volumeCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(trashCmd)
	rootCmd.AddCommand(rulesCmd)
}

// engine bundles the wired subsystems a command works with.
type engine struct {
	cfg     *config.Config
	store   *store.GORMStore
	manager *access.Manager
	volumes *access.VolumeRegistry
	shares  *access.ShareRegistry
	trash   *trash.Service
}

// openEngine loads configuration, initializes logging, opens the store and
// wires the access engine. Callers must Close the store.
func openEngine() (*engine, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging); err != nil {
		return nil, err
	}

	st, err := store.New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	fsys := afero.NewOsFs()
	manager := access.NewManager(st, fsys, cfg.Spaces)
	return &engine{
		cfg:     cfg,
		store:   st,
		manager: manager,
		volumes: access.NewVolumeRegistry(st, fsys),
		shares:  access.NewShareRegistry(st),
		trash:   trash.NewService(st, manager, fsys, cfg.Trash.DirName),
	}, nil
}

func (e *engine) Close() {
	_ = e.store.Close()
}

// caller builds the acting identity from the global --user/--admin flags.
func caller() access.Caller {
	if actAsUser == "" {
		return access.Anonymous{}
	}
	user := &models.User{ID: actAsUser}
	if actAdmin {
		user.Roles = []string{models.RoleAdmin}
	}
	return access.AuthenticatedUser{User: user}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("spacefs %s (%s)\n", Version, Commit)
	},
}

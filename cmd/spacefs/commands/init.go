package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akulov/spacefs/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultConfigPath()
		}
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
		if err := config.Save(config.Default(), path); err != nil {
			return err
		}
		cmd.Printf("Wrote %s\n", path)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()
		cmd.Println("Database schema is up to date")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

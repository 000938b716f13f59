package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"scriptline/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a " + DBFileName + " database in the current directory (or at --db)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := dbPath
		if path == "" {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			path = filepath.Join(wd, DBFileName)
		}
		_, statErr := os.Stat(path)
		existed := statErr == nil

		d, err := db.OpenDB(path)
		if err != nil {
			return fmt.Errorf("initializing %s: %w", path, err)
		}
		defer d.Close()

		if existed {
			fmt.Fprintf(cmd.OutOrStdout(), "Reinitialized existing script database at %s\n", path)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty script database at %s\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

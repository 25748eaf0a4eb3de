package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the database and the policy weights",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("reset deletes every learner and the trained policy; pass --yes to confirm")
		}
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return err
		}
		weights, err := resolveWeightsPath(cmd)
		if err != nil {
			return err
		}

		// SQLite keeps WAL and shared-memory files beside the database.
		for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm", weights} {
			if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("remove %s: %w", p, err)
			}
		}
		fmt.Println("Removed", dbPath, "and", weights)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}

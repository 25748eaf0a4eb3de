package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizadapt/internal/importer"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default chapters",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := importer.SeedChapters(cmd.Context(), st.Questions()); err != nil {
			return fmt.Errorf("seed chapters: %w", err)
		}
		fmt.Printf("Seeded %d chapters.\n", len(importer.DefaultChapters))
		return nil
	},
}

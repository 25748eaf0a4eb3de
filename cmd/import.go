package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizadapt/internal/importer"
	"github.com/abhisek/quizadapt/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import chapters and questions from a JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		doc, err := importer.Parse(f)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := importer.Import(cmd.Context(), st.Questions(), doc, store.SourceImport)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}

		fmt.Printf("Imported %d questions (%d chapters upserted).\n", res.Imported, res.Chapters)
		for _, s := range res.Skipped {
			fmt.Fprintf(os.Stderr, "warning: row %d skipped: %s\n", s.Row, s.Reason)
		}
		return nil
	},
}

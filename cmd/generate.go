package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/llm"
	"github.com/abhisek/quizadapt/internal/questiongen"
	"github.com/abhisek/quizadapt/internal/quiz"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Top up thin question buckets with LLM-written questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		target, _ := cmd.Flags().GetInt("target")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		attempts, _ := cmd.Flags().GetInt("attempts")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		bank := st.Questions()
		chapters, err := bank.Chapters(ctx)
		if err != nil {
			return err
		}
		if len(chapters) == 0 {
			return fmt.Errorf("no chapters: run `quizadapt seed` or import a bank first")
		}
		byID := make(map[int]quiz.Chapter, len(chapters))
		for _, ch := range chapters {
			byID[ch.ID] = ch
		}

		counts, err := bank.BucketCounts(ctx)
		if err != nil {
			return err
		}
		thin := questiongen.ThinBuckets(counts, adaptive.DefaultChapterCount, target)
		if len(thin) == 0 {
			fmt.Printf("Every bucket already holds %d questions.\n", target)
			return nil
		}
		if dryRun {
			for _, a := range thin {
				fmt.Printf("%-22s  %d/%d\n", a, counts[a], target)
			}
			return nil
		}

		cfg := llm.Resolve()
		if err := cfg.Validate(); err != nil {
			return err
		}
		provider, err := llm.NewProvider(ctx, cfg, st.Events())
		if err != nil {
			return err
		}
		gen := questiongen.New(provider, questiongen.DefaultConfig())

		var added int
		for _, a := range thin {
			chID, d := adaptive.DecodeAction(a)
			ch, ok := byID[chID]
			if !ok {
				fmt.Printf("%-22s  skipped: chapter not in bank\n", a)
				continue
			}
			res, err := questiongen.Fill(ctx, gen, bank, ch, d, target, attempts)
			if res != nil {
				added += res.Added
				fmt.Printf("%-22s  %d -> %d", a, res.Before, res.Before+res.Added)
				if len(res.Rejected) > 0 {
					fmt.Printf("  (%d rejected, last: %s)", len(res.Rejected), res.Rejected[len(res.Rejected)-1].Message)
				}
				fmt.Println()
			}
			if err != nil {
				return fmt.Errorf("%s: %w", a, err)
			}
		}
		fmt.Printf("\nAdded %d questions with %s (%s).\n", added, cfg.Provider, provider.ModelID())
		return nil
	},
}

func init() {
	generateCmd.Flags().Int("target", 10, "Questions wanted per chapter and difficulty")
	generateCmd.Flags().Int("attempts", questiongen.DefaultAttemptsPerQuestion, "Generation attempts per missing question")
	generateCmd.Flags().Bool("dry-run", false, "Only list the thin buckets")
}

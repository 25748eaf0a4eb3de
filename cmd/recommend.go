package cmd

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/recommend"
	"github.com/abhisek/quizadapt/internal/store"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <user-id>",
	Short: "Assemble the next adaptive quiz for a learner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid user ID %q: %w", args[0], err)
		}

		var opts recommend.NextOptions
		opts.Count, _ = cmd.Flags().GetInt("count")
		chapter, _ := cmd.Flags().GetInt("chapter")
		diff, _ := cmd.Flags().GetString("difficulty")
		if (chapter > 0) != (diff != "") {
			return fmt.Errorf("--chapter and --difficulty must be given together")
		}
		if chapter > 0 {
			d, err := adaptive.ParseDifficulty(diff)
			if err != nil {
				return err
			}
			opts.Chapter, opts.Difficulty = &chapter, &d
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		svc, err := openService(cmd, st)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if explain, _ := cmd.Flags().GetBool("explain"); explain {
			state, _, err := svc.State(ctx, userID)
			if err != nil {
				return err
			}
			values, err := svc.Policy().Values(state)
			if err != nil {
				return err
			}
			printTopActions(state, values, 5)

			recent, err := svc.Decisions(ctx, userID, 5)
			if err != nil {
				return err
			}
			if len(recent) > 0 {
				fmt.Println("Recent decisions:")
				for _, e := range recent {
					fmt.Println("  " + formatDecision(e))
				}
				fmt.Println()
			}
		}

		plan, err := svc.NextQuiz(ctx, userID, opts)
		if err != nil {
			return fmt.Errorf("next quiz: %w", err)
		}
		fmt.Printf("Quiz %d: %d questions. %s", plan.Quiz.ID, len(plan.Quiz.QuestionIDs), plan.Reason)
		if plan.Filled > 0 {
			fmt.Printf(" (%d filled at random)", plan.Filled)
		}
		fmt.Println()
		return nil
	},
}

func printTopActions(state, values []float64, n int) {
	order := make([]adaptive.Action, len(values))
	for i := range order {
		order[i] = adaptive.Action(i)
	}
	slices.SortStableFunc(order, func(a, b adaptive.Action) int {
		switch {
		case values[a] > values[b]:
			return -1
		case values[a] < values[b]:
			return 1
		}
		return 0
	})

	fmt.Printf("%-22s  %8s  %8s\n", "Bucket", "Score", "Accuracy")
	for _, a := range order[:min(n, len(order))] {
		fmt.Printf("%-22s  %8.3f  %7.0f%%\n", a, values[a], state[a]*100)
	}
	fmt.Println()
}

// formatDecision renders one logged decision as a single line.
func formatDecision(e store.DecisionEvent) string {
	bucket := "no bucket"
	if e.Action >= 0 {
		bucket = e.Action.String()
	}
	how := "policy"
	if e.Forced {
		how = "forced"
	}
	line := fmt.Sprintf("#%d %s  quiz %d  %s, %s, %s  eps %.2f",
		e.Sequence, e.Timestamp.Format("2006-01-02 15:04"), e.QuizID, bucket, how, e.Origin, e.Epsilon)
	if e.Filled > 0 {
		line += fmt.Sprintf("  %d/%d filled", e.Filled, e.QuestionCount)
	}
	return line
}

func init() {
	recommendCmd.Flags().Int("chapter", 0, "Force a chapter (requires --difficulty)")
	recommendCmd.Flags().String("difficulty", "", "Force a difficulty: easy, medium or hard")
	recommendCmd.Flags().Int("count", 0, "Questions in the quiz (default 20)")
	recommendCmd.Flags().Bool("explain", false, "Print the policy's top-scoring buckets first")
}

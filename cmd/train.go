package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/store"
	"github.com/abhisek/quizadapt/internal/training"
)

// keepTrainingRuns bounds the training_runs history.
const keepTrainingRuns = 20

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the shared policy offline on simulated learners",
	Long: "Train continues from the current weights file, lets the agent choose buckets for " +
		"simulated learners, replays what it saw, and writes the weights back.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := training.DefaultConfig()
		cfg.Episodes, _ = cmd.Flags().GetInt("episodes")
		cfg.Steps, _ = cmd.Flags().GetInt("steps")
		cfg.Seed, _ = cmd.Flags().GetUint64("seed")
		fromLearners, _ := cmd.Flags().GetBool("from-learners")

		weights, err := resolveWeightsPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve weights path: %w", err)
		}
		agentCfg := adaptive.DefaultConfig()
		agentCfg.WeightsPath = weights
		agent, err := adaptive.NewAgent(agentCfg)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		prev, err := st.TrainingRuns().Latest(ctx)
		if err != nil {
			return fmt.Errorf("latest training run: %w", err)
		}
		if prev != nil {
			line, err := describeRun(prev)
			if err != nil {
				return err
			}
			fmt.Println("Previous run: " + line)
		}

		trainer := training.NewTrainer(agent, cfg)
		if fromLearners {
			seeds, err := learnerSummaries(cmd, st)
			if err != nil {
				return err
			}
			fmt.Printf("Seeding episodes from %d learners.\n", len(seeds))
			trainer.Seeds = seeds
		}
		every := max(cfg.Episodes/10, 1)
		trainer.OnEpisode = func(ep int, mean float64) {
			if ep%every == 0 {
				fmt.Printf("episode %5d  mean reward %+.3f  epsilon %.3f\n", ep, mean, agent.Epsilon())
			}
		}

		report, err := trainer.Run(ctx)
		if err != nil {
			return fmt.Errorf("train: %w", err)
		}
		if err := agent.Save(weights); err != nil {
			return fmt.Errorf("save weights: %w", err)
		}

		raw, err := json.Marshal(report)
		if err != nil {
			return err
		}
		run := &store.TrainingRun{RunID: report.RunID, WeightsPath: weights, Report: raw}
		if err := st.TrainingRuns().Save(ctx, run); err != nil {
			return err
		}
		if err := st.TrainingRuns().Prune(ctx, keepTrainingRuns); err != nil {
			return err
		}

		fmt.Printf("\n%d episodes, %d transitions, %d replays in %s\n",
			report.Episodes, report.Transitions, report.Replays, report.Duration.Round(time.Millisecond))
		fmt.Printf("Mean reward %+.3f, epsilon %.3f. Weights written to %s\n", report.MeanReward, report.Epsilon, weights)
		return nil
	},
}

// describeRun summarises a stored training run from its report.
func describeRun(run *store.TrainingRun) (string, error) {
	var r training.Report
	if err := json.Unmarshal(run.Report, &r); err != nil {
		return "", fmt.Errorf("decode run %s: %w", run.RunID, err)
	}
	return fmt.Sprintf("%s on %s, %d episodes, mean reward %+.3f, epsilon %.3f",
		run.RunID, run.Timestamp.Format("2006-01-02 15:04"), r.Episodes, r.MeanReward, r.Epsilon), nil
}

// learnerSummaries returns every learner's record that has at least one
// answered question.
func learnerSummaries(cmd *cobra.Command, st *store.Store) ([]adaptive.PerformanceSummary, error) {
	ctx := cmd.Context()
	users, err := st.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var out []adaptive.PerformanceSummary
	for _, u := range users {
		s, err := st.Attempts().Summary(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("summary for user %d: %w", u.ID, err)
		}
		if len(s) > 0 {
			out = append(out, s)
		}
	}
	return out, nil
}

func init() {
	def := training.DefaultConfig()
	trainCmd.Flags().Int("episodes", def.Episodes, "Simulated learners")
	trainCmd.Flags().Int("steps", def.Steps, "Quiz decisions per learner")
	trainCmd.Flags().Uint64("seed", def.Seed, "Simulation seed")
	trainCmd.Flags().Bool("from-learners", false, "Start episodes from real learner records")
}

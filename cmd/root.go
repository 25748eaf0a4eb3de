package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/recommend"
	"github.com/abhisek/quizadapt/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizadapt",
	Short: "Adaptive maths quizzes",
	Long:  "quizadapt picks the next quiz for each learner from a learned policy over chapters and difficulty tiers.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is normal outside development.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZADAPT_DB env var)")
	rootCmd.PersistentFlags().String("weights", "", "Path to the policy weights file (overrides QUIZADAPT_WEIGHTS env var)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then QUIZADAPT_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// resolveWeightsPath is resolveDBPath for the policy weights file.
func resolveWeightsPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("weights"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultWeightsPath()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// openService loads the shared policy for serving and wires it to st.
func openService(cmd *cobra.Command, st *store.Store) (*recommend.Service, error) {
	weights, err := resolveWeightsPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve weights path: %w", err)
	}
	policy, err := recommend.LoadPolicy(adaptive.DefaultConfig(), weights, recommend.DefaultServingEpsilon)
	if err != nil {
		return nil, err
	}
	return recommend.NewService(recommend.DepsFromStore(st), policy, recommend.DefaultConfig(), nil), nil
}

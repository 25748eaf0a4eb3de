package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/quizadapt/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Take quizzes in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

// runPlay opens the store, loads the policy, and launches the TUI.
func runPlay(cmd *cobra.Command) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	svc, err := openService(cmd, st)
	if err != nil {
		return err
	}
	return app.Run(svc)
}

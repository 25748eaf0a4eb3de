package cmd

import (
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/recommend"
	"github.com/abhisek/quizadapt/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats <user-id>",
	Short: "Show a learner's accuracy per chapter and tier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid user ID %q: %w", args[0], err)
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
		ins, err := svc.Insights(cmd.Context(), userID)
		if err != nil {
			return err
		}

		lipgloss.Println(theme.Title.Render(fmt.Sprintf("Overall %.0f%%", ins.OverallScore*100)))
		lipgloss.Println(insightsTable(ins).Render())
		for _, r := range ins.Recommendations {
			lipgloss.Println(theme.Hint.Render("• " + r))
		}
		return nil
	},
}

func insightsTable(ins *recommend.Insights) *table.Table {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers("Chapter", "Easy", "Medium", "Hard", "Weakness")

	for _, cs := range ins.Chapters {
		row := []string{cs.Chapter.Name}
		for _, d := range adaptive.Difficulties {
			row = append(row, bucketCell(cs.Buckets[d]))
		}
		t.Row(append(row, string(cs.Weakness))...)
	}

	return t.StyleFunc(func(row, col int) lipgloss.Style {
		s := lipgloss.NewStyle().Padding(0, 1)
		switch {
		case row == table.HeaderRow:
			return s.Bold(true).Foreground(theme.Primary)
		case col == 4 && ins.Chapters[row].Weakness == recommend.Strong:
			return s.Foreground(theme.Success)
		case col == 4:
			return s.Foreground(theme.Error)
		}
		return s
	})
}

func bucketCell(b adaptive.Bucket) string {
	if b.Total == 0 {
		return "-"
	}
	return fmt.Sprintf("%3.0f%% (%d/%d)", b.Accuracy()*100, b.Correct, b.Total)
}

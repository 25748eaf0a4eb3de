package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizadapt/internal/ui/theme"
)

// Progress renders "label [#####.....] 3/10" in width cells.
func Progress(label string, done, total, width int) string {
	counter := fmt.Sprintf(" %d/%d", done, total)
	head := theme.Body.Render(label) + " "
	bar := max(width-lipgloss.Width(head)-len(counter), 4)

	filled := 0
	if total > 0 {
		filled = min(bar*done/total, bar)
	}
	return head +
		lipgloss.NewStyle().Background(theme.Secondary).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", bar-filled)) +
		theme.Hint.Render(counter)
}

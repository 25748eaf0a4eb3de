package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizadapt/internal/ui/theme"
)

// Smallest terminal the quiz screens fit in.
const (
	MinWidth  = 72
	MinHeight = 20
)

// KeyHint is one footer entry.
type KeyHint struct {
	Key         string
	Description string
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Body.Render(fmt.Sprintf("Terminal too small (%dx%d).\nNeed at least %dx%d.",
			width, height, MinWidth, MinHeight)))
}

// RenderHeader shows the app name, the screen title centred and status on
// the right.
func RenderHeader(title, status string, width int) string {
	left := theme.Title.Render("quizadapt")
	center := theme.Body.Render(title)
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)

	inner := max(width-4, 0)
	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	gapL := max((inner-cw)/2-lw, 1)
	gapR := max(inner-lw-gapL-cw-rw, 1)

	line := left + strings.Repeat(" ", gapL) + center + strings.Repeat(" ", gapR) + right
	return theme.Bar.Width(width).Render(line)
}

// RenderFooter lists key hints.
func RenderFooter(hints []KeyHint, width int) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key) + " " + theme.Hint.Render(h.Description)
	}
	return theme.Bar.Width(width).Render(" " + strings.Join(parts, "   "))
}

// RenderFrame stacks header, body and footer to fill width x height.
func RenderFrame(header, body, footer string, width, height int) string {
	bodyHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(bodyHeight).Render(body),
		footer,
	)
}

// BodyHeight is the room left for a screen between header and footer.
func BodyHeight(header, footer string, height int) int {
	return max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
}

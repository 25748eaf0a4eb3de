package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizadapt/internal/ui/theme"
)

var optionLetters = [4]string{"A", "B", "C", "D"}

// MultiChoice lets the learner pick one of four options. Arrow keys or j/k
// move the cursor, a-d jump to an option, Enter confirms.
type MultiChoice struct {
	Prompt  string
	Options [4]string

	Cursor int

	// Chosen is the confirmed option index, or -1.
	Chosen int
}

func NewMultiChoice(prompt string, options [4]string) MultiChoice {
	return MultiChoice{Prompt: prompt, Options: options, Chosen: -1}
}

// Confirmed reports whether an option has been picked.
func (m MultiChoice) Confirmed() bool { return m.Chosen >= 0 }

// Letter returns the confirmed option's letter, or "" before confirmation.
func (m MultiChoice) Letter() string {
	if m.Chosen < 0 {
		return ""
	}
	return optionLetters[m.Chosen]
}

func (m MultiChoice) Update(msg tea.Msg) MultiChoice {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.Confirmed() {
		return m
	}
	switch k := key.String(); k {
	case "up", "k":
		m.Cursor = max(m.Cursor-1, 0)
	case "down", "j":
		m.Cursor = min(m.Cursor+1, len(m.Options)-1)
	case "a", "b", "c", "d":
		m.Cursor = int(k[0] - 'a')
	case "enter":
		m.Chosen = m.Cursor
	}
	return m
}

func (m MultiChoice) View(width int) string {
	var b strings.Builder
	b.WriteString(theme.Body.Bold(true).Width(width).Render(m.Prompt))
	b.WriteString("\n\n")
	for i, opt := range m.Options {
		line := optionLetters[i] + ")  " + opt
		style := theme.Unselected
		marker := "  "
		if i == m.Cursor {
			style, marker = theme.Selected, "> "
		}
		b.WriteString(lipgloss.NewStyle().Render(marker) + style.Render(line) + "\n")
	}
	return b.String()
}

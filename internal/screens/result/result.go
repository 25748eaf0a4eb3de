package result

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizadapt/internal/recommend"
	"github.com/abhisek/quizadapt/internal/router"
	"github.com/abhisek/quizadapt/internal/screen"
	"github.com/abhisek/quizadapt/internal/ui/components"
	"github.com/abhisek/quizadapt/internal/ui/layout"
	"github.com/abhisek/quizadapt/internal/ui/theme"
)

// StartFunc builds the screen for the quiz with the given id.
type StartFunc func(quizID int) screen.Screen

// HistoryFunc builds the learner's history screen.
type HistoryFunc func() screen.Screen

// ResultScreen shows how an attempt went and what comes next.
type ResultScreen struct {
	out     *recommend.Outcome
	warning string
	menu    components.Menu
}

var _ screen.Screen = (*ResultScreen)(nil)

// New builds the screen for out. A non-nil err is shown as a warning; the
// attempt itself was recorded.
func New(out *recommend.Outcome, err error, start StartFunc, history HistoryFunc) *ResultScreen {
	r := &ResultScreen{out: out}
	if err != nil {
		r.warning = err.Error()
	}

	var items []components.MenuItem
	if out.Next != nil && out.Next.Quiz != nil {
		id := out.Next.Quiz.ID
		items = append(items, components.MenuItem{
			Label: "Start next quiz",
			Action: func() tea.Cmd {
				next := start(id)
				return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
			},
		})
	}
	if history != nil {
		items = append(items, components.MenuItem{
			Label: "View history",
			Action: func() tea.Cmd {
				h := history()
				return func() tea.Msg { return router.PushScreenMsg{Screen: h} }
			},
		})
	}
	items = append(items, components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }})
	r.menu = components.NewMenu(items...)
	return r
}

func (r *ResultScreen) Title() string { return "Results" }

func (r *ResultScreen) Init() tea.Cmd { return nil }

func (r *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	r.menu, cmd = r.menu.Update(msg)
	return r, cmd
}

func (r *ResultScreen) View(width, height int) string {
	g := r.out.Grading
	score := theme.Title.Render(fmt.Sprintf("%.0f%%", g.Score*100))
	lines := []string{
		score + theme.Body.Render(fmt.Sprintf("  %d of %d answered correctly", g.Correct, g.Answered)),
		"",
	}

	wrong := 0
	for _, resp := range g.Responses {
		if !resp.Correct {
			wrong++
		}
	}
	if wrong > 0 {
		lines = append(lines, theme.Incorrect.Render(fmt.Sprintf("%d to review", wrong)))
	} else if g.Answered > 0 {
		lines = append(lines, theme.Correct.Render("Perfect round!"))
	}

	if next := r.out.Next; next != nil {
		lines = append(lines, "", theme.Body.Render("Up next: "+next.Reason))
	}
	if r.warning != "" {
		lines = append(lines, "", theme.Incorrect.Render("warning: "+r.warning))
	}
	lines = append(lines, "", r.menu.View())

	card := theme.Card.Width(min(64, width-4)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (r *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

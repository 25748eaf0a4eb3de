package history

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/quiz"
	"github.com/abhisek/quizadapt/internal/router"
	"github.com/abhisek/quizadapt/internal/screen"
	"github.com/abhisek/quizadapt/internal/store"
	"github.com/abhisek/quizadapt/internal/ui/layout"
	"github.com/abhisek/quizadapt/internal/ui/theme"
)

// Service reads a learner's past attempts.
type Service interface {
	History(ctx context.Context, userID int) ([]store.Attempt, error)
	Responses(ctx context.Context, attemptID int) ([]quiz.Response, error)
}

type historyLoadedMsg struct {
	Attempts []store.Attempt
	Err      error
}

type responsesLoadedMsg struct {
	Index     int
	Responses []quiz.Response
	Err       error
}

// HistoryScreen lists a learner's graded attempts, newest first. Enter
// expands an attempt into per-bucket results.
type HistoryScreen struct {
	svc      Service
	userID   int
	attempts []store.Attempt
	details  map[int][]quiz.Response
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

func New(svc Service, userID int) *HistoryScreen {
	return &HistoryScreen{
		svc:      svc,
		userID:   userID,
		details:  make(map[int][]quiz.Response),
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	svc, user := s.svc, s.userID
	return func() tea.Msg {
		attempts, err := svc.History(context.Background(), user)
		return historyLoadedMsg{Attempts: attempts, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.attempts = msg.Attempts
		}
		s.loaded = true
		return s, nil

	case responsesLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		if msg.Responses == nil {
			msg.Responses = []quiz.Response{}
		}
		s.details[msg.Index] = msg.Responses
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
		case "enter":
			if len(s.attempts) == 0 {
				return s, nil
			}
			s.expanded[s.selected] = !s.expanded[s.selected]
			if _, ok := s.details[s.selected]; !ok && s.expanded[s.selected] {
				return s, s.loadResponses(s.selected)
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) loadResponses(i int) tea.Cmd {
	svc, id := s.svc, s.attempts[i].ID
	return func() tea.Msg {
		rs, err := svc.Responses(context.Background(), id)
		return responsesLoadedMsg{Index: i, Responses: rs, Err: err}
	}
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.attempts) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No attempts yet. Finish a quiz first!")
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, a := range s.attempts {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		line := fmt.Sprintf("%s%s  quiz %-4d  %2d/%-2d correct  %3.0f%%",
			prefix, a.CreatedAt.Local().Format("Jan 02, 2006 15:04"), a.QuizID, a.Correct, a.Answered, a.Score*100)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, l := range bucketLines(s.details[i]) {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, l))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// bucketLines groups responses by chapter and difficulty.
func bucketLines(rs []quiz.Response) []string {
	if rs == nil {
		return []string{theme.Hint.Render("    loading...")}
	}
	summary := make(adaptive.PerformanceSummary)
	for _, r := range rs {
		correct := 0
		if r.Correct {
			correct = 1
		}
		summary.Add(r.ChapterID, r.Difficulty, correct, 1)
	}

	var actions []adaptive.Action
	for ch, tiers := range summary {
		for d := range tiers {
			actions = append(actions, adaptive.EncodeAction(ch, d))
		}
	}
	slices.Sort(actions)

	lines := make([]string, 0, len(actions))
	for _, a := range actions {
		ch, d := adaptive.DecodeAction(a)
		bk := summary.Bucket(ch, d)
		style := theme.Correct
		if bk.Accuracy() < 0.5 {
			style = theme.Incorrect
		}
		lines = append(lines, style.Render(fmt.Sprintf("    %-22s %d/%d", a, bk.Correct, bk.Total)))
	}
	return lines
}

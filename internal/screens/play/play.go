package play

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizadapt/internal/quiz"
	"github.com/abhisek/quizadapt/internal/recommend"
	"github.com/abhisek/quizadapt/internal/router"
	"github.com/abhisek/quizadapt/internal/screen"
	"github.com/abhisek/quizadapt/internal/store"
	"github.com/abhisek/quizadapt/internal/ui/components"
	"github.com/abhisek/quizadapt/internal/ui/layout"
	"github.com/abhisek/quizadapt/internal/ui/theme"
)

// Service loads and grades quizzes.
type Service interface {
	QuizQuestions(ctx context.Context, quizID int) (*store.Quiz, []quiz.Question, error)
	Submit(ctx context.Context, userID, quizID int, answers map[int]string) (*recommend.Outcome, error)
}

// DoneFunc builds the screen shown after submission. out may be non-nil
// alongside err when grading succeeded but the follow-up quiz did not.
type DoneFunc func(out *recommend.Outcome, err error) screen.Screen

type loadedMsg struct {
	quiz      *store.Quiz
	questions []quiz.Question
	err       error
}

type submittedMsg struct {
	out *recommend.Outcome
	err error
}

// PlayScreen walks the learner through one quiz, a question at a time, and
// submits every answer at the end.
type PlayScreen struct {
	svc    Service
	userID int
	quizID int
	done   DoneFunc

	quiz      *store.Quiz
	questions []quiz.Question
	current   int
	choice    components.MultiChoice
	answers   map[int]string

	submitting bool
	problem    string
}

var _ screen.Screen = (*PlayScreen)(nil)

func New(svc Service, userID, quizID int, done DoneFunc) *PlayScreen {
	return &PlayScreen{
		svc:     svc,
		userID:  userID,
		quizID:  quizID,
		done:    done,
		answers: make(map[int]string),
	}
}

func (p *PlayScreen) Title() string {
	return fmt.Sprintf("Quiz #%d", p.quizID)
}

func (p *PlayScreen) Init() tea.Cmd {
	svc, id := p.svc, p.quizID
	return func() tea.Msg {
		qz, qs, err := svc.QuizQuestions(context.Background(), id)
		return loadedMsg{quiz: qz, questions: qs, err: err}
	}
}

func (p *PlayScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			p.problem = msg.err.Error()
			return p, nil
		}
		p.quiz, p.questions = msg.quiz, msg.questions
		if len(p.questions) == 0 {
			return p, p.submit()
		}
		p.show(0)
		return p, nil

	case submittedMsg:
		p.submitting = false
		if msg.out == nil {
			p.problem = msg.err.Error()
			return p, nil
		}
		next := p.done(msg.out, msg.err)
		return p, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case tea.KeyPressMsg:
		if p.quiz == nil || p.submitting || p.current >= len(p.questions) {
			return p, nil
		}
		if msg.String() == "tab" {
			return p, p.advance()
		}
		p.choice = p.choice.Update(msg)
		if p.choice.Confirmed() {
			p.answers[p.questions[p.current].ID] = p.choice.Letter()
			return p, p.advance()
		}
	}
	return p, nil
}

// advance moves to the next question, or submits after the last one.
func (p *PlayScreen) advance() tea.Cmd {
	if p.current+1 < len(p.questions) {
		p.show(p.current + 1)
		return nil
	}
	p.current = len(p.questions)
	return p.submit()
}

func (p *PlayScreen) show(i int) {
	p.current = i
	q := p.questions[i]
	p.choice = components.NewMultiChoice(q.Prompt, q.Options)
}

func (p *PlayScreen) submit() tea.Cmd {
	p.submitting = true
	svc, user, id := p.svc, p.userID, p.quizID
	answers := make(map[int]string, len(p.answers))
	for k, v := range p.answers {
		answers[k] = v
	}
	return func() tea.Msg {
		out, err := svc.Submit(context.Background(), user, id, answers)
		return submittedMsg{out: out, err: err}
	}
}

func (p *PlayScreen) View(width, height int) string {
	inner := min(width-4, 76)
	var body string
	switch {
	case p.problem != "":
		body = theme.Incorrect.Render(p.problem)
	case p.quiz == nil:
		body = theme.Hint.Render("Loading quiz...")
	case p.submitting:
		body = theme.Hint.Render("Grading your answers...")
	default:
		q := p.questions[p.current]
		meta := theme.Hint.Render(fmt.Sprintf("Chapter %d  ·  %s  ·  %s", q.ChapterID, q.Difficulty, p.quiz.Duration))
		body = strings.Join([]string{
			components.Progress("Progress", p.current, len(p.questions), inner),
			"",
			meta,
			"",
			p.choice.View(inner),
		}, "\n")
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Card.Width(inner+4).Render(body))
}

func (p *PlayScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓/a-d", Description: "Choose"},
		{Key: "Enter", Description: "Answer"},
		{Key: "Tab", Description: "Skip"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

package login

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizadapt/internal/router"
	"github.com/abhisek/quizadapt/internal/screen"
	"github.com/abhisek/quizadapt/internal/store"
	"github.com/abhisek/quizadapt/internal/ui/components"
	"github.com/abhisek/quizadapt/internal/ui/layout"
	"github.com/abhisek/quizadapt/internal/ui/theme"
)

// Service finds or registers a learner and returns their next quiz.
type Service interface {
	Login(ctx context.Context, email, name string) (*store.User, *store.Quiz, error)
}

// NextFunc builds the screen shown once the learner is known.
type NextFunc func(u *store.User, qz *store.Quiz) screen.Screen

type loginResultMsg struct {
	user *store.User
	quiz *store.Quiz
	err  error
}

// LoginScreen asks for an email address. New addresses are registered on
// the spot.
type LoginScreen struct {
	svc     Service
	next    NextFunc
	input   components.TextInput
	busy    bool
	problem string
}

var _ screen.Screen = (*LoginScreen)(nil)

func New(svc Service, next NextFunc) *LoginScreen {
	return &LoginScreen{
		svc:   svc,
		next:  next,
		input: components.NewTextInput("you@example.com", 254),
	}
}

func (l *LoginScreen) Title() string { return "Sign in" }

func (l *LoginScreen) Init() tea.Cmd {
	return l.input.Init()
}

func (l *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		l.busy = false
		if msg.err != nil {
			l.problem = msg.err.Error()
			return l, nil
		}
		if msg.quiz == nil {
			l.problem = "no quiz could be prepared, is the question bank empty?"
			return l, nil
		}
		next := l.next(msg.user, msg.quiz)
		return l, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case tea.KeyPressMsg:
		if l.busy {
			return l, nil
		}
		if msg.String() == "enter" {
			return l, l.submit()
		}
	}

	var cmd tea.Cmd
	l.input, cmd = l.input.Update(msg)
	return l, cmd
}

func (l *LoginScreen) submit() tea.Cmd {
	email := strings.ToLower(strings.TrimSpace(l.input.Value()))
	if !strings.Contains(email, "@") {
		l.problem = "enter a valid email address"
		return nil
	}
	l.busy = true
	l.problem = ""
	svc := l.svc
	return func() tea.Msg {
		u, qz, err := svc.Login(context.Background(), email, "")
		return loginResultMsg{user: u, quiz: qz, err: err}
	}
}

func (l *LoginScreen) View(width, height int) string {
	sections := []string{
		theme.Title.Render("Welcome"),
		"",
		theme.Body.Render("Email"),
		l.input.View(),
		"",
	}
	switch {
	case l.busy:
		sections = append(sections, theme.Hint.Render("Preparing your quiz..."))
	case l.problem != "":
		sections = append(sections, theme.Incorrect.Render(l.problem))
	default:
		sections = append(sections, theme.Hint.Render("New here? An account is created when you sign in."))
	}
	card := theme.Card.Width(min(56, width-4)).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (l *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Sign in"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

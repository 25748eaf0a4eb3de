package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizadapt/internal/recommend"
	"github.com/abhisek/quizadapt/internal/router"
	"github.com/abhisek/quizadapt/internal/screen"
	"github.com/abhisek/quizadapt/internal/screens/history"
	"github.com/abhisek/quizadapt/internal/screens/login"
	"github.com/abhisek/quizadapt/internal/screens/play"
	"github.com/abhisek/quizadapt/internal/screens/result"
	"github.com/abhisek/quizadapt/internal/store"
	"github.com/abhisek/quizadapt/internal/ui/layout"
)

// session remembers who is signed in. Screens share it through the factory
// closures below.
type session struct {
	user *store.User
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	session *session
	width   int
	height  int
}

func newAppModel(svc *recommend.Service) AppModel {
	sess := &session{}

	var playScreen func(quizID int) screen.Screen
	playScreen = func(quizID int) screen.Screen {
		return play.New(svc, sess.user.ID, quizID, func(out *recommend.Outcome, err error) screen.Screen {
			return result.New(out, err, playScreen, func() screen.Screen {
				return history.New(svc, sess.user.ID)
			})
		})
	}
	first := login.New(svc, func(u *store.User, qz *store.Quiz) screen.Screen {
		sess.user = u
		return playScreen(qz.ID)
	})

	return AppModel{
		router:  router.New(first),
		session: sess,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	return m, m.router.Update(msg)
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	status := ""
	if u := m.session.user; u != nil {
		status = u.Email
	}
	header := layout.RenderHeader(active.Title(), status, m.width)

	hints := []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	if p, ok := active.(screen.KeyHintProvider); ok {
		hints = p.KeyHints()
	}
	footer := layout.RenderFooter(hints, m.width)

	body := m.router.View(m.width, layout.BodyHeight(header, footer, m.height))
	return layout.RenderFrame(header, body, footer, m.width, m.height)
}

// Run starts the terminal quiz against svc.
func Run(svc *recommend.Service) error {
	p := tea.NewProgram(newAppModel(svc))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}

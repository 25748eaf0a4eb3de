package app

import (
	"bytes"
	"log"
	"math/rand/v2"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/recommend"
	"github.com/abhisek/quizadapt/internal/store"
)

func newTestModel(t *testing.T) AppModel {
	t.Helper()
	st, err := store.Open("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	policy, err := recommend.LoadPolicy(adaptive.DefaultConfig(), "", 0,
		adaptive.WithLogger(log.New(&bytes.Buffer{}, "", 0)))
	require.NoError(t, err)
	svc := recommend.NewService(recommend.DepsFromStore(st), policy, recommend.DefaultConfig(), rand.New(rand.NewPCG(1, 1)))
	return newAppModel(svc)
}

func TestApp_StartsAtLogin(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := next.(AppModel).render()
	assert.Contains(t, view, "Sign in")
	assert.Contains(t, view, "Email")
}

func TestApp_TooSmall(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	assert.Contains(t, next.(AppModel).render(), "Terminal too small")
}

func TestApp_CtrlCQuits(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

package result

import (
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizadapt/internal/quiz"
	"github.com/abhisek/quizadapt/internal/recommend"
	"github.com/abhisek/quizadapt/internal/router"
	"github.com/abhisek/quizadapt/internal/screen"
	"github.com/abhisek/quizadapt/internal/store"
)

type quizStub struct{ id int }

func (s *quizStub) Init() tea.Cmd                          { return nil }
func (s *quizStub) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *quizStub) View(int, int) string                   { return "quiz" }
func (s *quizStub) Title() string                          { return "Quiz" }

func outcome(next *recommend.Plan) *recommend.Outcome {
	return &recommend.Outcome{
		Attempt: &store.Attempt{ID: 1},
		Grading: quiz.Grading{
			Correct:   3,
			Answered:  4,
			Score:     0.75,
			Responses: []quiz.Response{{Correct: true}, {Correct: true}, {Correct: true}, {}},
		},
		Next: next,
	}
}

func start(id int) screen.Screen { return &quizStub{id: id} }

func TestResult_StartsNextQuiz(t *testing.T) {
	plan := &recommend.Plan{Quiz: &store.Quiz{ID: 42}, Reason: "Low scores in chapter 3 (hard)"}
	r := New(outcome(plan), nil, start, nil)

	view := r.View(100, 30)
	assert.Contains(t, view, "75%")
	assert.Contains(t, view, "3 of 4")
	assert.Contains(t, view, "chapter 3 (hard)")

	_, cmd := r.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.ReplaceScreenMsg)
	require.True(t, ok)
	assert.Equal(t, &quizStub{id: 42}, msg.Screen)
}

func TestResult_OnlyQuitWithoutNextQuiz(t *testing.T) {
	r := New(outcome(nil), errors.New("question bank is empty"), start, nil)
	assert.Contains(t, r.View(100, 30), "warning: question bank is empty")
	assert.NotContains(t, r.View(100, 30), "Start next quiz")

	_, cmd := r.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestResult_PushesHistory(t *testing.T) {
	r := New(outcome(nil), nil, start, func() screen.Screen { return &quizStub{id: -1} })

	_, cmd := r.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, &quizStub{id: -1}, msg.Screen)
}

package history

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/quiz"
	"github.com/abhisek/quizadapt/internal/router"
	"github.com/abhisek/quizadapt/internal/screen"
	"github.com/abhisek/quizadapt/internal/store"
)

type fakeService struct {
	attempts  []store.Attempt
	responses map[int][]quiz.Response
	asked     []int
}

func (f *fakeService) History(context.Context, int) ([]store.Attempt, error) {
	return f.attempts, nil
}

func (f *fakeService) Responses(_ context.Context, id int) ([]quiz.Response, error) {
	f.asked = append(f.asked, id)
	return f.responses[id], nil
}

func loaded(t *testing.T, svc *fakeService) screen.Screen {
	t.Helper()
	s := New(svc, 1)
	next, _ := s.Update(s.Init()())
	return next
}

func TestHistory_ListsAndExpands(t *testing.T) {
	svc := &fakeService{
		attempts: []store.Attempt{
			{ID: 9, QuizID: 4, Correct: 3, Answered: 4, Score: 0.75, CreatedAt: time.Now()},
			{ID: 8, QuizID: 3, Correct: 1, Answered: 2, Score: 0.5, CreatedAt: time.Now()},
		},
		responses: map[int][]quiz.Response{
			8: {
				{ChapterID: 2, Difficulty: adaptive.Hard, Correct: false},
				{ChapterID: 2, Difficulty: adaptive.Hard, Correct: true},
			},
		},
	}
	s := loaded(t, svc)
	view := s.View(100, 30)
	assert.Contains(t, view, "quiz 4")
	assert.Contains(t, view, "75%")

	s, _ = s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Contains(t, s.View(100, 30), "loading...")

	s, _ = s.Update(cmd())
	assert.Equal(t, []int{8}, svc.asked)
	assert.Contains(t, s.View(100, 30), "chapter 2 (hard)")
	assert.Contains(t, s.View(100, 30), "1/2")

	// Collapsing and expanding again does not refetch.
	s, _ = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestHistory_Empty(t *testing.T) {
	s := loaded(t, &fakeService{})
	assert.Contains(t, s.View(100, 30), "No attempts yet")

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestHistory_EscPops(t *testing.T) {
	s := loaded(t, &fakeService{})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
}

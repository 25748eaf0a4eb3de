package quiz

import (
	"context"
	"errors"

	"github.com/abhisek/quizadapt/internal/adaptive"
)

// memBank is an in-memory Bank for tests.
type memBank struct {
	questions []Question
	err       error
}

func (b *memBank) QuestionsInBucket(_ context.Context, chapter int, d adaptive.Difficulty) ([]Question, error) {
	if b.err != nil {
		return nil, b.err
	}
	var out []Question
	for _, q := range b.questions {
		if q.ChapterID == chapter && q.Difficulty == d {
			out = append(out, q)
		}
	}
	return out, nil
}

func (b *memBank) AllQuestions(context.Context) ([]Question, error) {
	if b.err != nil {
		return nil, b.err
	}
	return append([]Question(nil), b.questions...), nil
}

// fullBank has perBucket questions in every cell of six chapters.
func fullBank(perBucket int) *memBank {
	b := &memBank{}
	id := 1
	for ch := 1; ch <= adaptive.DefaultChapterCount; ch++ {
		for _, d := range adaptive.Difficulties {
			for i := 0; i < perBucket; i++ {
				b.questions = append(b.questions, Question{
					ID:         id,
					ChapterID:  ch,
					Difficulty: d,
					Prompt:     "q",
					Options:    [4]string{"1", "2", "3", "4"},
					Answer:     "A",
				})
				id++
			}
		}
	}
	return b
}

// scriptedPolicy returns actions from a list, cycling.
type scriptedPolicy struct {
	actions []adaptive.Action
	calls   int
	err     error
}

func (p *scriptedPolicy) Act([]float64) (adaptive.Action, error) {
	if p.err != nil {
		return 0, p.err
	}
	a := p.actions[p.calls%len(p.actions)]
	p.calls++
	return a, nil
}

var errBankDown = errors.New("bank down")

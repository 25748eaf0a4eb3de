package questiongen

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/quiz"
	"github.com/abhisek/quizadapt/internal/store"
)

// DefaultAttemptsPerQuestion bounds generation calls per wanted question.
const DefaultAttemptsPerQuestion = 3

// Bank is the question storage Fill reads and writes.
type Bank interface {
	QuestionsInBucket(ctx context.Context, chapter int, d adaptive.Difficulty) ([]quiz.Question, error)
	AddQuestions(ctx context.Context, qs []quiz.Question, source string) error
}

// FillResult reports one bucket's top-up.
type FillResult struct {
	Chapter    quiz.Chapter
	Difficulty adaptive.Difficulty
	Before     int
	Added      int
	Rejected   []*ValidationError
}

// Fill generates questions until the bucket holds target questions or
// attempts run out. Accepted questions are stored one at a time, so a
// provider failure keeps what was already added. Rejected candidates are
// reported in the result and a non-retryable rejection stops the bucket.
func Fill(ctx context.Context, gen Generator, bank Bank, ch quiz.Chapter, d adaptive.Difficulty, target, attemptsPer int) (*FillResult, error) {
	existing, err := bank.QuestionsInBucket(ctx, ch.ID, d)
	if err != nil {
		return nil, fmt.Errorf("read bucket: %w", err)
	}
	res := &FillResult{Chapter: ch, Difficulty: d, Before: len(existing)}

	want := target - len(existing)
	if want <= 0 {
		return res, nil
	}
	if attemptsPer <= 0 {
		attemptsPer = DefaultAttemptsPerQuestion
	}

	in := Input{Chapter: ch, Difficulty: d}
	for _, q := range existing {
		in.Existing = append(in.Existing, q.Prompt)
	}

	for tries := want * attemptsPer; tries > 0 && res.Added < want; tries-- {
		q, err := gen.Generate(ctx, in)
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			res.Rejected = append(res.Rejected, verr)
			if !verr.Retryable {
				return res, nil
			}
			continue
		case err != nil:
			return res, err
		}

		if err := bank.AddQuestions(ctx, []quiz.Question{*q}, store.SourceGenerated); err != nil {
			return res, fmt.Errorf("store generated question: %w", err)
		}
		in.Existing = append(in.Existing, q.Prompt)
		res.Added++
	}
	if res.Added < want {
		fmt.Fprintf(os.Stderr, "warning: %s (%s) still %d short after %d rejections\n",
			ch.Name, d, want-res.Added, len(res.Rejected))
	}
	return res, nil
}

// ThinBuckets lists the chapter/difficulty cells holding fewer than target
// questions, in action order.
func ThinBuckets(counts map[adaptive.Action]int, chapterCount, target int) []adaptive.Action {
	var out []adaptive.Action
	for a := range adaptive.Action(chapterCount * adaptive.DifficultyCount) {
		if counts[a] < target {
			out = append(out, a)
		}
	}
	return out
}

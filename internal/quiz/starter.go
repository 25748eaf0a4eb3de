package quiz

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/abhisek/quizadapt/internal/adaptive"
)

// DefaultStarterPerBucket is how many questions each bucket contributes to a
// new learner's first quiz.
const DefaultStarterPerBucket = 2

// Starter samples perBucket questions from every chapter/difficulty cell that
// has at least that many. Thinner cells are skipped entirely, and skipped
// lists them as actions.
func Starter(ctx context.Context, bank Bank, chapterCount, perBucket int, rng *rand.Rand) (qs []Question, skipped []adaptive.Action, err error) {
	if perBucket <= 0 {
		perBucket = DefaultStarterPerBucket
	}
	for ch := 1; ch <= chapterCount; ch++ {
		for _, d := range adaptive.Difficulties {
			pool, err := bank.QuestionsInBucket(ctx, ch, d)
			if err != nil {
				return nil, nil, fmt.Errorf("load chapter %d %s: %w", ch, d, err)
			}
			if len(pool) < perBucket {
				skipped = append(skipped, adaptive.EncodeAction(ch, d))
				continue
			}
			for _, i := range rng.Perm(len(pool))[:perBucket] {
				qs = append(qs, pool[i])
			}
		}
	}
	return qs, skipped, nil
}

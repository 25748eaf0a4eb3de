package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/samber/lo"

	"github.com/abhisek/quizadapt/internal/adaptive"
)

const (
	// DefaultCount is the quiz length used when a request leaves Count unset.
	DefaultCount = 20

	// MaxAttempts bounds the number of policy decisions per quiz.
	MaxAttempts = 100
)

// ErrSelection wraps any policy or bank failure during assembly.
var ErrSelection = errors.New("question selection failed")

// Request describes one quiz to assemble.
type Request struct {
	// Summary is the learner's record, encoded into the policy's state.
	Summary adaptive.PerformanceSummary

	// ForcedChapter and ForcedDifficulty pin every decision to one bucket.
	// Both must be set for the override to apply.
	ForcedChapter    *int
	ForcedDifficulty *adaptive.Difficulty

	// Count is the target number of questions. Zero means DefaultCount.
	Count int
}

// Forced reports whether the request pins a bucket.
func (r Request) Forced() bool {
	return r.ForcedChapter != nil && r.ForcedDifficulty != nil
}

// Result is an assembled quiz.
type Result struct {
	Questions []Question

	// Actions lists, in order, the decisions that contributed a question.
	Actions []adaptive.Action

	// Filled counts questions added by the random top-up.
	Filled int

	// Attempts is the number of decisions taken.
	Attempts int
}

// QuestionIDs returns the ids of the assembled questions in order.
func (r *Result) QuestionIDs() []int {
	return lo.Map(r.Questions, func(q Question, _ int) int { return q.ID })
}

// Assembler builds quizzes by repeatedly asking a Policy for a bucket and
// drawing one unused question from it.
type Assembler struct {
	bank         Bank
	policy       Policy
	chapterCount int
	rng          *rand.Rand
}

// NewAssembler creates an Assembler. A nil rng gets a randomly seeded one.
func NewAssembler(bank Bank, policy Policy, chapterCount int, rng *rand.Rand) *Assembler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Assembler{
		bank:         bank,
		policy:       policy,
		chapterCount: chapterCount,
		rng:          rng,
	}
}

// Assemble selects up to req.Count distinct questions. Each new action
// contributes at most one question; a repeated action is skipped but still
// counts toward MaxAttempts. Any shortfall is topped up at random from the
// whole bank, so the result is short only when the bank itself is.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*Result, error) {
	count := req.Count
	if count <= 0 {
		count = DefaultCount
	}

	var forced adaptive.Action
	if req.Forced() {
		if err := adaptive.ValidateBucket(*req.ForcedChapter, *req.ForcedDifficulty, a.chapterCount); err != nil {
			return nil, err
		}
		forced = adaptive.EncodeAction(*req.ForcedChapter, *req.ForcedDifficulty)
	}

	state := adaptive.Encode(req.Summary, a.chapterCount)
	actionSize := adaptive.StateSize(a.chapterCount)

	res := &Result{}
	tried := make(map[adaptive.Action]bool)
	used := make(map[int]bool)

	for len(res.Questions) < count && res.Attempts < MaxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Attempts++

		action := forced
		if !req.Forced() {
			var err error
			action, err = a.policy.Act(state)
			if err != nil {
				return nil, fmt.Errorf("%w: act: %w", ErrSelection, err)
			}
			if err := adaptive.ValidateAction(action, actionSize); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrSelection, err)
			}
		}

		if tried[action] {
			continue
		}
		tried[action] = true

		chapter, d := adaptive.DecodeAction(action)
		candidates, err := a.bank.QuestionsInBucket(ctx, chapter, d)
		if err != nil {
			return nil, fmt.Errorf("%w: load %s: %w", ErrSelection, action, err)
		}
		a.shuffle(candidates)

		// One question per action keeps chapters and tiers mixed.
		if q, ok := lo.Find(candidates, func(q Question) bool { return !used[q.ID] }); ok {
			res.Questions = append(res.Questions, q)
			res.Actions = append(res.Actions, action)
			used[q.ID] = true
		}
	}

	if len(res.Questions) < count {
		all, err := a.bank.AllQuestions(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: load bank: %w", ErrSelection, err)
		}
		remaining := lo.Filter(all, func(q Question, _ int) bool { return !used[q.ID] })
		remaining = lo.UniqBy(remaining, func(q Question) int { return q.ID })
		a.shuffle(remaining)

		need := min(count-len(res.Questions), len(remaining))
		res.Questions = append(res.Questions, remaining[:need]...)
		res.Filled = need
	}

	return res, nil
}

func (a *Assembler) shuffle(qs []Question) {
	a.rng.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
}

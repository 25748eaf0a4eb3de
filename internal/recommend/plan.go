package recommend

import (
	"fmt"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/quiz"
	"github.com/abhisek/quizadapt/internal/store"
)

// Decision origins recorded on events.
const (
	OriginAdaptive = "adaptive"
	OriginSubmit   = "submit"
)

// Quiz metadata, matching what learners have always seen.
const (
	StarterDuration  = "10 mins"
	StarterRemarks   = "Auto-assigned default quiz"
	AdaptiveDuration = "15 mins"
	AdaptiveRemarks  = "Auto-generated"
)

// Plan describes a newly assembled quiz and why it was chosen. Reason names
// the bucket that drove the decision; a forced bucket supplies one question
// and Filled counts the rest drawn at random.
type Plan struct {
	Quiz       *store.Quiz         `json:"quiz"`
	Action     adaptive.Action     `json:"action"`
	Chapter    int                 `json:"selectedChapter"`
	Difficulty adaptive.Difficulty `json:"difficulty"`
	Reason     string              `json:"reason"`
	Forced     bool                `json:"forced"`
	Filled     int                 `json:"filled"`
}

func newPlan(qz *store.Quiz, action adaptive.Action, forced bool, res *quiz.Result) *Plan {
	if action < 0 {
		// No bucket contributed; every question came from the random top-up.
		return &Plan{Quiz: qz, Action: action, Reason: "Questions drawn at random", Filled: res.Filled}
	}
	ch, d := adaptive.DecodeAction(action)
	return &Plan{
		Quiz:       qz,
		Action:     action,
		Chapter:    ch,
		Difficulty: d,
		Reason:     fmt.Sprintf("Low scores in chapter %d (%s)", ch, d),
		Forced:     forced,
		Filled:     res.Filled,
	}
}

// Outcome is the result of submitting a quiz.
type Outcome struct {
	Attempt *store.Attempt `json:"attempt"`
	Grading quiz.Grading   `json:"-"`
	Next    *Plan          `json:"nextQuizPlan"`
}

// NextOptions narrows NextQuiz. Chapter and Difficulty only apply together.
type NextOptions struct {
	Chapter    *int
	Difficulty *adaptive.Difficulty
	Count      int
}

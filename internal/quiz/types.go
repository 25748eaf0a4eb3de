package quiz

import (
	"context"
	"strings"

	"github.com/abhisek/quizadapt/internal/adaptive"
)

// OptionLetters labels a question's options in display order.
var OptionLetters = [4]string{"A", "B", "C", "D"}

// Chapter is a unit of the syllabus. IDs start at 1.
type Chapter struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Question is a single multiple-choice item.
type Question struct {
	ID         int                 `json:"id"`
	ChapterID  int                 `json:"chapterId"`
	Difficulty adaptive.Difficulty `json:"difficulty"`
	Prompt     string              `json:"question"`
	Options    [4]string           `json:"options"`

	// Answer is either an option letter or the option text.
	Answer string `json:"answer,omitempty"`
}

// Bucket returns the question's chapter/difficulty cell as an action.
func (q Question) Bucket() adaptive.Action {
	return adaptive.EncodeAction(q.ChapterID, q.Difficulty)
}

// OptionText resolves a letter (A-D, any case) to its option text. Anything
// else is returned trimmed and unchanged.
func (q Question) OptionText(s string) string {
	s = strings.TrimSpace(s)
	for i, l := range OptionLetters {
		if strings.EqualFold(s, l) {
			return q.Options[i]
		}
	}
	return s
}

// IsCorrect reports whether given matches the answer. Either side may be a
// letter or the option text; comparison ignores case and surrounding space.
func (q Question) IsCorrect(given string) bool {
	if strings.TrimSpace(given) == "" {
		return false
	}
	return strings.EqualFold(q.OptionText(given), q.OptionText(q.Answer))
}

// Redacted returns a copy without the answer, for serving to learners.
func (q Question) Redacted() Question {
	q.Answer = ""
	return q
}

// Bank is read access to the question pool.
type Bank interface {
	// QuestionsInBucket returns every question in one chapter/difficulty cell.
	QuestionsInBucket(ctx context.Context, chapter int, d adaptive.Difficulty) ([]Question, error)

	// AllQuestions returns the whole pool.
	AllQuestions(ctx context.Context) ([]Question, error)
}

// Policy chooses the next chapter/difficulty action for a state vector.
type Policy interface {
	Act(state []float64) (adaptive.Action, error)
}

package quiz

import (
	"github.com/abhisek/quizadapt/internal/adaptive"
)

// Response is one graded answer.
type Response struct {
	QuestionID int                 `json:"questionId"`
	ChapterID  int                 `json:"chapterId"`
	Difficulty adaptive.Difficulty `json:"difficulty"`
	Given      string              `json:"given"`
	Correct    bool                `json:"correct"`
}

// Grading is the outcome of marking one quiz attempt.
type Grading struct {
	Correct  int
	Answered int

	// Score is Correct/Answered, 0 when nothing was answered.
	Score float64

	// Summary holds this attempt's counts per chapter and difficulty.
	Summary adaptive.PerformanceSummary

	Responses []Response
}

// Grade marks answers (question id -> option letter or text) against the quiz
// questions. Answers for questions outside the quiz are ignored, and
// unanswered questions do not count toward the totals.
func Grade(questions []Question, answers map[int]string) Grading {
	g := Grading{Summary: adaptive.PerformanceSummary{}}
	for _, q := range questions {
		given, ok := answers[q.ID]
		if !ok {
			continue
		}
		correct := q.IsCorrect(given)

		g.Answered++
		hit := 0
		if correct {
			g.Correct++
			hit = 1
		}
		g.Summary.Add(q.ChapterID, q.Difficulty, hit, 1)
		g.Responses = append(g.Responses, Response{
			QuestionID: q.ID,
			ChapterID:  q.ChapterID,
			Difficulty: q.Difficulty,
			Given:      given,
			Correct:    correct,
		})
	}
	if g.Answered > 0 {
		g.Score = float64(g.Correct) / float64(g.Answered)
	}
	return g
}

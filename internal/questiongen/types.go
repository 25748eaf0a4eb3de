// Package questiongen authors multiple-choice questions for thin
// chapter/difficulty buckets with an LLM.
package questiongen

import (
	"context"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/quiz"
)

// Input describes the bucket a question is wanted for.
type Input struct {
	Chapter    quiz.Chapter
	Difficulty adaptive.Difficulty

	// Existing holds the prompts already in the bucket. New questions must
	// not repeat them.
	Existing []string
}

// Generator produces one validated question per call.
type Generator interface {
	Generate(ctx context.Context, in Input) (*quiz.Question, error)
}

// Validator checks a candidate question.
type Validator interface {
	Name() string
	Validate(q *quiz.Question, in Input) *ValidationError
}

// ValidationError explains why a candidate was rejected.
type ValidationError struct {
	Validator string
	Message   string

	// Retryable is set when asking again is likely to produce a usable
	// question.
	Retryable bool
}

func (e *ValidationError) Error() string {
	return "validator " + e.Validator + ": " + e.Message
}

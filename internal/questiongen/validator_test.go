package questiongen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/quizadapt/internal/quiz"
)

func TestStructuralValidator(t *testing.T) {
	valid := quiz.Question{Prompt: "2 + 2 = ?", Options: [4]string{"3", "4", "5", "22"}, Answer: "B"}

	tests := []struct {
		name   string
		mutate func(q *quiz.Question)
		msg    string
	}{
		{"valid", func(*quiz.Question) {}, ""},
		{"answer as text", func(q *quiz.Question) { q.Answer = "4" }, ""},
		{"empty prompt", func(q *quiz.Question) { q.Prompt = "  " }, "question is empty"},
		{"long prompt", func(q *quiz.Question) { q.Prompt = strings.Repeat("x", MaxPromptLen+1) }, "exceeds"},
		{"empty option", func(q *quiz.Question) { q.Options[2] = "" }, "option C is empty"},
		{"long option", func(q *quiz.Question) { q.Options[0] = strings.Repeat("y", MaxOptionLen+1) }, "option A exceeds"},
		{"case-insensitive duplicate", func(q *quiz.Question) { q.Options = [4]string{"x", "y", "X", "z"}; q.Answer = "A" }, "options A and C"},
		{"answer not an option", func(q *quiz.Question) { q.Answer = "E" }, "not one of the options"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid
			tt.mutate(&q)
			verr := StructuralValidator{}.Validate(&q, Input{})
			if tt.msg == "" {
				assert.Nil(t, verr)
				return
			}
			if assert.NotNil(t, verr) {
				assert.Contains(t, verr.Message, tt.msg)
			}
		})
	}
}

func TestDuplicateValidatorNormalises(t *testing.T) {
	q := &quiz.Question{Prompt: "Solve: x^2 = 9"}
	in := Input{Existing: []string{"SOLVE x 2 9", "Something else"}}
	assert.NotNil(t, DuplicateValidator{}.Validate(q, in))

	in.Existing = []string{"Solve x^2 = 16"}
	assert.Nil(t, DuplicateValidator{}.Validate(q, in))
}

func TestUserMessageKeepsMostRecentExisting(t *testing.T) {
	in := Input{Chapter: probability, Existing: []string{"old", "mid", "new"}}
	msg := userMessage(in, 2)
	assert.NotContains(t, msg, "old")
	assert.Contains(t, msg, "1. mid\n2. new")

	assert.Contains(t, userMessage(Input{Chapter: probability}, 2), "Already in the bank:\nNone")
}

package questiongen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/abhisek/quizadapt/internal/quiz"
)

// Length limits for generated text.
const (
	MaxPromptLen = 400
	MaxOptionLen = 120
)

// StructuralValidator checks lengths, four distinct options and that the
// answer names one of them.
type StructuralValidator struct{}

func (StructuralValidator) Name() string { return "structural" }

func (v StructuralValidator) Validate(q *quiz.Question, _ Input) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...), Retryable: true}
	}

	prompt := strings.TrimSpace(q.Prompt)
	switch {
	case prompt == "":
		return fail("question is empty")
	case len(prompt) > MaxPromptLen:
		return fail("question exceeds %d characters", MaxPromptLen)
	}

	seen := make(map[string]int, len(q.Options))
	for i, opt := range q.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return fail("option %s is empty", quiz.OptionLetters[i])
		}
		if len(opt) > MaxOptionLen {
			return fail("option %s exceeds %d characters", quiz.OptionLetters[i], MaxOptionLen)
		}
		key := strings.ToLower(opt)
		if j, dup := seen[key]; dup {
			return fail("options %s and %s are the same", quiz.OptionLetters[j], quiz.OptionLetters[i])
		}
		seen[key] = i
	}

	if !answerIsOption(q) {
		return fail("answer %q is not one of the options", q.Answer)
	}
	return nil
}

func answerIsOption(q *quiz.Question) bool {
	a := strings.TrimSpace(q.Answer)
	for i, opt := range q.Options {
		if strings.EqualFold(a, quiz.OptionLetters[i]) || strings.EqualFold(a, strings.TrimSpace(opt)) {
			return true
		}
	}
	return false
}

// DuplicateValidator rejects a prompt that matches an existing one after
// normalising case, punctuation and whitespace.
type DuplicateValidator struct{}

func (DuplicateValidator) Name() string { return "duplicate" }

func (v DuplicateValidator) Validate(q *quiz.Question, in Input) *ValidationError {
	key := normalise(q.Prompt)
	for _, p := range in.Existing {
		if normalise(p) == key {
			return &ValidationError{Validator: v.Name(), Message: "question already in the bank", Retryable: true}
		}
	}
	return nil
}

func normalise(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}

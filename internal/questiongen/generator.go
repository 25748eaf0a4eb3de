package questiongen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/quizadapt/internal/llm"
	"github.com/abhisek/quizadapt/internal/quiz"
)

// Config tunes LLMGenerator.
type Config struct {
	// Validators run in order; the first failure rejects the question.
	Validators []Validator

	MaxTokens   int
	Temperature float64

	// MaxExisting caps how many existing prompts are quoted in the request.
	MaxExisting int
}

// DefaultConfig runs the structural and duplicate checks.
func DefaultConfig() Config {
	return Config{
		Validators:  []Validator{StructuralValidator{}, DuplicateValidator{}},
		MaxTokens:   400,
		Temperature: 0.8,
		MaxExisting: 15,
	}
}

// LLMGenerator asks an llm.Provider for questions.
type LLMGenerator struct {
	provider llm.Provider
	cfg      Config
}

var _ Generator = (*LLMGenerator)(nil)

func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, cfg: cfg}
}

type output struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Generate requests one question for in's bucket and validates it. The
// returned question has no ID.
func (g *LLMGenerator) Generate(ctx context.Context, in Input) (*quiz.Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMessage(in, g.cfg.MaxExisting)}},
		Schema:      QuestionSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate question: %w", err)
	}

	var out output
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("decode question: %w", err)
	}
	if len(out.Options) != len(quiz.OptionLetters) {
		return nil, &ValidationError{
			Validator: "structural",
			Message:   fmt.Sprintf("got %d options, want %d", len(out.Options), len(quiz.OptionLetters)),
			Retryable: true,
		}
	}

	q := &quiz.Question{
		ChapterID:  in.Chapter.ID,
		Difficulty: in.Difficulty,
		Prompt:     strings.TrimSpace(out.Question),
		Answer:     strings.ToUpper(strings.TrimSpace(out.Answer)),
	}
	for i, o := range out.Options {
		q.Options[i] = strings.TrimSpace(o)
	}

	for _, v := range g.cfg.Validators {
		if verr := v.Validate(q, in); verr != nil {
			return nil, verr
		}
	}
	return q, nil
}

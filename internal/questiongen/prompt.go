package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizadapt/internal/adaptive"
)

const systemPrompt = `You write multiple-choice questions for a secondary-school mathematics quiz.

Rules:
- Write exactly one question for the given chapter and difficulty.
- Give exactly four options. Exactly one is correct; the other three are plausible mistakes.
- Options must be distinct and short. Do not use "all of the above" or "none of the above".
- Answer with the letter (A, B, C or D) of the correct option.
- Plain ASCII text only. No LaTeX or markdown. Write powers as x^2 and roots as sqrt(x).
- Do not repeat or paraphrase any question from the "already in the bank" list.`

var difficultyGuide = map[adaptive.Difficulty]string{
	adaptive.Easy:   "recall of a definition, formula or single-step computation",
	adaptive.Medium: "two or three steps applying one concept",
	adaptive.Hard:   "multi-step reasoning or a word problem combining concepts",
}

// userMessage renders the bucket description plus up to maxExisting of the
// most recent existing prompts.
func userMessage(in Input, maxExisting int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Chapter: %s\n", in.Chapter.Name)
	if in.Chapter.Description != "" {
		fmt.Fprintf(&b, "Covers: %s\n", in.Chapter.Description)
	}
	fmt.Fprintf(&b, "Difficulty: %s (%s)\n", in.Difficulty, difficultyGuide[in.Difficulty])

	b.WriteString("\nAlready in the bank:\n")
	existing := in.Existing
	if maxExisting > 0 && len(existing) > maxExisting {
		existing = existing[len(existing)-maxExisting:]
	}
	if len(existing) == 0 {
		b.WriteString("None")
	}
	for i, p := range existing {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, p)
	}
	return b.String()
}

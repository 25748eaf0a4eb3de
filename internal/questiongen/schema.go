package questiongen

import "github.com/abhisek/quizadapt/internal/llm"

// QuestionSchema is the structured output requested from the model.
var QuestionSchema = &llm.Schema{
	Name:        "mcq-question",
	Description: "One multiple-choice question with four options",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question text, self-contained, plain text",
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"minItems":    4,
				"maxItems":    4,
				"description": "Exactly four distinct answer options",
			},
			"answer": map[string]any{
				"type":        "string",
				"enum":        []any{"A", "B", "C", "D"},
				"description": "Letter of the correct option",
			},
		},
		"required":             []any{"question", "options", "answer"},
		"additionalProperties": false,
	},
}

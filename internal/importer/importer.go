// Package importer loads question banks from JSON documents.
package importer

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/quiz"
)

//go:embed bank.schema.json
var bankSchema []byte

const schemaURL = "schema://question-bank.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var doc any
		if err := json.Unmarshal(bankSchema, &doc); err != nil {
			compileErr = fmt.Errorf("parse bank schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add bank schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// DefaultChapters are the six chapters the bank is organised around.
var DefaultChapters = []quiz.Chapter{
	{ID: 1, Name: "Statistics", Description: "Statistics deals with collecting, analyzing, interpreting, and presenting data to support decision making and understanding patterns."},
	{ID: 2, Name: "Introduction to Trigonometry", Description: "Trigonometry is the branch of mathematics that studies relationships between side lengths and angles of triangles."},
	{ID: 3, Name: "Applications of Trigonometry", Description: "Applications of Trigonometry help in calculating heights and distances in real-life problems involving angles of elevation and depression."},
	{ID: 4, Name: "Probability", Description: "Probability is the study of the likelihood of the occurrence of an event, expressed as a number between 0 and 1."},
	{ID: 5, Name: "Quadratic Equations", Description: "Quadratic Equations are equations in the form ax² + bx + c = 0, where a, b, and c are constants and a ≠ 0."},
	{ID: 6, Name: "Real Numbers", Description: "Real Numbers are all the numbers that can be found on the number line including both rational and irrational numbers."},
}

// Row is one question as it appears in an import document.
type Row struct {
	Chapter    string `json:"chapter"`
	Difficulty string `json:"difficulty"`
	Question   string `json:"question"`
	OptionA    string `json:"option_a"`
	OptionB    string `json:"option_b"`
	OptionC    string `json:"option_c"`
	OptionD    string `json:"option_d"`
	Answer     string `json:"answer"`
}

// Document is a full import file.
type Document struct {
	Chapters  []quiz.Chapter `json:"chapters,omitempty"`
	Questions []Row          `json:"questions"`
}

// Target is where imported chapters and questions go.
type Target interface {
	UpsertChapter(ctx context.Context, ch quiz.Chapter) error
	Chapters(ctx context.Context) ([]quiz.Chapter, error)
	AddQuestions(ctx context.Context, qs []quiz.Question, source string) error
}

// Skip explains why a row was not imported. Row is 1-based.
type Skip struct {
	Row    int
	Reason string
}

// Result summarises an import.
type Result struct {
	Chapters int
	Imported int
	Skipped  []Skip
}

// Parse reads and validates an import document.
func Parse(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	sch, err := schema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(parsed); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// SeedChapters upserts DefaultChapters.
func SeedChapters(ctx context.Context, t Target) error {
	for _, ch := range DefaultChapters {
		if err := t.UpsertChapter(ctx, ch); err != nil {
			return err
		}
	}
	return nil
}

// Import upserts the document's chapters and inserts every row whose chapter
// exists (matched by name, case-insensitively) and whose answer is one of its
// options. Other rows are reported in Result.Skipped.
func Import(ctx context.Context, t Target, doc *Document, source string) (*Result, error) {
	res := &Result{}
	for _, ch := range doc.Chapters {
		if err := t.UpsertChapter(ctx, ch); err != nil {
			return nil, err
		}
		res.Chapters++
	}

	chapters, err := t.Chapters(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int, len(chapters))
	for _, ch := range chapters {
		byName[strings.ToLower(strings.TrimSpace(ch.Name))] = ch.ID
	}

	var qs []quiz.Question
	for i, row := range doc.Questions {
		q, reason := toQuestion(row, byName)
		if reason != "" {
			res.Skipped = append(res.Skipped, Skip{Row: i + 1, Reason: reason})
			continue
		}
		qs = append(qs, q)
	}

	if len(qs) > 0 {
		if err := t.AddQuestions(ctx, qs, source); err != nil {
			return nil, err
		}
	}
	res.Imported = len(qs)
	return res, nil
}

func toQuestion(row Row, chapters map[string]int) (quiz.Question, string) {
	chapterID, ok := chapters[strings.ToLower(strings.TrimSpace(row.Chapter))]
	if !ok {
		return quiz.Question{}, fmt.Sprintf("chapter not found: %s", strings.TrimSpace(row.Chapter))
	}
	d, err := adaptive.ParseDifficulty(row.Difficulty)
	if err != nil {
		return quiz.Question{}, err.Error()
	}

	q := quiz.Question{
		ChapterID:  chapterID,
		Difficulty: d,
		Prompt:     strings.TrimSpace(row.Question),
		Options: [4]string{
			strings.TrimSpace(row.OptionA),
			strings.TrimSpace(row.OptionB),
			strings.TrimSpace(row.OptionC),
			strings.TrimSpace(row.OptionD),
		},
		Answer: strings.TrimSpace(row.Answer),
	}
	if !answerIsOption(q) {
		return quiz.Question{}, fmt.Sprintf("answer %q is not one of the options", q.Answer)
	}
	return q, ""
}

func answerIsOption(q quiz.Question) bool {
	for i := range q.Options {
		if q.IsCorrect(quiz.OptionLetters[i]) {
			return true
		}
	}
	return false
}

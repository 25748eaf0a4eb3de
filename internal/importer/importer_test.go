package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/quiz"
)

type memTarget struct {
	chapters  map[int]quiz.Chapter
	questions []quiz.Question
	sources   []string
}

func newMemTarget() *memTarget {
	return &memTarget{chapters: map[int]quiz.Chapter{}}
}

func (m *memTarget) UpsertChapter(_ context.Context, ch quiz.Chapter) error {
	m.chapters[ch.ID] = ch
	return nil
}

func (m *memTarget) Chapters(context.Context) ([]quiz.Chapter, error) {
	var out []quiz.Chapter
	for _, ch := range m.chapters {
		out = append(out, ch)
	}
	return out, nil
}

func (m *memTarget) AddQuestions(_ context.Context, qs []quiz.Question, source string) error {
	m.questions = append(m.questions, qs...)
	m.sources = append(m.sources, source)
	return nil
}

const validDoc = `{
  "chapters": [{"id": 7, "name": "Coordinate Geometry"}],
  "questions": [
    {"chapter": "Statistics", "difficulty": "Easy", "question": "Mode of 1,2,2,3?",
     "option_a": "1", "option_b": "2", "option_c": "3", "option_d": "2.5", "answer": "B"},
    {"chapter": " probability ", "difficulty": "hard", "question": "P(two heads)?",
     "option_a": "1/2", "option_b": "1/3", "option_c": "1/4", "option_d": "1/8", "answer": "1/4"},
    {"chapter": "Astronomy", "difficulty": "medium", "question": "?",
     "option_a": "a", "option_b": "b", "option_c": "c", "option_d": "d", "answer": "A"},
    {"chapter": "Coordinate Geometry", "difficulty": "medium", "question": "Distance (0,0)-(3,4)?",
     "option_a": "5", "option_b": "7", "option_c": "25", "option_d": "1", "answer": "six"}
  ]
}`

func TestParseAndImport(t *testing.T) {
	doc, err := Parse(strings.NewReader(validDoc))
	require.NoError(t, err)
	require.Len(t, doc.Questions, 4)

	target := newMemTarget()
	require.NoError(t, SeedChapters(context.Background(), target))
	res, err := Import(context.Background(), target, doc, "import")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Chapters)
	assert.Equal(t, 2, res.Imported)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, 3, res.Skipped[0].Row)
	assert.Contains(t, res.Skipped[0].Reason, "chapter not found: Astronomy")
	assert.Equal(t, 4, res.Skipped[1].Row)
	assert.Contains(t, res.Skipped[1].Reason, "not one of the options")

	require.Len(t, target.questions, 2)
	assert.Equal(t, 1, target.questions[0].ChapterID)
	assert.Equal(t, adaptive.Easy, target.questions[0].Difficulty)
	assert.Equal(t, 4, target.questions[1].ChapterID)
	assert.Equal(t, adaptive.Hard, target.questions[1].Difficulty)
	assert.Equal(t, []string{"import"}, target.sources)
}

func TestParse_SchemaRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"questions": [`},
		{"missing questions", `{"chapters": []}`},
		{"bad difficulty", `{"questions": [{"chapter": "Statistics", "difficulty": "expert", "question": "q",
			"option_a": "a", "option_b": "b", "option_c": "c", "option_d": "d", "answer": "A"}]}`},
		{"missing option", `{"questions": [{"chapter": "Statistics", "difficulty": "easy", "question": "q",
			"option_a": "a", "option_b": "b", "option_c": "c", "answer": "A"}]}`},
		{"unknown field", `{"questions": [], "extra": true}`},
		{"bad chapter id", `{"chapters": [{"id": 0, "name": "x"}], "questions": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestDefaultChaptersMatchAgent(t *testing.T) {
	assert.Len(t, DefaultChapters, adaptive.DefaultChapterCount)
	for i, ch := range DefaultChapters {
		assert.Equal(t, i+1, ch.ID)
	}
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/samber/lo"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/quiz"
)

// Question sources.
const (
	SourceImport    = "import"
	SourceGenerated = "llm"
)

// QuestionRepo manages chapters and the question bank. It implements
// quiz.Bank.
type QuestionRepo struct {
	db *sql.DB
}

var _ quiz.Bank = (*QuestionRepo)(nil)

var questionColumns = []string{
	"id", "chapter_id", "difficulty", "question",
	"option_a", "option_b", "option_c", "option_d", "answer",
}

func scanQuestion(row interface{ Scan(...any) error }) (quiz.Question, error) {
	var (
		q quiz.Question
		d string
	)
	err := row.Scan(&q.ID, &q.ChapterID, &d, &q.Prompt,
		&q.Options[0], &q.Options[1], &q.Options[2], &q.Options[3], &q.Answer)
	q.Difficulty = adaptive.Difficulty(d)
	return q, err
}

func (r *QuestionRepo) queryQuestions(ctx context.Context, where *entsql.Predicate) ([]quiz.Question, error) {
	sel := builder().Select(questionColumns...).From(entsql.Table("questions"))
	if where != nil {
		sel = sel.Where(where)
	}
	query, args := sel.OrderBy("id").Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []quiz.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// UpsertChapter inserts a chapter or updates its name and description.
func (r *QuestionRepo) UpsertChapter(ctx context.Context, ch quiz.Chapter) error {
	query, args := builder().Insert("chapters").
		Columns("id", "name", "description").
		Values(ch.ID, ch.Name, ch.Description).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert chapter %d: %w", ch.ID, err)
	}
	return nil
}

// Chapters returns every chapter ordered by id.
func (r *QuestionRepo) Chapters(ctx context.Context) ([]quiz.Chapter, error) {
	query, args := builder().Select("id", "name", "description").
		From(entsql.Table("chapters")).
		OrderBy("id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chapters: %w", err)
	}
	defer rows.Close()

	var out []quiz.Chapter
	for rows.Next() {
		var c quiz.Chapter
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddQuestions inserts questions in one transaction, setting their ids.
func (r *QuestionRepo) AddQuestions(ctx context.Context, qs []quiz.Question, source string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for i := range qs {
			q := &qs[i]
			query, args := builder().Insert("questions").
				Columns("chapter_id", "difficulty", "question",
					"option_a", "option_b", "option_c", "option_d", "answer", "source").
				Values(q.ChapterID, string(q.Difficulty), q.Prompt,
					q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.Answer, source).
				Query()
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("insert question %d: %w", i, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("question id: %w", err)
			}
			q.ID = int(id)
		}
		return nil
	})
}

// Get returns one question, or ErrNotFound.
func (r *QuestionRepo) Get(ctx context.Context, id int) (*quiz.Question, error) {
	query, args := builder().Select(questionColumns...).
		From(entsql.Table("questions")).
		Where(entsql.EQ("id", id)).
		Query()
	q, err := scanQuestion(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("question %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query question: %w", err)
	}
	return &q, nil
}

// ByIDs returns the questions with the given ids in the order given. Unknown
// ids are dropped.
func (r *QuestionRepo) ByIDs(ctx context.Context, ids []int) ([]quiz.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := r.queryQuestions(ctx, entsql.In("id", lo.ToAnySlice(ids)...))
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(found, func(q quiz.Question) int { return q.ID })
	return lo.FilterMap(ids, func(id int, _ int) (quiz.Question, bool) {
		q, ok := byID[id]
		return q, ok
	}), nil
}

// QuestionsInBucket implements quiz.Bank.
func (r *QuestionRepo) QuestionsInBucket(ctx context.Context, chapter int, d adaptive.Difficulty) ([]quiz.Question, error) {
	return r.queryQuestions(ctx, entsql.And(
		entsql.EQ("chapter_id", chapter),
		entsql.EQ("difficulty", string(d)),
	))
}

// AllQuestions implements quiz.Bank.
func (r *QuestionRepo) AllQuestions(ctx context.Context) ([]quiz.Question, error) {
	return r.queryQuestions(ctx, nil)
}

// BucketCounts returns the number of questions in each chapter/difficulty
// cell that has any.
func (r *QuestionRepo) BucketCounts(ctx context.Context) (map[adaptive.Action]int, error) {
	query, args := builder().Select("chapter_id", "difficulty", entsql.Count("*")).
		From(entsql.Table("questions")).
		GroupBy("chapter_id", "difficulty").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	defer rows.Close()

	counts := make(map[adaptive.Action]int)
	for rows.Next() {
		var (
			ch, n int
			d     string
		)
		if err := rows.Scan(&ch, &d, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		diff := adaptive.Difficulty(d)
		if !diff.Valid() || ch < 1 {
			continue
		}
		counts[adaptive.EncodeAction(ch, diff)] = n
	}
	return counts, rows.Err()
}

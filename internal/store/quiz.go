package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/samber/lo"
)

// quizRepo implements QuizRepo.
type quizRepo struct {
	db *sql.DB
}

var quizColumns = []string{"id", "user_id", "duration", "remarks", "created_at"}

func scanQuiz(row interface{ Scan(...any) error }) (*Quiz, error) {
	var q Quiz
	if err := row.Scan(&q.ID, &q.UserID, &q.Duration, &q.Remarks, &q.CreatedAt); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *quizRepo) Create(ctx context.Context, q *Quiz) error {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query, args := builder().Insert("quizzes").
			Columns("user_id", "duration", "remarks", "created_at").
			Values(q.UserID, q.Duration, q.Remarks, q.CreatedAt).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("quiz id: %w", err)
		}
		q.ID = int(id)

		if len(q.QuestionIDs) == 0 {
			return nil
		}
		ins := builder().Insert("quiz_questions").Columns("quiz_id", "question_id", "position")
		for i, qid := range q.QuestionIDs {
			ins = ins.Values(q.ID, qid, i)
		}
		query, args = ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("link quiz questions: %w", err)
		}
		return nil
	})
}

func (r *quizRepo) Get(ctx context.Context, id int) (*Quiz, error) {
	query, args := builder().Select(quizColumns...).
		From(entsql.Table("quizzes")).
		Where(entsql.EQ("id", id)).
		Query()
	q, err := scanQuiz(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quiz %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query quiz: %w", err)
	}

	links, err := r.questionIDs(ctx, []int{id})
	if err != nil {
		return nil, err
	}
	q.QuestionIDs = links[id]
	return q, nil
}

func (r *quizRepo) ListByUser(ctx context.Context, userID int) ([]Quiz, error) {
	query, args := builder().Select(quizColumns...).
		From(entsql.Table("quizzes")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("id")).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quizzes: %w", err)
	}

	var quizzes []Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, *q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(quizzes) == 0 {
		return nil, nil
	}

	links, err := r.questionIDs(ctx, lo.Map(quizzes, func(q Quiz, _ int) int { return q.ID }))
	if err != nil {
		return nil, err
	}
	for i := range quizzes {
		quizzes[i].QuestionIDs = links[quizzes[i].ID]
	}
	return quizzes, nil
}

// questionIDs returns quiz id -> ordered question ids.
func (r *quizRepo) questionIDs(ctx context.Context, quizIDs []int) (map[int][]int, error) {
	query, args := builder().Select("quiz_id", "question_id").
		From(entsql.Table("quiz_questions")).
		Where(entsql.In("quiz_id", lo.ToAnySlice(quizIDs)...)).
		OrderBy("quiz_id", "position").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quiz questions: %w", err)
	}
	defer rows.Close()

	out := make(map[int][]int, len(quizIDs))
	for rows.Next() {
		var quizID, questionID int
		if err := rows.Scan(&quizID, &questionID); err != nil {
			return nil, fmt.Errorf("scan quiz question: %w", err)
		}
		out[quizID] = append(out[quizID], questionID)
	}
	return out, rows.Err()
}

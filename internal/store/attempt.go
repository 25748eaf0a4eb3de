package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/quiz"
)

// attemptRepo implements AttemptRepo.
type attemptRepo struct {
	db *sql.DB
}

func (r *attemptRepo) Record(ctx context.Context, userID, quizID int, g quiz.Grading) (*Attempt, error) {
	a := &Attempt{
		UserID:    userID,
		QuizID:    quizID,
		Score:     g.Score,
		Correct:   g.Correct,
		Answered:  g.Answered,
		CreatedAt: time.Now().UTC(),
	}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query, args := builder().Insert("attempts").
			Columns("user_id", "quiz_id", "score", "correct", "answered", "created_at").
			Values(a.UserID, a.QuizID, a.Score, a.Correct, a.Answered, a.CreatedAt).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("attempt id: %w", err)
		}
		a.ID = int(id)

		if len(g.Responses) > 0 {
			ins := builder().Insert("responses").
				Columns("attempt_id", "question_id", "chapter_id", "difficulty", "given", "correct")
			for _, resp := range g.Responses {
				ins = ins.Values(a.ID, resp.QuestionID, resp.ChapterID, string(resp.Difficulty), resp.Given, resp.Correct)
			}
			query, args = ins.Query()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert responses: %w", err)
			}
		}

		rows := 0
		ins := builder().Insert("performance").
			Columns("user_id", "quiz_id", "attempt_id", "chapter_id", "difficulty", "correct", "total")
		for ch, byDiff := range g.Summary {
			for d, b := range byDiff {
				if b.Total == 0 {
					continue
				}
				ins = ins.Values(userID, quizID, a.ID, ch, string(d), b.Correct, b.Total)
				rows++
			}
		}
		if rows == 0 {
			return nil
		}
		query, args = ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert performance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *attemptRepo) ListByUser(ctx context.Context, userID int) ([]Attempt, error) {
	query, args := builder().
		Select("id", "user_id", "quiz_id", "score", "correct", "answered", "created_at").
		From(entsql.Table("attempts")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("id")).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuizID, &a.Score, &a.Correct, &a.Answered, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *attemptRepo) Responses(ctx context.Context, attemptID int) ([]quiz.Response, error) {
	query, args := builder().
		Select("question_id", "chapter_id", "difficulty", "given", "correct").
		From(entsql.Table("responses")).
		Where(entsql.EQ("attempt_id", attemptID)).
		OrderBy("id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	var out []quiz.Response
	for rows.Next() {
		var (
			resp quiz.Response
			d    string
		)
		if err := rows.Scan(&resp.QuestionID, &resp.ChapterID, &d, &resp.Given, &resp.Correct); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		resp.Difficulty = adaptive.Difficulty(d)
		out = append(out, resp)
	}
	return out, rows.Err()
}

func (r *attemptRepo) Summary(ctx context.Context, userID int) (adaptive.PerformanceSummary, error) {
	query, args := builder().
		Select("chapter_id", "difficulty", entsql.Sum("correct"), entsql.Sum("total")).
		From(entsql.Table("performance")).
		Where(entsql.EQ("user_id", userID)).
		GroupBy("chapter_id", "difficulty").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query performance: %w", err)
	}
	defer rows.Close()

	summary := adaptive.PerformanceSummary{}
	for rows.Next() {
		var (
			ch, correct, total int
			d                  string
		)
		if err := rows.Scan(&ch, &d, &correct, &total); err != nil {
			return nil, fmt.Errorf("scan performance: %w", err)
		}
		summary.Add(ch, adaptive.Difficulty(d), correct, total)
	}
	return summary, rows.Err()
}

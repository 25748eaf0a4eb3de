package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/quizadapt/internal/adaptive"
)

// eventRepo implements EventRepo backed by the global sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendDecision(ctx context.Context, data DecisionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	chapter, d := adaptive.DecodeAction(data.Action)
	query, args := builder().Insert("decision_events").
		Columns("sequence", "timestamp", "user_id", "quiz_id", "action", "chapter_id",
			"difficulty", "epsilon", "forced", "origin", "question_count", "filled").
		Values(seqNum, time.Now().UTC(), data.UserID, data.QuizID, int(data.Action), chapter,
			string(d), data.Epsilon, data.Forced, data.Origin, data.QuestionCount, data.Filled).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save decision event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert("llm_events").
		Columns("sequence", "timestamp", "provider", "model", "purpose",
			"input_tokens", "output_tokens", "latency_ms", "success", "error_message",
			"request_body", "response_body").
		Values(seqNum, time.Now().UTC(), data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage,
			data.RequestBody, data.ResponseBody).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) Decisions(ctx context.Context, userID int, opts QueryOpts) ([]DecisionEvent, error) {
	preds := []*entsql.Predicate{entsql.EQ("user_id", userID)}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To))
	}

	sel := builder().
		Select("sequence", "timestamp", "user_id", "quiz_id", "action", "epsilon",
			"forced", "origin", "question_count", "filled").
		From(entsql.Table("decision_events")).
		Where(entsql.And(preds...)).
		OrderBy("sequence")
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query decision events: %w", err)
	}
	defer rows.Close()

	var out []DecisionEvent
	for rows.Next() {
		var (
			e      DecisionEvent
			action int
		)
		err := rows.Scan(&e.Sequence, &e.Timestamp, &e.UserID, &e.QuizID, &action, &e.Epsilon,
			&e.Forced, &e.Origin, &e.QuestionCount, &e.Filled)
		if err != nil {
			return nil, fmt.Errorf("scan decision event: %w", err)
		}
		e.Action = adaptive.Action(action)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) LLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To))
	}

	sel := builder().
		Select("id", "sequence", "timestamp", "provider", "model", "purpose",
			"input_tokens", "output_tokens", "latency_ms", "success", "error_message").
		From(entsql.Table("llm_events")).
		OrderBy(entsql.Desc("sequence"))
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	defer rows.Close()

	var out []LLMEvent
	for rows.Next() {
		var e LLMEvent
		err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose,
			&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage)
		if err != nil {
			return nil, fmt.Errorf("scan llm event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) LLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	query, args := builder().
		Select("id", "sequence", "timestamp", "provider", "model", "purpose",
			"input_tokens", "output_tokens", "latency_ms", "success", "error_message",
			"request_body", "response_body").
		From(entsql.Table("llm_events")).
		Where(entsql.EQ("id", id)).
		Query()

	var e LLMEvent
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&e.ID, &e.Sequence, &e.Timestamp,
		&e.Provider, &e.Model, &e.Purpose, &e.InputTokens, &e.OutputTokens, &e.LatencyMs,
		&e.Success, &e.ErrorMessage, &e.RequestBody, &e.ResponseBody)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("llm event %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get llm event: %w", err)
	}
	return &e, nil
}

func (r *eventRepo) LLMUsage(ctx context.Context) ([]LLMUsage, error) {
	query, args := builder().
		Select("purpose", "model", "success", entsql.Count("*"), entsql.Sum("input_tokens"), entsql.Sum("output_tokens")).
		From(entsql.Table("llm_events")).
		GroupBy("purpose", "model", "success").
		OrderBy("purpose", "model").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query llm usage: %w", err)
	}
	defer rows.Close()

	var out []LLMUsage
	index := make(map[[2]string]int)
	for rows.Next() {
		var (
			purpose, model   string
			success          bool
			n, tokIn, tokOut int
		)
		if err := rows.Scan(&purpose, &model, &success, &n, &tokIn, &tokOut); err != nil {
			return nil, fmt.Errorf("scan llm usage: %w", err)
		}
		key := [2]string{purpose, model}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, LLMUsage{Purpose: purpose, Model: model})
		}
		out[i].Requests += n
		out[i].InputTokens += tokIn
		out[i].OutputTokens += tokOut
		if !success {
			out[i].Failures += n
		}
	}
	return out, rows.Err()
}

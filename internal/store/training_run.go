package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// TrainingRun records one offline training session of the shared policy.
type TrainingRun struct {
	ID          int
	RunID       string
	Timestamp   time.Time
	WeightsPath string
	Report      json.RawMessage
}

// TrainingRunRepo keeps a bounded history of training runs.
type TrainingRunRepo interface {
	// Save stores a new run.
	Save(ctx context.Context, run *TrainingRun) error

	// Latest returns the most recent run, or nil if none exist.
	Latest(ctx context.Context) (*TrainingRun, error)

	// Prune deletes all but the N most recent runs.
	Prune(ctx context.Context, keep int) error
}

// trainingRunRepo implements TrainingRunRepo.
type trainingRunRepo struct {
	db *sql.DB
}

func (r *trainingRunRepo) Save(ctx context.Context, run *TrainingRun) error {
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}
	report := run.Report
	if len(report) == 0 {
		report = json.RawMessage("{}")
	}

	query, args := builder().Insert("training_runs").
		Columns("run_id", "timestamp", "weights_path", "report").
		Values(run.RunID, run.Timestamp, run.WeightsPath, string(report)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save training run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("training run id: %w", err)
	}
	run.ID = int(id)
	return nil
}

func (r *trainingRunRepo) Latest(ctx context.Context) (*TrainingRun, error) {
	query, args := builder().Select("id", "run_id", "timestamp", "weights_path", "report").
		From(entsql.Table("training_runs")).
		OrderBy(entsql.Desc("timestamp"), entsql.Desc("id")).
		Limit(1).
		Query()

	var (
		run    TrainingRun
		report string
	)
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&run.ID, &run.RunID, &run.Timestamp, &run.WeightsPath, &report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest training run: %w", err)
	}
	run.Report = json.RawMessage(report)
	return &run, nil
}

func (r *trainingRunRepo) Prune(ctx context.Context, keep int) error {
	// Find the threshold: the newest run beyond the ones kept.
	query, args := builder().Select("id").
		From(entsql.Table("training_runs")).
		OrderBy(entsql.Desc("timestamp"), entsql.Desc("id")).
		Limit(1).
		Offset(keep).
		Query()
	var threshold int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // fewer than keep runs exist
	}
	if err != nil {
		return fmt.Errorf("query training runs for prune: %w", err)
	}

	query, args = builder().Delete("training_runs").
		Where(entsql.LTE("id", threshold)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune training runs: %w", err)
	}
	return nil
}

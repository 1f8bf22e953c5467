package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// RunStatus is the lifecycle state of a recorded run.
type RunStatus string

const (
	RunStarted   RunStatus = "started"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunRecord is one row of the run ledger.
type RunRecord struct {
	Seq     int64     `json:"seq"`
	ID      string    `json:"id"`
	Status  RunStatus `json:"status"`
	Items   int       `json:"items"`
	Written int       `json:"written"`
	Error   string    `json:"error,omitempty"`
	Touched bool      `json:"touched,omitempty"`
}

// BeginRun records a run as started.
func (s *Store) BeginRun(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, status) VALUES (?, ?)
	`, id, RunStarted)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun records the outcome of a run started with BeginRun.
func (s *Store) FinishRun(ctx context.Context, rec RunRecord) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, items = ?, written = ?, error = ? WHERE id = ?
	`, rec.Status, rec.Items, rec.Written, rec.Error, rec.ID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: unknown run %q", rec.ID)
	}
	return nil
}

// MarkTouched records that the run has begun rewriting persisted state.
func (s *Store) MarkTouched(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET touched = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark run touched: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark run touched: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mark run touched: unknown run %q", id)
	}
	return nil
}

// LastStatefulRun returns the newest run that either succeeded or
// touched persisted state. Runs that failed before touching state are
// skipped: they leave the previous baseline intact.
func (s *Store) LastStatefulRun(ctx context.Context) (RunRecord, bool, error) {
	var r RunRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT seq, id, status, items, written, error, touched
		FROM runs
		WHERE status = ? OR touched = 1
		ORDER BY seq DESC
		LIMIT 1
	`, RunSucceeded).Scan(&r.Seq, &r.ID, &r.Status, &r.Items, &r.Written, &r.Error, &r.Touched)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, false, nil
	}
	if err != nil {
		return RunRecord{}, false, fmt.Errorf("query last stateful run: %w", err)
	}
	return r, true, nil
}

// Runs returns up to limit runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, status, items, written, error, touched
		FROM runs
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.Seq, &r.ID, &r.Status, &r.Items, &r.Written, &r.Error, &r.Touched); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

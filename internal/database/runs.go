package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lawnchairsociety/killrate/internal/results"
	"github.com/lawnchairsociety/killrate/internal/stats"
)

// Run is one recompute batch.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Seed       int64
	Targets    int
	Failed     int
	Cancelled  bool
}

// SaveRun stores run and every result of set in one transaction.
func (d *Database) SaveRun(run Run, set results.Set) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var finished sql.NullTime
	if !run.FinishedAt.IsZero() {
		finished = sql.NullTime{Time: run.FinishedAt.UTC(), Valid: true}
	}
	_, err = tx.Exec(d.bind(`
		INSERT INTO runs (id, started_at, finished_at, seed, targets, failed, cancelled)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), run.ID, run.StartedAt.UTC(), finished, run.Seed, run.Targets, run.Failed, boolInt(run.Cancelled))
	if err != nil {
		if d.dialect.UniqueViolation(err) {
			return fmt.Errorf("run %s already stored: %w", run.ID, err)
		}
		return err
	}

	insert := d.bind(`
		INSERT INTO run_results (run_id, result_key, success, reason, kill_time_s, xp_per_second, gp_per_second, factor, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for _, r := range set.All() {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode %s: %w", r.Key, err)
		}
		_, err = tx.Exec(insert, run.ID, r.Key.String(), boolInt(r.Success), r.Reason,
			nullRate(r.Adjusted.KillTimeS), nullRate(r.Adjusted.XPPerSecond), nullRate(r.Adjusted.GPPerSecond),
			r.Factor, string(payload))
		if err != nil {
			return fmt.Errorf("store %s: %w", r.Key, err)
		}
	}
	return tx.Commit()
}

func nullRate(r stats.Rate) sql.NullFloat64 {
	v, ok := r.Value()
	return sql.NullFloat64{Float64: v, Valid: ok}
}

const runColumns = `id, started_at, finished_at, seed, targets, failed, cancelled`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var run Run
	var finished sql.NullTime
	var cancelled int
	if err := s.Scan(&run.ID, &run.StartedAt, &finished, &run.Seed, &run.Targets, &run.Failed, &cancelled); err != nil {
		return Run{}, err
	}
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	run.Cancelled = cancelled != 0
	return run, nil
}

// GetRun returns the run with id.
func (d *Database) GetRun(id string) (*Run, error) {
	row := d.db.QueryRow(d.bind(`SELECT `+runColumns+` FROM runs WHERE id = ?`), id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns up to limit runs, newest first.
func (d *Database) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.Query(d.bind(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunResults decodes every stored result of run id.
func (d *Database) RunResults(id string) (results.Set, error) {
	rows, err := d.db.Query(d.bind(`SELECT payload FROM run_results WHERE run_id = ?`), id)
	if err != nil {
		return results.Set{}, err
	}
	defer rows.Close()

	var rs []results.Result
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return results.Set{}, err
		}
		var r results.Result
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return results.Set{}, fmt.Errorf("decode stored result: %w", err)
		}
		rs = append(rs, r)
	}
	if err := rows.Err(); err != nil {
		return results.Set{}, err
	}
	return results.NewSet(rs...), nil
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/randallong/irentstuff-transactions/internal/domain"
)

// RunRepo implements [domain.RunRepository] backed by SQLite.
type RunRepo struct {
	DB *sql.DB
}

func (r *RunRepo) Create(ctx context.Context, run domain.PipelineRun) error {
	gates, decisions, outcomes, err := marshalRun(run)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO runs (id, message, state, gates, decisions, outcomes, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(run.ID), string(run.Message), string(run.State),
		gates, decisions, outcomes,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("run %q: %w", run.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (r *RunRepo) Get(ctx context.Context, id domain.RunID) (domain.PipelineRun, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, message, state, gates, decisions, outcomes, started_at, finished_at
		 FROM runs WHERE id = ?`,
		string(id),
	)
	return scanRun(row)
}

func (r *RunRepo) List(ctx context.Context) ([]domain.PipelineRun, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, message, state, gates, decisions, outcomes, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.PipelineRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *RunRepo) Update(ctx context.Context, run domain.PipelineRun) error {
	gates, decisions, outcomes, err := marshalRun(run)
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx,
		`UPDATE runs SET message = ?, state = ?, gates = ?, decisions = ?, outcomes = ?,
		   started_at = ?, finished_at = ?
		 WHERE id = ?`,
		string(run.Message), string(run.State),
		gates, decisions, outcomes,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		string(run.ID),
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %q: %w", run.ID, domain.ErrNotFound)
	}
	return nil
}

func marshalRun(run domain.PipelineRun) (gates, decisions, outcomes string, err error) {
	g, err := json.Marshal(run.Gates)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal gates: %w", err)
	}
	d, err := json.Marshal(run.Decisions)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal decisions: %w", err)
	}
	o, err := json.Marshal(run.Outcomes)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal outcomes: %w", err)
	}
	return string(g), string(d), string(o), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (domain.PipelineRun, error) {
	var run domain.PipelineRun
	var id, message, state, gatesJSON, decisionsJSON, outcomesJSON, startedAt, finishedAt string
	if err := s.Scan(&id, &message, &state, &gatesJSON, &decisionsJSON, &outcomesJSON, &startedAt, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, fmt.Errorf("%w", domain.ErrNotFound)
		}
		return run, fmt.Errorf("scan run: %w", err)
	}
	run.ID = domain.RunID(id)
	run.Message = domain.TriggerMessage(message)
	run.State = domain.RunState(state)
	if err := json.Unmarshal([]byte(gatesJSON), &run.Gates); err != nil {
		return run, fmt.Errorf("unmarshal gates: %w", err)
	}
	if err := json.Unmarshal([]byte(decisionsJSON), &run.Decisions); err != nil {
		return run, fmt.Errorf("unmarshal decisions: %w", err)
	}
	if err := json.Unmarshal([]byte(outcomesJSON), &run.Outcomes); err != nil {
		return run, fmt.Errorf("unmarshal outcomes: %w", err)
	}
	started, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return run, fmt.Errorf("parse started_at: %w", err)
	}
	run.StartedAt = started
	finished, err := time.Parse(time.RFC3339Nano, finishedAt)
	if err != nil {
		return run, fmt.Errorf("parse finished_at: %w", err)
	}
	run.FinishedAt = finished
	return run, nil
}

package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skino1337/PyPoE/internal/etl"
)

// ExportRun is one logged exporter run.
type ExportRun struct {
	ID         string        `json:"id"`
	Dataset    string        `json:"dataset"`
	Language   string        `json:"language"`
	Trigger    string        `json:"trigger"` // "manual" | "schedule" | "file_watch"
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Duration   time.Duration `json:"duration"`
	Status     string        `json:"status"`
	Error      string        `json:"error,omitempty"`
}

// ArtifactLog is an artifact written by a run.
type ArtifactLog struct {
	ID      string     `json:"id"`
	RunID   string     `json:"runId"`
	OutFile string     `json:"outFile"`
	Pages   []etl.Page `json:"pages"`
	Size    int        `json:"size"`
}

// ExportLogStore persists export runs with their artifacts and warnings.
type ExportLogStore struct {
	db *DB
}

func NewExportLogStore(db *DB) *ExportLogStore {
	return &ExportLogStore{db: db}
}

// RecordRun stores res as a finished run in one transaction.
func (s *ExportLogStore) RecordRun(res *etl.ExportResult, language, trigger string, finishedAt time.Time) (*ExportRun, error) {
	run := &ExportRun{
		ID:         uuid.New().String(),
		Dataset:    res.Dataset,
		Language:   language,
		Trigger:    trigger,
		StartedAt:  finishedAt.Add(-res.Duration).UTC(),
		FinishedAt: finishedAt.UTC(),
		Duration:   res.Duration,
		Status:     res.Status,
		Error:      res.Error,
	}

	tx, err := s.db.conn.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO export_runs (id, dataset, language, trigger_type, started_at, finished_at, duration_ms, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Dataset, run.Language, run.Trigger, run.StartedAt, run.FinishedAt,
		run.Duration.Milliseconds(), run.Status, run.Error,
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	for i, a := range res.Artifacts {
		pages, _ := json.Marshal(a.Pages)
		if _, err := tx.Exec(
			`INSERT INTO export_artifacts (id, run_id, out_file, pages_json, size, sort_order)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), run.ID, a.OutFile, string(pages), len(a.Text), i,
		); err != nil {
			return nil, fmt.Errorf("insert artifact %s: %w", a.OutFile, err)
		}
	}
	for i, w := range res.Warnings {
		if _, err := tx.Exec(
			`INSERT INTO export_warnings (id, run_id, row_index, message, sort_order) VALUES (?, ?, ?, ?, ?)`,
			uuid.New().String(), run.ID, w.Row, w.Message, i,
		); err != nil {
			return nil, fmt.Errorf("insert warning: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return run, nil
}

// GetRun returns the run with id.
func (s *ExportLogStore) GetRun(id string) (*ExportRun, error) {
	run, err := scanRun(s.db.conn.QueryRow(
		`SELECT id, dataset, language, trigger_type, started_at, finished_at, duration_ms, status, error
		 FROM export_runs WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("export run not found: %s", id)
	}
	return run, err
}

// ListRuns returns the most recent runs, newest first. An empty dataset
// lists every dataset.
func (s *ExportLogStore) ListRuns(dataset string, limit int) ([]ExportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.conn.Query(
		`SELECT id, dataset, language, trigger_type, started_at, finished_at, duration_ms, status, error
		 FROM export_runs WHERE ? = '' OR dataset = ?
		 ORDER BY started_at DESC LIMIT ?`,
		dataset, dataset, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ExportRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// ListArtifacts returns the artifacts of a run in write order.
func (s *ExportLogStore) ListArtifacts(runID string) ([]ArtifactLog, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, run_id, out_file, pages_json, size FROM export_artifacts
		 WHERE run_id = ? ORDER BY sort_order ASC`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ArtifactLog
	for rows.Next() {
		var a ArtifactLog
		var pages string
		if err := rows.Scan(&a.ID, &a.RunID, &a.OutFile, &pages, &a.Size); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(pages), &a.Pages); err != nil {
			return nil, fmt.Errorf("decode pages of %s: %w", a.OutFile, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListWarnings returns the warnings of a run in report order.
func (s *ExportLogStore) ListWarnings(runID string) ([]etl.Warning, error) {
	rows, err := s.db.conn.Query(
		`SELECT r.dataset, w.row_index, w.message FROM export_warnings w
		 JOIN export_runs r ON r.id = w.run_id
		 WHERE w.run_id = ? ORDER BY w.sort_order ASC`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []etl.Warning
	for rows.Next() {
		var w etl.Warning
		if err := rows.Scan(&w.Dataset, &w.Row, &w.Message); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep runs of dataset.
func (s *ExportLogStore) Prune(dataset string, keep int) (int64, error) {
	res, err := s.db.conn.Exec(
		`DELETE FROM export_runs WHERE dataset = ? AND id NOT IN (
			SELECT id FROM export_runs WHERE dataset = ? ORDER BY started_at DESC LIMIT ?
		)`, dataset, dataset, keep,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(r rowScanner) (*ExportRun, error) {
	var run ExportRun
	var ms int64
	if err := r.Scan(
		&run.ID, &run.Dataset, &run.Language, &run.Trigger,
		&run.StartedAt, &run.FinishedAt, &ms, &run.Status, &run.Error,
	); err != nil {
		return nil, err
	}
	run.Duration = time.Duration(ms) * time.Millisecond
	return &run, nil
}

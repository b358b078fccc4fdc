package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"simrun/internal/domain"
)

// MySQLStorage keeps every run in the tables created by the migrate command.
type MySQLStorage struct {
	db *sql.DB
}

// NewMySQLStorage wraps an open database.
func NewMySQLStorage(db *sql.DB) *MySQLStorage {
	return &MySQLStorage{db: db}
}

// OpenMySQL opens the result database of a go-sql-driver DSN.
func OpenMySQL(dsn string) (*MySQLStorage, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open result database: %w", err)
	}
	return &MySQLStorage{db: db}, nil
}

// Close closes the database.
func (s *MySQLStorage) Close() error { return s.db.Close() }

// lines are the classified log lines stored with an instance.
type lines struct {
	Errors   []domain.LogLine `json:"errors,omitempty"`
	Warnings []domain.LogLine `json:"warnings,omitempty"`
	Excluded []domain.LogLine `json:"excluded,omitempty"`
}

const (
	upsertRun = `INSERT INTO runs
	(run_id, mode, target, build, simulator, total, passed, warned, failed, duration_seconds, started_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE total = VALUES(total), passed = VALUES(passed),
	warned = VALUES(warned), failed = VALUES(failed), duration_seconds = VALUES(duration_seconds)`

	upsertInstance = `INSERT INTO instances
	(run_id, position, bucket, test, seed, dir, status, finished, log_path, lines_json, duration_ns, error, resolved)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE status = VALUES(status), finished = VALUES(finished),
	lines_json = VALUES(lines_json), error = VALUES(error), resolved = VALUES(resolved)`

	selectLastRun = `SELECT run_id, mode, target, build, simulator, total, passed, warned, failed,
	duration_seconds, started_at FROM runs ORDER BY created_at DESC, started_at DESC LIMIT 1`

	selectInstances = `SELECT bucket, test, seed, dir, status, finished, log_path, lines_json,
	duration_ns, error, resolved FROM instances WHERE run_id = ? ORDER BY position`
)

// Save upserts the run and its instances in one transaction.
func (s *MySQLStorage) Save(report *domain.RunReport) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	m := report.Meta
	if _, err := tx.Exec(upsertRun, m.RunID, m.Mode, m.Target, m.Build, m.Simulator,
		m.TotalInstances, m.PassedInstances, m.WarnInstances, m.FailedInstances,
		m.DurationSeconds, m.Timestamp); err != nil {
		return fmt.Errorf("save run %s: %w", m.RunID, err)
	}
	for i, r := range report.Results {
		data, err := json.Marshal(lines{Errors: r.Outcome.Errors, Warnings: r.Outcome.Warnings, Excluded: r.Outcome.Excluded})
		if err != nil {
			return fmt.Errorf("marshal log lines: %w", err)
		}
		if _, err := tx.Exec(upsertInstance, m.RunID, i, r.Bucket, r.Test, r.Seed, r.Dir,
			string(r.Outcome.Status), r.Outcome.Finished, r.Outcome.LogPath, string(data),
			int64(r.Duration), r.Error, r.Resolved); err != nil {
			return fmt.Errorf("save instance %s: %w", r.Dir, err)
		}
	}
	return tx.Commit()
}

// Load returns the most recent run.
func (s *MySQLStorage) Load() (*domain.RunReport, error) {
	var report domain.RunReport
	m := &report.Meta
	err := s.db.QueryRow(selectLastRun).Scan(&m.RunID, &m.Mode, &m.Target, &m.Build, &m.Simulator,
		&m.TotalInstances, &m.PassedInstances, &m.WarnInstances, &m.FailedInstances,
		&m.DurationSeconds, &m.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("load last run: %w", err)
	}

	rows, err := s.db.Query(selectInstances, m.RunID)
	if err != nil {
		return nil, fmt.Errorf("load instances of %s: %w", m.RunID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			r        domain.InstanceResult
			status   string
			raw      string
			duration int64
		)
		if err := rows.Scan(&r.Bucket, &r.Test, &r.Seed, &r.Dir, &status, &r.Outcome.Finished,
			&r.Outcome.LogPath, &raw, &duration, &r.Error, &r.Resolved); err != nil {
			return nil, err
		}
		var l lines
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			return nil, fmt.Errorf("parse log lines of %s: %w", r.Dir, err)
		}
		r.Outcome.Status = domain.Status(status)
		r.Outcome.Errors, r.Outcome.Warnings, r.Outcome.Excluded = l.Errors, l.Warnings, l.Excluded
		r.Duration = time.Duration(duration)
		report.Results = append(report.Results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	m.Duration = time.Duration(m.DurationSeconds * float64(time.Second)).Round(time.Millisecond).String()
	return &report, nil
}

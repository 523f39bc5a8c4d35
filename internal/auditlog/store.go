// Package auditlog keeps a local SQLite history of every processed update.
// Airtable is the system of record; this log is the fallback the team can
// query when an Airtable write failed or the base is unreachable.
package auditlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS updates (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	job_number      TEXT NOT NULL,
	raw_text        TEXT NOT NULL,
	update_types    TEXT NOT NULL DEFAULT '[]',
	airtable_update TEXT NOT NULL DEFAULT '',
	teams_post      TEXT NOT NULL DEFAULT '',
	update_created  INTEGER NOT NULL DEFAULT 0,
	project_updated INTEGER NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_updates_job ON updates(job_number);
`

// Record is one processed update.
type Record struct {
	ID             int64     `json:"id"`
	JobNumber      string    `json:"jobNumber"`
	RawText        string    `json:"rawText"`
	UpdateTypes    []string  `json:"updateTypes"`
	AirtableUpdate string    `json:"airtableUpdate"`
	TeamsPost      string    `json:"teamsPost"`
	UpdateCreated  bool      `json:"updateCreated"`
	ProjectUpdated bool      `json:"projectUpdated"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Store wraps a sql.DB with audit-log operations.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("auditlog: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("auditlog: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("auditlog: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Insert appends a processed update to the log.
func (s *Store) Insert(r Record) error {
	typesJSON, _ := json.Marshal(r.UpdateTypes)
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.conn.Exec(`
		INSERT INTO updates (job_number, raw_text, update_types, airtable_update, teams_post, update_created, project_updated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.JobNumber, r.RawText, string(typesJSON), r.AirtableUpdate, r.TeamsPost, r.UpdateCreated, r.ProjectUpdated, createdAt)
	if err != nil {
		return fmt.Errorf("auditlog: insert: %w", err)
	}
	return nil
}

// Recent returns the newest records, optionally filtered by job number.
func (s *Store) Recent(jobNumber string, limit int) ([]Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `SELECT id, job_number, raw_text, update_types, airtable_update, teams_post, update_created, project_updated, created_at
		FROM updates`
	args := []any{}
	if jobNumber != "" {
		query += ` WHERE job_number = ?`
		args = append(args, jobNumber)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("auditlog: recent: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var typesJSON string
		if err := rows.Scan(&r.ID, &r.JobNumber, &r.RawText, &typesJSON, &r.AirtableUpdate, &r.TeamsPost, &r.UpdateCreated, &r.ProjectUpdated, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("auditlog: scan: %w", err)
		}
		_ = json.Unmarshal([]byte(typesJSON), &r.UpdateTypes)
		out = append(out, r)
	}
	return out, rows.Err()
}

// internal/storage/sqlite_audit_log.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Corphon/MagicStudio/internal/models"
)

// SQLiteAuditLog stores the history in an embedded SQLite table. The
// autoincrement key keeps insertion order and appends are single INSERTs,
// so several processes may share one file.
type SQLiteAuditLog struct {
	db *sql.DB
}

// NewSQLiteAuditLog opens or creates the database at path
func NewSQLiteAuditLog(path string) (*SQLiteAuditLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}
	return newSQLiteAuditLog(db)
}

func newSQLiteAuditLog(db *sql.DB) (*SQLiteAuditLog, error) {
	l := &SQLiteAuditLog{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}
	return l, nil
}

func (l *SQLiteAuditLog) createSchema() error {
	_, err := l.db.Exec(`CREATE TABLE IF NOT EXISTS audit_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fecha TEXT NOT NULL,
		prompt TEXT NOT NULL,
		estado TEXT NOT NULL,
		detalle TEXT NOT NULL DEFAULT ''
	)`)
	return err
}

func (l *SQLiteAuditLog) Append(ctx context.Context, rec models.AuditRecord) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO audit_records (fecha, prompt, estado, detalle) VALUES (?, ?, ?, ?)`,
		rec.Timestamp, rec.Prompt, string(rec.Outcome), rec.Detail)
	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

func (l *SQLiteAuditLog) ReadAll(ctx context.Context) ([]models.AuditRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT fecha, prompt, estado, detalle FROM audit_records ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer rows.Close()

	records := []models.AuditRecord{}
	for rows.Next() {
		var rec models.AuditRecord
		var outcome string
		if err := rows.Scan(&rec.Timestamp, &rec.Prompt, &outcome, &rec.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		rec.Outcome = models.Outcome(outcome)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit records: %w", err)
	}
	return records, nil
}

// Close releases the database connection
func (l *SQLiteAuditLog) Close() error {
	return l.db.Close()
}

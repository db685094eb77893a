package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/lexatlas/regscan/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS records (
	id          TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	source_path TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'running',
	state       TEXT NOT NULL DEFAULT '{}',
	chunk_count INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_records_status ON records(status);
CREATE INDEX IF NOT EXISTS idx_records_document_id ON records(document_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRecord(ctx context.Context, documentID, sourcePath string) (*model.Record, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	stateJSON, err := json.Marshal(model.NewDocumentState())
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal state")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, document_id, source_path, status, state, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, documentID, sourcePath, string(model.RecordStatusRunning), string(stateJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert record")
	}

	return &model.Record{
		ID:         id,
		DocumentID: documentID,
		SourcePath: sourcePath,
		Status:     model.RecordStatusRunning,
		State:      model.NewDocumentState(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *SQLiteStore) CompleteRecord(ctx context.Context, id string, state model.DocumentState, chunkCount int, duration time.Duration) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal state")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET status = ?, state = ?, chunk_count = ?, duration_ms = ?, updated_at = ? WHERE id = ?`,
		string(model.RecordStatusComplete), string(stateJSON), chunkCount, duration.Milliseconds(), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete record %s", id)
	}
	return checkRowsAffected(res, "record", id)
}

func (s *SQLiteStore) FailRecord(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET status = ?, updated_at = ? WHERE id = ?`,
		string(model.RecordStatusFailed), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail record %s", id)
	}
	return checkRowsAffected(res, "record", id)
}

func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (*model.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, document_id, source_path, status, state, chunk_count, duration_ms, created_at, updated_at
		 FROM records WHERE id = ?`,
		id,
	)
	return scanRecord(row)
}

func (s *SQLiteStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.Record, error) {
	query := `SELECT id, document_id, source_path, status, state, chunk_count, duration_ms, created_at, updated_at
	          FROM records WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.DocumentID != "" {
		query += ` AND document_id = ?`
		args = append(args, filter.DocumentID)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list records")
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list records iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*model.Record, error) {
	var r model.Record
	var stateJSON string

	err := row.Scan(&r.ID, &r.DocumentID, &r.SourcePath, &r.Status, &stateJSON,
		&r.ChunkCount, &r.DurationMS, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("record not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan record")
	}

	if err := json.Unmarshal([]byte(stateJSON), &r.State); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal state")
	}
	return &r, nil
}

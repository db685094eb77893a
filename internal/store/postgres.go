package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/lexatlas/regscan/internal/db"
	"github.com/lexatlas/regscan/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS records (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	document_id TEXT NOT NULL,
	source_path TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'running',
	state       JSONB NOT NULL DEFAULT '{}',
	chunk_count INTEGER NOT NULL DEFAULT 0,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_records_status ON records(status);
CREATE INDEX IF NOT EXISTS idx_records_document_id ON records(document_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRecord(ctx context.Context, documentID, sourcePath string) (*model.Record, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	stateJSON, err := json.Marshal(model.NewDocumentState())
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal state")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO records (id, document_id, source_path, status, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, documentID, sourcePath, string(model.RecordStatusRunning), stateJSON, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert record")
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

func (s *PostgresStore) CompleteRecord(ctx context.Context, id string, state model.DocumentState, chunkCount int, duration time.Duration) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal state")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE records SET status = $1, state = $2, chunk_count = $3, duration_ms = $4, updated_at = $5 WHERE id = $6`,
		string(model.RecordStatusComplete), stateJSON, chunkCount, duration.Milliseconds(), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete record %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("record not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) FailRecord(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE records SET status = $1, updated_at = $2 WHERE id = $3`,
		string(model.RecordStatusFailed), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail record %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("record not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) GetRecord(ctx context.Context, id string) (*model.Record, error) {
	var r model.Record
	var stateJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, document_id, source_path, status, state, chunk_count, duration_ms, created_at, updated_at
		 FROM records WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.DocumentID, &r.SourcePath, &r.Status, &stateJSON,
		&r.ChunkCount, &r.DurationMS, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("record not found: %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get record %s", id)
	}

	if err := json.Unmarshal(stateJSON, &r.State); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal state")
	}
	return &r, nil
}

func (s *PostgresStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.Record, error) {
	query := `SELECT id, document_id, source_path, status, state, chunk_count, duration_ms, created_at, updated_at
	          FROM records WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.DocumentID != "" {
		query += fmt.Sprintf(` AND document_id = $%d`, argIdx)
		args = append(args, filter.DocumentID)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list records")
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var r model.Record
		var stateJSON []byte
		if err := rows.Scan(&r.ID, &r.DocumentID, &r.SourcePath, &r.Status, &stateJSON,
			&r.ChunkCount, &r.DurationMS, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		if err := json.Unmarshal(stateJSON, &r.State); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal state")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list records iterate")
}

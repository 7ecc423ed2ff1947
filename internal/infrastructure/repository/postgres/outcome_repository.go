package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

// OutcomeRepository persists finished batches so results survive the
// request that produced them. Output bytes live in the object store; only
// metadata lands here.
type OutcomeRepository struct {
	db *sql.DB
}

func NewOutcomeRepository(db *sql.DB) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *OutcomeRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent api startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS batches (
	id TEXT PRIMARY KEY,
	authority_id TEXT NOT NULL,
	success BOOLEAN NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS batch_files (
	file_id TEXT PRIMARY KEY,
	batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
	position INT NOT NULL,
	original_name TEXT NOT NULL,
	status TEXT NOT NULL,
	classification JSONB NOT NULL DEFAULT '{}'::jsonb,
	conversion JSONB,
	error_message TEXT
);

CREATE INDEX IF NOT EXISTS idx_batch_files_batch_id ON batch_files(batch_id);
CREATE INDEX IF NOT EXISTS idx_batches_started_at ON batches(started_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *OutcomeRepository) SaveBatch(ctx context.Context, batch *domain.BatchResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO batches (id, authority_id, success, started_at, finished_at)
VALUES ($1,$2,$3,$4,$5)
`, batch.ID, batch.AuthorityID, batch.Success, batch.StartedAt, batch.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	for i, file := range batch.Files {
		classificationJSON, err := json.Marshal(file.Classification)
		if err != nil {
			return fmt.Errorf("marshal classification: %w", err)
		}
		// Untyped nil (not a nil []byte) so drivers and sqlmock see SQL NULL.
		var conversionJSON any
		if file.Conversion != nil {
			conversionJSON, err = json.Marshal(file.Conversion)
			if err != nil {
				return fmt.Errorf("marshal conversion: %w", err)
			}
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO batch_files (file_id, batch_id, position, original_name, status, classification, conversion, error_message)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, file.FileID, batch.ID, i, file.OriginalName, string(file.Status), classificationJSON, conversionJSON, file.Error)
		if err != nil {
			return fmt.Errorf("insert batch file: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save tx: %w", err)
	}
	return nil
}

func (r *OutcomeRepository) GetBatch(ctx context.Context, id string) (*domain.BatchResult, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, authority_id, success, started_at, finished_at
FROM batches
WHERE id = $1
`, id)

	var batch domain.BatchResult
	err := row.Scan(&batch.ID, &batch.AuthorityID, &batch.Success, &batch.StartedAt, &batch.FinishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrBatchNotFound, "get batch", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("select batch: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT file_id, original_name, status, classification, conversion, error_message
FROM batch_files
WHERE batch_id = $1
ORDER BY position
`, id)
	if err != nil {
		return nil, fmt.Errorf("select batch files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var file domain.FileResult
		var status string
		var classificationRaw []byte
		var conversionRaw []byte
		if err := rows.Scan(&file.FileID, &file.OriginalName, &status, &classificationRaw, &conversionRaw, &file.Error); err != nil {
			return nil, fmt.Errorf("scan batch file: %w", err)
		}
		file.Status = domain.Phase(status)
		if len(classificationRaw) > 0 {
			if err := json.Unmarshal(classificationRaw, &file.Classification); err != nil {
				return nil, fmt.Errorf("decode classification: %w", err)
			}
		}
		if len(conversionRaw) > 0 {
			var conv domain.Conversion
			if err := json.Unmarshal(conversionRaw, &conv); err != nil {
				return nil, fmt.Errorf("decode conversion: %w", err)
			}
			file.Conversion = &conv
		}
		batch.Files = append(batch.Files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch files: %w", err)
	}
	return &batch, nil
}

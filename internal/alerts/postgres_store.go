package alerts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hferreira23/batchwatch/internal/pagination"
)

// PostgresStore is a Postgres-backed Store.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the alerts table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL,
		assessment_id TEXT,
		level TEXT NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_batch ON alerts(batch_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_alerts_created ON alerts(created_at DESC);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate alerts: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, a *Alert) error {
	query := `
	INSERT INTO alerts (id, batch_id, assessment_id, level, score, message, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.BatchID, nullString(a.AssessmentID), a.Level, a.Score, a.Message, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*Alert, error) {
	query := `
	SELECT id, batch_id, COALESCE(assessment_id, ''), level, score, message, created_at
	FROM alerts
	`
	args := []any{}
	if cursor != nil {
		query += ` WHERE (created_at, id) < ($1, $2)`
		args = append(args, cursor.Timestamp, cursor.ID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT %d`, limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

func (s *PostgresStore) ListByBatch(ctx context.Context, batchID string) ([]*Alert, error) {
	query := `
	SELECT id, batch_id, COALESCE(assessment_id, ''), level, score, message, created_at
	FROM alerts
	WHERE batch_id = $1
	ORDER BY created_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list alerts by batch: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

func scanAlerts(rows *sql.Rows) ([]*Alert, error) {
	var out []*Alert
	for rows.Next() {
		a := &Alert{}
		if err := rows.Scan(&a.ID, &a.BatchID, &a.AssessmentID, &a.Level, &a.Score, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count alerts: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

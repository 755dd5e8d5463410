package batch

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresStore is a Postgres-backed Store.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the batches table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		code TEXT NOT NULL,
		status TEXT NOT NULL,
		line_id TEXT,
		risk_level TEXT NOT NULL DEFAULT 'UNKNOWN',
		risk_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		risk_explanation TEXT,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_batches_product ON batches(product_id);
	CREATE INDEX IF NOT EXISTS idx_batches_risk_level ON batches(risk_level);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate batches: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, b *Batch) error {
	query := `
	INSERT INTO batches (id, product_id, code, status, line_id, risk_level, risk_score, risk_explanation, started_at, ended_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		b.ID, b.ProductID, b.Code, b.Status, nullString(b.LineID),
		b.RiskLevel, b.RiskScore, nullString(b.RiskExplanation),
		b.StartedAt, nullTime(b.EndedAt), b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Batch, error) {
	query := `
	SELECT id, product_id, code, status, COALESCE(line_id, ''), risk_level, risk_score, COALESCE(risk_explanation, ''), started_at, ended_at, created_at
	FROM batches WHERE id = $1
	`
	b := &Batch{}
	var endedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.ProductID, &b.Code, &b.Status, &b.LineID,
		&b.RiskLevel, &b.RiskScore, &b.RiskExplanation,
		&b.StartedAt, &endedAt, &b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	if endedAt.Valid {
		t := endedAt.Time
		b.EndedAt = &t
	}
	return b, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Batch, error) {
	query := `
	SELECT id, product_id, code, status, COALESCE(line_id, ''), risk_level, risk_score, COALESCE(risk_explanation, ''), started_at, ended_at, created_at
	FROM batches ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var out []*Batch
	for rows.Next() {
		b := &Batch{}
		var endedAt sql.NullTime
		if err := rows.Scan(
			&b.ID, &b.ProductID, &b.Code, &b.Status, &b.LineID,
			&b.RiskLevel, &b.RiskScore, &b.RiskExplanation,
			&b.StartedAt, &endedAt, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		if endedAt.Valid {
			t := endedAt.Time
			b.EndedAt = &t
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, b *Batch) error {
	query := `
	UPDATE batches SET status = $2, line_id = $3, ended_at = $4 WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, b.ID, b.Status, nullString(b.LineID), nullTime(b.EndedAt))
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	return rowsAffectedErr(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	return rowsAffectedErr(res)
}

func (s *PostgresStore) UpdateRisk(ctx context.Context, id, level string, score float64, explanation string) error {
	query := `
	UPDATE batches SET risk_level = $2, risk_score = $3, risk_explanation = $4 WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, id, level, score, nullString(explanation))
	if err != nil {
		return fmt.Errorf("update batch risk: %w", err)
	}
	return rowsAffectedErr(res)
}

func (s *PostgresStore) CountByRiskLevel(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT risk_level, COUNT(*) FROM batches GROUP BY risk_level`)
	if err != nil {
		return nil, fmt.Errorf("count batches by risk level: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var level string
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, fmt.Errorf("scan risk level count: %w", err)
		}
		counts[level] = n
	}
	return counts, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM batches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count batches: %w", err)
	}
	return n, nil
}

func rowsAffectedErr(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBatchNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

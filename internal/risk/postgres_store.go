package risk

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore is a Postgres-backed assessment Store. Factors are stored
// as JSONB.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the risk_assessments table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS risk_assessments (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL,
		level TEXT NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		factors JSONB NOT NULL DEFAULT '{}',
		explanation TEXT NOT NULL,
		evaluated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_risk_assessments_batch ON risk_assessments(batch_id, evaluated_at DESC);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate risk assessments: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAssessment(ctx context.Context, a *Assessment) error {
	factors, err := json.Marshal(a.Factors)
	if err != nil {
		return fmt.Errorf("encode factors: %w", err)
	}
	query := `
	INSERT INTO risk_assessments (id, batch_id, level, score, factors, explanation, evaluated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := s.db.ExecContext(ctx, query,
		a.ID, a.BatchID, string(a.Level), a.Score, factors, a.Explanation, a.EvaluatedAt,
	); err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByBatch(ctx context.Context, batchID string) ([]*Assessment, error) {
	query := `
	SELECT id, batch_id, level, score, factors, explanation, evaluated_at
	FROM risk_assessments
	WHERE batch_id = $1
	ORDER BY evaluated_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []*Assessment
	for rows.Next() {
		a := &Assessment{}
		var level string
		var factors []byte
		if err := rows.Scan(&a.ID, &a.BatchID, &level, &a.Score, &factors, &a.Explanation, &a.EvaluatedAt); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		a.Level = Level(level)
		if err := json.Unmarshal(factors, &a.Factors); err != nil {
			return nil, fmt.Errorf("decode factors: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

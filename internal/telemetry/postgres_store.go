package telemetry

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

// Migrate creates the telemetry tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS sensor_readings (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL,
		temperature_c DOUBLE PRECISION NOT NULL,
		humidity_pct DOUBLE PRECISION,
		recorded_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_sensor_readings_batch ON sensor_readings(batch_id, recorded_at DESC);

	CREATE TABLE IF NOT EXISTS inspections (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL,
		temperature_c DOUBLE PRECISION NOT NULL,
		humidity_pct DOUBLE PRECISION,
		ph DOUBLE PRECISION,
		microbial_result TEXT NOT NULL,
		notes TEXT,
		inspected_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_inspections_batch ON inspections(batch_id, inspected_at);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate telemetry: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateReading(ctx context.Context, r *SensorReading) error {
	query := `
	INSERT INTO sensor_readings (id, batch_id, temperature_c, humidity_pct, recorded_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.BatchID, r.TemperatureC, nullFloat(r.HumidityPct), r.RecordedAt, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListReadings(ctx context.Context, batchID string, cursor *pagination.Cursor, limit int) ([]*SensorReading, error) {
	query := `
	SELECT id, batch_id, temperature_c, humidity_pct, recorded_at, created_at
	FROM sensor_readings
	WHERE batch_id = $1
	`
	args := []any{batchID}
	if cursor != nil {
		query += ` AND (recorded_at, id) < ($2, $3)`
		args = append(args, cursor.Timestamp, cursor.ID)
	}
	query += fmt.Sprintf(` ORDER BY recorded_at DESC, id DESC LIMIT %d`, limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()
	return scanReadings(rows)
}

func (s *PostgresStore) RecentReadings(ctx context.Context, batchID string, n int) ([]*SensorReading, error) {
	query := `
	SELECT id, batch_id, temperature_c, humidity_pct, recorded_at, created_at
	FROM sensor_readings
	WHERE batch_id = $1
	ORDER BY recorded_at DESC, id DESC
	LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, batchID, n)
	if err != nil {
		return nil, fmt.Errorf("recent readings: %w", err)
	}
	defer rows.Close()
	return scanReadings(rows)
}

func (s *PostgresStore) AllReadings(ctx context.Context, batchID string) ([]*SensorReading, error) {
	query := `
	SELECT id, batch_id, temperature_c, humidity_pct, recorded_at, created_at
	FROM sensor_readings
	WHERE batch_id = $1
	ORDER BY recorded_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("all readings: %w", err)
	}
	defer rows.Close()
	return scanReadings(rows)
}

func scanReadings(rows *sql.Rows) ([]*SensorReading, error) {
	var out []*SensorReading
	for rows.Next() {
		r := &SensorReading{}
		var humidity sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.BatchID, &r.TemperatureC, &humidity, &r.RecordedAt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		if humidity.Valid {
			h := humidity.Float64
			r.HumidityPct = &h
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountReadings(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sensor_readings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CreateInspection(ctx context.Context, i *Inspection) error {
	query := `
	INSERT INTO inspections (id, batch_id, temperature_c, humidity_pct, ph, microbial_result, notes, inspected_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		i.ID, i.BatchID, i.TemperatureC, nullFloat(i.HumidityPct), nullFloat(i.PH),
		i.MicrobialResult, nullString(i.Notes), i.InspectedAt, i.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inspection: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListInspections(ctx context.Context, batchID string) ([]*Inspection, error) {
	query := `
	SELECT id, batch_id, temperature_c, humidity_pct, ph, microbial_result, COALESCE(notes, ''), inspected_at, created_at
	FROM inspections
	WHERE batch_id = $1
	ORDER BY inspected_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	defer rows.Close()

	var out []*Inspection
	for rows.Next() {
		i := &Inspection{}
		var humidity, ph sql.NullFloat64
		if err := rows.Scan(&i.ID, &i.BatchID, &i.TemperatureC, &humidity, &ph, &i.MicrobialResult, &i.Notes, &i.InspectedAt, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inspection: %w", err)
		}
		if humidity.Valid {
			h := humidity.Float64
			i.HumidityPct = &h
		}
		if ph.Valid {
			p := ph.Float64
			i.PH = &p
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountInspections(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inspections`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count inspections: %w", err)
	}
	return n, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

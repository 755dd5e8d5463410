package product

import (
	"context"
	"database/sql"
)

// PostgresStore persists product data in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed product store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the products table.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS products (
			id          VARCHAR(36) PRIMARY KEY,
			name        VARCHAR(255) NOT NULL,
			category    VARCHAR(100),
			description TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

func (p *PostgresStore) Create(ctx context.Context, prod *Product) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category, description, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		prod.ID, prod.Name, nullString(prod.Category), nullString(prod.Description), prod.CreatedAt,
	)
	return err
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Product, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(category, ''), COALESCE(description, ''), created_at
		FROM products WHERE id = $1`, id)

	prod := &Product{}
	err := row.Scan(&prod.ID, &prod.Name, &prod.Category, &prod.Description, &prod.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	return prod, err
}

func (p *PostgresStore) List(ctx context.Context) ([]*Product, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(category, ''), COALESCE(description, ''), created_at
		FROM products ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var result []*Product
	for rows.Next() {
		prod := &Product{}
		if err := rows.Scan(&prod.ID, &prod.Name, &prod.Category, &prod.Description, &prod.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, prod)
	}
	return result, rows.Err()
}

func (p *PostgresStore) Update(ctx context.Context, prod *Product) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE products SET name = $2, category = $3, description = $4
		WHERE id = $1`,
		prod.ID, prod.Name, nullString(prod.Category), nullString(prod.Description),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrProductNotFound
	}
	return err
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrProductNotFound
	}
	return err
}

func (p *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Store = (*PostgresStore)(nil)

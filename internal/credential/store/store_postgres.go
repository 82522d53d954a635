package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"vouch/internal/credential/models"
	"vouch/migrations"
)

// PostgresStore persists credential records in PostgreSQL. Use it when
// multiple worker instances share one physical store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema applies the embedded migrations in filename order. Every
// statement is idempotent, so calling this on each startup is safe.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	entries, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(entries)

	for _, name := range entries {
		query, err := migrations.FS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(query)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

// Save inserts a new record. The primary-key constraint is the uniqueness
// gate: ON CONFLICT DO NOTHING plus RETURNING turns a duplicate insert into
// sql.ErrNoRows, which surfaces as ErrConflict. This closes the race between
// a prior Exists check and the insert.
func (s *PostgresStore) Save(ctx context.Context, record models.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal credential record: %w", err)
	}
	query := `
		INSERT INTO credentials (id, data)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
		RETURNING id
	`
	var storedID string
	err = s.db.QueryRowContext(ctx, query, record.ID, data).Scan(&storedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrConflict
		}
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Exists reports whether a record with the given ID is present.
func (s *PostgresStore) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM credentials WHERE id = $1)`
	var found bool
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&found); err != nil {
		return false, fmt.Errorf("check credential: %w", err)
	}
	return found, nil
}

// Get retrieves a record by ID or returns ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, id string) (models.Record, error) {
	query := `SELECT data FROM credentials WHERE id = $1`
	var data []byte
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Record{}, ErrNotFound
		}
		return models.Record{}, fmt.Errorf("get credential: %w", err)
	}
	var record models.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return models.Record{}, fmt.Errorf("unmarshal credential record: %w", err)
	}
	return record, nil
}

// ListIDs returns all stored credential IDs.
func (s *PostgresStore) ListIDs(ctx context.Context) ([]string, error) {
	query := `SELECT id FROM credentials ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan credential id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return ids, nil
}

// Health checks if the database is reachable.
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

var _ Store = (*PostgresStore)(nil)

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type postgresSnapshotRepository struct {
	db *sql.DB
}

// NewPostgresSnapshotRepository creates a SnapshotRepository backed by the
// store_snapshots table
func NewPostgresSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &postgresSnapshotRepository{db: db}
}

// Load retrieves a snapshot by key using parameterized queries
func (r *postgresSnapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT data
		FROM store_snapshots
		WHERE key = $1
	`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return data, nil
}

// Save upserts a snapshot using parameterized queries
func (r *postgresSnapshotRepository) Save(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO store_snapshots (key, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, key, data); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// Delete removes a snapshot using parameterized queries
func (r *postgresSnapshotRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM store_snapshots WHERE key = $1`

	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	return nil
}

// Package tombstones provides the PostgreSQL-backed repository for deletion
// markers consulted by import and sync pipelines.
package tombstones

import (
	"context"
	"fmt"

	"github.com/avoronova/kinkeeper/internal/dbx"
	"github.com/avoronova/kinkeeper/internal/server/models"
)

// PostgresRepository implements tombstone storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert adds a tombstone row. The unique constraint on
// (user_id, source, external_id) is the sole concurrency control: a
// conflicting concurrent insert ends up as ON CONFLICT DO NOTHING, which
// Insert reports as inserted=false with a nil error.
func (r *PostgresRepository) Insert(ctx context.Context, tombstone *models.Tombstone) (bool, error) {
	query := `
		INSERT INTO tombstones (id, user_id, source, external_id, entity_name, entity_email, inserted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, source, external_id) DO NOTHING;
	`
	res, err := r.db.ExecContext(ctx, query,
		tombstone.ID, tombstone.UserID, tombstone.Source, tombstone.ExternalID,
		tombstone.EntityName, tombstone.EntityEmail, tombstone.InsertedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

// Exists reports whether a tombstone row exists for the exact
// (user_id, source, external_id) key.
func (r *PostgresRepository) Exists(ctx context.Context, userID, source, externalID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM tombstones
			WHERE user_id = $1 AND source = $2 AND external_id = $3
		);
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, source, externalID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// SelectExternalIDs returns every tombstoned external id for userID under the
// given source, in one round-trip.
func (r *PostgresRepository) SelectExternalIDs(ctx context.Context, userID, source string) ([]string, error) {
	query := `
		SELECT external_id FROM tombstones
		WHERE user_id = $1 AND source = $2;
	`
	rows, err := r.db.QueryContext(ctx, query, userID, source)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SelectByUser returns all tombstones belonging to userID, newest first.
func (r *PostgresRepository) SelectByUser(ctx context.Context, userID string) ([]*models.Tombstone, error) {
	query := `
		SELECT id, user_id, source, external_id, entity_name, entity_email, inserted_at
		FROM tombstones
		WHERE user_id = $1
		ORDER BY inserted_at DESC;
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Tombstone
	for rows.Next() {
		var item models.Tombstone
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Source, &item.ExternalID,
			&item.EntityName, &item.EntityEmail, &item.InsertedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the tombstone with the exact key. Zero rows affected means
// there was nothing to delete, which is fine.
func (r *PostgresRepository) Delete(ctx context.Context, userID, source, externalID string) error {
	query := `
		DELETE FROM tombstones
		WHERE user_id = $1 AND source = $2 AND external_id = $3;
	`
	if _, err := r.db.ExecContext(ctx, query, userID, source, externalID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

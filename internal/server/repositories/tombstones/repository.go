package tombstones

import (
	"context"

	"github.com/avoronova/kinkeeper/internal/server/models"
)

type Repository interface {
	// Insert stores a tombstone. It reports whether a new row was created;
	// an existing row with the same (user_id, source, external_id) is not an
	// error, the insert just does nothing.
	Insert(ctx context.Context, tombstone *models.Tombstone) (bool, error)

	// Exists reports whether a tombstone exists for the exact key.
	Exists(ctx context.Context, userID, source, externalID string) (bool, error)

	// SelectExternalIDs returns every external id tombstoned for the user
	// under the given source.
	SelectExternalIDs(ctx context.Context, userID, source string) ([]string, error)

	// SelectByUser returns all of the user's tombstones across all sources.
	SelectByUser(ctx context.Context, userID string) ([]*models.Tombstone, error)

	// Delete removes the tombstone with the exact key. Deleting a missing
	// row is not an error.
	Delete(ctx context.Context, userID, source, externalID string) error
}

// Package services contains server-side business logic. This file implements
// TombstoneService, the operations the contact CRUD context and the
// import/sync pipeline use to record, query, and remove deletion markers.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avoronova/kinkeeper/internal/server/metrics"
	"github.com/avoronova/kinkeeper/internal/server/models"
	"github.com/avoronova/kinkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// TombstoneService provides the import-deduplication operations:
//   - RecordDeletedImport / RecordDeletedImports: mark external ids as deleted
//   - IsDeletedImport / AnyDeletedImport / GetDeletedExternalIDs /
//     ListDeletedImports: queries for import pipelines
//   - UndeleteImport: remove a marker when a user restores a contact
//
// All operations are scoped by user; no call can observe another user's rows.
type TombstoneService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewTombstoneService constructs a TombstoneService over the shared DB handle.
func NewTombstoneService(db *sql.DB, m repomanager.RepositoryManager) *TombstoneService {
	return &TombstoneService{db: db, repomanager: m}
}

// RecordDeletedImport ensures a tombstone exists for
// (userID, source, externalID). Recording an already-tombstoned key is a
// success, not an error: the unique constraint turns the insert into a no-op.
// The snapshot is audit-only and is not written on the duplicate path.
func (s *TombstoneService) RecordDeletedImport(ctx context.Context, userID, externalID, source string, snapshot models.ContactSnapshot) (*models.Tombstone, error) {
	repo := s.repomanager.Tombstones(s.db)

	tombstone := &models.Tombstone{
		ID:          uuid.NewString(),
		UserID:      userID,
		Source:      source,
		ExternalID:  externalID,
		EntityName:  snapshot.Name,
		EntityEmail: snapshot.Email,
		InsertedAt:  time.Now().UTC(),
	}

	inserted, err := repo.Insert(ctx, tombstone)
	if err != nil {
		return nil, fmt.Errorf("error recording tombstone: %w", err)
	}
	if inserted {
		metrics.TombstonesRecorded.Inc()
	} else {
		metrics.TombstoneDuplicates.Inc()
	}
	return tombstone, nil
}

// RecordDeletedImports records one tombstone per (source, external_id) pair
// in the map. Pairs are recorded independently, best-effort: a failure aborts
// the loop but rows inserted before it stay valid. An empty or nil map is a
// valid no-op.
func (s *TombstoneService) RecordDeletedImports(ctx context.Context, userID string, externalIDsBySource map[string]string, snapshot models.ContactSnapshot) error {
	for source, externalID := range externalIDsBySource {
		if source == "" || externalID == "" {
			continue
		}
		if _, err := s.RecordDeletedImport(ctx, userID, externalID, source, snapshot); err != nil {
			return err
		}
	}
	return nil
}

// IsDeletedImport reports whether (userID, source, externalID) is tombstoned.
func (s *TombstoneService) IsDeletedImport(ctx context.Context, userID, externalID, source string) (bool, error) {
	repo := s.repomanager.Tombstones(s.db)

	deleted, err := repo.Exists(ctx, userID, source, externalID)
	if err != nil {
		return false, fmt.Errorf("error checking tombstone: %w", err)
	}
	if deleted {
		metrics.ImportSuppressions.Inc()
	}
	return deleted, nil
}

// AnyDeletedImport reports whether at least one (source, external_id) pair in
// the map is tombstoned for the user. It short-circuits on the first match
// and otherwise inspects every entry.
func (s *TombstoneService) AnyDeletedImport(ctx context.Context, userID string, externalIDsBySource map[string]string) (bool, error) {
	for source, externalID := range externalIDsBySource {
		deleted, err := s.IsDeletedImport(ctx, userID, externalID, source)
		if err != nil {
			return false, err
		}
		if deleted {
			return true, nil
		}
	}
	return false, nil
}

// GetDeletedExternalIDs returns the set of external ids tombstoned for the
// user under one source, so an import scan can do O(1) membership checks
// instead of one query per candidate id.
func (s *TombstoneService) GetDeletedExternalIDs(ctx context.Context, userID, source string) (map[string]struct{}, error) {
	repo := s.repomanager.Tombstones(s.db)

	ids, err := repo.SelectExternalIDs(ctx, userID, source)
	if err != nil {
		return nil, fmt.Errorf("error listing tombstoned ids: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// ListDeletedImports returns all of the user's tombstones. Inspection and
// debugging only, not a hot path.
func (s *TombstoneService) ListDeletedImports(ctx context.Context, userID string) ([]*models.Tombstone, error) {
	repo := s.repomanager.Tombstones(s.db)

	result, err := repo.SelectByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing tombstones: %w", err)
	}
	return result, nil
}

// UndeleteImport removes the tombstone for (userID, source, externalID), so
// the next sync may re-import the contact. Undeleting a key that was never
// tombstoned is a no-op success; callers need not check existence first.
func (s *TombstoneService) UndeleteImport(ctx context.Context, userID, externalID, source string) error {
	repo := s.repomanager.Tombstones(s.db)

	if err := repo.Delete(ctx, userID, source, externalID); err != nil {
		return fmt.Errorf("error removing tombstone: %w", err)
	}
	metrics.Undeletes.Inc()
	return nil
}

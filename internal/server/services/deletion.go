package services

import (
	"context"

	"github.com/avoronova/kinkeeper/internal/logging"
	"github.com/avoronova/kinkeeper/internal/server/externalids"
	"github.com/avoronova/kinkeeper/internal/server/models"
)

// DeletionHook is invoked by the contact CRUD context at the moment a contact
// is deleted. It resolves the contact's external-identifier metadata and
// records a tombstone for every (source, external_id) pair, so later syncs do
// not resurrect the contact.
type DeletionHook struct {
	tombstones *TombstoneService
	logger     logging.Logger
}

// NewDeletionHook constructs a DeletionHook over the tombstone service.
func NewDeletionHook(ts *TombstoneService, l logging.Logger) *DeletionHook {
	return &DeletionHook{
		tombstones: ts,
		logger:     l.With("module", "deletion_hook"),
	}
}

// HandleContactDeleted records tombstones for the deleted contact's external
// identifiers. A contact with no usable identifiers resolves to a no-op and
// the deletion still succeeds. Store failures propagate to the caller; the
// CRUD context decides whether that fails its deletion transaction.
func (h *DeletionHook) HandleContactDeleted(ctx context.Context, contact *models.DeletedContact) error {
	resolution := externalids.Resolve(contact.Metadata)
	if resolution.Kind == externalids.None {
		h.logger.Debug(ctx, "no external ids on deleted contact", "user_id", contact.UserID)
		return nil
	}

	snapshot := models.ContactSnapshot{Name: contact.Name, Email: contact.Email}

	if err := h.tombstones.RecordDeletedImports(ctx, contact.UserID, resolution.IDs, snapshot); err != nil {
		h.logger.Error(ctx, "failed to record tombstones for deleted contact",
			"user_id", contact.UserID, "error", err.Error())
		return err
	}

	h.logger.Info(ctx, "recorded tombstones for deleted contact",
		"user_id", contact.UserID, "count", len(resolution.IDs))
	return nil
}

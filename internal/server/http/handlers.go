package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/avoronova/kinkeeper/internal/server/models"
)

type tombstoneResponse struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	ExternalID  string    `json:"external_id"`
	EntityName  string    `json:"entity_name,omitempty"`
	EntityEmail string    `json:"entity_email,omitempty"`
	InsertedAt  time.Time `json:"inserted_at"`
}

func toTombstoneResponse(t *models.Tombstone) tombstoneResponse {
	return tombstoneResponse{
		ID:          t.ID,
		Source:      t.Source,
		ExternalID:  t.ExternalID,
		EntityName:  t.EntityName,
		EntityEmail: t.EntityEmail,
		InsertedAt:  t.InsertedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleRecord records a single tombstone.
//
// POST /v1/tombstones
// {"source": "google_contacts", "external_id": "people/123",
//  "entity_name": "...", "entity_email": "..."}
func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source      string `json:"source"`
		ExternalID  string `json:"external_id"`
		EntityName  string `json:"entity_name"`
		EntityEmail string `json:"entity_email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Source == "" || req.ExternalID == "" {
		writeError(w, http.StatusBadRequest, "source and external_id are required")
		return
	}

	userID := userIDFromContext(r.Context())
	snapshot := models.ContactSnapshot{Name: req.EntityName, Email: req.EntityEmail}

	tombstone, err := s.tombstones.RecordDeletedImport(r.Context(), userID, req.ExternalID, req.Source, snapshot)
	if err != nil {
		s.logger.Error(r.Context(), "record tombstone failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toTombstoneResponse(tombstone))
}

// handleRecordBulk records one tombstone per (source, external_id) pair.
//
// POST /v1/tombstones/bulk
// {"external_ids": {"google_contacts": "people/123", "gmail": "gmail:x"}, ...}
func (s *Server) handleRecordBulk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExternalIDs map[string]string `json:"external_ids"`
		EntityName  string            `json:"entity_name"`
		EntityEmail string            `json:"entity_email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	userID := userIDFromContext(r.Context())
	snapshot := models.ContactSnapshot{Name: req.EntityName, Email: req.EntityEmail}

	if err := s.tombstones.RecordDeletedImports(r.Context(), userID, req.ExternalIDs, snapshot); err != nil {
		s.logger.Error(r.Context(), "bulk record tombstones failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleList returns all of the user's tombstones.
//
// GET /v1/tombstones
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	list, err := s.tombstones.ListDeletedImports(r.Context(), userID)
	if err != nil {
		s.logger.Error(r.Context(), "list tombstones failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]tombstoneResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTombstoneResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetIDs returns the tombstoned external ids for one source.
//
// GET /v1/tombstones/ids?source=google_contacts
func (s *Server) handleGetIDs(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		writeError(w, http.StatusBadRequest, "source is required")
		return
	}

	userID := userIDFromContext(r.Context())

	set, err := s.tombstones.GetDeletedExternalIDs(r.Context(), userID, source)
	if err != nil {
		s.logger.Error(r.Context(), "get tombstoned ids failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	writeJSON(w, http.StatusOK, map[string][]string{"external_ids": ids})
}

// handleCheck answers an existence check for one pair.
//
// GET /v1/tombstones/check?source=gmail&external_id=gmail:x
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	externalID := r.URL.Query().Get("external_id")
	if source == "" || externalID == "" {
		writeError(w, http.StatusBadRequest, "source and external_id are required")
		return
	}

	userID := userIDFromContext(r.Context())

	deleted, err := s.tombstones.IsDeletedImport(r.Context(), userID, externalID, source)
	if err != nil {
		s.logger.Error(r.Context(), "tombstone check failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// handleCheckAny answers whether any pair of the map is tombstoned.
//
// POST /v1/tombstones/check
// {"external_ids": {"google_contacts": "people/123", "gmail": "gmail:x"}}
func (s *Server) handleCheckAny(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExternalIDs map[string]string `json:"external_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	userID := userIDFromContext(r.Context())

	deleted, err := s.tombstones.AnyDeletedImport(r.Context(), userID, req.ExternalIDs)
	if err != nil {
		s.logger.Error(r.Context(), "tombstone check-any failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// handleUndelete removes a tombstone so the contact can be re-imported.
// Undeleting a key that is not tombstoned still answers 204.
//
// DELETE /v1/tombstones?source=gmail&external_id=gmail:x
func (s *Server) handleUndelete(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	externalID := r.URL.Query().Get("external_id")
	if source == "" || externalID == "" {
		writeError(w, http.StatusBadRequest, "source and external_id are required")
		return
	}

	userID := userIDFromContext(r.Context())

	if err := s.tombstones.UndeleteImport(r.Context(), userID, externalID, source); err != nil {
		s.logger.Error(r.Context(), "undelete failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleContactDeleted is the deletion hook called by the CRUD context when a
// contact is deleted. A contact without importable identifiers answers 204
// with nothing recorded.
//
// POST /v1/hooks/contact-deleted
// {"name": "...", "email": "...", "metadata": {...}}
func (s *Server) handleContactDeleted(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string         `json:"name"`
		Email    string         `json:"email"`
		Metadata map[string]any `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	contact := &models.DeletedContact{
		UserID:   userIDFromContext(r.Context()),
		Name:     req.Name,
		Email:    req.Email,
		Metadata: req.Metadata,
	}

	if err := s.hook.HandleContactDeleted(r.Context(), contact); err != nil {
		s.logger.Error(r.Context(), "deletion hook failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Package http exposes the tombstone operations over an authenticated
// HTTP/JSON API consumed by the contact CRUD context and the import/sync
// pipeline.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/avoronova/kinkeeper/internal/logging"
	"github.com/avoronova/kinkeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// tombstoneOps is the slice of the tombstone service the handlers use.
type tombstoneOps interface {
	RecordDeletedImport(ctx context.Context, userID, externalID, source string, snapshot models.ContactSnapshot) (*models.Tombstone, error)
	RecordDeletedImports(ctx context.Context, userID string, externalIDsBySource map[string]string, snapshot models.ContactSnapshot) error
	IsDeletedImport(ctx context.Context, userID, externalID, source string) (bool, error)
	AnyDeletedImport(ctx context.Context, userID string, externalIDsBySource map[string]string) (bool, error)
	GetDeletedExternalIDs(ctx context.Context, userID, source string) (map[string]struct{}, error)
	ListDeletedImports(ctx context.Context, userID string) ([]*models.Tombstone, error)
	UndeleteImport(ctx context.Context, userID, externalID, source string) error
}

// deletionHook is the deletion-boundary adapter invoked by the CRUD context.
type deletionHook interface {
	HandleContactDeleted(ctx context.Context, contact *models.DeletedContact) error
}

type Server struct {
	address    string
	logger     logging.Logger
	tombstones tombstoneOps
	hook       deletionHook
	jwtSecret  []byte
}

func NewServer(address string, l logging.Logger, tombstones tombstoneOps, hook deletionHook, secretKey string) *Server {
	return &Server{
		address:    address,
		logger:     l.With("module", "http_server"),
		tombstones: tombstones,
		hook:       hook,
		jwtSecret:  []byte(secretKey),
	}
}

// Router builds the chi mux. External IDs may contain slashes (e.g. Google
// People resource names), so they travel in query strings or JSON bodies,
// never in URL path segments.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Route("/tombstones", func(r chi.Router) {
			r.Post("/", s.handleRecord)
			r.Post("/bulk", s.handleRecordBulk)
			r.Get("/", s.handleList)
			r.Get("/ids", s.handleGetIDs)
			r.Get("/check", s.handleCheck)
			r.Post("/check", s.handleCheckAny)
			r.Delete("/", s.handleUndelete)
		})

		r.Post("/hooks/contact-deleted", s.handleContactDeleted)
	})

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

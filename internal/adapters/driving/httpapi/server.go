// Package httpapi exposes the pipeline over a JSON HTTP API.
//
// Every route except the scheduled trigger is scoped to the organisation
// named by the X-Organization-ID header.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
)

// Header names.
const (
	TenantHeader     = "X-Organization-ID"
	CronSecretHeader = "X-Cron-Secret"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// maxUploadBytes caps a multipart upload.
const maxUploadBytes = 32 << 20

// ErrMissingDocuments is returned when the document registry is not provided.
var ErrMissingDocuments = errors.New("httpapi: document registry is required")

// Ports holds the services the API drives. Only Documents is required;
// routes whose service is nil answer 503.
type Ports struct {
	Documents  driving.DocumentRegistry
	Processor  driving.ProcessingService
	Retrieval  driving.RetrievalService
	Crawl      driving.CrawlService
	Dedup      driving.Deduplicator
	Recovery   driving.CorruptionRecovery
	Embeddings driving.EmbeddingRegenerator
	Requeue    driving.RequeueOrchestrator
}

// Config holds API settings.
type Config struct {
	// CronSecret authenticates the scheduled trigger. Empty rejects every call.
	CronSecret string
}

// Server serves the HTTP API.
type Server struct {
	ports  Ports
	config Config
	router chi.Router
}

// NewServer builds the router.
func NewServer(ports Ports, config Config) (*Server, error) {
	if ports.Documents == nil {
		return nil, ErrMissingDocuments
	}
	s := &Server{ports: ports, config: config}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/cron/nightly-crawl", s.handleCronNightly)

	r.Group(func(r chi.Router) {
		r.Use(requireTenant)

		r.Route("/v1/documents", func(r chi.Router) {
			r.Get("/", s.handleListDocuments)
			r.Post("/", s.handleUploadDocument)
			r.Get("/{id}", s.handleGetDocument)
			r.Post("/{id}/reprocess", s.handleReprocessDocument)
			r.Post("/{id}/requeue", s.handleRequeueDocument)
		})

		r.Route("/v1/maintenance", func(r chi.Router) {
			r.Post("/dedup", s.handleDedup)
			r.Post("/corruption", s.handleCorruption)
			r.Post("/embeddings", s.handleEmbeddings)
		})

		r.Get("/v1/domains", s.handleListDomains)
		r.Post("/v1/domains", s.handleRegisterDomain)
		r.Post("/v1/crawl/trigger", s.handleCrawlTrigger)
		r.Get("/v1/crawl/status", s.handleCrawlStatus)

		r.Post("/v1/search", s.handleSearch)
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("httpapi: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type tenantKey struct{}

// requireTenant rejects requests without an organisation header.
func requireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get(TenantHeader)
		if tenantID == "" {
			writeError(w, http.StatusBadRequest, TenantHeader+" header is required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tenantKey{}, tenantID)))
	})
}

func tenantFrom(r *http.Request) string {
	tenantID, _ := r.Context().Value(tenantKey{}).(string)
	return tenantID
}

// requestLogger logs each request in verbose mode.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("httpapi: %s %s %d %s [%s]",
			r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
	})
}

// Package httpx exposes the engine's JSON API: record inspection, the human
// review surface, resume intake, and on-demand discovery runs.
package httpx

import (
	"log/slog"
	"net/http"

	"github.com/applyforge/applyforge/internal/adapters/extract"
	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Applications *service.ApplicationService
	Review       *service.ReviewService
	Discovery    *service.DiscoveryService
	Resumes      core.ResumeStore
	Extractor    *extract.TextExtractor
	Logger       *slog.Logger // optional
}

// NewRouter creates and configures the API router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	recordHandlers := &RecordHandlers{Svc: services.Applications}
	reviewHandlers := &ReviewHandlers{Svc: services.Review}
	resumeHandlers := &ResumeHandlers{Store: services.Resumes, Extractor: services.Extractor}
	discoveryHandlers := &DiscoveryHandlers{Svc: services.Discovery, Logger: services.Logger}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	mux.Handle("GET /api/records", http.HandlerFunc(recordHandlers.List))
	mux.Handle("GET /api/records/{id}", http.HandlerFunc(recordHandlers.Get))
	mux.Handle("GET /api/stats", http.HandlerFunc(recordHandlers.Stats))

	mux.Handle("GET /api/review/pending", http.HandlerFunc(reviewHandlers.ListPending))
	mux.Handle("POST /api/review/{id}/approve", http.HandlerFunc(reviewHandlers.Approve))
	mux.Handle("POST /api/review/{id}/decline", http.HandlerFunc(reviewHandlers.Decline))

	mux.Handle("POST /api/resumes", http.HandlerFunc(resumeHandlers.Upload))
	mux.Handle("GET /api/resumes/{id}", http.HandlerFunc(resumeHandlers.Get))

	mux.Handle("POST /api/discover", http.HandlerFunc(discoveryHandlers.Discover))

	return mux
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/neo-impact-service/internal/assistant"
	"github.com/couchcryptid/neo-impact-service/internal/catalog"
	"github.com/couchcryptid/neo-impact-service/internal/domain"
	"github.com/couchcryptid/neo-impact-service/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// CatalogSource supplies the asteroid catalog.
type CatalogSource interface {
	Asteroids(ctx context.Context) ([]catalog.Asteroid, error)
}

// Assistant answers explain and ask requests.
type Assistant interface {
	Explain(ctx context.Context, term string) (assistant.Explanation, error)
	Ask(ctx context.Context, query, language string) (string, error)
}

// AssessmentSink receives every successful computation. Enqueue must not block.
type AssessmentSink interface {
	Enqueue(a domain.Assessment)
}

// Options wires the server's collaborators. Sink may be nil.
type Options struct {
	Addr           string
	GameOrigin     string
	AllowedOrigins []string

	Catalog   CatalogSource
	Assistant Assistant
	Sink      AssessmentSink
	Ready     sharedobs.ReadinessChecker

	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Server exposes the impact API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	catalog    CatalogSource
	assistant  Assistant
	sink       AssessmentSink
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates the HTTP server and registers every route.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		catalog:   opts.Catalog,
		assistant: opts.Assistant,
		sink:      opts.Sink,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(opts.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/asteroids", s.handleAsteroids)
	mux.HandleFunc("POST /api/impact", s.handleImpact)
	mux.HandleFunc("POST /api/impact-details", s.handleImpactDetails)
	mux.HandleFunc("POST /api/ai-explain", s.handleExplain)
	mux.HandleFunc("POST /api/ask-ai", s.handleAsk)

	var handler http.Handler = s.instrument(mux)
	handler = requestID(handler)
	handler = cors(opts.AllowedOrigins)(handler)
	handler = securityHeaders(opts.GameOrigin)(handler)
	handler = otelhttp.NewHandler(handler, "impact-api")

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// errorBody is the error envelope shared by every API route.
type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, body errorBody) {
	body.Status = "error"
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		// Non-finite floats are the only realistic cause.
		slog.Default().Error("encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"error","message":"result is not representable as JSON"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

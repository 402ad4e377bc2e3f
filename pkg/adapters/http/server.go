package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	cloudify "github.com/NotMyFault/cloudify-plugin"
	"github.com/NotMyFault/cloudify-plugin/pkg/codec"
	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
	"github.com/NotMyFault/cloudify-plugin/pkg/mapping"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 8 << 20

var errBadRequest = errors.New("bad request")

// Engine defines the transform core served over HTTP.
type Engine interface {
	Transform(ctx context.Context, outputs, spec *domain.Document) (*domain.Document, error)
}

// Server serves the stateless transform API.
type Server struct {
	Engine Engine
	Logger *slog.Logger
}

// Option configures the handler built by NewHandler.
type Option func(*handlerConfig)

type handlerConfig struct {
	logger  *slog.Logger
	metrics http.Handler
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *handlerConfig) {
		c.logger = logger
	}
}

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(c *handlerConfig) {
		c.metrics = h
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	cfg := &handlerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	server := &Server{Engine: engine, Logger: cfg.logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/transform", server.Transform)
	r.Post("/validate", server.Validate)
	r.Get("/healthz", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if cfg.metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Transform handles POST /transform.
// The body is a JSON or YAML document with the members "outputs" and "mapping".
// Each member is either a nested document or a string holding JSON or YAML text.
func (s *Server) Transform(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	envelope, err := codec.ParseFrom("request body", body)
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	outputs, err := member(envelope, "outputs")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	spec, err := member(envelope, "mapping")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.Engine.Transform(r.Context(), outputs, spec)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data, err := codec.Encode(result, true)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.Logger.Debug("Transform: done", "keys", result.Len(), "request_id", middleware.GetReqID(r.Context()))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Validate handles POST /validate. The body is the mapping document itself.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	spec, err := codec.ParseFrom("mapping", body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := mapping.Validate(spec); err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "entries": spec.Len()})
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "cfy-outputs",
		"version": strings.TrimSpace(cloudify.Version),
	})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large", Kind: "request"})
			s.Logger.Warn("Request body too large", "path", r.URL.Path, "limit", tooLarge.Limit)
			return nil, false
		}
		s.fail(w, r, fmt.Errorf("%w: cannot read request body: %w", errBadRequest, err))
		return nil, false
	}
	return body, true
}

// member extracts a nested document, or parses text, from the request envelope.
func member(envelope *domain.Document, name string) (*domain.Document, error) {
	value, ok := envelope.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", errBadRequest, name)
	}
	switch v := value.(type) {
	case *domain.Document:
		return v, nil
	case string:
		return codec.ParseFrom(name, []byte(v))
	default:
		return nil, fmt.Errorf("%w: %q must be a mapping or a string, got %T", errBadRequest, name, value)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func statusFor(err error) (int, string) {
	if errors.Is(err, errBadRequest) {
		return http.StatusBadRequest, "request"
	}
	kind := domain.Kind(err)
	switch kind {
	case "parse", "mapping":
		return http.StatusUnprocessableEntity, kind
	case "config":
		return http.StatusBadRequest, kind
	default:
		return http.StatusInternalServerError, kind
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("Request failed", "path", r.URL.Path, "error", err)
	} else {
		s.Logger.Warn("Request rejected", "path", r.URL.Path, "kind", kind, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"github.com/poiesic/namescan/action"
	"github.com/poiesic/namescan/core"
	"github.com/poiesic/namescan/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBodyBytes bounds request bodies; both payloads are a handful of short strings.
const maxBodyBytes = 1 << 16

// Searcher runs a name search across every configured target.
type Searcher interface {
	Search(ctx context.Context, name string) ([]core.AggregatedRecord, error)
	SearchDetailed(ctx context.Context, name string) (*core.SearchResponse, error)
}

// Processor applies a mask or delete decision.
type Processor interface {
	Process(ctx context.Context, decision *core.Decision) (*action.Result, error)
}

// TargetLister lists the configured search targets.
type TargetLister interface {
	List() []core.SearchTarget
}

// errorHandler tries to handle an error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the HTTP API.
type Server struct {
	searcher      Searcher
	processor     Processor
	targets       TargetLister
	metrics       *metrics.Metrics
	logger        *slog.Logger
	errorHandlers []errorHandler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// WithMetrics instruments every route and mounts GET /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer creates an HTTP API server.
func NewServer(searcher Searcher, processor Processor, targets TargetLister, opts ...Option) (*Server, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if processor == nil {
		return nil, ErrProcessorRequired
	}
	if targets == nil {
		return nil, ErrTargetsRequired
	}

	s := &Server{
		searcher:  searcher,
		processor: processor,
		targets:   targets,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "httpapi")
	s.errorHandlers = []errorHandler{
		sentinelHandler(core.ErrInvalidAction, http.StatusBadRequest, codeInvalidAction),
		sentinelHandler(core.ErrInvalidDecision, http.StatusBadRequest, codeValidation),
	}

	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverer)
	r.Use(middleware.RequestID)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware())
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Post("/search", s.handleSearch)
	r.Post("/process", s.handleProcess)
	r.Get("/targets", s.handleTargets)
	r.Get("/healthz", s.handleHealth)
	return r
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}
	// A blank name is searched like any other and yields no records.
	name := req.fullName()

	detail, _ := strconv.ParseBool(r.URL.Query().Get("detail"))
	if detail {
		resp, err := s.searcher.SearchDetailed(r.Context(), name)
		if err != nil {
			s.handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDetailResponse(resp))
		return
	}

	records, err := s.searcher.Search(r.Context(), name)
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(records))
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}
	decision, err := req.decision()
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	result, err := s.processor.Process(r.Context(), decision)
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProcessResponse(result))
}

func (s *Server) handleTargets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.targets.List())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"targets": len(s.targets.List()),
	})
}

func (s *Server) handleError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			s.logger.Warn("request rejected", "err", err)
			return
		}
	}
	s.logger.Error("internal error", "err", err)
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				s.logger.Error("panic recovered", "panic", rvr, "path", r.URL.Path)
				writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// sentinelHandler answers status with err's message when err wraps sentinel.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// Package api exposes the conversion service over HTTP.
package api

import (
	"context"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/okian/spadl/internal/adapters/http/swagger"
	"github.com/okian/spadl/internal/adapters/repository"
	"github.com/okian/spadl/internal/domain/model"
	"github.com/okian/spadl/internal/domain/schema"
	"github.com/okian/spadl/internal/domain/types"
	"github.com/okian/spadl/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Submit queues a game for asynchronous conversion.
	Submit(ctx context.Context, j model.Job) (model.Job, error)

	// ConvertGame converts a game synchronously.
	ConvertGame(ctx context.Context, j model.Job) (repository.Result, error)

	Result(ctx context.Context, gameID string) (repository.Result, error)
	Games(ctx context.Context) []string
	Discard(ctx context.Context, gameID string) error

	// Validate checks action rows against the canonical contract.
	Validate(rows []schema.Row) ([]schema.Row, error)
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the conversion API.
type Server struct {
	deps     Dependencies
	stats    StatsProvider
	validate *validator.Validate
	logger   logger.Logger

	rateLimitRPS   float64
	rateLimitBurst int
	maxBodyBytes   int64
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, stats StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:           deps,
		stats:          stats,
		validate:       validator.New(),
		rateLimitRPS:   defaultRateLimitRPS,
		rateLimitBurst: defaultRateLimitBurst,
		maxBodyBytes:   defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	return s
}

// Router returns the HTTP handler serving every route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)

	r.Get("/healthz", s.HandleHealth)
	r.Handle("/metrics", MetricsHandler())
	swagger.Register(r)

	r.Group(func(r chi.Router) {
		if s.rateLimitRPS > 0 {
			r.Use(RateLimitMiddleware(s.rateLimitRPS, s.rateLimitBurst))
		}
		r.Get("/stats", s.HandleStats)
		r.Get("/games", s.HandleListGames)
		r.Route("/games/{gameID}", func(r chi.Router) {
			r.Post("/", s.HandleSubmitGame)
			r.Delete("/", s.HandleDiscardGame)
			r.Get("/actions", s.HandleGetActions)
			r.Get("/minutes", s.HandleGetMinutes)
		})
		r.Post("/convert/{gameID}", s.HandleConvertGame)
		r.Post("/validate", s.HandleValidate)
	})
	return r
}

// readBody reads the whole request body within the configured limit.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errors.Mark(errors.Wrapf(err, "limit %d bytes", s.maxBodyBytes), ErrTooLarge)
		}
		return nil, errors.Mark(errors.Wrap(err, "read body"), ErrBadRequest)
	}
	if len(body) == 0 {
		return nil, errors.Wrap(ErrBadRequest, "empty body")
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, types.ErrorResponse{Error: msg})
}

// statusOf maps an error to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

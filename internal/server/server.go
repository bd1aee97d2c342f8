package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"vct-status/internal/config"
	"vct-status/internal/constants"
	"vct-status/internal/database"
	"vct-status/internal/domain"
	"vct-status/internal/middleware"
	"vct-status/internal/repository"
	"vct-status/internal/service"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

var numericID = regexp.MustCompile(`^\d+$`)

// Server is the read-only JSON view of the stored data.
type Server struct {
	reads  *repository.ReadRepository
	sqlDB  *sql.DB
	logger zerolog.Logger
}

func New(reads *repository.ReadRepository, sqlDB *sql.DB, logger zerolog.Logger) *Server {
	return &Server{reads: reads, sqlDB: sqlDB, logger: logger}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	r.Use(middleware.RequestID(s.logger))
	r.Use(middleware.Recover)
	r.Use(c.Handler)

	r.Get("/healthz", s.healthz)
	r.Route("/api", func(r chi.Router) {
		r.Get("/matches", s.listMatches)
		r.Get("/matches/{sourceID}", s.getMatch)
		r.Get("/players/{id}/matches", s.playerMatches)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, crerr.Wrapf(service.ErrNotFound, "no route for %s", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, crerr.Wrapf(service.ErrInvalidInput, "method %s not allowed", r.Method))
	})
	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	version, err := database.Ping(s.sqlDB)
	if err != nil {
		s.logger.Error().Err(err).Msg("health check failed")
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "schema_version": version})
}

func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && domain.ParseMatchStatus(status) != domain.MatchStatus(status) {
		s.writeError(w, r, crerr.Wrapf(service.ErrInvalidInput, "unknown status %q", status))
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	matches, err := s.reads.ListMatches(r.Context(), status, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"matches": matches, "count": len(matches)})
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "sourceID")
	if !numericID.MatchString(sourceID) {
		s.writeError(w, r, crerr.Wrapf(service.ErrInvalidInput, "match id %q must be numeric", sourceID))
		return
	}

	match, err := s.reads.GetMatch(r.Context(), sourceID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if match == nil {
		s.writeError(w, r, crerr.Wrapf(service.ErrNotFound, "match %s", sourceID))
		return
	}

	players, err := s.reads.ListMatchStats(r.Context(), match.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"match": match, "players": players})
}

func (s *Server) playerMatches(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !numericID.MatchString(id) {
		s.writeError(w, r, crerr.Wrapf(service.ErrInvalidInput, "player id %q must be numeric", id))
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	player, err := s.reads.GetPlayer(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if player == nil {
		s.writeError(w, r, crerr.Wrapf(service.ErrNotFound, "player %s", id))
		return
	}

	matches, err := s.reads.ListPlayerMatches(r.Context(), player.ID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"player": player, "matches": matches})
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return constants.DefaultListLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, crerr.Wrapf(service.ErrInvalidInput, "limit %q must be a positive integer", raw)
	}
	return min(limit, constants.MaxListLimit), nil
}

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "internal"
	message := "internal error"

	switch {
	case crerr.Is(err, service.ErrInvalidInput):
		status, code, message = http.StatusBadRequest, "invalid_input", err.Error()
	case crerr.Is(err, service.ErrNotFound):
		status, code, message = http.StatusNotFound, "not_found", err.Error()
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("stack", fmt.Sprintf("%+v", err)).Msg("request failed")
	}

	s.writeJSON(w, status, errorBody{
		Error:     code,
		Message:   message,
		RequestID: middleware.GetRequestID(r.Context()),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := sonic.ConfigDefault.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write response")
	}
}

// Register serves Routes on the configured port for the lifetime of the fx app.
func Register(lc fx.Lifecycle, srv *Server, cfg *config.Config, sqlDB *sql.DB, logger zerolog.Logger) {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: constants.RequestTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", httpServer.Addr).Msg("server starting")
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}

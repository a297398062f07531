package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"mcts/communication"
	"mcts/export"
	"mcts/game"
	"mcts/searcher"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RulesFactory builds the rules for a search from the requested history, with
// the player to move as maximizer.
type RulesFactory func(history []game.Action) (game.Rules, error)

// Limits caps the budget a single request may ask for. Zero fields leave that
// budget uncapped.
type Limits struct {
	MaxIterations int
	MaxRuntime    float64 // Seconds
}

type Server struct {
	rules    RulesFactory
	limits   Limits
	defaults []searcher.Option
}

// NewServer returns a search server. defaults apply to every request before the
// request's own budget, which is clamped to limits.
func NewServer(rules RulesFactory, limits Limits, defaults ...searcher.Option) *Server {
	return &Server{rules: rules, limits: limits, defaults: defaults}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Post(communication.SearchPath, s.handleSearch)
	return r
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener, which it closes.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	// Writes must outlast the longest search a request may run
	writeTimeout := 30 * time.Second
	if s.limits.MaxRuntime > 0 {
		writeTimeout += searcher.Seconds(s.limits.MaxRuntime)
	} else {
		writeTimeout += 10 * time.Minute
	}
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       time.Minute,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("starting search server on %s ...", listener.Addr())
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("search server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down search server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down search server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request served")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()

	var request communication.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, requestID, "bad request: "+err.Error())
		return
	}
	if request.MaxIterations < 0 || request.MaxRuntime < 0 || request.ExplorationConstant < 0 {
		writeError(w, http.StatusBadRequest, requestID, "budget must not be negative")
		return
	}
	iterations, runtime := s.clamp(request.MaxIterations, request.MaxRuntime)

	rules, err := s.rules(request.History)
	if err != nil {
		writeError(w, statusOf(err), requestID, err.Error())
		return
	}

	options := append([]searcher.Option{}, s.defaults...)
	if iterations > 0 {
		options = append(options, searcher.WithIterations(iterations))
	}
	if runtime > 0 {
		options = append(options, searcher.WithRuntime(runtime))
	}
	if request.ExplorationConstant > 0 {
		options = append(options, searcher.WithExploration(request.ExplorationConstant))
	}
	if request.Seed != 0 {
		options = append(options, searcher.WithSeed(request.Seed))
	}
	options = append(options, searcher.WithMetrics())

	start := time.Now()
	result, err := searcher.NewMCTS(options...).Search(r.Context(), game.Continue(rules, request.History))
	if err != nil {
		log.Warn().Err(err).Str("request_id", requestID).Msg("search failed")
		writeError(w, statusOf(err), requestID, err.Error())
		return
	}

	response := communication.SearchResponse{
		RequestID:  requestID,
		Result:     export.NewResult(result, time.Since(start), request.IncludeTree),
		Episodes:   result.Metric.Episodes,
		TreeSize:   result.Metric.TreeSize,
		StopReason: string(result.Metric.StopReason),
	}
	writeJSON(w, http.StatusOK, response)
}

// clamp caps requested budgets at the server limits. Zero requests stay zero and
// fall back to the defaults.
func (s *Server) clamp(iterations int, runtime float64) (int, float64) {
	if s.limits.MaxIterations > 0 && iterations > s.limits.MaxIterations {
		iterations = s.limits.MaxIterations
	}
	if s.limits.MaxRuntime > 0 && runtime > s.limits.MaxRuntime {
		runtime = s.limits.MaxRuntime
	}
	return iterations, runtime
}

func statusOf(err error) int {
	if errors.Is(err, game.ErrContractViolation) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, requestID, message string) {
	writeJSON(w, status, communication.ErrorResponse{RequestID: requestID, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

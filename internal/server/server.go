// Package server exposes the people queries over HTTP. Every read goes through the
// shared query client, so identical concurrent requests share one upstream call.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/rshade/peoplegrid/internal/filter"
	"github.com/rshade/peoplegrid/internal/logging"
	"github.com/rshade/peoplegrid/internal/people"
	"github.com/rshade/peoplegrid/internal/person"
	"github.com/rshade/peoplegrid/internal/query"
	"github.com/rshade/peoplegrid/internal/randomuser"
)

const shutdownTimeout = 5 * time.Second

// TraceHeader carries the request trace id in and out.
const TraceHeader = "X-Trace-Id"

// Server serves the HTTP API.
type Server struct {
	queries *people.Queries
	client  *query.Client[*person.Page]
	filters *filter.Store
	logger  zerolog.Logger
	router  *mux.Router
}

// New wires the routes. filters is the shared filter used by /persons/all when a
// request does not carry its own constraints.
func New(
	queries *people.Queries,
	client *query.Client[*person.Page],
	filters *filter.Store,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		queries: queries,
		client:  client,
		filters: filters,
		logger:  logging.ComponentLogger(logger, "server"),
		router:  mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.withTrace)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/persons", s.handlePage).Methods(http.MethodGet)
	s.router.HandleFunc("/persons/all", s.handleAll).Methods(http.MethodGet)
	s.router.HandleFunc("/persons/gender/{gender}", s.handleByGender).Methods(http.MethodGet)
	s.router.HandleFunc("/filters", s.handleGetFilters).Methods(http.MethodGet)
	s.router.HandleFunc("/filters", s.handleSetFilters).Methods(http.MethodPatch)
	s.router.HandleFunc("/filters", s.handleResetFilters).Methods(http.MethodDelete)
	s.router.HandleFunc("/cache", s.handleClearCache).Methods(http.MethodDelete)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
// ready, when non-nil, receives the bound address once the listener is open.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready chan<- string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second, //nolint:mnd // conservative default
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	s.logger.Info().Ctx(ctx).Str("addr", ln.Addr().String()).Msg("server listening")
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.logger.Info().Ctx(ctx).Msg("server stopped")
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// withTrace gives every request a trace id and a request-scoped logger.
func (s *Server) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(TraceHeader)
		if id == "" {
			id = logging.NewTraceID()
		}
		ctx := logging.ContextWithTraceID(r.Context(), id)
		ctx = s.logger.WithContext(ctx)
		w.Header().Set(TraceHeader, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.logger.Debug().Ctx(ctx).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	TraceID string `json:"traceId,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("writing response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logging.FromContext(r.Context()).Warn().Ctx(r.Context()).Err(err).Int("status", status).Msg("request failed")
	s.writeJSON(w, status, errorBody{Error: err.Error(), TraceID: logging.TraceIDFromContext(r.Context())})
}

// badRequestError marks a problem with the request itself.
type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

func statusFor(err error) int {
	var bad *badRequestError
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.Is(err, randomuser.ErrServer), errors.Is(err, randomuser.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// intParam parses a non-negative integer query parameter; absent means 0.
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest("%s must be a non-negative integer, got %q", name, raw)
	}
	return n, nil
}

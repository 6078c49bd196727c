// Package httpapi serves the playground REST API used by the web front end.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Aditya-creator173/SQL-Compiler/internal/logging"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/metrics"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/services"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 10 * time.Second

// Backend bundles the services the handlers call.
type Backend struct {
	Accounts services.Accounts
	Raw      services.RawExecutor
	Block    services.BlockExecutor
	Schema   services.SchemaReader
	Export   services.Exporter
}

type Server struct {
	address        string
	backend        Backend
	logger         logging.Logger
	metrics        *metrics.Metrics
	jwtSecret      []byte
	allowedOrigins []string
}

func NewServer(addr string, l logging.Logger, b Backend, mx *metrics.Metrics, secretKey string, allowedOrigins []string) *Server {
	return &Server{
		address:        addr,
		backend:        b,
		logger:         l.With("module", "http_server"),
		metrics:        mx,
		jwtSecret:      []byte(secretKey),
		allowedOrigins: allowedOrigins,
	}
}

// Handler returns the complete handler chain: routes, per-request
// middleware, CORS and panic recovery.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestID, s.accessLog)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	a := r.PathPrefix("/api").Subrouter()
	a.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	a.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	a.HandleFunc("/token/refresh", s.handleRefresh).Methods(http.MethodPost)
	a.Handle("/schema", s.requireToken(s.handleSchema)).Methods(http.MethodGet)
	a.Handle("/sql/raw", s.requireToken(s.handleRaw)).Methods(http.MethodPost)
	a.Handle("/sql/block", s.requireToken(s.handleBlock)).Methods(http.MethodPost)
	a.Handle("/sql/export", s.requireToken(s.handleExport)).Methods(http.MethodPost)

	cors := handlers.CORS(
		handlers.AllowedOrigins(s.allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	return handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s.logger}))(cors(r))
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type recoveryLogger struct{ logger logging.Logger }

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error(context.Background(), "panic recovered", "panic", v)
}

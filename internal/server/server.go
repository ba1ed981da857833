package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

const (
	// shutdownTimeout bounds graceful shutdown of in-flight requests.
	shutdownTimeout = 5 * time.Second

	// readHeaderTimeout guards against clients that never finish their headers.
	readHeaderTimeout = 10 * time.Second
)

// Fetcher retrieves an upstream document.
//
// Implementations report failures with an error that fetch.Code can map to a
// diagnostic code.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Config holds the server settings.
type Config struct {
	// Port is the TCP port to listen on; 0 picks a free port.
	Port int

	// Title is the page title (defaults to "CAM Menu Management" if empty).
	Title string

	// PollInterval is the menu refresh interval used by the page script.
	PollInterval time.Duration

	// DefaultUpstreamPort pre-fills the port input when the page is opened
	// without port_server.
	DefaultUpstreamPort int

	// CORSOrigins lists origins allowed to call the dispatcher. Empty
	// disables CORS handling.
	CORSOrigins []string
}

// Server serves the dispatcher, health and metrics endpoints.
type Server struct {
	cfg        Config
	fetcher    Fetcher
	assets     fs.FS
	metrics    *Metrics
	logger     *slog.Logger
	handler    http.Handler
	httpServer *http.Server

	mu   sync.Mutex
	addr net.Addr
}

// NewServer creates a new HTTP [Server].
//
// Parameters:
//   - cfg: listen port and page settings
//   - fetcher: upstream fetcher used in proxy mode
//   - assets: filesystem containing assets/index.html (may be nil)
//   - logger: logger for server events
//
// The server is not started until [Server.Start] is called; [Server.Handler]
// is usable immediately.
func NewServer(cfg Config, fetcher Fetcher, assets fs.FS, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		fetcher: fetcher,
		assets:  assets,
		metrics: NewMetrics(),
		logger:  logger,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listening address, or nil before [Server.Start].
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// routes builds the chi router.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(s.recoverer)

	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			MaxAge:         300,
		}))
	}

	r.Get("/", s.handleDispatch)
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	return r
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.cfg.Port, err)
	}

	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		// request contexts end with the server context, so in-flight upstream
		// fetches are abandoned on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// handleHealthz reports liveness.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// recoverer turns handler panics into a 500 reply. The stack is logged with a
// correlation ID that is also returned to the client.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			correlationID := uuid.NewString()
			s.logger.Error("handler panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", rec),
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			http.Error(w, fmt.Sprintf("internal error (correlation_id: %s)", correlationID), http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}

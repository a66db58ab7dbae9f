// Package web serves the calculator page and the JSON tool endpoint.
//
// Routes:
//
//	GET  /            page with the default form (query values override)
//	POST /            page re-rendered from the posted form
//	POST /api/tool    execute a tool call
//	GET  /api/schema  tool schema for agent registration
//	GET  /health      liveness check
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/scicalc"
	"github.com/njchilds90/scicalc/internal/config"
)

const maxBodyBytes = 1 << 20 // 1 MiB

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// Server owns the HTTP handlers and, when enabled, the config watcher.
type Server struct {
	logger  *zap.Logger
	level   *zap.AtomicLevel
	verbose bool
	srv     config.ServerConfig

	cfgPath  string
	debounce time.Duration

	mu       sync.RWMutex
	calc     *scicalc.Calculator
	defaults scicalc.Form
}

type Option func(*Server)

// WithConfigPath enables hot reload of path when cfg.Server.Watch is set.
func WithConfigPath(path string) Option { return func(s *Server) { s.cfgPath = path } }

// WithLevel lets a reload change the log level.
func WithLevel(level zap.AtomicLevel) Option { return func(s *Server) { s.level = &level } }

// WithVerbose keeps the level at debug across reloads.
func WithVerbose(verbose bool) Option { return func(s *Server) { s.verbose = verbose } }

func New(cfg *config.Config, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		logger:   logger,
		srv:      cfg.Server,
		debounce: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !cfg.Server.Watch {
		s.cfgPath = ""
	}
	s.apply(cfg)
	return s
}

// apply swaps in the reloadable parts of cfg.
func (s *Server) apply(cfg *config.Config) {
	s.mu.Lock()
	s.calc = scicalc.New(cfg.CalculatorOptions())
	s.defaults = cfg.Defaults
	s.mu.Unlock()
}

func (s *Server) state() (*scicalc.Calculator, scicalc.Form) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calc, s.defaults
}

// Handler returns the routed handler with request ids, access logging and
// panic recovery applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("POST /{$}", s.handlePage)
	mux.HandleFunc("POST /api/tool", s.handleTool)
	mux.HandleFunc("GET /api/schema", s.handleSchema)
	mux.HandleFunc("GET /health", s.handleHealth)
	return s.withRequestID(s.withAccessLog(s.withRecover(mux)))
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully. The
// config watcher, if enabled, runs alongside and stops with the server.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.srv.GetReadHeaderTimeout(),
		ReadTimeout:       s.srv.GetReadTimeout(),
		WriteTimeout:      s.srv.GetWriteTimeout(),
		IdleTimeout:       s.srv.GetIdleTimeout(),
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("scicalc listening", zap.String("addr", ln.Addr().String()))
		if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.srv.GetShutdownTimeout())
		defer cancel()
		s.logger.Info("shutting down")
		return hs.Shutdown(shutdownCtx)
	})
	if s.cfgPath != "" {
		g.Go(func() error { return s.watchConfig(gctx) })
	}
	return g.Wait()
}

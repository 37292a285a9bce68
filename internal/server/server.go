// Package server wires configuration, the generation pipeline, the
// preference store and the HTTP routes into a runnable server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/internal/composite"
	"github.com/cristianadrielbraun/qrstudio/internal/config"
	"github.com/cristianadrielbraun/qrstudio/internal/generator"
	"github.com/cristianadrielbraun/qrstudio/internal/handlers"
	"github.com/cristianadrielbraun/qrstudio/internal/metrics"
	"github.com/cristianadrielbraun/qrstudio/internal/prefs"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
)

// ModuleWidth is the pixel size of one module in encoder artifacts.
const ModuleWidth = 8

const shutdownTimeout = 5 * time.Second

// NewRenderer builds the configured backend, with the pattern fallback
// behind it when enabled.
func NewRenderer(cfg *config.Config, logger *log.Logger) (*render.Renderer, error) {
	primary, err := render.NewBackend(cfg.Backend, ModuleWidth, cfg.Poll())
	if err != nil {
		return nil, err
	}
	var fallback render.Backend
	if cfg.Fallback {
		fallback = &render.PatternBackend{ModuleWidth: ModuleWidth}
	}
	return render.NewRenderer(primary, fallback, logger), nil
}

// OpenStore opens the configured preference store.
func OpenStore(ctx context.Context, cfg *config.Config) (prefs.Store, error) {
	switch cfg.PrefsBackend {
	case "redis":
		return prefs.OpenRedis(ctx, cfg.RedisURL)
	case "file", "":
		return prefs.NewFileStore(cfg.PrefsPath), nil
	}
	return nil, fmt.Errorf("unknown preference backend %q", cfg.PrefsBackend)
}

// Server is the qrstudio HTTP server.
type Server struct {
	cfg      *config.Config
	logger   *log.Logger
	engine   *gin.Engine
	sessions *handlers.Sessions
	store    prefs.Store
}

// New wires every component from cfg. The caller must Close the server to
// release the preference store.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Server, error) {
	renderer, err := NewRenderer(cfg, logger)
	if err != nil {
		return nil, err
	}
	painter := composite.NewPainter(logger)
	m := metrics.New()

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}

	sessions := handlers.NewSessions(func() *generator.Coordinator {
		return generator.New(renderer, painter,
			generator.WithLogger(logger),
			generator.WithRecorder(m),
			generator.WithDebounce(cfg.Debounce))
	}, cfg.SessionIdleTimeout)

	h := handlers.New(handlers.Deps{
		Sessions:       sessions,
		Store:          store,
		Metrics:        m,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	h.Register(r)

	return &Server{
		cfg:      cfg,
		logger:   logger,
		engine:   r,
		sessions: sessions,
		store:    store,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("qrstudio listening", "addr", srv.Addr, "backend", s.cfg.Backend, "prefs", s.cfg.PrefsBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	go s.sweep(ctx)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("qrstudio stopped")
	return nil
}

// sweep evicts idle sessions until ctx is done.
func (s *Server) sweep(ctx context.Context) {
	interval := s.cfg.SessionIdleTimeout / 2
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.sessions.Sweep(); n > 0 {
				s.logger.Debug("sessions evicted", "count", n, "live", s.sessions.Len())
			}
		}
	}
}

// Close releases the preference store.
func (s *Server) Close() error {
	return s.store.Close()
}

// Package api provides the codemark HTTP and WebSocket conversion service.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/FocuswithJustin/codemark/core/cache"
	"github.com/FocuswithJustin/codemark/core/config"
	"github.com/FocuswithJustin/codemark/core/registry"
	"github.com/FocuswithJustin/codemark/internal/logging"
	"github.com/FocuswithJustin/codemark/internal/server"
)

// registries is shared by every Server in the process so that servers
// with the same annotation list share one registry.
var registries = cache.NewDefaultRegistryCache()

// Server serves conversions against one registry.
type Server struct {
	cfg      config.ServerConfig
	lang     string
	version  string
	registry *registry.Registry
	results  *cache.ResultCache
	hub      *Hub
	started  time.Time
}

// New creates a server from a validated configuration.
func New(cfg *config.Config, version string) (*Server, error) {
	reg := registry.Default()
	if items := cfg.Items(); len(items) > 0 {
		var err error
		if reg, err = registries.Get(items); err != nil {
			return nil, err
		}
	}

	s := &Server{
		cfg:      cfg.Server,
		lang:     cfg.Source.Lang,
		version:  version,
		registry: reg,
		hub:      NewHub(),
		started:  time.Now(),
	}
	if cfg.Server.CacheBytes > 0 {
		s.results = cache.NewResultCache(cache.DefaultConfig(), cfg.Server.CacheBytes)
	}
	return s, nil
}

// Registry returns the registry the server converts with.
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// Handler returns the routed handler wrapped in the middleware chain:
// logging, CORS, then security headers.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = server.SecurityHeadersWithCSP(server.APICSPConfig(), s.routes())
	handler = server.CORSMiddlewareWithConfig(s.cors(), handler)
	return logging.CombinedMiddleware(handler)
}

func (s *Server) cors() server.CORSConfig {
	return server.CORSConfig{AllowedOrigins: s.cfg.AllowedOrigins}
}

// routes configures all HTTP routes.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/annotations", s.handleAnnotations)
	mux.HandleFunc("/build", s.handleOperation(OpBuild))
	mux.HandleFunc("/serialize", s.handleOperation(OpSerialize))
	mux.HandleFunc("/encode", s.handleOperation(OpEncode))
	mux.HandleFunc("/decode", s.handleOperation(OpDecode))
	mux.HandleFunc("/ws", s.handleWebSocket)

	return mux
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	if len(s.cfg.AllowedOrigins) == 0 {
		logging.Warn("CORS allows all origins",
			"recommendation", "set server.allowed_origins when exposed beyond localhost")
	}
	logging.ServerStartup("api", "http", ln.Addr().String(),
		"websocket_protocol", "ws",
		"annotations", s.registry.Len(),
		"registry", s.registry.Fingerprint())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	logging.Info("server shutting down", "timeout", s.cfg.ShutdownTimeout)
	err := srv.Shutdown(shutdownCtx)
	s.hub.CloseAll()
	if err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/bg/auth"
	"github.com/kbukum/bg/logger"
	"github.com/kbukum/bg/observability"
	"github.com/kbukum/bg/server/endpoint"
	"github.com/kbukum/bg/server/middleware"
)

// Server is the launch API: a Gin engine mounted on a ServeMux behind h2c.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	mux        *http.ServeMux
	h2s        *http2.Server
	config     Config
	log        *logger.Logger

	mu       sync.Mutex
	listener net.Listener
}

// Routes are the collaborators the launch API serves.
type Routes struct {
	// ServiceName is reported by /health.
	ServiceName string
	// Launcher runs accepted launch requests.
	Launcher Launcher
	// Auth guards /v1. Built from Config.Auth when nil.
	Auth *auth.Authenticator
	// Checkers contribute components to /health.
	Checkers []observability.HealthChecker
}

// New creates a new Server. The Gin engine is created but no middleware is
// applied yet.
func New(cfg Config, log *logger.Logger) *Server {
	// Set Gin mode based on global zerolog level.
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	mux := http.NewServeMux()

	// Mount Gin as the fallback handler on the root mux.
	mux.Handle("/", engine)

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      h2c.NewHandler(mux, h2s),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		engine:     engine,
		mux:        mux,
		h2s:        h2s,
		config:     cfg,
		log:        log.WithComponent("server"),
	}
}

// Name identifies the server as a lifecycle component.
func (s *Server) Name() string { return "http-server" }

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start binds the port and begins serving, over TLS when configured. It
// returns once the listener is bound so the caller knows the port is ready;
// serving continues in a goroutine.
func (s *Server) Start(_ context.Context) error {
	tlsConfig, err := s.config.TLS.Build()
	if err != nil {
		return fmt.Errorf("server.tls: %w", err)
	}
	s.httpServer.TLSConfig = tlsConfig

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		var err error
		if tlsConfig != nil {
			err = s.httpServer.ServeTLS(listener, "", "")
		} else {
			err = s.httpServer.Serve(listener)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	s.log.Info("HTTP server started", map[string]interface{}{
		"addr":       listener.Addr().String(),
		"tls":        tlsConfig != nil,
		"mutual_tls": s.config.TLS.MutualTLS(),
	})
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Server shutdown error", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// ApplyMiddleware wraps the ServeMux with the standard middleware stack:
// recovery, request id, body-size limit, and request logging.
func (s *Server) ApplyMiddleware(metrics *observability.LaunchMetrics) {
	chain := middleware.Chain(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.BodySizeLimit(s.config.MaxBodySize),
		middleware.RequestLogger(s.log, metrics),
	)
	s.httpServer.Handler = h2c.NewHandler(chain(s.mux), s.h2s)
}

// RegisterRoutes registers /health, /version and the authenticated
// POST /v1/launch.
func (s *Server) RegisterRoutes(r Routes) error {
	authn := r.Auth
	if authn == nil {
		var err error
		if authn, err = auth.NewAuthenticator(s.config.Auth); err != nil {
			return fmt.Errorf("server auth: %w", err)
		}
	}
	if authn.Disabled() {
		s.log.Warn("Authentication disabled", map[string]interface{}{
			"host": s.config.Host,
		})
	}

	s.engine.GET("/health", endpoint.Health(r.ServiceName, r.Checkers...))
	s.engine.GET("/version", endpoint.Version())

	v1 := s.engine.Group("/v1")
	v1.Use(middleware.Auth(authn, s.log))
	if s.config.RateLimit > 0 {
		v1.Use(middleware.RateLimit(middleware.RateLimitConfig{RequestsPerMinute: s.config.RateLimit}))
	}
	v1.POST("/launch", LaunchHandler(r.Launcher))
	return nil
}

// ApplyDefaults applies the standard middleware stack and registers the routes.
func (s *Server) ApplyDefaults(metrics *observability.LaunchMetrics, r Routes) error {
	s.ApplyMiddleware(metrics)
	return s.RegisterRoutes(r)
}

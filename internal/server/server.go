package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-site-router/pkg/config"
	"github.com/sirosfoundation/go-site-router/pkg/middleware"
)

// RouteProvider contributes routes to the shared engine
type RouteProvider interface {
	// RegisterRoutes adds this provider's routes to the engine
	RegisterRoutes(engine *gin.Engine)

	// Name returns the provider name for logging
	Name() string
}

// Manager builds the HTTP handler from its providers and runs the server
type Manager struct {
	cfg    *config.Config
	logger *zap.Logger

	providers []RouteProvider
	metrics   *middleware.Metrics

	buildOnce sync.Once
	handler   http.Handler

	httpServer *http.Server
	listener   net.Listener
}

// NewManager creates a new server manager
func NewManager(cfg *config.Config, logger *zap.Logger) *Manager {
	m := &Manager{
		cfg:       cfg,
		logger:    logger.Named("server"),
		providers: make([]RouteProvider, 0),
	}
	if cfg.Metrics.Enabled {
		m.metrics = middleware.NewMetrics(cfg.Metrics.Namespace, nil)
	}
	return m
}

// Metrics returns the request metrics, or nil when metrics are disabled
func (m *Manager) Metrics() *middleware.Metrics {
	return m.metrics
}

// AddProvider adds a RouteProvider. Call this before Handler or Start.
func (m *Manager) AddProvider(p RouteProvider) {
	m.providers = append(m.providers, p)
	m.logger.Debug("Added route provider", zap.String("name", p.Name()))
}

// Handler returns the complete HTTP handler, building it on first use
func (m *Manager) Handler() http.Handler {
	m.buildOnce.Do(func() {
		engine := m.buildEngine()
		for _, p := range m.providers {
			m.logger.Info("Registering routes", zap.String("provider", p.Name()))
			p.RegisterRoutes(engine)
		}
		m.handler = newCompressionHandler(engine, m.cfg.Compression, m.logger)
	})
	return m.handler
}

// Start listens on the configured address and serves in the background.
// ctx becomes the base context of every request.
func (m *Manager) Start(ctx context.Context) error {
	if m.cfg.Logging.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	addr := m.cfg.Server.Address()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	m.listener = ln

	m.httpServer = &http.Server{
		Handler:      m.Handler(),
		ReadTimeout:  m.cfg.Server.ReadTimeout,
		WriteTimeout: m.cfg.Server.WriteTimeout,
		IdleTimeout:  m.cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		m.logger.Info("HTTP server listening", zap.String("address", ln.Addr().String()))
		if err := m.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the address the server listens on, or nil before Start
func (m *Manager) Addr() net.Addr {
	if m.listener == nil {
		return nil
	}
	return m.listener.Addr()
}

// Shutdown gracefully shuts down the server
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.httpServer == nil {
		return nil
	}
	if err := m.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	return nil
}

// buildEngine creates the engine with the common middleware
func (m *Manager) buildEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(m.logger))

	if m.metrics != nil {
		engine.Use(m.metrics.Middleware())
	}

	if m.cfg.CORS.Enabled {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     m.cfg.CORS.AllowedOrigins,
			AllowMethods:     m.cfg.CORS.AllowedMethods,
			AllowHeaders:     m.cfg.CORS.AllowedHeaders,
			ExposeHeaders:    m.cfg.CORS.ExposedHeaders,
			AllowCredentials: m.cfg.CORS.AllowCredentials,
			MaxAge:           time.Duration(m.cfg.CORS.MaxAge) * time.Second,
		}))
	}

	if m.cfg.RateLimit.Enabled {
		engine.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(m.cfg.RateLimit, m.logger)))
	}

	return engine
}

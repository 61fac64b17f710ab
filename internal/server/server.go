package server

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/irislabs/agentshell/internal/config"
	"github.com/irislabs/agentshell/internal/http"
	"github.com/irislabs/agentshell/internal/logging"
	"github.com/irislabs/agentshell/internal/middleware"
	"github.com/irislabs/agentshell/internal/monitoring"
	"github.com/irislabs/agentshell/internal/providers/filesystem"
	shellprovider "github.com/irislabs/agentshell/internal/providers/shell"
	"github.com/irislabs/agentshell/internal/providers/skills"
	"github.com/irislabs/agentshell/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and its dependencies
type Server struct {
	cfg      *config.Config
	log      *logging.Logger
	router   *gin.Engine
	srv      *stdhttp.Server
	registry *service.Registry
	shell    *shellprovider.Provider
	metrics  *monitoring.Metrics

	// done stops the session gauge updater.
	done chan struct{}
}

// New builds a fully wired server: providers registered, middleware
// installed, routes bound.
func New(cfg *config.Config, log *logging.Logger) (*Server, error) {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := service.NewRegistry()
	metrics := monitoring.NewMetrics()

	shellProvider := shellprovider.NewProvider(cfg.Shell, log)
	if err := registry.Register(shellProvider); err != nil {
		return nil, err
	}
	if err := registry.Register(filesystem.NewProvider("")); err != nil {
		return nil, err
	}
	if err := registry.Register(skills.NewProvider(cfg.Skills.Dir)); err != nil {
		return nil, err
	}
	log.Info("providers registered",
		zap.Int("services", len(registry.List())),
		zap.Int("tools", len(registry.Tools())),
	)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(monitoring.Middleware(metrics))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit))
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SessionsActive.Set(float64(shellProvider.Manager().Count()))
			case <-done:
				return
			}
		}
	}()

	handlers := http.NewHandlers(registry, metrics, log)
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/services", handlers.ListServices)
	router.GET("/tools", handlers.ListTools)
	router.POST("/execute", handlers.Execute)
	router.GET("/status", handlers.Statuses)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{
		cfg:      cfg,
		log:      log,
		router:   router,
		registry: registry,
		shell:    shellProvider,
		metrics:  metrics,
		done:     done,
	}, nil
}

// Router exposes the engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts serving and blocks until the listener fails or Close is called.
func (s *Server) Run() error {
	s.srv = &stdhttp.Server{
		Addr:              s.cfg.Server.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("server listening", zap.String("addr", s.cfg.Server.Address()))

	if err := s.srv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
		return err
	}
	return nil
}

// Close drains in-flight requests, stops every shell session, and shuts
// down the background metric updaters.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error
	if s.srv != nil {
		err = s.srv.Shutdown(ctx)
	}

	close(s.done)
	s.metrics.Close()
	s.shell.Manager().Shutdown()
	s.log.Info("server stopped")
	return err
}

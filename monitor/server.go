package monitor

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/streamkit/logger"
	"github.com/kbukum/streamkit/observability"
	"github.com/kbukum/streamkit/version"
)

// Config holds monitor HTTP server configuration.
type Config struct {
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port" validate:"omitempty,min=0,max=65535"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	SnapshotSecs int    `yaml:"snapshot_secs" mapstructure:"snapshot_secs"`
}

// ApplyDefaults fills unset fields with development defaults.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8880
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 120
	}
	if c.SnapshotSecs == 0 {
		c.SnapshotSecs = 1
	}
}

// HealthFunc reports the current pipeline health.
type HealthFunc func(ctx context.Context) *observability.PipelineHealth

// Server serves the monitoring endpoints over HTTP.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	hub        *Hub
	health     HealthFunc
	log        *logger.Logger
}

// NewServer creates a monitor server wired to the given hub. health may
// be nil, in which case /healthz always reports up.
func NewServer(cfg Config, hub *Hub, health HealthFunc) *Server {
	cfg.ApplyDefaults()

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	// SSE over plain HTTP/2 without TLS.
	h2s := &http2.Server{IdleTimeout: time.Duration(cfg.IdleTimeout) * time.Second}
	handler := h2c.NewHandler(engine, h2s)

	s := &Server{
		httpServer: &http.Server{
			Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:     handler,
			ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Second,
			IdleTimeout: time.Duration(cfg.IdleTimeout) * time.Second,
		},
		engine: engine,
		hub:    hub,
		health: health,
		log:    logger.GetGlobalLogger().WithComponent("monitor"),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/version", s.handleVersion)
	s.engine.GET("/events", s.handleEvents)
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.health == nil {
		c.JSON(http.StatusOK, gin.H{"status": observability.HealthStatusUp})
		return
	}
	ph := s.health(c.Request.Context())
	status := http.StatusOK
	if ph.Status == observability.HealthStatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, ph)
}

func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, version.GetVersionInfo())
}

// handleEvents streams snapshots to the client until it disconnects.
func (s *Server) handleEvents(c *gin.Context) {
	ServeSSE(s.hub, c.Writer, c.Request)
}

// Start binds the port and begins serving. It returns once the listener
// is bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("monitor failed to bind %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("monitor server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	s.log.Info("monitor started", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("monitor shutdown error: %w", err)
	}
	s.log.Info("monitor shut down")
	return nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

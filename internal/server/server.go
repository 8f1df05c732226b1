package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/arena/internal/core/arena"
	"github.com/zeusync/arena/internal/core/events/bus"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/simulation"
)

// Simulation is what the HTTP surface needs from the running match.
// *simulation.Loop implements it.
type Simulation interface {
	Snapshot() arena.Snapshot
	State() simulation.State
	RunID() string
	Resize(ctx context.Context, width, height float64) error
	SetHealth(ctx context.Context, team arena.Team, health int) (bool, error)
}

var _ Simulation = (*simulation.Loop)(nil)

// Config holds server configuration
type Config struct {
	ListenAddr          string        `yaml:"listen_addr" toml:"listen_addr"`
	ClientBuffer        int           `yaml:"client_buffer" toml:"client_buffer"`
	WriteTimeout        time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	CommandTimeout      time.Duration `yaml:"command_timeout" toml:"command_timeout"`
	ShutdownTimeout     time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	MaxMessageSize      int64         `yaml:"max_message_size" toml:"max_message_size"`
	AllowHealthOverride bool          `yaml:"allow_health_override" toml:"allow_health_override"`
	AllowedOrigins      []string      `yaml:"allowed_origins" toml:"allowed_origins"` // empty allows any origin
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		ListenAddr:      "127.0.0.1:8080",
		ClientBuffer:    32,
		WriteTimeout:    5 * time.Second,
		CommandTimeout:  time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxMessageSize:  4 << 10,
	}
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen_addr is empty", ErrInvalidConfig)
	}
	if c.ClientBuffer <= 0 {
		return fmt.Errorf("%w: client_buffer must be positive", ErrInvalidConfig)
	}
	if c.MaxMessageSize <= 0 {
		return fmt.Errorf("%w: max_message_size must be positive", ErrInvalidConfig)
	}
	if c.WriteTimeout <= 0 || c.CommandTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	return nil
}

// Server exposes the arena over HTTP and WebSocket.
type Server struct {
	config   Config
	sim      Simulation
	hub      *Hub
	events   bus.EventBus
	logger   log.Log
	upgrader websocket.Upgrader

	running atomic.Bool
	closed  atomic.Bool
	addr    atomic.Pointer[string]
	ready   chan struct{}
}

// NewServer creates a server. events is only read for metrics and may be nil.
func NewServer(config Config, sim Simulation, hub *Hub, events bus.EventBus, logger log.Log) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Server{
		config: config,
		sim:    sim,
		hub:    hub,
		events: events,
		logger: logger.With(log.String("component", "server")),
		ready:  make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("POST /teams/{team}/health", s.handleSetHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

// Addr is the bound listen address once the server is ready.
func (s *Server) Addr() string {
	if a := s.addr.Load(); a != nil {
		return *a
	}
	return ""
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}
	defer s.closed.Store(true)

	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		s.logger.Error("Failed to create listener", log.String("addr", s.config.ListenAddr), log.Error(err))
		return fmt.Errorf("listen %s: %w", s.config.ListenAddr, err)
	}
	addr := ln.Addr().String()
	s.addr.Store(&addr)
	close(s.ready)

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()
	s.logger.Info("Server listening", log.String("addr", addr))

	select {
	case err = <-errCh:
		s.hub.closeAll()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Stopping server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
	defer cancel()
	s.hub.closeAll()
	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("shutdown incomplete", log.Error(err))
	}
	s.logger.Info("Server stopped")
	return nil
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.config.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range s.config.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

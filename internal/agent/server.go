package agent

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/zjrosen/deskctl/internal/log"
)

// Server wraps a Handler with an http.Server for lifecycle management.
type Server struct {
	server   *http.Server
	listener net.Listener
	port     int
}

// ServerConfig configures the agent server.
type ServerConfig struct {
	// Addr is the address to listen on, e.g. "127.0.0.1:5000" or ":0".
	Addr    string
	Handler *Handler
	// ReadTimeout defaults to 30s.
	ReadTimeout time.Duration
}

// NewServer binds the listener so Port is known before Start.
func NewServer(cfg ServerConfig) (*Server, error) {
	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	port := 0
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		port = tcpAddr.Port
	}

	return &Server{
		listener: listener,
		port:     port,
		server: &http.Server{
			Handler:           cfg.Handler.Routes(),
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Start serves until Stop. It returns http.ErrServerClosed after Stop.
func (s *Server) Start() error {
	log.Info(log.CatAgent, "starting agent server", "addr", s.listener.Addr().String())
	return s.server.Serve(s.listener)
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	log.Info(log.CatAgent, "stopping agent server")
	return s.server.Shutdown(ctx)
}

// Port returns the bound port.
func (s *Server) Port() int {
	return s.port
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

package mcp

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server is the MCP server for crag.
//
// Ports are swappable at runtime: after an index rebuild lands, the
// serving front-end replaces the query pipeline via UpdatePorts without
// restarting the server.
type Server struct {
	mu     sync.RWMutex
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "crag",
		Version: Version,
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, nil),
	}

	s.registerTools()

	return s, nil
}

// UpdatePorts atomically replaces the served pipeline. Used by index
// hot-reload after an atomic bundle swap.
func (s *Server) UpdatePorts(ports *Ports) error {
	if err := ports.Validate(); err != nil {
		return fmt.Errorf("validating ports: %w", err)
	}

	s.mu.Lock()
	s.ports = ports
	s.mu.Unlock()
	return nil
}

// currentPorts returns the active pipeline.
func (s *Server) currentPorts() *Ports {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ports
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

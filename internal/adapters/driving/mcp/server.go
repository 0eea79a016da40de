package mcp

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sheaf/internal/core/ports/driving"
	"github.com/custodia-labs/sheaf/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server is the MCP server for Sheaf.
//
// The server keeps one working session. Tools add to it until submit or
// reset closes it; the next tool call opens a fresh one.
type Server struct {
	ports  *Ports
	server *mcp.Server

	mu      sync.Mutex
	session driving.SessionService
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "sheaf",
		Version: Version,
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, nil),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
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

// current returns the open session, starting a new one if there is none
// or the last one was submitted or cancelled.
func (s *Server) current() (driving.SessionService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil && !s.session.State().IsClosed() {
		return s.session, nil
	}

	session, err := s.ports.Sessions.NewSession()
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}
	s.session = session
	logger.Debug("MCP session opened")
	return session, nil
}

// reset cancels the open session, if any.
func (s *Server) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		s.session.Cancel()
		s.session = nil
	}
}

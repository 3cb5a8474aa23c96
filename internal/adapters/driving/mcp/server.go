package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

// Version is the MCP server version.
const Version = "0.2.0"

// Endpoint is the path the streamable HTTP transport is mounted on.
const Endpoint = "/mcp"

const shutdownTimeout = 5 * time.Second

// Server exposes the document corpus to MCP clients.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{ports: ports}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "docsift",
		Title:   "docsift document search",
		Version: Version,
	}, &mcp.ServerOptions{Instructions: instructions()})

	s.registerTools()
	s.registerResources()
	return s, nil
}

// instructions describes the filter vocabulary the tools accept.
func instructions() string {
	types := make([]string, len(domain.AllFileTypes))
	for i, ft := range domain.AllFileTypes {
		types[i] = string(ft)
	}
	return fmt.Sprintf(`docsift indexes documents from local folders and classifies them into categories.
Call search first and open hits with get_document. ask_document answers from a single document.
Search modes: hybrid (default), fulltext, semantic.
File type filters: %s.
Category filters accept ids, slugs or display names as listed by list_categories.`,
		strings.Join(types, ", "))
}

// Run serves over stdio until the context is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP listens on addr and serves the streamable HTTP transport at
// Endpoint until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves the streamable HTTP transport on ln. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(Endpoint, mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil))

	httpServer := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
